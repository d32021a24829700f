package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"github.com/ctu-developers/DSpace/internal/config"
	"github.com/ctu-developers/DSpace/internal/handler"
	"github.com/ctu-developers/DSpace/internal/handler/middleware"
	"github.com/ctu-developers/DSpace/internal/logging"
	"github.com/ctu-developers/DSpace/internal/repository/postgres"
	"github.com/ctu-developers/DSpace/internal/service"
	"github.com/ctu-developers/DSpace/pkg/blacklist"
	"github.com/ctu-developers/DSpace/pkg/jwt"
	"github.com/ctu-developers/DSpace/pkg/validator"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})

	// Initialize database connection
	db, err := initDB(cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database connection")
		}
	}()
	logging.Info().Str("host", cfg.Database.Host).Msg("Database connection established")

	if cfg.Database.AutoMigrate {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		err := postgres.EnsureSchema(ctx, db)
		cancel()
		if err != nil {
			logging.Fatal().Err(err).Msg("Failed to apply schema")
		}
		logging.Info().Msg("Schema applied")
	}

	// Token revocation is optional; without Redis every valid token is accepted
	var (
		revocations middleware.RevocationChecker
		cache       handler.Pinger
	)
	if cfg.Redis.Enabled {
		redisClient, err := initRedis(cfg)
		if err != nil {
			logging.Fatal().Err(err).Msg("Failed to initialize Redis")
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logging.Error().Err(err).Msg("Error closing Redis connection")
			}
		}()
		tokenBlacklist := blacklist.NewTokenBlacklist(redisClient)
		revocations, cache = tokenBlacklist, tokenBlacklist
		logging.Info().Str("addr", cfg.Redis.Addr()).Msg("Token blacklist enabled")
	} else {
		logging.Info().Msg("Token blacklist disabled (set REDIS_ENABLED=true to enable)")
	}

	// Load the public key of the auth service
	publicKey, err := loadPublicKey(cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load public key")
	}
	verifier, err := jwt.NewVerifier(publicKey, cfg.JWT.Issuer)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize token verifier")
	}

	// Initialize repositories
	groups := postgres.NewGroupRepository(db, cfg.Authority.AdminGroup)
	store := postgres.NewStore(db, groups)

	// Initialize services
	deny := service.NewDenyList(cfg.Authority.ForbiddenAuthorities...)
	authorityService := service.NewAuthorityService(store, deny, validator.NewValidator())
	choiceService := service.NewChoiceService(store)
	logging.Info().Strs("forbidden_authorities", deny.Names()).Msg("Authority visibility configured")

	// Initialize handlers
	personHandler := handler.NewAuthorityPersonHandler(authorityService)
	choiceHandler := handler.NewChoiceHandler(choiceService)
	healthHandler := handler.NewHealthHandler(store, cache)

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:               "Authority Service",
		DisableStartupMessage: true,
		ErrorHandler:          handler.ErrorHandler,
		ReadTimeout:           cfg.Server.ReadTimeout,
		WriteTimeout:          cfg.Server.WriteTimeout,
		UnescapePath:          true,
	})

	// Setup global middlewares
	app.Use(middleware.RecoveryMiddleware())
	app.Use(middleware.RequestIDMiddleware())
	app.Use(middleware.LoggerMiddleware())
	app.Use(middleware.MetricsMiddleware())
	app.Use(middleware.CORSMiddleware(cfg.CORS.AllowedOrigins))
	app.Use(middleware.Identify(verifier, revocations))

	handler.SetupRoutes(app, personHandler, choiceHandler, healthHandler)

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logging.Info().Str("addr", addr).Str("environment", cfg.Server.Environment).Msg("Server starting")
		if err := app.Listen(addr); err != nil {
			logging.Error().Err(err).Msg("Server failed to start")
			stop()
		}
	}()

	<-ctx.Done()
	logging.Info().Msg("Shutting down server gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logging.Error().Err(err).Msg("Server forced to shutdown")
	}

	logging.Info().Msg("Server stopped")
}

// initDB initializes PostgreSQL database connection with retry logic
func initDB(cfg *config.Config) (*sqlx.DB, error) {
	dsn := cfg.Database.DSN()
	maxRetries := cfg.Database.ConnectTries
	retryInterval := 2 * time.Second

	var db *sqlx.DB
	var err error

	for i := 0; i < maxRetries; i++ {
		db, err = sqlx.Connect("postgres", dsn)
		if err == nil {
			break
		}

		logging.Warn().Err(err).Int("attempt", i+1).Int("max_attempts", maxRetries).Msg("Failed to connect to database")
		if i < maxRetries-1 {
			time.Sleep(retryInterval)
		}
	}

	if err != nil {
		return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", maxRetries, err)
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			logging.Error().Err(closeErr).Msg("Error closing database after ping failure")
		}
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// initRedis initializes Redis client and verifies connection
func initRedis(cfg *config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Redis.Addr(),
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		if closeErr := client.Close(); closeErr != nil {
			logging.Error().Err(closeErr).Msg("Error closing Redis after ping failure")
		}
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	return client, nil
}

// loadPublicKey reads the RSA public key used to verify access tokens
func loadPublicKey(cfg *config.Config) ([]byte, error) {
	publicKey, err := os.ReadFile(cfg.JWT.PublicKeyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read public key file: %w", err)
	}
	if len(publicKey) == 0 {
		return nil, fmt.Errorf("public key file is empty")
	}
	return publicKey, nil
}
