package handler

import (
	"context"
	"time"

	"github.com/ctu-developers/DSpace/internal/logging"
	"github.com/gofiber/fiber/v2"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	database Pinger
	cache    Pinger
}

// NewHealthHandler creates the health handler. cache may be nil when Redis
// is disabled.
func NewHealthHandler(database, cache Pinger) *HealthHandler {
	return &HealthHandler{database: database, cache: cache}
}

// Health returns basic health status
// GET /health
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status":  "ok",
		"service": "authority-service",
	})
}

// Ready checks the database and, when configured, the token cache
// GET /ready
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	status := fiber.StatusOK
	checks := fiber.Map{"database": "ok", "cache": "disabled"}

	if err := h.database.Ping(ctx); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("Database not ready")
		checks["database"] = "unavailable"
		status = fiber.StatusServiceUnavailable
	}
	if h.cache != nil {
		checks["cache"] = "ok"
		if err := h.cache.Ping(ctx); err != nil {
			logging.Ctx(ctx).Warn().Err(err).Msg("Cache not ready")
			checks["cache"] = "unavailable"
			status = fiber.StatusServiceUnavailable
		}
	}

	state := "ready"
	if status != fiber.StatusOK {
		state = "not ready"
	}
	return c.Status(status).JSON(fiber.Map{
		"status": state,
		"checks": checks,
	})
}
