package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

// CORSMiddleware configures and returns CORS middleware for the given origins
func CORSMiddleware(allowedOrigins []string) fiber.Handler {
	origins := strings.Join(allowedOrigins, ",")
	if origins == "" {
		origins = "*"
	}
	return cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Content-Type,Authorization",
		ExposeHeaders:    "X-Request-ID",
		AllowCredentials: origins != "*",
	})
}
