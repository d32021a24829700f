package middleware

import (
	"time"

	"github.com/ctu-developers/DSpace/internal/logging"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

// RequestIDMiddleware assigns every request an X-Request-ID
func RequestIDMiddleware() fiber.Handler {
	return requestid.New()
}

// LoggerMiddleware logs HTTP requests and responses. It must run after
// RequestIDMiddleware to carry the id into the request context.
func LoggerMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		if id, ok := c.Locals("requestid").(string); ok && id != "" {
			c.SetUserContext(logging.ContextWithRequestID(c.UserContext(), id))
		}

		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}

		event := logging.Ctx(c.UserContext()).Info()
		if status >= fiber.StatusInternalServerError {
			event = logging.Ctx(c.UserContext()).Error()
		}
		event.
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Msg("Request completed")

		return err
	}
}
