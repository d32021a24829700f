package middleware

import (
	"runtime/debug"

	"github.com/ctu-developers/DSpace/internal/logging"
	"github.com/gofiber/fiber/v2"
)

// RecoveryMiddleware recovers from panics and returns 500 error
func RecoveryMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				logging.Ctx(c.UserContext()).Error().
					Interface("panic", r).
					Bytes("stack", debug.Stack()).
					Msg("Recovered from panic")

				err = c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
					"error": "internal server error",
				})
			}
		}()

		return c.Next()
	}
}
