package middleware

import (
	"github.com/gofiber/fiber/v2"
)

// RequirePrincipal rejects anonymous callers. Group membership is decided
// later, per request, by the service.
func RequirePrincipal() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if PrincipalFrom(c).Anonymous() {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "authentication required",
			})
		}
		return c.Next()
	}
}
