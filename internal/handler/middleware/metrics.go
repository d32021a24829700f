package middleware

import (
	"strconv"
	"time"

	"github.com/ctu-developers/DSpace/internal/metrics"
	"github.com/gofiber/fiber/v2"
)

// MetricsMiddleware records request counts and latency per route
func MetricsMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if fe, ok := err.(*fiber.Error); ok {
			status = fe.Code
		}
		metrics.RecordAPIRequest(c.Method(), c.Route().Path, strconv.Itoa(status), time.Since(start))
		return err
	}
}
