package middleware

import (
	"time"

	"github.com/amaumene/gowatchlist/internal/metrics"
	"github.com/gofiber/fiber/v2"
)

// Metrics records request counts and latencies labelled by route pattern
func Metrics(m *metrics.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fiberErr, ok := err.(*fiber.Error); ok {
				status = fiberErr.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}

		m.ObserveRequest(c.Method(), c.Route().Path, status, time.Since(start))
		return err
	}
}
