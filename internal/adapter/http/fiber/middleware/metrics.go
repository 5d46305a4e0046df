package middleware

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/mousa8080/PTPay-Public-Transportation-Payments-system/internal/observability/telemetry"
)

// Metrics counts every handled request by method, route and status. The
// registered route pattern is used instead of the raw URL so path
// parameters do not blow up the label cardinality.
func Metrics() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}

		telemetry.HTTPRequestsTotal.WithLabelValues(
			c.Method(),
			c.Route().Path,
			strconv.Itoa(status),
		).Inc()

		return err
	}
}
