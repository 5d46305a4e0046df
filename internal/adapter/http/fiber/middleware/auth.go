package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/mousa8080/PTPay-Public-Transportation-Payments-system/internal/domain"
	"github.com/mousa8080/PTPay-Public-Transportation-Payments-system/internal/ports"
)

func AuthRequired(service ports.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing authorization header"})
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid authorization header format"})
		}

		ref, err := service.Validate(c.Context(), parts[1])
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid or expired token"})
		}

		c.Locals("actor_id", ref.ID)
		c.Locals("actor_kind", ref.Kind)

		return c.Next()
	}
}

// PassengerOnly rejects requests whose token does not belong to a passenger
// account. Must run after AuthRequired.
func PassengerOnly() fiber.Handler {
	return requireKind(domain.ActorKindPassenger)
}

// DriverOnly rejects requests whose token does not belong to a driver
// account. Must run after AuthRequired.
func DriverOnly() fiber.Handler {
	return requireKind(domain.ActorKindDriver)
}

func requireKind(kind domain.ActorKind) fiber.Handler {
	return func(c *fiber.Ctx) error {
		got, ok := c.Locals("actor_kind").(domain.ActorKind)
		if !ok || got != kind {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "forbidden for this account type"})
		}
		return c.Next()
	}
}

// ActorID reads the authenticated account id set by AuthRequired.
func ActorID(c *fiber.Ctx) uint {
	id, _ := c.Locals("actor_id").(uint)
	return id
}
