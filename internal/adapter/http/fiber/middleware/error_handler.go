package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/mousa8080/PTPay-Public-Transportation-Payments-system/internal/domain"
)

// ErrorHandler maps application error codes onto HTTP statuses. Anything
// without a code is treated as a storage failure and logged.
func ErrorHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
		}

		code := domain.CodeOf(err)
		status := statusFor(code)
		if status == fiber.StatusInternalServerError {
			log.Error("internal server error", zap.Error(err), zap.String("path", c.Path()))
			return c.Status(status).JSON(fiber.Map{"error": "internal server error"})
		}

		return c.Status(status).JSON(fiber.Map{
			"error": err.Error(),
			"code":  string(code),
		})
	}
}

func statusFor(code domain.Code) int {
	switch code {
	case domain.CodeNotFound:
		return fiber.StatusNotFound
	case domain.CodeValidation, domain.CodeInsufficientFunds:
		return fiber.StatusBadRequest
	case domain.CodeConflict:
		return fiber.StatusConflict
	case domain.CodeForbidden:
		return fiber.StatusForbidden
	case domain.CodeExpired:
		return fiber.StatusGone
	default:
		return fiber.StatusInternalServerError
	}
}
