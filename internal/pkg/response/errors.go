package response

import (
	"errors"

	"papertrade-backend/internal/domain"

	"github.com/gofiber/fiber/v2"
)

// ErrorLocal is the Locals key under which FromError keeps an unexpected error for the health
// marker's error log.
const ErrorLocal = "response_error"

// StatusFor maps a service error to its HTTP status.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrAuth):
		return fiber.StatusForbidden
	case errors.Is(err, domain.ErrUserNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrDuplicateUser),
		errors.Is(err, domain.ErrQuote),
		errors.Is(err, domain.ErrInsufficientFunds),
		errors.Is(err, domain.ErrInsufficientShares),
		errors.Is(err, domain.ErrNoHolding):
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}

// FromError sends err in the standard error format. Domain errors carry their own message;
// anything else becomes a generic 500 so infrastructure details never reach the client.
func FromError(c *fiber.Ctx, err error) error {
	status := StatusFor(err)
	if msg, ok := domain.Message(err); ok && status != fiber.StatusInternalServerError {
		return Error(c, msg, status, nil)
	}
	c.Locals(ErrorLocal, err)
	return Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
}
