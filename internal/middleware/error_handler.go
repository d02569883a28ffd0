package middleware

import (
	"errors"

	"papertrade-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandler renders errors that escape handlers. A *fiber.Error keeps its code and message;
// anything else is logged and reported as a bare 500.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return response.Error(c, fe.Message, fe.Code, nil)
	}
	Logger(c).Error().Err(err).Str("path", c.Path()).Msg("unhandled error")
	return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
}
