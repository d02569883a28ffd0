package portfolio

import (
	"papertrade-backend/internal/application/account"
	"papertrade-backend/internal/interfaces/presenter"
	"papertrade-backend/internal/middleware"
	"papertrade-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Service *account.Service
}

// Get GET /api/v1/portfolio
func (h *Handlers) Get(c *fiber.Ctx) error {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	snap, err := h.Service.Portfolio(c.UserContext(), userID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Portfolio", presenter.NewPortfolio(snap), nil)
}
