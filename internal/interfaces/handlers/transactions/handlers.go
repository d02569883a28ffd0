package transactions

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

// List GET /api/v1/transactions returns the user's trades, oldest first.
func (h *Handlers) List(c *fiber.Ctx) error {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	txs, err := h.Service.History(c.UserContext(), userID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Transactions", presenter.NewTransactions(txs), fiber.Map{"count": len(txs)})
}
