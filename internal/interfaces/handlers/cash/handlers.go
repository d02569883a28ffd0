package cash

import (
	"encoding/json"

	"papertrade-backend/internal/application/account"
	"papertrade-backend/internal/interfaces/presenter"
	"papertrade-backend/internal/middleware"
	"papertrade-backend/internal/pkg/response"
	"papertrade-backend/internal/pkg/validation"

	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Service *account.Service
}

// DepositRequest carries a whole-dollar amount as a JSON number, JSON string or form field.
type DepositRequest struct {
	Cash json.Number `json:"cash" form:"cash"`
}

// Deposit POST /api/v1/cash/deposit
func (h *Handlers) Deposit(c *fiber.Ctx) error {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	var req DepositRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "cash must be an integer", fiber.StatusBadRequest, nil)
	}
	amount, err := validation.ParseCash(req.Cash.String())
	if err != nil {
		return response.FromError(c, err)
	}
	balance, err := h.Service.DepositCash(c.UserContext(), userID, amount)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Cash added!", fiber.Map{"cash": presenter.NewMoney(balance)}, nil)
}
