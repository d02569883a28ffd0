package trading

import (
	"context"
	"encoding/json"

	"papertrade-backend/internal/application/account"
	"papertrade-backend/internal/domain"
	"papertrade-backend/internal/interfaces/presenter"
	"papertrade-backend/internal/middleware"
	"papertrade-backend/internal/pkg/response"
	"papertrade-backend/internal/pkg/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type Handlers struct {
	Service *account.Service
}

// TradeRequest is the buy/sell body. Shares may arrive as a JSON number or string.
type TradeRequest struct {
	Symbol string      `json:"symbol" form:"symbol"`
	Shares json.Number `json:"shares" form:"shares"`
}

// Quote GET /api/v1/trading/quote?symbol=
func (h *Handlers) Quote(c *fiber.Ctx) error {
	q, err := h.Service.Quote(c.UserContext(), c.Query("symbol"))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Quoted", presenter.NewQuote(q), nil)
}

// Buy POST /api/v1/trading/buy
func (h *Handlers) Buy(c *fiber.Ctx) error {
	return h.trade(c, h.Service.Buy, "Bought!")
}

// Sell POST /api/v1/trading/sell
func (h *Handlers) Sell(c *fiber.Ctx) error {
	return h.trade(c, h.Service.Sell, "Sold!")
}

// Sellable GET /api/v1/trading/sellable lists the symbols the user holds.
func (h *Handlers) Sellable(c *fiber.Ctx) error {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	symbols, err := h.Service.HeldSymbols(c.UserContext(), userID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Sellable symbols", fiber.Map{"symbols": symbols}, nil)
}

type tradeFunc func(ctx context.Context, userID uuid.UUID, symbol string, shares int64) (*domain.Transaction, error)

func (h *Handlers) trade(c *fiber.Ctx, do tradeFunc, message string) error {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	var req TradeRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "invalid share count", fiber.StatusBadRequest, nil)
	}
	shares, err := validation.ParseShares(req.Shares.String())
	if err != nil {
		return response.FromError(c, err)
	}
	tx, err := do(c.UserContext(), userID, req.Symbol, shares)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, message, presenter.NewTransaction(tx), nil)
}
