package account

import (
	"context"

	"papertrade-backend/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Snapshot is a read-only view of a user's account.
type Snapshot struct {
	Holdings   []domain.Holding `json:"holdings"`
	Cash       decimal.Decimal  `json:"cash"`
	TotalValue decimal.Decimal  `json:"total_value"`
}

// Portfolio returns the user's holdings (by symbol), cash, and cash plus the stored holding values.
func (s *Service) Portfolio(ctx context.Context, userID uuid.UUID) (*Snapshot, error) {
	db := s.DB.WithContext(ctx)
	u, err := findUser(db, userID)
	if err != nil {
		return nil, err
	}

	holdings := []domain.Holding{}
	if err := db.Where("user_id = ?", userID).Order("stock_symbol ASC").Find(&holdings).Error; err != nil {
		return nil, err
	}

	total := u.Cash
	for _, h := range holdings {
		total = total.Add(h.Value)
	}
	return &Snapshot{Holdings: holdings, Cash: u.Cash, TotalValue: total}, nil
}

// HeldSymbols lists the symbols the user can currently sell.
func (s *Service) HeldSymbols(ctx context.Context, userID uuid.UUID) ([]string, error) {
	symbols := []string{}
	err := s.DB.WithContext(ctx).Model(&domain.Holding{}).
		Where("user_id = ?", userID).
		Order("stock_symbol ASC").
		Pluck("stock_symbol", &symbols).Error
	return symbols, err
}
