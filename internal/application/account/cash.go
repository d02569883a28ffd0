package account

import (
	"context"

	"papertrade-backend/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DepositCash credits a positive whole amount to the user and returns the new balance.
func (s *Service) DepositCash(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) (decimal.Decimal, error) {
	if !amount.IsPositive() || !amount.IsInteger() {
		return decimal.Decimal{}, domain.NewError(domain.ErrValidation, "cash must be a positive integer")
	}

	var balance decimal.Decimal
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		u, err := lockUser(tx, userID)
		if err != nil {
			return err
		}
		if err := setCash(tx, u, u.Cash.Add(amount)); err != nil {
			return err
		}
		balance = u.Cash
		return nil
	})
	if err != nil {
		return decimal.Decimal{}, err
	}
	return balance, nil
}
