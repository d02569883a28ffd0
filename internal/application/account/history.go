package account

import (
	"context"

	"papertrade-backend/internal/domain"

	"github.com/google/uuid"
)

// History returns every trade of the user in the order it was recorded.
func (s *Service) History(ctx context.Context, userID uuid.UUID) ([]domain.Transaction, error) {
	txs := []domain.Transaction{}
	err := s.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Order("tx_id ASC").
		Find(&txs).Error
	return txs, err
}
