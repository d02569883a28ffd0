package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Holding is a user's position in one symbol. A holding with zero shares is deleted, never stored.
type Holding struct {
	HoldingID  uuid.UUID       `gorm:"column:holding_id;type:uuid;primaryKey" json:"holding_id"`
	UserID     uuid.UUID       `gorm:"column:user_id;type:uuid;not null;uniqueIndex:idx_portfolio_user_symbol" json:"user_id"`
	Symbol     string          `gorm:"column:stock_symbol;not null;uniqueIndex:idx_portfolio_user_symbol" json:"stock_symbol"`
	Shares     int64           `gorm:"column:shares;not null" json:"shares"`
	SharePrice decimal.Decimal `gorm:"column:share_price;type:decimal(18,2);not null" json:"share_price"`
	Value      decimal.Decimal `gorm:"column:value;type:decimal(18,2);not null" json:"value"`
	CreatedAt  time.Time       `gorm:"column:created_at" json:"created_at"`
	UpdatedAt  time.Time       `gorm:"column:updated_at" json:"updated_at"`
}

func (Holding) TableName() string {
	return "portfolio"
}

// BeforeCreate: never insert zero UUID for primary key; generate random when not set.
func (h *Holding) BeforeCreate(tx *gorm.DB) error {
	if h.HoldingID == uuid.Nil {
		h.HoldingID = uuid.New()
	}
	return nil
}

// Reprice sets the share count and marks the whole position at price.
func (h *Holding) Reprice(shares int64, price decimal.Decimal) {
	h.Shares = shares
	h.SharePrice = price
	h.Value = price.Mul(decimal.NewFromInt(shares))
}
