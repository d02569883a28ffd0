package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// TxType is the direction of a trade.
type TxType string

const (
	TxBuy  TxType = "buy"
	TxSell TxType = "sell"
)

// Transaction is an append-only record of one completed buy or sell. Cost holds the total cost of a
// buy or the proceeds of a sell.
type Transaction struct {
	TxID      uuid.UUID       `gorm:"column:tx_id;type:uuid;primaryKey" json:"tx_id"`
	UserID    uuid.UUID       `gorm:"column:user_id;type:uuid;not null;index" json:"user_id"`
	Symbol    string          `gorm:"column:symbol;not null" json:"symbol"`
	Shares    int64           `gorm:"column:shares;not null" json:"shares"`
	Price     decimal.Decimal `gorm:"column:price;type:decimal(18,2);not null" json:"price"`
	Cost      decimal.Decimal `gorm:"column:cost;type:decimal(18,2);not null" json:"cost"`
	Type      TxType          `gorm:"column:type;type:varchar(4);not null" json:"type"`
	Quote     datatypes.JSON  `gorm:"column:quote" json:"quote,omitempty"`
	CreatedAt time.Time       `gorm:"column:created_at" json:"created_at"`
}

func (Transaction) TableName() string {
	return "transactions"
}

// BeforeCreate assigns a time-ordered id so history can be listed in insertion order.
func (t *Transaction) BeforeCreate(tx *gorm.DB) error {
	if t.TxID == uuid.Nil {
		id, err := uuid.NewV7()
		if err != nil {
			return err
		}
		t.TxID = id
	}
	return nil
}
