package domain

import "github.com/shopspring/decimal"

// Quote is a point-in-time price for a ticker. Symbol is canonical upper case.
type Quote struct {
	Symbol string          `json:"symbol"`
	Name   string          `json:"name,omitempty"`
	Price  decimal.Decimal `json:"price"`
}
