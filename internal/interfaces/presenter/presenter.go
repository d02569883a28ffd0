// Package presenter shapes domain values for JSON responses. Amounts are sent both as fixed
// two-decimal strings and as USD display strings.
package presenter

import (
	"time"

	"papertrade-backend/internal/application/account"
	"papertrade-backend/internal/domain"
	"papertrade-backend/internal/pkg/currency"

	"github.com/shopspring/decimal"
)

type Money struct {
	Amount  string `json:"amount"`
	Display string `json:"display"`
}

func NewMoney(d decimal.Decimal) Money {
	return Money{Amount: d.StringFixed(2), Display: currency.USD(d)}
}

type Quote struct {
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
	Price  Money  `json:"price"`
}

func NewQuote(q domain.Quote) Quote {
	return Quote{Symbol: q.Symbol, Name: q.Name, Price: NewMoney(q.Price)}
}

type Holding struct {
	Symbol     string `json:"symbol"`
	Shares     int64  `json:"shares"`
	SharePrice Money  `json:"share_price"`
	Value      Money  `json:"value"`
}

type Portfolio struct {
	Holdings   []Holding `json:"holdings"`
	Cash       Money     `json:"cash"`
	TotalValue Money     `json:"total_value"`
}

func NewPortfolio(s *account.Snapshot) Portfolio {
	out := Portfolio{
		Holdings:   make([]Holding, 0, len(s.Holdings)),
		Cash:       NewMoney(s.Cash),
		TotalValue: NewMoney(s.TotalValue),
	}
	for _, h := range s.Holdings {
		out.Holdings = append(out.Holdings, Holding{
			Symbol:     h.Symbol,
			Shares:     h.Shares,
			SharePrice: NewMoney(h.SharePrice),
			Value:      NewMoney(h.Value),
		})
	}
	return out
}

type Transaction struct {
	TxID      string    `json:"tx_id"`
	Type      string    `json:"type"`
	Symbol    string    `json:"symbol"`
	Shares    int64     `json:"shares"`
	Price     Money     `json:"price"`
	Cost      Money     `json:"cost"`
	CreatedAt time.Time `json:"created_at"`
}

func NewTransaction(t *domain.Transaction) Transaction {
	return Transaction{
		TxID:      t.TxID.String(),
		Type:      string(t.Type),
		Symbol:    t.Symbol,
		Shares:    t.Shares,
		Price:     NewMoney(t.Price),
		Cost:      NewMoney(t.Cost),
		CreatedAt: t.CreatedAt,
	}
}

func NewTransactions(txs []domain.Transaction) []Transaction {
	out := make([]Transaction, 0, len(txs))
	for i := range txs {
		out = append(out, NewTransaction(&txs[i]))
	}
	return out
}
