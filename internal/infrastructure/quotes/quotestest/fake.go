// Package quotestest provides an in-memory quote source for tests.
package quotestest

import (
	"context"
	"sync"

	"papertrade-backend/internal/domain"
	"papertrade-backend/internal/infrastructure/quotes"

	"github.com/shopspring/decimal"
)

// Fake serves fixed prices. Unknown symbols fail with quotes.ErrUnknownSymbol.
type Fake struct {
	mu     sync.Mutex
	prices map[string]decimal.Decimal
	calls  int
	err    error
}

func New() *Fake {
	return &Fake{prices: map[string]decimal.Decimal{}}
}

// Set fixes the price of symbol, e.g. Set("NFLX", "500.00").
func (f *Fake) Set(symbol, price string) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prices[symbol] = decimal.RequireFromString(price)
	return f
}

// Fail makes every later lookup return err; nil restores normal answers.
func (f *Fake) Fail(err error) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
	return f
}

// Calls returns how many lookups were made.
func (f *Fake) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *Fake) Lookup(ctx context.Context, symbol string) (domain.Quote, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return domain.Quote{}, f.err
	}
	p, ok := f.prices[symbol]
	if !ok {
		return domain.Quote{}, quotes.ErrUnknownSymbol
	}
	return domain.Quote{Symbol: symbol, Name: symbol + " Inc.", Price: p}, nil
}

func (f *Fake) Ping(ctx context.Context) error { return nil }
