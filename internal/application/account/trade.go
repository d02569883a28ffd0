package account

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"papertrade-backend/internal/domain"
	"papertrade-backend/internal/pkg/validation"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const invalidSymbol = "invalid ticker symbol"

// Quote looks up the current price of symbol. The answer may come from the quote cache.
func (s *Service) Quote(ctx context.Context, symbol string) (domain.Quote, error) {
	return resolve(ctx, s.lookups(), symbol)
}

// resolve collapses every lookup failure into a single quote error.
func resolve(ctx context.Context, src QuoteSource, symbol string) (domain.Quote, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if !validation.IsValidSymbol(symbol) {
		return domain.Quote{}, domain.NewError(domain.ErrQuote, invalidSymbol)
	}
	q, err := src.Lookup(ctx, symbol)
	if err != nil {
		log.Warn().Err(err).Str("symbol", symbol).Msg("quote lookup failed")
		return domain.Quote{}, domain.NewError(domain.ErrQuote, invalidSymbol)
	}
	if !q.Price.IsPositive() {
		return domain.Quote{}, domain.NewError(domain.ErrQuote, invalidSymbol)
	}
	if q.Symbol == "" {
		q.Symbol = symbol
	}
	return q, nil
}

// Buy purchases shares of symbol at the current price.
func (s *Service) Buy(ctx context.Context, userID uuid.UUID, symbol string, shares int64) (*domain.Transaction, error) {
	if shares < 1 {
		return nil, domain.NewError(domain.ErrValidation, "share count must be positive")
	}
	// priced before the transaction opens so no row lock is held across the network
	q, err := resolve(ctx, s.Quotes, symbol)
	if err != nil {
		return nil, err
	}
	cost := q.Price.Mul(decimal.NewFromInt(shares))

	var record *domain.Transaction
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		u, err := lockUser(tx, userID)
		if err != nil {
			return err
		}
		if cost.GreaterThan(u.Cash) {
			return domain.NewError(domain.ErrInsufficientFunds, fmt.Sprintf(
				"cash available: %s not enough to purchase stock buy of %s", u.Cash.StringFixed(2), cost.StringFixed(2)))
		}
		if err := setCash(tx, u, u.Cash.Sub(cost)); err != nil {
			return err
		}

		record, err = appendTransaction(tx, userID, q, shares, cost, domain.TxBuy)
		if err != nil {
			return err
		}

		h, err := findHolding(tx, userID, q.Symbol)
		if err != nil {
			return err
		}
		if h == nil {
			h = &domain.Holding{UserID: userID, Symbol: q.Symbol}
			h.Reprice(shares, q.Price)
			return tx.Create(h).Error
		}
		h.Reprice(h.Shares+shares, q.Price)
		return tx.Save(h).Error
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("user_id", userID.String()).
		Str("symbol", q.Symbol).
		Int64("shares", shares).
		Str("cost", cost.StringFixed(2)).
		Msg("buy executed")
	return record, nil
}

// Sell sells shares of symbol at the current price.
func (s *Service) Sell(ctx context.Context, userID uuid.UUID, symbol string, shares int64) (*domain.Transaction, error) {
	if shares < 1 {
		return nil, domain.NewError(domain.ErrValidation, "share count must be positive")
	}
	q, err := resolve(ctx, s.Quotes, symbol)
	if err != nil {
		return nil, err
	}
	proceeds := q.Price.Mul(decimal.NewFromInt(shares))

	var record *domain.Transaction
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		u, err := lockUser(tx, userID)
		if err != nil {
			return err
		}
		h, err := findHolding(tx, userID, q.Symbol)
		if err != nil {
			return err
		}
		if h == nil {
			return domain.NewError(domain.ErrNoHolding, fmt.Sprintf("no shares found for %s", q.Symbol))
		}
		if shares > h.Shares {
			return domain.NewError(domain.ErrInsufficientShares, fmt.Sprintf("not enough shares of %s", q.Symbol))
		}

		if err := setCash(tx, u, u.Cash.Add(proceeds)); err != nil {
			return err
		}
		record, err = appendTransaction(tx, userID, q, shares, proceeds, domain.TxSell)
		if err != nil {
			return err
		}

		if remaining := h.Shares - shares; remaining > 0 {
			h.Reprice(remaining, q.Price)
			return tx.Save(h).Error
		}
		return tx.Delete(h).Error
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("user_id", userID.String()).
		Str("symbol", q.Symbol).
		Int64("shares", shares).
		Str("proceeds", proceeds.StringFixed(2)).
		Msg("sell executed")
	return record, nil
}

// findHolding returns the locked holding row, or nil when the user holds none of symbol.
func findHolding(tx *gorm.DB, userID uuid.UUID, symbol string) (*domain.Holding, error) {
	var h domain.Holding
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ? AND stock_symbol = ?", userID, symbol).
		First(&h).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &h, nil
}

func appendTransaction(tx *gorm.DB, userID uuid.UUID, q domain.Quote, shares int64, cost decimal.Decimal, kind domain.TxType) (*domain.Transaction, error) {
	snapshot, err := json.Marshal(q)
	if err != nil {
		return nil, err
	}
	record := &domain.Transaction{
		UserID: userID,
		Symbol: q.Symbol,
		Shares: shares,
		Price:  q.Price,
		Cost:   cost,
		Type:   kind,
		Quote:  datatypes.JSON(snapshot),
	}
	if err := tx.Create(record).Error; err != nil {
		return nil, err
	}
	return record, nil
}
