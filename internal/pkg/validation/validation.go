package validation

import (
	"regexp"
	"strconv"
	"strings"

	"papertrade-backend/internal/domain"

	"github.com/shopspring/decimal"
)

// Tickers: letters, optionally with a class suffix such as BRK.B or BF-B.
var symbolRe = regexp.MustCompile(`^[A-Za-z]{1,5}([.\-][A-Za-z]{1,2})?$`)

// IsValidSymbol reports whether s is shaped like a ticker symbol.
func IsValidSymbol(s string) bool {
	return symbolRe.MatchString(strings.TrimSpace(s))
}

// ParseShares parses a share count from form or JSON input.
func ParseShares(s string) (int64, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, domain.NewError(domain.ErrValidation, "invalid share count")
	}
	if n < 1 {
		return 0, domain.NewError(domain.ErrValidation, "share count must be positive")
	}
	return n, nil
}

// ParseCash parses a whole-dollar deposit amount.
func ParseCash(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Decimal{}, domain.NewError(domain.ErrValidation, "no input for cash")
	}
	d, err := decimal.NewFromString(s)
	if err != nil || !d.IsInteger() {
		return decimal.Decimal{}, domain.NewError(domain.ErrValidation, "cash must be an integer")
	}
	if !d.IsPositive() {
		return decimal.Decimal{}, domain.NewError(domain.ErrValidation, "cash must be positive")
	}
	return d, nil
}
