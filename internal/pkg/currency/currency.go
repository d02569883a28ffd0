// Package currency formats fixed-point amounts for display.
package currency

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// USD formats d as US dollars, e.g. "$1,234.50". Amounts are rounded half away from zero to cents.
func USD(d decimal.Decimal) string {
	cents := d.Shift(2).Round(0).IntPart()
	return money.New(cents, money.USD).Display()
}
