package currency

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestUSD(t *testing.T) {
	assert.Equal(t, "$10,000.00", USD(decimal.NewFromInt(10000)))
	assert.Equal(t, "$0.00", USD(decimal.Zero))
	assert.Equal(t, "$1,234.57", USD(decimal.RequireFromString("1234.567")))
	assert.Equal(t, "-$5.25", USD(decimal.RequireFromString("-5.25")))
}
