package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_IsKind(t *testing.T) {
	err := NewError(ErrNoHolding, "no shares found for AAPL")
	assert.True(t, errors.Is(err, ErrNoHolding))
	assert.False(t, errors.Is(err, ErrInsufficientShares))
	assert.Equal(t, "no shares found for AAPL", err.Error())
}

func TestMessage_Wrapped(t *testing.T) {
	err := fmt.Errorf("sell: %w", NewError(ErrQuote, "invalid ticker symbol"))
	msg, ok := Message(err)
	assert.True(t, ok)
	assert.Equal(t, "invalid ticker symbol", msg)

	_, ok = Message(errors.New("boom"))
	assert.False(t, ok)
}
