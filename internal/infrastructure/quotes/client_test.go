package quotes

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"papertrade-backend/internal/config"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestServer creates a test server and a Client configured to use it.
func setupTestServer(t *testing.T, handler http.Handler) *Client {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	c := NewClient(config.QuoteConfig{
		BaseURL:    server.URL,
		APIKey:     "test-key",
		SymbolPath: "$.symbol",
		PricePath:  "$.latestPrice",
		NamePath:   "$.companyName",
		Timeout:    2 * time.Second,
	})
	c.backoff = time.Millisecond
	return c
}

func TestLookup(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		c := setupTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/quote", r.URL.Path)
			assert.Equal(t, "NFLX", r.URL.Query().Get("symbol"))
			assert.Equal(t, "test-key", r.URL.Query().Get("token"))
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"symbol":"nflx","companyName":"Netflix Inc.","latestPrice":100.257}`))
		}))

		q, err := c.Lookup(context.Background(), " nflx ")
		require.NoError(t, err)
		assert.Equal(t, "NFLX", q.Symbol)
		assert.Equal(t, "Netflix Inc.", q.Name)
		assert.True(t, q.Price.Equal(decimal.RequireFromString("100.26")), q.Price.String())
	})

	t.Run("PriceAsString", func(t *testing.T) {
		c := setupTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"latestPrice":"42.10"}`))
		}))

		q, err := c.Lookup(context.Background(), "abc")
		require.NoError(t, err)
		assert.Equal(t, "ABC", q.Symbol)
		assert.True(t, q.Price.Equal(decimal.RequireFromString("42.10")))
	})

	t.Run("NotFound", func(t *testing.T) {
		c := setupTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))

		_, err := c.Lookup(context.Background(), "ZZZZ")
		assert.True(t, errors.Is(err, ErrUnknownSymbol))
	})

	t.Run("NullBody", func(t *testing.T) {
		c := setupTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`null`))
		}))

		_, err := c.Lookup(context.Background(), "ZZZZ")
		assert.True(t, errors.Is(err, ErrUnknownSymbol))
	})

	t.Run("NonPositivePrice", func(t *testing.T) {
		c := setupTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"symbol":"X","latestPrice":0}`))
		}))

		_, err := c.Lookup(context.Background(), "X")
		assert.True(t, errors.Is(err, ErrUnknownSymbol))
	})

	t.Run("RetriesServerErrors", func(t *testing.T) {
		var calls int32
		c := setupTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if atomic.AddInt32(&calls, 1) < 3 {
				w.WriteHeader(http.StatusBadGateway)
				return
			}
			_, _ = w.Write([]byte(`{"symbol":"AAPL","latestPrice":190}`))
		}))

		q, err := c.Lookup(context.Background(), "AAPL")
		require.NoError(t, err)
		assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
		assert.True(t, q.Price.Equal(decimal.NewFromInt(190)))
	})

	t.Run("GivesUpAfterMaxRetries", func(t *testing.T) {
		var calls int32
		c := setupTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&calls, 1)
			w.WriteHeader(http.StatusInternalServerError)
		}))

		_, err := c.Lookup(context.Background(), "AAPL")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "request failed")
		assert.Equal(t, int32(maxRetries), atomic.LoadInt32(&calls))
	})

	t.Run("ClientErrorNotRetried", func(t *testing.T) {
		var calls int32
		c := setupTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&calls, 1)
			w.WriteHeader(http.StatusUnauthorized)
		}))

		_, err := c.Lookup(context.Background(), "AAPL")
		require.Error(t, err)
		assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	})
}

func TestPing(t *testing.T) {
	c := setupTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	assert.NoError(t, c.Ping(context.Background()))
}
