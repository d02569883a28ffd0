package quotes

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"papertrade-backend/internal/config"
	"papertrade-backend/internal/domain"

	"github.com/PaesslerAG/jsonpath"
	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"
)

const (
	quotePath  = "/quote"
	maxRetries = 3
)

// ErrUnknownSymbol is returned when the feed has no usable price for a symbol.
var ErrUnknownSymbol = errors.New("unknown symbol")

// Source looks up the current price of a ticker.
type Source interface {
	Lookup(ctx context.Context, symbol string) (domain.Quote, error)
}

// Client is a rate-limited HTTP client for the external quote feed. Response fields are
// located with JSONPath so the provider can be changed through configuration.
type Client struct {
	client     *resty.Client
	apiKey     string
	symbolPath string
	pricePath  string
	namePath   string
	limiter    *rate.Limiter
	backoff    time.Duration
}

var _ Source = (*Client)(nil)

// NewClient creates a quote feed client. A RateLimit <= 0 disables client-side limiting.
func NewClient(cfg config.QuoteConfig) *Client {
	client := resty.New().SetBaseURL(cfg.BaseURL)
	if cfg.Timeout > 0 {
		client.SetTimeout(cfg.Timeout)
	}

	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}
	burst := cfg.RateBurst
	if burst < 1 {
		burst = 1
	}

	return &Client{
		client:     client,
		apiKey:     cfg.APIKey,
		symbolPath: cfg.SymbolPath,
		pricePath:  cfg.PricePath,
		namePath:   cfg.NamePath,
		limiter:    rate.NewLimiter(limit, burst),
		backoff:    250 * time.Millisecond,
	}
}

// Lookup fetches the current quote for symbol.
func (c *Client) Lookup(ctx context.Context, symbol string) (domain.Quote, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))

	req := c.client.R().SetQueryParam("symbol", symbol)
	if c.apiKey != "" {
		req.SetQueryParam("token", c.apiKey)
	}
	resp, err := c.doRequest(ctx, req)
	if err != nil {
		return domain.Quote{}, fmt.Errorf("lookup %s: %w", symbol, err)
	}
	q, err := c.parse(resp.Body())
	if err != nil {
		return domain.Quote{}, fmt.Errorf("lookup %s: %w", symbol, err)
	}
	if q.Symbol == "" {
		q.Symbol = symbol
	}
	return q, nil
}

// Ping reports whether the feed host answers HTTP at all.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.client.R().SetContext(ctx).Get("/")
	return err
}

// doRequest executes req with rate limiting, retrying throttling, server and transport errors.
func (c *Client) doRequest(ctx context.Context, req *resty.Request) (*resty.Response, error) {
	var lastErr error
	for i := 0; i < maxRetries; i++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter wait failed: %w", err)
		}

		resp, err := req.SetContext(ctx).Get(quotePath)
		if err == nil && !resp.IsError() {
			return resp, nil
		}

		retryAfter := c.backoff * time.Duration(i+1)
		if err != nil {
			lastErr = err
		} else {
			status := resp.StatusCode()
			switch {
			case status == http.StatusNotFound:
				return nil, ErrUnknownSymbol
			case status == http.StatusTooManyRequests || status == http.StatusTeapot:
				if seconds, convErr := strconv.Atoi(resp.Header().Get("Retry-After")); convErr == nil {
					retryAfter = time.Duration(seconds) * time.Second
				}
			case status < 500:
				return nil, fmt.Errorf("request failed with status %s", resp.Status())
			}
			lastErr = fmt.Errorf("request failed with status %s", resp.Status())
		}

		if i == maxRetries-1 {
			break
		}
		log.Warn().Err(lastErr).Int("attempt", i+1).Dur("retry_after", retryAfter).Msg("quote feed request failed, retrying")
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(retryAfter):
		}
	}
	return nil, fmt.Errorf("request failed after %d attempts: %w", maxRetries, lastErr)
}

func (c *Client) parse(body []byte) (domain.Quote, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var doc interface{}
	if err := dec.Decode(&doc); err != nil || doc == nil {
		return domain.Quote{}, ErrUnknownSymbol
	}

	raw, err := jsonpath.Get(c.pricePath, doc)
	if err != nil {
		return domain.Quote{}, ErrUnknownSymbol
	}
	price, ok := toDecimal(first(raw))
	if !ok || !price.IsPositive() {
		return domain.Quote{}, ErrUnknownSymbol
	}

	q := domain.Quote{Price: price.Round(2)}
	if v, err := jsonpath.Get(c.symbolPath, doc); err == nil {
		if s, ok := first(v).(string); ok {
			q.Symbol = strings.ToUpper(strings.TrimSpace(s))
		}
	}
	if c.namePath != "" {
		if v, err := jsonpath.Get(c.namePath, doc); err == nil {
			q.Name, _ = first(v).(string)
		}
	}
	return q, nil
}

// first unwraps single-element results; jsonpath returns a list for wildcard and filter paths.
func first(v interface{}) interface{} {
	if list, ok := v.([]interface{}); ok {
		if len(list) == 0 {
			return nil
		}
		return list[0]
	}
	return v
}

func toDecimal(v interface{}) (decimal.Decimal, bool) {
	switch n := v.(type) {
	case json.Number:
		d, err := decimal.NewFromString(n.String())
		return d, err == nil
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(n))
		return d, err == nil
	case float64:
		return decimal.NewFromFloat(n), true
	}
	return decimal.Decimal{}, false
}
