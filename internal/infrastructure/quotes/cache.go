package quotes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"papertrade-backend/internal/domain"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Cache serves recent quotes from Redis and falls back to Source. Redis failures are logged and
// never surfaced.
type Cache struct {
	Rdb    *redis.Client
	TTL    time.Duration
	Source Source
}

var _ Source = (*Cache)(nil)

// CacheKey is the Redis key holding the cached quote for symbol.
func CacheKey(symbol string) string {
	return fmt.Sprintf("stock:%s:price", strings.ToUpper(strings.TrimSpace(symbol)))
}

func (c *Cache) Lookup(ctx context.Context, symbol string) (domain.Quote, error) {
	key := CacheKey(symbol)

	b, err := c.Rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var q domain.Quote
		if jsonErr := json.Unmarshal(b, &q); jsonErr == nil {
			return q, nil
		}
		log.Warn().Str("key", key).Msg("discarding unreadable cached quote")
	case !errors.Is(err, redis.Nil):
		log.Warn().Err(err).Str("key", key).Msg("quote cache read failed")
	}

	q, err := c.Source.Lookup(ctx, symbol)
	if err != nil {
		return domain.Quote{}, err
	}
	if b, err := json.Marshal(q); err == nil {
		if err := c.Rdb.Set(ctx, key, b, c.TTL).Err(); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("quote cache write failed")
		}
	}
	return q, nil
}
