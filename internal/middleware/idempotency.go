package middleware

import (
	"strings"
	"time"

	"papertrade-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

const (
	IdempotencyHeader    = "Idempotency-Key"
	idempotencyPrefix    = "idempotency:"
	idempotencyTTL       = 24 * time.Hour
	maxIdempotencyKeyLen = 128
)

// Idempotency rejects a repeated submission carrying the same Idempotency-Key for the same user
// with 409. Requests without the header pass through. A key whose request failed is released so
// the client may retry it. Run behind RequireAuth.
func Idempotency(rdb *redis.Client) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := strings.TrimSpace(c.Get(IdempotencyHeader))
		if key == "" {
			return c.Next()
		}
		if len(key) > maxIdempotencyKeyLen {
			return response.Error(c, "invalid idempotency key", fiber.StatusBadRequest, nil)
		}
		user, ok := CurrentUser(c)
		if !ok {
			return response.Unauthorized(c, "Unauthorized")
		}

		ctx := c.UserContext()
		redisKey := idempotencyPrefix + user.UserID + ":" + key
		fresh, err := rdb.SetNX(ctx, redisKey, GetTraceID(c), idempotencyTTL).Result()
		if err != nil {
			// without Redis the request is served unguarded rather than refused
			Logger(c).Warn().Err(err).Msg("idempotency check unavailable")
			return c.Next()
		}
		if !fresh {
			return response.Error(c, "duplicate submission", fiber.StatusConflict, nil)
		}

		err = c.Next()
		if err != nil || c.Response().StatusCode() >= fiber.StatusBadRequest {
			if delErr := rdb.Del(ctx, redisKey).Err(); delErr != nil {
				Logger(c).Warn().Err(delErr).Str("key", redisKey).Msg("idempotency key release failed")
			}
		}
		return err
	}
}
