package health

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"papertrade-backend/internal/middleware"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// ErrorLogLimit is how many error log entries /health/errors returns.
const ErrorLogLimit = 50

var statsKeys = []string{
	middleware.KeyReqTotal,
	middleware.KeyReqErrors,
	middleware.KeyResTime,
	middleware.KeyResCount,
	middleware.KeyStartTime,
	middleware.KeyLastReq,
	middleware.KeyErrorLog,
}

// ResetStats clears the request counters and the error log and restarts the uptime clock.
func ResetStats(ctx context.Context, rdb *redis.Client) error {
	_, err := rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Del(ctx, statsKeys...)
		p.Set(ctx, middleware.KeyStartTime, strconv.FormatInt(time.Now().UnixMilli(), 10), 0)
		return nil
	})
	return err
}

// RecentErrors returns up to limit error log entries, newest first. Undecodable entries are skipped.
func RecentErrors(ctx context.Context, rdb *redis.Client, limit int) ([]middleware.ErrorEntry, error) {
	raw, err := rdb.LRange(ctx, middleware.KeyErrorLog, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}
	entries := make([]middleware.ErrorEntry, 0, len(raw))
	for _, s := range raw {
		var e middleware.ErrorEntry
		if err := json.Unmarshal([]byte(s), &e); err != nil {
			log.Debug().Err(err).Msg("skipping malformed error log entry")
			continue
		}
		entries = append(entries, e)
	}
	return entries, nil
}
