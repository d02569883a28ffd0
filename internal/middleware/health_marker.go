package middleware

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"papertrade-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// Redis keys for the request counters read by the health service and cleared by /reset.
const (
	KeyReqTotal  = "health:global:req_total"
	KeyReqErrors = "health:global:req_errors"
	KeyResTime   = "health:global:res_time_total"
	KeyResCount  = "health:global:res_count"
	KeyStartTime = "health:global:start_time"
	KeyLastReq   = "health:global:last_request"
	KeyErrorLog  = "health:global:error_log"

	errorLogSize = 50
)

// HealthMarker records request stats in Redis (skip /, /health*, favicon). Server errors are
// also pushed onto a capped error log.
func HealthMarker(rdb *redis.Client) fiber.Handler {
	return func(c *fiber.Ctx) error {
		path := c.Path()
		if path == "/" || strings.HasPrefix(path, "/health") || strings.HasPrefix(path, "/favicon") {
			return c.Next()
		}

		start := time.Now()
		lastReq, _ := json.Marshal(map[string]interface{}{
			"time":   start,
			"ip":     c.IP(),
			"path":   c.OriginalURL(),
			"method": c.Method(),
		})
		ctx := context.Background()
		_, _ = rdb.Pipelined(ctx, func(p redis.Pipeliner) error {
			p.Set(ctx, KeyLastReq, lastReq, 0)
			p.Incr(ctx, KeyReqTotal)
			return nil
		})

		err := c.Next()

		status, failed := serverFailure(c, err)
		_, _ = rdb.Pipelined(ctx, func(p redis.Pipeliner) error {
			p.Incr(ctx, KeyResCount)
			p.IncrByFloat(ctx, KeyResTime, float64(time.Since(start).Milliseconds()))
			if failed {
				p.Incr(ctx, KeyReqErrors)
			}
			return nil
		})
		if failed {
			logServerError(ctx, rdb, c, status, err)
		}
		return err
	}
}

// ErrorEntry is one record of the capped error log at KeyErrorLog, newest first.
type ErrorEntry struct {
	Time    time.Time `json:"time"`
	Method  string    `json:"method"`
	Path    string    `json:"path"`
	Status  int       `json:"status"`
	Message string    `json:"message"`
	TraceID string    `json:"trace_id"`
}

// serverFailure reports whether the request ended in a 5xx. A returned error has not been
// rendered yet, so its status comes from the error itself.
func serverFailure(c *fiber.Ctx, err error) (int, bool) {
	if err != nil {
		if e, ok := err.(*fiber.Error); ok {
			return e.Code, e.Code >= fiber.StatusInternalServerError
		}
		return fiber.StatusInternalServerError, true
	}
	status := c.Response().StatusCode()
	return status, status >= fiber.StatusInternalServerError
}

func logServerError(ctx context.Context, rdb *redis.Client, c *fiber.Ctx, status int, err error) {
	if err == nil {
		err, _ = c.Locals(response.ErrorLocal).(error)
	}
	message := "Internal Server Error"
	if err != nil {
		message = err.Error()
	}
	entry, _ := json.Marshal(ErrorEntry{
		Time:    time.Now(),
		Method:  c.Method(),
		Path:    c.OriginalURL(),
		Status:  status,
		Message: message,
		TraceID: GetTraceID(c),
	})
	pipe := rdb.TxPipeline()
	pipe.LPush(ctx, KeyErrorLog, entry)
	pipe.LTrim(ctx, KeyErrorLog, 0, errorLogSize-1)
	_, _ = pipe.Exec(ctx)
}
