package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	traceIDHeader = "X-Trace-Id"
	traceIDLocal  = "trace_id"
	loggerLocal   = "logger"
)

// Tracing tags the request with a trace ID, echoed in X-Trace-Id. A caller-supplied UUID is kept
// so a client retry can be followed across requests. The request logger carries the ID.
func Tracing() fiber.Handler {
	return func(c *fiber.Ctx) error {
		traceID := c.Get(traceIDHeader)
		if _, err := uuid.Parse(traceID); err != nil {
			traceID = uuid.New().String()
		}
		l := log.With().Str("trace_id", traceID).Logger()
		c.Locals(traceIDLocal, traceID)
		c.Locals(loggerLocal, &l)
		c.Set(traceIDHeader, traceID)
		return c.Next()
	}
}

// GetTraceID returns the trace ID from context.
func GetTraceID(c *fiber.Ctx) string {
	if id, ok := c.Locals(traceIDLocal).(string); ok {
		return id
	}
	return ""
}

// Logger returns the request logger, or the global logger outside Tracing.
func Logger(c *fiber.Ctx) *zerolog.Logger {
	if l, ok := c.Locals(loggerLocal).(*zerolog.Logger); ok {
		return l
	}
	return &log.Logger
}

// RouteLogger logs each request on entry (debug) and exit (info) with its status and duration.
func RouteLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		l := Logger(c).With().Str("method", c.Method()).Str("path", c.Path()).Logger()
		start := time.Now()
		l.Debug().Msg("request started")

		err := c.Next()

		ev := l.Info()
		if err != nil {
			ev = l.Warn().Err(err)
		}
		ev.Int("status", c.Response().StatusCode()).
			Int64("ms", time.Since(start).Milliseconds()).
			Msg("request finished")
		return err
	}
}
