package middleware

import (
	"strings"

	"papertrade-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// CORSConfig selects which browser origins may call the API with credentials.
type CORSConfig struct {
	AllowedSuffix string // e.g. ".papertrade.dev"
	DevPassword   string // sent as the dev-password header by tools on other origins
}

const (
	corsAllowHeaders = "Content-Type, dev-password, " + IdempotencyHeader
	corsAllowMethods = "GET, POST, DELETE, OPTIONS"
)

// CORS answers preflights and tags allowed responses. Requests without an Origin header pass
// through untouched; other origins are refused with 403.
func CORS(cfg CORSConfig) fiber.Handler {
	suffix := strings.ToLower(cfg.AllowedSuffix)
	return func(c *fiber.Ctx) error {
		origin := c.Get(fiber.HeaderOrigin)
		if origin == "" {
			return c.Next()
		}
		preflight := c.Method() == fiber.MethodOptions

		switch {
		case preflight && isLocalOrigin(origin),
			suffix != "" && strings.HasSuffix(strings.ToLower(origin), suffix),
			cfg.DevPassword != "" && c.Get("dev-password") == cfg.DevPassword:
		default:
			return response.Error(c, "Not allowed by CORS", fiber.StatusForbidden, nil)
		}

		c.Set(fiber.HeaderAccessControlAllowOrigin, origin)
		c.Set(fiber.HeaderAccessControlAllowCredentials, "true")
		c.Set(fiber.HeaderAccessControlAllowHeaders, corsAllowHeaders)
		c.Set(fiber.HeaderAccessControlAllowMethods, corsAllowMethods)
		c.Set(fiber.HeaderAccessControlExposeHeaders, traceIDHeader)
		if preflight {
			return c.SendStatus(fiber.StatusNoContent)
		}
		return c.Next()
	}
}

func isLocalOrigin(origin string) bool {
	return strings.HasPrefix(origin, "http://localhost:") || strings.HasPrefix(origin, "http://127.0.0.1:")
}
