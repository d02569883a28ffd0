package middleware

import "github.com/gofiber/fiber/v2"

// NoCache marks every response as not cacheable so balances and quotes are never stale.
func NoCache() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderCacheControl, "no-cache, no-store, must-revalidate")
		c.Set(fiber.HeaderExpires, "0")
		c.Set(fiber.HeaderPragma, "no-cache")
		return c.Next()
	}
}
