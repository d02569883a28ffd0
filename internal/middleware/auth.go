package middleware

import (
	"papertrade-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// RequireAuth rejects requests without a logged-in session user with 401.
func RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := CurrentUser(c); !ok {
			return response.Unauthorized(c, "Unauthorized")
		}
		return c.Next()
	}
}

// CurrentUser returns the session user. ok is false when nobody is logged in or the stored
// user id is not a UUID.
func CurrentUser(c *fiber.Ctx) (SessionUser, bool) {
	u := current(c).User
	if u == nil {
		return SessionUser{}, false
	}
	if _, err := uuid.Parse(u.UserID); err != nil {
		return SessionUser{}, false
	}
	return *u, true
}

// CurrentUserID returns the logged-in user's id. Use behind RequireAuth.
func CurrentUserID(c *fiber.Ctx) (uuid.UUID, bool) {
	u, ok := CurrentUser(c)
	if !ok {
		return uuid.Nil, false
	}
	return uuid.MustParse(u.UserID), true
}
