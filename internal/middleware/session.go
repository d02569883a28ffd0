package middleware

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// SessionConfig controls the session cookie flags.
type SessionConfig struct {
	AllowCrossSiteDev bool
	IsProduction      bool
}

const (
	SessionCookieName  = "papertrade.sid"
	SessionRedisPrefix = "session:"
	SessionMaxAge      = 24 * time.Hour

	sessionLocal = "session"
)

// SessionUser is who the session belongs to.
type SessionUser struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
}

// session is the JSON document stored at session:<id>.
type session struct {
	ID   string       `json:"-"`
	User *SessionUser `json:"user,omitempty"`
}

func loadSession(ctx context.Context, rdb *redis.Client, id string) *session {
	s := &session{ID: id}
	if id == "" {
		return s
	}
	b, err := rdb.Get(ctx, SessionRedisPrefix+id).Bytes()
	switch {
	case err == redis.Nil:
	case err != nil:
		log.Warn().Err(err).Msg("session load failed")
	default:
		if err := json.Unmarshal(b, s); err != nil {
			log.Warn().Err(err).Msg("session decode failed")
		}
	}
	s.ID = id
	return s
}

// Session loads the session named by the cookie from Redis and, once the handler succeeded,
// writes it back with a fresh 24h TTL. Sessions without a user are never written.
func Session(rdb *redis.Client) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals(sessionLocal, loadSession(c.UserContext(), rdb, c.Cookies(SessionCookieName)))

		if err := c.Next(); err != nil {
			return err
		}

		s := current(c)
		if s.ID == "" || s.User == nil {
			return nil
		}
		b, err := json.Marshal(s)
		if err == nil {
			err = rdb.Set(context.Background(), SessionRedisPrefix+s.ID, b, SessionMaxAge).Err()
		}
		if err != nil {
			Logger(c).Warn().Err(err).Msg("session save failed")
		}
		return nil
	}
}

// current returns the request session; outside Session it is an empty, unsaved one.
func current(c *fiber.Ctx) *session {
	if s, ok := c.Locals(sessionLocal).(*session); ok {
		return s
	}
	s := &session{}
	c.Locals(sessionLocal, s)
	return s
}

// GetSessionID returns the current session ID (empty when the client has none).
func GetSessionID(c *fiber.Ctx) string {
	return current(c).ID
}

// SetSessionUser attaches user to the session. Call RegenerateSessionID first on login.
func SetSessionUser(c *fiber.Ctx, user SessionUser) {
	current(c).User = &user
}

// RegenerateSessionID moves the session to a new random ID; the handler sets the cookie.
func RegenerateSessionID(c *fiber.Ctx) string {
	s := current(c)
	s.ID = uuid.New().String()
	return s.ID
}

// DestroySession forgets the user and ID. Callers delete the Redis key and expire the cookie.
func DestroySession(c *fiber.Ctx) {
	c.Locals(sessionLocal, &session{})
}

// SessionCookieConfig returns the cookie options used when issuing or clearing the session cookie.
func SessionCookieConfig(cfg SessionConfig) fiber.Cookie {
	cookie := fiber.Cookie{
		Name:     SessionCookieName,
		Path:     "/",
		MaxAge:   int(SessionMaxAge.Seconds()),
		HTTPOnly: true,
		Secure:   cfg.IsProduction,
		SameSite: fiber.CookieSameSiteLaxMode,
	}
	if cfg.AllowCrossSiteDev {
		// browsers reject SameSite=None without Secure
		cookie.SameSite = fiber.CookieSameSiteNoneMode
		cookie.Secure = true
	}
	return cookie
}
