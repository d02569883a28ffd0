package auth

import (
	"context"

	"papertrade-backend/internal/application/account"
	"papertrade-backend/internal/domain"
	"papertrade-backend/internal/middleware"
	"papertrade-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const userSessionsPrefix = "user_sessions:"

// Handlers holds dependencies for auth endpoints.
type Handlers struct {
	Service *account.Service
	Rdb     *redis.Client
	Config  middleware.SessionConfig
}

// RegisterRequest accepts JSON or form bodies.
type RegisterRequest struct {
	Username     string `json:"username" form:"username"`
	Password     string `json:"password" form:"password"`
	Confirmation string `json:"confirmation" form:"confirmation"`
}

// LoginRequest accepts JSON or form bodies.
type LoginRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

// Register POST /api/v1/auth/register creates the account and logs it in.
func (h *Handlers) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "must provide username", fiber.StatusBadRequest, nil)
	}
	user, err := h.Service.Register(c.UserContext(), req.Username, req.Password, req.Confirmation)
	if err != nil {
		return response.FromError(c, err)
	}
	if err := h.startSession(c, user); err != nil {
		return response.FromError(c, err)
	}
	log.Info().Str("user_id", user.UserID.String()).Msg("user registered")
	return response.SuccessCreated(c, "Registered!", fiber.Map{"user": sessionView(user)}, nil)
}

// Login POST /api/v1/auth/login starts a new session for valid credentials.
func (h *Handlers) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "invalid username and/or password", fiber.StatusForbidden, nil)
	}
	user, err := h.Service.Authenticate(c.UserContext(), req.Username, req.Password)
	if err != nil {
		return response.FromError(c, err)
	}
	if err := h.startSession(c, user); err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Login successful", fiber.Map{"user": sessionView(user)}, nil)
}

// Me GET /api/v1/auth/me returns the current session user.
func (h *Handlers) Me(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		if middleware.GetSessionID(c) != "" {
			log.Debug().Str("path", "/auth/me").Msg("session id present but no user in session data")
		}
		return response.Error(c, "Not authenticated", fiber.StatusUnauthorized, nil)
	}
	return response.Success(c, "Authenticated", fiber.Map{"user": user}, nil)
}

// Logout DELETE /api/v1/auth/logout forgets the session in Redis and clears the cookie.
// With ?all=1 every session of the user is revoked, on any device.
func (h *Handlers) Logout(c *fiber.Ctx) error {
	sessionID := middleware.GetSessionID(c)
	ctx := context.Background()

	if user, ok := middleware.CurrentUser(c); ok {
		if c.QueryBool("all") {
			h.destroyUserSessions(ctx, user.UserID)
		} else if sessionID != "" {
			_ = h.Rdb.SRem(ctx, userSessionsPrefix+user.UserID, sessionID).Err()
		}
	}
	if sessionID != "" {
		_ = h.Rdb.Del(ctx, middleware.SessionRedisPrefix+sessionID).Err()
	}
	middleware.DestroySession(c)

	cookie := middleware.SessionCookieConfig(h.Config)
	cookie.MaxAge = -1
	c.Cookie(&cookie)

	return response.Success(c, "Logged out successfully", nil, nil)
}

// destroyUserSessions deletes every session:<sid> listed in user_sessions:<userID>, then the set.
func (h *Handlers) destroyUserSessions(ctx context.Context, userID string) {
	key := userSessionsPrefix + userID
	sessionIDs, err := h.Rdb.SMembers(ctx, key).Result()
	if err != nil {
		log.Warn().Err(err).Str("user_id", userID).Msg("list user sessions failed")
	}
	keys := make([]string, 0, len(sessionIDs)+1)
	for _, sid := range sessionIDs {
		keys = append(keys, middleware.SessionRedisPrefix+sid)
	}
	keys = append(keys, key)
	if err := h.Rdb.Del(ctx, keys...).Err(); err != nil {
		log.Warn().Err(err).Str("user_id", userID).Msg("revoke user sessions failed")
	}
}

// startSession replaces any previous session, as logging in always forgets the old user.
func (h *Handlers) startSession(c *fiber.Ctx, user *domain.User) error {
	if old := middleware.GetSessionID(c); old != "" {
		_ = h.Rdb.Del(context.Background(), middleware.SessionRedisPrefix+old).Err()
	}
	sessionID := middleware.RegenerateSessionID(c)
	middleware.SetSessionUser(c, middleware.SessionUser{
		UserID:   user.UserID.String(),
		Username: user.Username,
	})
	// the index lives as long as the newest session it lists
	ctx := context.Background()
	key := userSessionsPrefix + user.UserID.String()
	if _, err := h.Rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.SAdd(ctx, key, sessionID)
		p.Expire(ctx, key, middleware.SessionMaxAge)
		return nil
	}); err != nil {
		return err
	}

	cookie := middleware.SessionCookieConfig(h.Config)
	cookie.Value = sessionID
	c.Cookie(&cookie)
	return nil
}

func sessionView(u *domain.User) middleware.SessionUser {
	return middleware.SessionUser{UserID: u.UserID.String(), Username: u.Username}
}
