package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"papertrade-backend/internal/application/account"
	"papertrade-backend/internal/infrastructure/database"
	"papertrade-backend/internal/infrastructure/quotes/quotestest"
	"papertrade-backend/internal/middleware"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupAuth(t *testing.T) (*fiber.App, *account.Service, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		rdb.Close()
		mr.Close()
	})
	db, err := database.OpenSQLite(":memory:")
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))

	svc := &account.Service{DB: db, Quotes: quotestest.New(), InitialCash: decimal.NewFromInt(10000)}
	h := &Handlers{Service: svc, Rdb: rdb}

	app := fiber.New()
	app.Use(middleware.Session(rdb))
	app.Post("/register", h.Register)
	app.Post("/login", h.Login)
	app.Get("/me", h.Me)
	app.Delete("/logout", h.Logout)
	return app, svc, mr
}

func postJSON(t *testing.T, app *fiber.App, path string, body interface{}) *http.Response {
	b, _ := json.Marshal(body)
	req := httptest.NewRequest("POST", path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func sessionCookie(resp *http.Response) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == middleware.SessionCookieName {
			return c
		}
	}
	return nil
}

func errorMessage(t *testing.T, resp *http.Response) string {
	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "error", out["status"])
	return out["error"].(map[string]interface{})["message"].(string)
}

func TestRegister_CreatesUserAndSession(t *testing.T) {
	app, svc, mr := setupAuth(t)

	resp := postJSON(t, app, "/register", map[string]string{"username": "alice", "password": "pw", "confirmation": "pw"})
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
	cookie := sessionCookie(resp)
	require.NotNil(t, cookie)
	assert.True(t, mr.Exists(middleware.SessionRedisPrefix+cookie.Value))

	u, err := svc.UserByUsername(context.Background(), "alice")
	require.NoError(t, err)
	assert.True(t, u.Cash.Equal(decimal.NewFromInt(10000)))

	req := httptest.NewRequest("GET", "/me", nil)
	req.AddCookie(cookie)
	me, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, me.StatusCode)
	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(me.Body).Decode(&out))
	user := out["data"].(map[string]interface{})["user"].(map[string]interface{})
	assert.Equal(t, "alice", user["username"])
	assert.Equal(t, u.UserID.String(), user["user_id"])
}

func TestRegister_Failures(t *testing.T) {
	app, _, _ := setupAuth(t)

	resp := postJSON(t, app, "/register", map[string]string{"username": "bob", "password": "a", "confirmation": "b"})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "passwords do not match", errorMessage(t, resp))
	assert.Nil(t, sessionCookie(resp))

	resp = postJSON(t, app, "/register", map[string]string{"username": "bob", "password": "a", "confirmation": "a"})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	resp = postJSON(t, app, "/register", map[string]string{"username": "bob", "password": "a", "confirmation": "a"})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "username already exists", errorMessage(t, resp))
}

func TestRegister_FormBody(t *testing.T) {
	app, _, _ := setupAuth(t)
	form := url.Values{"username": {"carol"}, "password": {"pw"}, "confirmation": {"pw"}}
	req := httptest.NewRequest("POST", "/register", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
}

func TestLogin(t *testing.T) {
	app, svc, mr := setupAuth(t)
	_, err := svc.Register(context.Background(), "alice", "pw", "pw")
	require.NoError(t, err)

	resp := postJSON(t, app, "/login", map[string]string{"username": "alice", "password": "nope"})
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "invalid username and/or password", errorMessage(t, resp))

	resp = postJSON(t, app, "/login", map[string]string{"username": "ghost", "password": "pw"})
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp = postJSON(t, app, "/login", map[string]string{"username": "alice", "password": "pw"})
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	cookie := sessionCookie(resp)
	require.NotNil(t, cookie)
	assert.True(t, mr.Exists(middleware.SessionRedisPrefix+cookie.Value))
}

func TestMe_Unauthenticated(t *testing.T) {
	app, _, _ := setupAuth(t)
	resp, err := app.Test(httptest.NewRequest("GET", "/me", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestLogout_DestroysSession(t *testing.T) {
	app, _, mr := setupAuth(t)
	resp := postJSON(t, app, "/register", map[string]string{"username": "alice", "password": "pw", "confirmation": "pw"})
	cookie := sessionCookie(resp)
	require.NotNil(t, cookie)

	req := httptest.NewRequest("DELETE", "/logout", nil)
	req.AddCookie(cookie)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.False(t, mr.Exists(middleware.SessionRedisPrefix+cookie.Value))

	req = httptest.NewRequest("GET", "/me", nil)
	req.AddCookie(cookie)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestLogout_AllRevokesEverySession(t *testing.T) {
	app, svc, mr := setupAuth(t)
	resp := postJSON(t, app, "/register", map[string]string{"username": "alice", "password": "pw", "confirmation": "pw"})
	laptop := sessionCookie(resp)
	require.NotNil(t, laptop)
	phone := sessionCookie(postJSON(t, app, "/login", map[string]string{"username": "alice", "password": "pw"}))
	require.NotNil(t, phone)
	require.NotEqual(t, laptop.Value, phone.Value)

	u, err := svc.UserByUsername(context.Background(), "alice")
	require.NoError(t, err)
	index := userSessionsPrefix + u.UserID.String()
	members, err := mr.SMembers(index)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{laptop.Value, phone.Value}, members)
	assert.Positive(t, mr.TTL(index))

	req := httptest.NewRequest("DELETE", "/logout?all=1", nil)
	req.AddCookie(laptop)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	assert.False(t, mr.Exists(middleware.SessionRedisPrefix+laptop.Value))
	assert.False(t, mr.Exists(middleware.SessionRedisPrefix+phone.Value))
	assert.False(t, mr.Exists(index))

	req = httptest.NewRequest("GET", "/me", nil)
	req.AddCookie(phone)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestLogout_SingleKeepsOtherSessions(t *testing.T) {
	app, _, mr := setupAuth(t)
	laptop := sessionCookie(postJSON(t, app, "/register", map[string]string{"username": "bob", "password": "pw", "confirmation": "pw"}))
	phone := sessionCookie(postJSON(t, app, "/login", map[string]string{"username": "bob", "password": "pw"}))
	require.NotNil(t, laptop)
	require.NotNil(t, phone)

	req := httptest.NewRequest("DELETE", "/logout", nil)
	req.AddCookie(laptop)
	_, err := app.Test(req)
	require.NoError(t, err)

	assert.False(t, mr.Exists(middleware.SessionRedisPrefix+laptop.Value))
	assert.True(t, mr.Exists(middleware.SessionRedisPrefix+phone.Value))
}
