package health

import (
	"crypto/subtle"

	healthsvc "papertrade-backend/internal/application/health"
	"papertrade-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

const serviceName = "papertrade-api"

// Handlers serves the status page and its JSON feeds.
type Handlers struct {
	Rdb            *redis.Client
	DB             healthsvc.DBPinger
	Feed           healthsvc.FeedPinger
	HealthAdminKey string
}

// Report is the /health/json body.
type Report struct {
	Service string `json:"service"`
	healthsvc.CollectResult
}

func (h *Handlers) collect(c *fiber.Ctx) healthsvc.CollectResult {
	return healthsvc.CollectHealth(c.UserContext(), h.Rdb, h.DB, h.Feed)
}

// Reset clears the request stats. Requires ?key=HEALTH_ADMIN_KEY; an unset admin key disables it.
func (h *Handlers) Reset(c *fiber.Ctx) error {
	key := c.Query("key")
	if h.HealthAdminKey == "" || subtle.ConstantTimeCompare([]byte(key), []byte(h.HealthAdminKey)) != 1 {
		return response.Error(c, "Unauthorized", fiber.StatusForbidden, nil)
	}
	if err := healthsvc.ResetStats(c.UserContext(), h.Rdb); err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Stats reset successfully", fiber.Map{"success": true}, nil)
}

func (h *Handlers) JSON(c *fiber.Ctx) error {
	return c.JSON(Report{Service: serviceName, CollectResult: h.collect(c)})
}

// Errors returns the most recent server errors, newest first.
func (h *Handlers) Errors(c *fiber.Ctx) error {
	entries, err := healthsvc.RecentErrors(c.UserContext(), h.Rdb, healthsvc.ErrorLogLimit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON([]interface{}{})
	}
	return c.JSON(entries)
}

func (h *Handlers) Dashboard(c *fiber.Ctx) error {
	c.Type("html", "utf-8")
	return c.SendString(healthsvc.RenderDashboardHTML(h.collect(c)))
}
