package bootstrap

import (
	"papertrade-backend/internal/config"
	"papertrade-backend/internal/infrastructure/database"
	"papertrade-backend/internal/interfaces/router"
	"papertrade-backend/internal/logger"

	"github.com/gofiber/fiber/v2"
)

// New creates the Fiber app for Vercel serverless (api handler imports this package, not internal).
func New() (*fiber.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := logger.Setup(cfg.LogLevel, cfg.LogFormat); err != nil {
		return nil, err
	}
	app, db, _, err := router.CreateApp(cfg)
	if err != nil {
		return nil, err
	}
	if err := database.AutoMigrate(db); err != nil {
		return nil, err
	}
	return app, nil
}
