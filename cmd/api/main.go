package main

import (
	"context"

	"papertrade-backend/internal/config"
	"papertrade-backend/internal/infrastructure/database"
	"papertrade-backend/internal/interfaces/router"
	"papertrade-backend/internal/logger"

	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load")
	}
	if err := logger.Setup(cfg.LogLevel, cfg.LogFormat); err != nil {
		log.Fatal().Err(err).Msg("logger setup")
	}

	app, db, rdb, err := router.CreateApp(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("app create")
	}

	// Verify connections before accepting traffic
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatal().Err(err).Msg("database handle")
	}
	if err := sqlDB.Ping(); err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}
	if err := database.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("database migration failed")
	}
	log.Info().Bool("postgres", cfg.DatabaseURL != "").Msg("database connected")

	if err := rdb.Ping(context.Background()).Err(); err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	log.Info().Msg("redis connected")

	port := cfg.Port
	log.Info().Str("port", port).Str("health", "http://localhost:"+port+"/health/json").Msg("server running")

	if err := app.Listen(":" + port); err != nil {
		log.Fatal().Err(err).Msg("listen")
	}
}
