package router

import (
	"papertrade-backend/internal/application/account"
	healthsvc "papertrade-backend/internal/application/health"
	"papertrade-backend/internal/config"
	"papertrade-backend/internal/infrastructure/database"
	"papertrade-backend/internal/infrastructure/quotes"
	authhandler "papertrade-backend/internal/interfaces/handlers/auth"
	cashhandler "papertrade-backend/internal/interfaces/handlers/cash"
	healthhandler "papertrade-backend/internal/interfaces/handlers/health"
	portfoliohandler "papertrade-backend/internal/interfaces/handlers/portfolio"
	tradehandler "papertrade-backend/internal/interfaces/handlers/trading"
	txhandler "papertrade-backend/internal/interfaces/handlers/transactions"
	"papertrade-backend/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type gormDBPinger struct {
	db *gorm.DB
}

func (g *gormDBPinger) Ping() error {
	if g == nil || g.db == nil {
		return nil
	}
	sqlDB, err := g.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

// Deps are the collaborators the HTTP app is built from.
type Deps struct {
	Config *config.Config
	DB     *gorm.DB
	Rdb    *redis.Client
	// Quotes prices trades. Feed, when set, is pinged by the health endpoints.
	Quotes account.QuoteSource
	Feed   healthsvc.FeedPinger
}

// CreateApp opens the store, Redis and the quote feed from cfg and builds the app.
func CreateApp(cfg *config.Config) (*fiber.App, *gorm.DB, *redis.Client, error) {
	db, err := database.Open(cfg.DatabaseURL, cfg.SQLitePath)
	if err != nil {
		return nil, nil, nil, err
	}
	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, nil, nil, err
	}
	rdb := redis.NewClient(opt)

	client := quotes.NewClient(cfg.Quotes)
	app := NewApp(Deps{Config: cfg, DB: db, Rdb: rdb, Quotes: client, Feed: client})
	return app, db, rdb, nil
}

// NewApp wires middleware, services and routes.
func NewApp(d Deps) *fiber.App {
	cfg := d.Config
	app := fiber.New(fiber.Config{
		DisableStartupMessage:   true,
		ErrorHandler:            middleware.ErrorHandler,
		EnableTrustedProxyCheck: true,
	})

	app.Use(
		middleware.Tracing(),
		middleware.CORS(middleware.CORSConfig{
			AllowedSuffix: cfg.FrontendURLEndsWith,
			DevPassword:   cfg.DevPassword,
		}),
		middleware.Session(d.Rdb),
		middleware.HealthMarker(d.Rdb),
		middleware.RouteLogger(),
		middleware.NoCache(),
	)

	hh := &healthhandler.Handlers{
		Rdb:            d.Rdb,
		DB:             &gormDBPinger{db: d.DB},
		Feed:           d.Feed,
		HealthAdminKey: cfg.HealthAdminKey,
	}
	app.Get("/", hh.Dashboard)
	app.Get("/reset", hh.Reset)
	app.Get("/health/json", hh.JSON)
	app.Get("/health/errors", hh.Errors)

	// Read-only quote lookups may be served from the Redis cache; trades always go to the feed.
	var lookups account.QuoteSource = d.Quotes
	if cfg.Quotes.CacheTTL > 0 {
		lookups = &quotes.Cache{Rdb: d.Rdb, TTL: cfg.Quotes.CacheTTL, Source: d.Quotes}
	}
	svc := &account.Service{
		DB:          d.DB,
		Quotes:      d.Quotes,
		Lookups:     lookups,
		InitialCash: cfg.InitialCash,
	}
	sessionCfg := middleware.SessionConfig{
		AllowCrossSiteDev: cfg.AllowCrossSiteDev,
		IsProduction:      cfg.IsProduction(),
	}
	once := middleware.Idempotency(d.Rdb)

	ah := &authhandler.Handlers{Service: svc, Rdb: d.Rdb, Config: sessionCfg}
	authGroup := app.Group("/api/v1/auth")
	authGroup.Post("/register", ah.Register)
	authGroup.Post("/login", ah.Login)
	authGroup.Get("/me", ah.Me)
	authGroup.Delete("/logout", ah.Logout)

	ph := &portfoliohandler.Handlers{Service: svc}
	app.Get("/api/v1/portfolio", middleware.RequireAuth(), ph.Get)

	th := &tradehandler.Handlers{Service: svc}
	tg := app.Group("/api/v1/trading", middleware.RequireAuth())
	tg.Get("/quote", th.Quote)
	tg.Post("/buy", once, th.Buy)
	tg.Post("/sell", once, th.Sell)
	tg.Get("/sellable", th.Sellable)

	ch := &cashhandler.Handlers{Service: svc}
	app.Post("/api/v1/cash/deposit", middleware.RequireAuth(), once, ch.Deposit)

	txh := &txhandler.Handlers{Service: svc}
	app.Get("/api/v1/transactions", middleware.RequireAuth(), txh.List)

	log.Debug().Str("env", cfg.Env).Msg("routes registered")
	return app
}
