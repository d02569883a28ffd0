package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds application configuration (env + Viper).
type Config struct {
	Env                 string
	Port                string
	DatabaseURL         string // Postgres DSN; empty means the SQLite file at SQLitePath
	SQLitePath          string
	RedisURL            string
	InitialCash         decimal.Decimal
	Quotes              QuoteConfig
	LogLevel            string
	LogFormat           string // json | console
	HealthAdminKey      string
	FrontendURLEndsWith string
	DevPassword         string
	AllowCrossSiteDev   bool
}

// QuoteConfig configures the external quote feed.
type QuoteConfig struct {
	BaseURL    string
	APIKey     string
	SymbolPath string // JSONPath to the canonical symbol in the feed response
	PricePath  string
	NamePath   string
	Timeout    time.Duration
	RateLimit  float64 // requests per second
	RateBurst  int
	CacheTTL   time.Duration // 0 disables the Redis quote cache
}

func init() {
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("SQLITE_PATH", "finance.db")
	viper.SetDefault("INITIAL_CASH", "10000.00")
	viper.SetDefault("QUOTE_BASE_URL", "https://finance.cs50.io")
	viper.SetDefault("QUOTE_SYMBOL_PATH", "$.symbol")
	viper.SetDefault("QUOTE_PRICE_PATH", "$.latestPrice")
	viper.SetDefault("QUOTE_NAME_PATH", "$.companyName")
	viper.SetDefault("QUOTE_TIMEOUT", "5s")
	viper.SetDefault("QUOTE_RATE_LIMIT", 5.0)
	viper.SetDefault("QUOTE_RATE_BURST", 5)
	viper.SetDefault("QUOTE_CACHE_TTL", "1m")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("LOG_FORMAT", "json")
}

// Load loads config from env and optional .env file.
func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.SetConfigType("env")
	_ = viper.ReadInConfig()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	env := viper.GetString("APP_ENV")
	if env == "" {
		env = "development"
	}

	initialCash, err := decimal.NewFromString(viper.GetString("INITIAL_CASH"))
	if err != nil {
		return nil, fmt.Errorf("INITIAL_CASH: %w", err)
	}
	if initialCash.IsNegative() {
		return nil, fmt.Errorf("INITIAL_CASH must not be negative, got %s", initialCash)
	}

	return &Config{
		Env:         env,
		Port:        viper.GetString("PORT"),
		DatabaseURL: viper.GetString("DATABASE_URL"),
		SQLitePath:  viper.GetString("SQLITE_PATH"),
		RedisURL:    viper.GetString("REDIS_URL"),
		InitialCash: initialCash,
		Quotes: QuoteConfig{
			BaseURL:    strings.TrimRight(viper.GetString("QUOTE_BASE_URL"), "/"),
			APIKey:     viper.GetString("QUOTE_API_KEY"),
			SymbolPath: viper.GetString("QUOTE_SYMBOL_PATH"),
			PricePath:  viper.GetString("QUOTE_PRICE_PATH"),
			NamePath:   viper.GetString("QUOTE_NAME_PATH"),
			Timeout:    viper.GetDuration("QUOTE_TIMEOUT"),
			RateLimit:  viper.GetFloat64("QUOTE_RATE_LIMIT"),
			RateBurst:  viper.GetInt("QUOTE_RATE_BURST"),
			CacheTTL:   viper.GetDuration("QUOTE_CACHE_TTL"),
		},
		LogLevel:            viper.GetString("LOG_LEVEL"),
		LogFormat:           viper.GetString("LOG_FORMAT"),
		HealthAdminKey:      viper.GetString("HEALTH_ADMIN_KEY"),
		FrontendURLEndsWith: viper.GetString("FRONTEND_URL_ENDS_WITH"),
		DevPassword:         viper.GetString("DEV_PASSWORD"),
		AllowCrossSiteDev:   strings.EqualFold(viper.GetString("ALLOW_CROSS_SITE_DEV"), "true"),
	}, nil
}

// IsProduction reports whether APP_ENV is production.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
