// Package cli implements ledgerctl, the operator command line for the paper trading ledger.
// Commands talk to the same database and quote feed as the API, configured from the same
// environment.
package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"papertrade-backend/internal/application/account"
	"papertrade-backend/internal/config"
	"papertrade-backend/internal/domain"
	"papertrade-backend/internal/infrastructure/database"
	"papertrade-backend/internal/infrastructure/quotes"

	"github.com/charmbracelet/glamour"
	"github.com/google/subcommands"
	"gorm.io/gorm"
)

// Register the subcommands.
func Register(c *subcommands.Commander) {
	c.Register(&migrateCmd{}, "admin")
	c.Register(&registerCmd{}, "admin")

	c.Register(&quoteCmd{}, "market")

	c.Register(&buyCmd{}, "trading")
	c.Register(&sellCmd{}, "trading")
	c.Register(&depositCmd{}, "trading")

	c.Register(&portfolioCmd{}, "reports")
	c.Register(&historyCmd{}, "reports")
}

// a CLI run is short lived, global flags and writers are fine.

var style = flag.String("style", "dark", `glamour style for reports ("dark", "light", "notty"...), or "plain" for raw markdown`)

var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

// openService builds the account service from the environment. done releases the database.
func openService() (svc *account.Service, done func(), err error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	db, err := database.Open(cfg.DatabaseURL, cfg.SQLitePath)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		closeDB(db)
		return nil, nil, fmt.Errorf("migrate: %w", err)
	}
	svc = &account.Service{
		DB:          db,
		Quotes:      quotes.NewClient(cfg.Quotes),
		InitialCash: cfg.InitialCash,
	}
	return svc, func() { closeDB(db) }, nil
}

func closeDB(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

// lookupUser resolves the -u flag shared by the per-user commands.
func lookupUser(ctx context.Context, svc *account.Service, username string) (*domain.User, error) {
	if username == "" {
		return nil, domain.NewError(domain.ErrValidation, "must provide username (-u)")
	}
	return svc.UserByUsername(ctx, username)
}

func printMarkdown(md string) {
	if *style == "plain" {
		fmt.Fprint(stdout, md)
		return
	}
	out, err := glamour.Render(md, *style)
	if err != nil {
		fmt.Fprint(stdout, md)
		return
	}
	fmt.Fprint(stdout, out)
}

// fail reports err on stderr and returns the matching exit status.
func fail(err error) subcommands.ExitStatus {
	if msg, ok := domain.Message(err); ok {
		fmt.Fprintf(stderr, "Error: %s\n", msg)
	} else {
		fmt.Fprintf(stderr, "Error: %v\n", err)
	}
	return subcommands.ExitFailure
}
