package cli

import (
	"context"
	"flag"
	"fmt"

	"papertrade-backend/internal/config"
	"papertrade-backend/internal/infrastructure/database"
	"papertrade-backend/internal/pkg/currency"
	"papertrade-backend/internal/pkg/validation"

	"github.com/google/subcommands"
)

type migrateCmd struct{}

func (*migrateCmd) Name() string     { return "migrate" }
func (*migrateCmd) Synopsis() string { return "create or update the ledger tables" }
func (*migrateCmd) Usage() string {
	return `ledgerctl migrate

  Creates the users, portfolio and transactions tables in the configured database.
`
}
func (*migrateCmd) SetFlags(*flag.FlagSet) {}

func (*migrateCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := config.Load()
	if err != nil {
		return fail(err)
	}
	db, err := database.Open(cfg.DatabaseURL, cfg.SQLitePath)
	if err != nil {
		return fail(err)
	}
	defer closeDB(db)
	if err := database.AutoMigrate(db); err != nil {
		return fail(err)
	}
	fmt.Fprintln(stdout, "Database migrated")
	return subcommands.ExitSuccess
}

type registerCmd struct {
	username string
	password string
}

func (*registerCmd) Name() string     { return "register" }
func (*registerCmd) Synopsis() string { return "create a user account" }
func (*registerCmd) Usage() string {
	return `ledgerctl register -u <username> -p <password>

  Creates an account funded with INITIAL_CASH.
`
}

func (c *registerCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.username, "u", "", "username")
	f.StringVar(&c.password, "p", "", "password")
}

func (c *registerCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	svc, done, err := openService()
	if err != nil {
		return fail(err)
	}
	defer done()

	u, err := svc.Register(ctx, c.username, c.password, c.password)
	if err != nil {
		return fail(err)
	}
	fmt.Fprintf(stdout, "Registered %s with %s\n", u.Username, currency.USD(u.Cash))
	return subcommands.ExitSuccess
}

type quoteCmd struct{}

func (*quoteCmd) Name() string     { return "quote" }
func (*quoteCmd) Synopsis() string { return "look up the current price of tickers" }
func (*quoteCmd) Usage() string {
	return `ledgerctl quote <symbol>...
`
}
func (*quoteCmd) SetFlags(*flag.FlagSet) {}

func (*quoteCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		fmt.Fprintln(stderr, "Error: at least one symbol is required")
		return subcommands.ExitUsageError
	}
	svc, done, err := openService()
	if err != nil {
		return fail(err)
	}
	defer done()

	report := QuoteReport{}
	for _, symbol := range f.Args() {
		q, err := svc.Quote(ctx, symbol)
		if err != nil {
			report.Failed = append(report.Failed, symbol)
			continue
		}
		report.Quotes = append(report.Quotes, q)
	}
	printMarkdown(QuoteMarkdown(report))
	if len(report.Quotes) == 0 {
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// tradeCmd is shared by buy and sell.
type tradeCmd struct {
	username string
	symbol   string
	shares   string
}

func (c *tradeCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.username, "u", "", "username")
	f.StringVar(&c.symbol, "s", "", "ticker symbol")
	f.StringVar(&c.shares, "n", "", "number of shares")
}

type buyCmd struct{ tradeCmd }

func (*buyCmd) Name() string     { return "buy" }
func (*buyCmd) Synopsis() string { return "buy shares at the current price" }
func (*buyCmd) Usage() string {
	return `ledgerctl buy -u <username> -s <symbol> -n <shares>
`
}

func (c *buyCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return c.run(ctx, true)
}

type sellCmd struct{ tradeCmd }

func (*sellCmd) Name() string     { return "sell" }
func (*sellCmd) Synopsis() string { return "sell shares at the current price" }
func (*sellCmd) Usage() string {
	return `ledgerctl sell -u <username> -s <symbol> -n <shares>
`
}

func (c *sellCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return c.run(ctx, false)
}

func (c *tradeCmd) run(ctx context.Context, buy bool) subcommands.ExitStatus {
	shares, err := validation.ParseShares(c.shares)
	if err != nil {
		return fail(err)
	}
	svc, done, err := openService()
	if err != nil {
		return fail(err)
	}
	defer done()

	u, err := lookupUser(ctx, svc, c.username)
	if err != nil {
		return fail(err)
	}
	trade := svc.Sell
	verb := "Sold"
	if buy {
		trade = svc.Buy
		verb = "Bought"
	}
	tx, err := trade(ctx, u.UserID, c.symbol, shares)
	if err != nil {
		return fail(err)
	}
	fmt.Fprintf(stdout, "%s %d %s at %s (%s)\n", verb, tx.Shares, tx.Symbol, currency.USD(tx.Price), currency.USD(tx.Cost))
	return subcommands.ExitSuccess
}

type depositCmd struct {
	username string
	amount   string
}

func (*depositCmd) Name() string     { return "deposit" }
func (*depositCmd) Synopsis() string { return "add whole dollars to a user's cash" }
func (*depositCmd) Usage() string {
	return `ledgerctl deposit -u <username> -a <amount>
`
}

func (c *depositCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.username, "u", "", "username")
	f.StringVar(&c.amount, "a", "", "amount in whole dollars")
}

func (c *depositCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	amount, err := validation.ParseCash(c.amount)
	if err != nil {
		return fail(err)
	}
	svc, done, err := openService()
	if err != nil {
		return fail(err)
	}
	defer done()

	u, err := lookupUser(ctx, svc, c.username)
	if err != nil {
		return fail(err)
	}
	balance, err := svc.DepositCash(ctx, u.UserID, amount)
	if err != nil {
		return fail(err)
	}
	fmt.Fprintf(stdout, "Cash added! Balance: %s\n", currency.USD(balance))
	return subcommands.ExitSuccess
}

type portfolioCmd struct {
	username string
}

func (*portfolioCmd) Name() string     { return "portfolio" }
func (*portfolioCmd) Synopsis() string { return "display a user's holdings and cash" }
func (*portfolioCmd) Usage() string {
	return `ledgerctl portfolio -u <username>

  Values are the prices recorded by the last trade of each symbol.
`
}

func (c *portfolioCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.username, "u", "", "username")
}

func (c *portfolioCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	svc, done, err := openService()
	if err != nil {
		return fail(err)
	}
	defer done()

	u, err := lookupUser(ctx, svc, c.username)
	if err != nil {
		return fail(err)
	}
	snap, err := svc.Portfolio(ctx, u.UserID)
	if err != nil {
		return fail(err)
	}
	printMarkdown(PortfolioMarkdown(u.Username, snap))
	return subcommands.ExitSuccess
}

type historyCmd struct {
	username string
}

func (*historyCmd) Name() string     { return "history" }
func (*historyCmd) Synopsis() string { return "display a user's trades" }
func (*historyCmd) Usage() string {
	return `ledgerctl history -u <username>
`
}

func (c *historyCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.username, "u", "", "username")
}

func (c *historyCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	svc, done, err := openService()
	if err != nil {
		return fail(err)
	}
	defer done()

	u, err := lookupUser(ctx, svc, c.username)
	if err != nil {
		return fail(err)
	}
	txs, err := svc.History(ctx, u.UserID)
	if err != nil {
		return fail(err)
	}
	printMarkdown(HistoryMarkdown(u.Username, txs))
	return subcommands.ExitSuccess
}
