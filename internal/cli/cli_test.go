package cli

import (
	"bytes"
	"context"
	"flag"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"papertrade-backend/internal/application/account"
	"papertrade-backend/internal/domain"

	"github.com/google/subcommands"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupEnv points the CLI at a fresh SQLite file and a stub quote feed, and captures output.
func setupEnv(t *testing.T) (out, errOut *bytes.Buffer) {
	t.Helper()
	feed := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("symbol") {
		case "NFLX":
			_, _ = w.Write([]byte(`{"symbol":"NFLX","companyName":"Netflix Inc.","latestPrice":100}`))
		case "AAPL":
			_, _ = w.Write([]byte(`{"symbol":"AAPL","companyName":"Apple Inc.","latestPrice":50}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(feed.Close)

	t.Setenv("DATABASE_URL", "")
	t.Setenv("SQLITE_PATH", filepath.Join(t.TempDir(), "ledger.db"))
	t.Setenv("QUOTE_BASE_URL", feed.URL)
	t.Setenv("QUOTE_RATE_LIMIT", "0")
	t.Setenv("INITIAL_CASH", "10000")

	out, errOut = &bytes.Buffer{}, &bytes.Buffer{}
	prevOut, prevErr, prevStyle := stdout, stderr, *style
	stdout, stderr, *style = out, errOut, "plain"
	t.Cleanup(func() { stdout, stderr, *style = prevOut, prevErr, prevStyle })
	return out, errOut
}

type command interface {
	SetFlags(*flag.FlagSet)
	Execute(context.Context, *flag.FlagSet, ...interface{}) subcommands.ExitStatus
}

func run(t *testing.T, cmd command, args ...string) subcommands.ExitStatus {
	t.Helper()
	f := flag.NewFlagSet("test", flag.ContinueOnError)
	cmd.SetFlags(f)
	require.NoError(t, f.Parse(args))
	return cmd.Execute(context.Background(), f)
}

func TestCommands_TradingFlow(t *testing.T) {
	out, errOut := setupEnv(t)

	require.Equal(t, subcommands.ExitSuccess, run(t, &migrateCmd{}))
	assert.Contains(t, out.String(), "Database migrated")

	require.Equal(t, subcommands.ExitSuccess, run(t, &registerCmd{}, "-u", "alice", "-p", "secret"))
	assert.Contains(t, out.String(), "Registered alice with $10,000.00")

	require.Equal(t, subcommands.ExitSuccess, run(t, &buyCmd{}, "-u", "alice", "-s", "nflx", "-n", "5"))
	assert.Contains(t, out.String(), "Bought 5 NFLX at $100.00 ($500.00)")

	require.Equal(t, subcommands.ExitSuccess, run(t, &sellCmd{}, "-u", "alice", "-s", "NFLX", "-n", "2"))
	assert.Contains(t, out.String(), "Sold 2 NFLX at $100.00 ($200.00)")

	require.Equal(t, subcommands.ExitSuccess, run(t, &depositCmd{}, "-u", "alice", "-a", "300"))
	assert.Contains(t, out.String(), "Cash added! Balance: $10,000.00")

	out.Reset()
	require.Equal(t, subcommands.ExitSuccess, run(t, &portfolioCmd{}, "-u", "alice"))
	assert.Contains(t, out.String(), "| NFLX | 3 | $100.00 | $300.00 |")
	assert.Contains(t, out.String(), "**Total:** $10,300.00")

	out.Reset()
	require.Equal(t, subcommands.ExitSuccess, run(t, &historyCmd{}, "-u", "alice"))
	lines := strings.Split(out.String(), "\n")
	var rows []string
	for _, l := range lines {
		if strings.Contains(l, "| NFLX |") {
			rows = append(rows, l)
		}
	}
	require.Len(t, rows, 2)
	assert.Contains(t, rows[0], "| buy | NFLX | 5 |")
	assert.Contains(t, rows[1], "| sell | NFLX | 2 |")

	assert.Empty(t, errOut.String())
}

func TestCommands_Failures(t *testing.T) {
	_, errOut := setupEnv(t)
	require.Equal(t, subcommands.ExitSuccess, run(t, &registerCmd{}, "-u", "bob", "-p", "pw"))

	assert.Equal(t, subcommands.ExitFailure, run(t, &registerCmd{}, "-u", "bob", "-p", "pw"))
	assert.Contains(t, errOut.String(), "Error: username already exists")

	errOut.Reset()
	assert.Equal(t, subcommands.ExitFailure, run(t, &buyCmd{}, "-u", "bob", "-s", "NFLX", "-n", "1000"))
	assert.Contains(t, errOut.String(), "not enough to purchase")

	errOut.Reset()
	assert.Equal(t, subcommands.ExitFailure, run(t, &sellCmd{}, "-u", "bob", "-s", "AAPL", "-n", "1"))
	assert.Contains(t, errOut.String(), "no shares found for AAPL")

	errOut.Reset()
	assert.Equal(t, subcommands.ExitFailure, run(t, &buyCmd{}, "-u", "bob", "-s", "NFLX", "-n", "1.5"))
	assert.Contains(t, errOut.String(), "invalid share count")

	errOut.Reset()
	assert.Equal(t, subcommands.ExitFailure, run(t, &depositCmd{}, "-u", "bob", "-a", "0"))
	assert.Contains(t, errOut.String(), "cash must be positive")

	errOut.Reset()
	assert.Equal(t, subcommands.ExitFailure, run(t, &portfolioCmd{}))
	assert.Contains(t, errOut.String(), "must provide username")

	errOut.Reset()
	assert.Equal(t, subcommands.ExitFailure, run(t, &historyCmd{}, "-u", "nobody"))
	assert.Contains(t, errOut.String(), "user not found")
}

func TestQuoteCommand(t *testing.T) {
	out, errOut := setupEnv(t)

	assert.Equal(t, subcommands.ExitUsageError, run(t, &quoteCmd{}))
	assert.Contains(t, errOut.String(), "at least one symbol")

	require.Equal(t, subcommands.ExitSuccess, run(t, &quoteCmd{}, "nflx", "ZZZZ"))
	assert.Contains(t, out.String(), "| NFLX | Netflix Inc. | $100.00 |")
	assert.Contains(t, out.String(), "- ZZZZ: invalid ticker symbol")

	out.Reset()
	assert.Equal(t, subcommands.ExitFailure, run(t, &quoteCmd{}, "ZZZZ"))
}

func TestMarkdown(t *testing.T) {
	t.Run("EmptyPortfolio", func(t *testing.T) {
		md := PortfolioMarkdown("a|b", &account.Snapshot{Cash: decimal.NewFromInt(10000), TotalValue: decimal.NewFromInt(10000)})
		assert.Contains(t, md, `# Portfolio of a\|b`)
		assert.Contains(t, md, "_No holdings._")
		assert.Contains(t, md, "**Cash:** $10,000.00")
	})

	t.Run("EmptyHistory", func(t *testing.T) {
		assert.Contains(t, HistoryMarkdown("alice", nil), "_No transactions._")
	})

	t.Run("HistoryRow", func(t *testing.T) {
		md := HistoryMarkdown("alice", []domain.Transaction{{
			Symbol:    "AAPL",
			Shares:    3,
			Price:     decimal.RequireFromString("12.5"),
			Cost:      decimal.RequireFromString("37.5"),
			Type:      domain.TxSell,
			CreatedAt: time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC),
		}})
		assert.Contains(t, md, "| 2024-03-01 09:30:00 | sell | AAPL | 3 | $12.50 | $37.50 |")
	})
}

func TestPrintMarkdown_Rendered(t *testing.T) {
	out, _ := setupEnv(t)
	*style = "notty"

	printMarkdown("# Quotes\n\nhello world\n")
	assert.Contains(t, out.String(), "hello world")
}
