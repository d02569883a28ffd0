package cli

import (
	"fmt"
	"strings"

	"papertrade-backend/internal/application/account"
	"papertrade-backend/internal/domain"
	"papertrade-backend/internal/pkg/currency"
)

// QuoteReport collects the answers of a multi-symbol quote.
type QuoteReport struct {
	Quotes []domain.Quote
	Failed []string
}

func QuoteMarkdown(r QuoteReport) string {
	var b strings.Builder
	b.WriteString("# Quotes\n\n")
	if len(r.Quotes) > 0 {
		b.WriteString("| Symbol | Name | Price |\n|---|---|---:|\n")
		for _, q := range r.Quotes {
			fmt.Fprintf(&b, "| %s | %s | %s |\n", q.Symbol, escape(q.Name), currency.USD(q.Price))
		}
		b.WriteString("\n")
	}
	for _, s := range r.Failed {
		fmt.Fprintf(&b, "- %s: invalid ticker symbol\n", escape(s))
	}
	return b.String()
}

func PortfolioMarkdown(username string, s *account.Snapshot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Portfolio of %s\n\n", escape(username))
	if len(s.Holdings) == 0 {
		b.WriteString("_No holdings._\n\n")
	} else {
		b.WriteString("| Symbol | Shares | Price | Value |\n|---|---:|---:|---:|\n")
		for _, h := range s.Holdings {
			fmt.Fprintf(&b, "| %s | %d | %s | %s |\n", h.Symbol, h.Shares, currency.USD(h.SharePrice), currency.USD(h.Value))
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "**Cash:** %s\n\n", currency.USD(s.Cash))
	fmt.Fprintf(&b, "**Total:** %s\n", currency.USD(s.TotalValue))
	return b.String()
}

func HistoryMarkdown(username string, txs []domain.Transaction) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# History of %s\n\n", escape(username))
	if len(txs) == 0 {
		b.WriteString("_No transactions._\n")
		return b.String()
	}
	b.WriteString("| Date | Type | Symbol | Shares | Price | Amount |\n|---|---|---|---:|---:|---:|\n")
	for _, t := range txs {
		fmt.Fprintf(&b, "| %s | %s | %s | %d | %s | %s |\n",
			t.CreatedAt.Format("2006-01-02 15:04:05"), t.Type, t.Symbol, t.Shares, currency.USD(t.Price), currency.USD(t.Cost))
	}
	return b.String()
}

// escape keeps user-provided text from breaking table cells.
func escape(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
