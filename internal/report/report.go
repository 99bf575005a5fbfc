// Package report summarizes a ledger into markdown tables.
package report

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/basis/internal/ledger"
	"github.com/cleared-dev/basis/internal/model"
)

// Source is the subset of the ledger a report reads.
type Source interface {
	Years(ctx context.Context) ([]int, error)
	Activity(ctx context.Context, year int) ([]ledger.Activity, error)
	OpenPositions(ctx context.Context) ([]model.CostBasisSnapshot, error)
}

// Options selects what a report covers.
type Options struct {
	Year int // 0 reports every year in the ledger
}

type accountYear struct {
	Year    int
	Account string
}

type accountTotals struct {
	RealizedGain decimal.Decimal
	Dividend     decimal.Decimal
	Fee          decimal.Decimal
}

// Markdown builds the realized gain, fee and holdings tables.
func Markdown(ctx context.Context, src Source, opts Options) (string, error) {
	years := []int{opts.Year}
	if opts.Year == 0 {
		var err error
		years, err = src.Years(ctx)
		if err != nil {
			return "", fmt.Errorf("listing years: %w", err)
		}
	}

	var positions [][]string
	totals := make(map[accountYear]*accountTotals)
	for _, year := range years {
		acts, err := src.Activity(ctx, year)
		if err != nil {
			return "", fmt.Errorf("activity for %d: %w", year, err)
		}
		for _, a := range acts {
			if a.Significant() {
				positions = append(positions, []string{
					strconv.Itoa(a.Year), a.Symbol, a.Account,
					money(a.RealizedGain), money(a.Dividend),
				})
			}
			k := accountYear{Year: a.Year, Account: a.Account}
			t, ok := totals[k]
			if !ok {
				t = &accountTotals{}
				totals[k] = t
			}
			t.RealizedGain = t.RealizedGain.Add(decimal.NewFromFloat(a.RealizedGain))
			t.Dividend = t.Dividend.Add(decimal.NewFromFloat(a.Dividend))
			t.Fee = t.Fee.Add(decimal.NewFromFloat(a.Fee))
		}
	}

	keys := make([]accountYear, 0, len(totals))
	for k := range totals {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b accountYear) int {
		if c := cmp.Compare(a.Year, b.Year); c != 0 {
			return c
		}
		return cmp.Compare(a.Account, b.Account)
	})
	var accounts, fees [][]string
	for _, k := range keys {
		t := totals[k]
		year := strconv.Itoa(k.Year)
		accounts = append(accounts, []string{year, k.Account, t.RealizedGain.StringFixed(2), t.Dividend.StringFixed(2)})
		fees = append(fees, []string{year, k.Account, t.Fee.StringFixed(2)})
	}

	open, err := src.OpenPositions(ctx)
	if err != nil {
		return "", fmt.Errorf("listing holdings: %w", err)
	}
	var holdings [][]string
	for _, sn := range open {
		holdings = append(holdings, []string{
			sn.Symbol, sn.Account,
			quantity(sn.CurrentQuantity),
			money(sn.CurrentAverageCostBasis),
			money(sn.BookValue()),
			sn.RecordDate.Format("2006-01-02"),
		})
	}

	var b strings.Builder
	section(&b, "Realized gain by year, symbol, account",
		[]string{"Year", "Symbol", "Account", "Realized gain", "Dividend"}, 3, positions)
	section(&b, "Realized gain by year, account",
		[]string{"Year", "Account", "Realized gain", "Dividend"}, 2, accounts)
	section(&b, "Fee by year",
		[]string{"Year", "Account", "Fee"}, 2, fees)
	section(&b, "Holdings",
		[]string{"Symbol", "Account", "Quantity", "Average cost", "Book value", "Last activity"}, 2, holdings)
	return b.String(), nil
}

// section writes a heading and a table whose columns from numericFrom on
// are right aligned.
func section(b *strings.Builder, title string, header []string, numericFrom int, rows [][]string) {
	fmt.Fprintf(b, "# %s\n\n", title)
	if len(rows) == 0 {
		b.WriteString("_None._\n\n")
		return
	}

	b.WriteString("| " + strings.Join(header, " | ") + " |\n")
	align := make([]string, len(header))
	for i := range align {
		align[i] = "---"
		if i >= numericFrom {
			align[i] = "---:"
		}
	}
	b.WriteString("| " + strings.Join(align, " | ") + " |\n")
	for _, row := range rows {
		b.WriteString("| " + strings.Join(row, " | ") + " |\n")
	}
	b.WriteString("\n")
}

func money(f float64) string {
	return decimal.NewFromFloat(f).StringFixed(2)
}

func quantity(f float64) string {
	return decimal.NewFromFloat(f).Round(6).String()
}
