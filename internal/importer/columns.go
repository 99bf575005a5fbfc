package importer

import (
	"fmt"
	"strings"
)

// Header names of the brokerage transaction spreadsheet.
const (
	HeaderDate     = "Date"
	HeaderSymbol   = "Symbol"
	HeaderAction   = "Action"
	HeaderQuantity = "Quantity"
	HeaderPrice    = "Price"
	HeaderAccount  = "Account"
)

// Columns names the two fee columns, which vary with the account currencies.
type Columns struct {
	FeePrimary   string
	FeeSecondary string
}

// DefaultColumns matches a CAD/USD brokerage export.
func DefaultColumns() Columns {
	return Columns{FeePrimary: "Fee CAD", FeeSecondary: "Fee USD"}
}

// mapRows converts a header row plus data rows into RawRows by column name.
// Rows that are entirely blank are skipped.
func mapRows(records [][]string, cols Columns) ([]RawRow, error) {
	if len(records) <= 1 {
		return nil, nil
	}

	index := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		index[name] = i
	}

	required := []string{HeaderDate, HeaderSymbol, HeaderAction, HeaderQuantity, HeaderPrice, HeaderAccount, cols.FeePrimary, cols.FeeSecondary}
	for _, name := range required {
		if _, ok := index[name]; !ok {
			return nil, fmt.Errorf("missing column %q", name)
		}
	}

	var rows []RawRow
	for i, rec := range records[1:] {
		if blank(rec) {
			continue
		}
		cell := func(name string) string {
			j := index[name]
			if j >= len(rec) {
				return ""
			}
			return rec[j]
		}
		rows = append(rows, RawRow{
			Line:         i + 2,
			Date:         cell(HeaderDate),
			Symbol:       cell(HeaderSymbol),
			Action:       cell(HeaderAction),
			Quantity:     cell(HeaderQuantity),
			Price:        cell(HeaderPrice),
			Account:      cell(HeaderAccount),
			FeePrimary:   cell(cols.FeePrimary),
			FeeSecondary: cell(cols.FeeSecondary),
		})
	}
	return rows, nil
}

func blank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
