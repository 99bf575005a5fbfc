package importer

import (
	"encoding/csv"
	"fmt"
	"io"
)

// CSVParser parses the brokerage transaction spreadsheet exported as CSV.
type CSVParser struct {
	Columns Columns
}

// Format returns the parser name.
func (p *CSVParser) Format() string { return "csv" }

// Parse reads a transaction CSV and returns its rows.
func (p *CSVParser) Parse(r io.Reader) ([]RawRow, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading transaction CSV: %w", err)
	}

	rows, err := mapRows(records, p.Columns)
	if err != nil {
		return nil, fmt.Errorf("reading transaction CSV: %w", err)
	}
	return rows, nil
}
