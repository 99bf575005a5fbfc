package ledger

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/basis/internal/model"
)

// Header is the CSV header of an exported snapshot ledger.
const Header = "sequence_number,record_date,symbol,account,action,current_quantity,current_average_cost_basis,current_total_fee,current_total_realized_gain,current_total_dividend"

const (
	numFields   = 10
	colSeq      = 0
	colDate     = 1
	colSymbol   = 2
	colAccount  = 3
	colAction   = 4
	colQuantity = 5
	colAvgCost  = 6
	colFee      = 7
	colGain     = 8
	colDividend = 9
)

// WriteSnapshots writes snapshots to w as CSV (including header).
func WriteSnapshots(w io.Writer, snaps []model.CostBasisSnapshot) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(strings.Split(Header, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, sn := range snaps {
		if err := cw.Write(MarshalSnapshot(sn)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadSnapshots reads an exported snapshot CSV.
func ReadSnapshots(r io.Reader) ([]model.CostBasisSnapshot, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading snapshot CSV: %w", err)
	}

	if len(records) <= 1 {
		return nil, nil
	}

	var snaps []model.CostBasisSnapshot
	for i, rec := range records[1:] {
		sn, err := UnmarshalSnapshot(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		snaps = append(snaps, sn)
	}
	return snaps, nil
}

// MarshalSnapshot converts a snapshot to a CSV row. Amounts are written in
// their shortest exact decimal form.
func MarshalSnapshot(sn model.CostBasisSnapshot) []string {
	row := make([]string, numFields)
	row[colSeq] = strconv.FormatInt(sn.SequenceNumber, 10)
	row[colDate] = sn.RecordDate.Format(dateFormat)
	row[colSymbol] = sn.Symbol
	row[colAccount] = sn.Account
	row[colAction] = string(sn.Action)
	row[colQuantity] = decimal.NewFromFloat(sn.CurrentQuantity).String()
	row[colAvgCost] = decimal.NewFromFloat(sn.CurrentAverageCostBasis).String()
	row[colFee] = decimal.NewFromFloat(sn.CurrentTotalFee).String()
	row[colGain] = decimal.NewFromFloat(sn.CurrentTotalRealizedGain).String()
	row[colDividend] = decimal.NewFromFloat(sn.CurrentTotalDividend).String()
	return row
}

// UnmarshalSnapshot converts a CSV row to a snapshot.
func UnmarshalSnapshot(record []string) (model.CostBasisSnapshot, error) {
	if len(record) != numFields {
		return model.CostBasisSnapshot{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	seq, err := strconv.ParseInt(record[colSeq], 10, 64)
	if err != nil {
		return model.CostBasisSnapshot{}, fmt.Errorf("parsing sequence_number %q: %w", record[colSeq], err)
	}

	date, err := time.Parse(dateFormat, record[colDate])
	if err != nil {
		return model.CostBasisSnapshot{}, fmt.Errorf("parsing date %q: %w", record[colDate], err)
	}

	amounts := make([]float64, 0, 5)
	for _, col := range []int{colQuantity, colAvgCost, colFee, colGain, colDividend} {
		d, err := decimal.NewFromString(record[col])
		if err != nil {
			return model.CostBasisSnapshot{}, fmt.Errorf("parsing column %d %q: %w", col+1, record[col], err)
		}
		amounts = append(amounts, d.InexactFloat64())
	}

	return model.CostBasisSnapshot{
		SequenceNumber:           seq,
		RecordDate:               date,
		Symbol:                   record[colSymbol],
		Account:                  record[colAccount],
		Action:                   model.Action(record[colAction]),
		CurrentQuantity:          amounts[0],
		CurrentAverageCostBasis:  amounts[1],
		CurrentTotalFee:          amounts[2],
		CurrentTotalRealizedGain: amounts[3],
		CurrentTotalDividend:     amounts[4],
	}, nil
}
