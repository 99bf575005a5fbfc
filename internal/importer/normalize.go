package importer

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/basis/internal/model"
)

// ErrInvalidRecord marks a source row that cannot be turned into a TransactionRecord.
// A batch containing one is rejected as a whole.
var ErrInvalidRecord = errors.New("invalid record")

// RecordError reports why a single source row was rejected.
type RecordError struct {
	Line   int // 1-based line in the source file, header included
	Reason string
	Err    error
}

func (e *RecordError) Error() string {
	msg := fmt.Sprintf("row %d: %s: %s", e.Line, ErrInvalidRecord, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap lets errors.Is match both ErrInvalidRecord and the underlying cause.
func (e *RecordError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrInvalidRecord}
	}
	return []error{ErrInvalidRecord, e.Err}
}

// RawRow is one transaction row exactly as read from the source file.
type RawRow struct {
	Line         int
	Date         string
	Symbol       string
	Action       string
	Quantity     string
	Price        string
	Account      string
	FeePrimary   string
	FeeSecondary string
}

// Options controls how raw rows are interpreted.
type Options struct {
	DateFormat        string // Go time layout, defaults to 2006-01-02
	PrimaryCurrency   string // currency of the FeePrimary column
	SecondaryCurrency string // currency of the FeeSecondary column
}

const defaultDateFormat = "2006-01-02"

// Normalize validates one raw row and converts it to a TransactionRecord.
//
// Numbers may carry thousands separators and empty numeric fields read as
// zero. At most one of the two fee columns may be filled, and FXFEE rows must
// not carry a price. SELL quantities are stored negative.
func Normalize(raw RawRow, opts Options) (model.TransactionRecord, error) {
	feePrimary := cleanNumber(raw.FeePrimary)
	feeSecondary := cleanNumber(raw.FeeSecondary)
	if feePrimary != "" && feeSecondary != "" {
		return model.TransactionRecord{}, &RecordError{Line: raw.Line, Reason: "both fee columns are set"}
	}

	action := model.Action(strings.TrimSpace(raw.Action))
	priceText := cleanNumber(raw.Price)
	if action == model.ActionFXFee && priceText != "" {
		return model.TransactionRecord{}, &RecordError{Line: raw.Line, Reason: "FXFEE row carries a price"}
	}

	layout := opts.DateFormat
	if layout == "" {
		layout = defaultDateFormat
	}
	date, err := time.Parse(layout, strings.TrimSpace(raw.Date))
	if err != nil {
		return model.TransactionRecord{}, &RecordError{Line: raw.Line, Reason: fmt.Sprintf("parsing date %q", raw.Date), Err: err}
	}

	quantity, err := parseAmount(raw.Quantity)
	if err != nil {
		return model.TransactionRecord{}, &RecordError{Line: raw.Line, Reason: fmt.Sprintf("parsing quantity %q", raw.Quantity), Err: err}
	}
	price, err := parseAmount(priceText)
	if err != nil {
		return model.TransactionRecord{}, &RecordError{Line: raw.Line, Reason: fmt.Sprintf("parsing price %q", raw.Price), Err: err}
	}

	feeText, feeCurrency := feePrimary, opts.PrimaryCurrency
	if feeText == "" {
		feeText, feeCurrency = feeSecondary, opts.SecondaryCurrency
	}
	fee, err := parseAmount(feeText)
	if err != nil {
		return model.TransactionRecord{}, &RecordError{Line: raw.Line, Reason: fmt.Sprintf("parsing fee %q", feeText), Err: err}
	}
	if feeText == "" {
		feeCurrency = ""
	}

	if action == model.ActionSell {
		quantity = -math.Abs(quantity)
	}

	return model.TransactionRecord{
		RecordDate:  date,
		Symbol:      strings.TrimSpace(raw.Symbol),
		Action:      action,
		Quantity:    quantity,
		Price:       price,
		Account:     strings.TrimSpace(raw.Account),
		Fee:         fee,
		FeeCurrency: feeCurrency,
	}, nil
}

// NormalizeAll normalizes a batch, stopping at the first rejected row.
func NormalizeAll(rows []RawRow, opts Options) ([]model.TransactionRecord, error) {
	records := make([]model.TransactionRecord, 0, len(rows))
	for _, raw := range rows {
		rec, err := Normalize(raw, opts)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// cleanNumber strips thousands separators and surrounding blanks.
func cleanNumber(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
}

func parseAmount(s string) (float64, error) {
	s = cleanNumber(s)
	if s == "" {
		return 0, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, err
	}
	return d.InexactFloat64(), nil
}
