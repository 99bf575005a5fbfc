package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"strconv"

	"github.com/cleared-dev/basis/internal/costbasis"
	"github.com/cleared-dev/basis/internal/model"
)

const snapshotColumns = `a.sequence_number, a.record_date, a.symbol, a.account, a.action,
    a.current_quantity, a.current_average_cost_basis, a.current_total_fee,
    a.current_total_realized_gain, a.current_total_dividend`

// ByGroup returns the snapshot chain of one position in sequence order.
func (s *Store) ByGroup(ctx context.Context, key model.GroupKey) ([]model.CostBasisSnapshot, error) {
	return s.querySnapshots(ctx, `
SELECT `+snapshotColumns+`
FROM average_cost_basis a
WHERE a.symbol = ? AND a.account = ?
ORDER BY a.sequence_number`, key.Symbol, key.Account)
}

// YearEnd returns, for every position with activity in or before year, the
// snapshot with the greatest sequence number dated in or before that year.
func (s *Store) YearEnd(ctx context.Context, year int) ([]model.CostBasisSnapshot, error) {
	return s.querySnapshots(ctx, `
SELECT `+snapshotColumns+`
FROM average_cost_basis a
JOIN (
    SELECT MAX(sequence_number) AS sequence_number
    FROM average_cost_basis
    WHERE CAST(strftime('%Y', record_date) AS INTEGER) <= ?
    GROUP BY symbol, account
) l ON a.sequence_number = l.sequence_number
ORDER BY a.symbol, a.account`, year)
}

// Latest returns the newest snapshot of every position.
func (s *Store) Latest(ctx context.Context) ([]model.CostBasisSnapshot, error) {
	return s.querySnapshots(ctx, `
SELECT `+snapshotColumns+`
FROM average_cost_basis a
JOIN (
    SELECT MAX(sequence_number) AS sequence_number
    FROM average_cost_basis
    GROUP BY symbol, account
) l ON a.sequence_number = l.sequence_number
ORDER BY a.symbol, a.account`)
}

// OpenPositions returns the newest snapshot of every position still holding
// more than costbasis.Epsilon units.
func (s *Store) OpenPositions(ctx context.Context) ([]model.CostBasisSnapshot, error) {
	latest, err := s.Latest(ctx)
	if err != nil {
		return nil, err
	}
	var open []model.CostBasisSnapshot
	for _, sn := range latest {
		if sn.CurrentQuantity > costbasis.Epsilon {
			open = append(open, sn)
		}
	}
	return open, nil
}

// Years returns the calendar years that have at least one snapshot, ascending.
func (s *Store) Years(ctx context.Context) ([]int, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT DISTINCT strftime('%Y', record_date) AS year
FROM average_cost_basis
ORDER BY year`)
	if err != nil {
		return nil, fmt.Errorf("querying years: %w", err)
	}
	defer rows.Close()

	var years []int
	for rows.Next() {
		var y string
		if err := rows.Scan(&y); err != nil {
			return nil, fmt.Errorf("scanning year: %w", err)
		}
		n, err := strconv.Atoi(y)
		if err != nil {
			return nil, fmt.Errorf("parsing year %q: %w", y, err)
		}
		years = append(years, n)
	}
	return years, rows.Err()
}

// Activity is what one position booked during a single year.
type Activity struct {
	Year         int
	Symbol       string
	Account      string
	RealizedGain float64
	Dividend     float64
	Fee          float64
}

// Activity returns, per position active in or before year, the realized gain,
// dividend and fee booked during year: the year-end totals minus the totals
// at the end of the previous year.
func (s *Store) Activity(ctx context.Context, year int) ([]Activity, error) {
	current, err := s.YearEnd(ctx, year)
	if err != nil {
		return nil, err
	}
	previous, err := s.YearEnd(ctx, year-1)
	if err != nil {
		return nil, err
	}
	before := make(map[model.GroupKey]model.CostBasisSnapshot, len(previous))
	for _, sn := range previous {
		before[sn.Key()] = sn
	}

	out := make([]Activity, 0, len(current))
	for _, sn := range current {
		prev := before[sn.Key()]
		out = append(out, Activity{
			Year:         year,
			Symbol:       sn.Symbol,
			Account:      sn.Account,
			RealizedGain: sn.CurrentTotalRealizedGain - prev.CurrentTotalRealizedGain,
			Dividend:     sn.CurrentTotalDividend - prev.CurrentTotalDividend,
			Fee:          sn.CurrentTotalFee - prev.CurrentTotalFee,
		})
	}
	return out, nil
}

// Significant reports whether the activity carries a realized gain or a
// dividend larger than costbasis.Epsilon in magnitude.
func (a Activity) Significant() bool {
	return math.Abs(a.RealizedGain) > costbasis.Epsilon || math.Abs(a.Dividend) > costbasis.Epsilon
}

func (s *Store) querySnapshots(ctx context.Context, query string, args ...any) ([]model.CostBasisSnapshot, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying snapshots: %w", err)
	}
	defer rows.Close()
	return scanSnapshots(rows)
}

func scanSnapshots(rows *sql.Rows) ([]model.CostBasisSnapshot, error) {
	var snaps []model.CostBasisSnapshot
	for rows.Next() {
		var (
			sn     model.CostBasisSnapshot
			day    string
			action string
		)
		if err := rows.Scan(
			&sn.SequenceNumber, &day, &sn.Symbol, &sn.Account, &action,
			&sn.CurrentQuantity, &sn.CurrentAverageCostBasis, &sn.CurrentTotalFee,
			&sn.CurrentTotalRealizedGain, &sn.CurrentTotalDividend,
		); err != nil {
			return nil, fmt.Errorf("scanning snapshot: %w", err)
		}
		var err error
		if sn.RecordDate, err = parseDate(day); err != nil {
			return nil, err
		}
		sn.Action = model.Action(action)
		snaps = append(snaps, sn)
	}
	return snaps, rows.Err()
}
