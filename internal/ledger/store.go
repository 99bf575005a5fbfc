// Package ledger persists transactions and cost-basis snapshots in SQLite
// and answers the reporting queries over them.
package ledger

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/pressly/goose/v3"
	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"github.com/cleared-dev/basis/internal/model"
)

//go:embed migrations/*.sql
var migrations embed.FS

const dateFormat = "2006-01-02"

// goose keeps its configuration in package globals.
var gooseMu sync.Mutex

// Store is the SQLite-backed ledger.
type Store struct {
	db  *sql.DB
	log logrus.FieldLogger
}

// Open opens (creating if needed) the ledger at path and applies pending
// migrations. A nil log discards output.
func Open(ctx context.Context, path string, log *logrus.Logger) (*Store, error) {
	if log == nil {
		log = logrus.New()
		log.SetOutput(io.Discard)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening ledger %s: %w", path, err)
	}
	// A single connection keeps in-memory databases and write ordering sane.
	db.SetMaxOpenConns(1)

	if err := migrate(ctx, db, log); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db, log: log.WithField("ledger", path)}, nil
}

func migrate(ctx context.Context, db *sql.DB, log *logrus.Logger) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(migrations)
	goose.SetLogger(log)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("migrating ledger: %w", err)
	}
	return nil
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// AppendTransactions stores normalized records in ingestion order,
// including those whose symbol is excluded from cost-basis computation.
func (s *Store) AppendTransactions(ctx context.Context, records []model.TransactionRecord) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
INSERT INTO investment_transactions (record_date, symbol, action, quantity, price, account, fee, fee_currency)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("preparing transaction insert: %w", err)
		}
		defer stmt.Close()

		for i, r := range records {
			if _, err := stmt.ExecContext(ctx,
				r.RecordDate.Format(dateFormat), r.Symbol, string(r.Action),
				r.Quantity, r.Price, r.Account, r.Fee, r.FeeCurrency,
			); err != nil {
				return fmt.Errorf("inserting transaction %d: %w", i, err)
			}
		}
		return nil
	})
}

// Transactions returns every stored record in ingestion order.
func (s *Store) Transactions(ctx context.Context) ([]model.TransactionRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT record_date, symbol, action, quantity, price, account, fee, fee_currency
FROM investment_transactions
ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("querying transactions: %w", err)
	}
	defer rows.Close()

	var records []model.TransactionRecord
	for rows.Next() {
		var (
			r      model.TransactionRecord
			day    string
			action string
		)
		if err := rows.Scan(&day, &r.Symbol, &action, &r.Quantity, &r.Price, &r.Account, &r.Fee, &r.FeeCurrency); err != nil {
			return nil, fmt.Errorf("scanning transaction: %w", err)
		}
		if r.RecordDate, err = parseDate(day); err != nil {
			return nil, err
		}
		r.Action = model.Action(action)
		records = append(records, r)
	}
	return records, rows.Err()
}

// Append writes snapshots in one database transaction. Existing rows are
// never touched; a duplicate sequence number fails the whole batch.
func (s *Store) Append(ctx context.Context, snaps []model.CostBasisSnapshot) error {
	if len(snaps) == 0 {
		return nil
	}
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
INSERT INTO average_cost_basis (
    sequence_number, record_date, symbol, account, action,
    current_quantity, current_average_cost_basis, current_total_fee,
    current_total_realized_gain, current_total_dividend)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("preparing snapshot insert: %w", err)
		}
		defer stmt.Close()

		for _, sn := range snaps {
			if _, err := stmt.ExecContext(ctx,
				sn.SequenceNumber, sn.RecordDate.Format(dateFormat), sn.Symbol, sn.Account, string(sn.Action),
				sn.CurrentQuantity, sn.CurrentAverageCostBasis, sn.CurrentTotalFee,
				sn.CurrentTotalRealizedGain, sn.CurrentTotalDividend,
			); err != nil {
				return fmt.Errorf("inserting snapshot %d: %w", sn.SequenceNumber, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.log.WithFields(logrus.Fields{
		"first": snaps[0].SequenceNumber,
		"count": len(snaps),
	}).Debug("appended snapshots")
	return nil
}

// NextSequence returns the sequence number following the highest stored one,
// or 0 for an empty ledger.
func (s *Store) NextSequence(ctx context.Context) (int64, error) {
	var next int64
	err := s.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(sequence_number) + 1, 0) FROM average_cost_basis`).Scan(&next)
	if err != nil {
		return 0, fmt.Errorf("reading next sequence: %w", err)
	}
	return next, nil
}

func (s *Store) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing: %w", err)
	}
	return nil
}

func parseDate(s string) (time.Time, error) {
	// The driver may hand DATE columns back with a time part.
	if len(s) > len(dateFormat) {
		s = s[:len(dateFormat)]
	}
	t, err := time.Parse(dateFormat, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing stored date %q: %w", s, err)
	}
	return t, nil
}
