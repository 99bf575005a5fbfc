package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/cleared-dev/basis/internal/costbasis"
	"github.com/cleared-dev/basis/internal/importer"
	"github.com/cleared-dev/basis/internal/ledger"
	"github.com/cleared-dev/basis/internal/model"
	"github.com/cleared-dev/basis/internal/position"
)

// ErrLedgerNotEmpty is returned when import would overwrite existing history.
var ErrLedgerNotEmpty = errors.New("ledger already holds transactions (use --force to rebuild it)")

func newImportCommand(configPath *string) *cobra.Command {
	var inbox string
	var force bool

	cmd := &cobra.Command{
		Use:   "import [files...]",
		Short: "Import brokerage transactions and rebuild the cost basis ledger",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadProject(*configPath)
			if err != nil {
				return err
			}
			return runImport(cmd.Context(), p, args, inbox, force)
		},
	}

	cmd.Flags().StringVar(&inbox, "inbox", "", "import every .csv/.xlsx in this directory and move it to processed/")
	cmd.Flags().BoolVar(&force, "force", false, "delete an existing ledger before importing")

	return cmd
}

func runImport(ctx context.Context, p *project, files []string, inbox string, force bool) error {
	var inboxFiles []importer.FileInfo
	if inbox != "" {
		var err error
		inboxFiles, err = importer.Scan(inbox)
		if err != nil {
			return err
		}
		for _, f := range inboxFiles {
			files = append(files, f.Path)
		}
	}
	if len(files) == 0 {
		return errors.New("no transaction files to import")
	}

	// Parse and normalize everything before touching the ledger.
	reg := p.registry()
	opts := p.normalizeOptions()
	var records []model.TransactionRecord
	for _, path := range files {
		rows, err := reg.ParseFile(path)
		if err != nil {
			return err
		}
		recs, err := importer.NormalizeAll(rows, opts)
		if err != nil {
			return fmt.Errorf("%s: %w", filepath.Base(path), err)
		}
		p.log.WithFields(logrus.Fields{
			"file":    filepath.Base(path),
			"records": len(recs),
		}).Info("parsed transactions")
		records = append(records, recs...)
	}

	store, err := p.freshLedger(ctx, force)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.AppendTransactions(ctx, records); err != nil {
		return err
	}
	next, err := store.NextSequence(ctx)
	if err != nil {
		return err
	}
	res, err := costbasis.Build(ctx, records, store, costbasis.BuildOptions{
		Ignore:   position.IgnoreSet(p.cfg.IgnoreSymbols),
		Sequence: costbasis.NewSequence(next),
		Log:      p.log,
	})
	if err != nil {
		return fmt.Errorf("building cost basis: %w", err)
	}
	p.log.WithFields(logrus.Fields{
		"groups":    res.Groups,
		"snapshots": res.Snapshots,
		"ignored":   res.Ignored,
	}).Info("ledger rebuilt")

	for _, f := range inboxFiles {
		if err := importer.MarkProcessed(inbox, f.Name); err != nil {
			return err
		}
	}

	fmt.Printf("Imported %d transactions into %d positions (%d snapshots) at %s\n",
		len(records), res.Groups, res.Snapshots, p.ledgerPath())
	return nil
}

// freshLedger opens an empty ledger, deleting a populated one only when
// force is set.
func (p *project) freshLedger(ctx context.Context, force bool) (*ledger.Store, error) {
	path := p.ledgerPath()
	store, err := ledger.Open(ctx, path, p.log)
	if err != nil {
		return nil, err
	}
	txs, err := store.Transactions(ctx)
	if err != nil {
		store.Close()
		return nil, err
	}
	next, err := store.NextSequence(ctx)
	if err != nil {
		store.Close()
		return nil, err
	}
	if len(txs) == 0 && next == 0 {
		return store, nil
	}

	if err := store.Close(); err != nil {
		return nil, fmt.Errorf("closing ledger: %w", err)
	}
	if !force {
		return nil, fmt.Errorf("%s: %w", path, ErrLedgerNotEmpty)
	}
	p.log.WithField("path", path).Warn("removing existing ledger")
	if err := os.Remove(path); err != nil {
		return nil, fmt.Errorf("removing ledger: %w", err)
	}
	return ledger.Open(ctx, path, p.log)
}
