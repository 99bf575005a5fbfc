package commands

import (
	"cmp"
	"context"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/basis/internal/ledger"
	"github.com/cleared-dev/basis/internal/model"
)

func newExportCommand(configPath *string) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the cost basis snapshots as CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadProject(*configPath)
			if err != nil {
				return err
			}
			return runExport(cmd.Context(), p, out)
		},
	}

	cmd.Flags().StringVar(&out, "out", "", "output file (default stdout)")

	return cmd
}

func runExport(ctx context.Context, p *project, out string) error {
	store, err := p.openLedger(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	snaps, err := allSnapshots(ctx, store)
	if err != nil {
		return err
	}

	var w io.Writer = os.Stdout
	if out != "" {
		f, err := os.Create(out)
		if err != nil {
			return fmt.Errorf("creating %s: %w", out, err)
		}
		defer f.Close()
		w = f
	}
	if err := ledger.WriteSnapshots(w, snaps); err != nil {
		return fmt.Errorf("writing snapshots: %w", err)
	}

	p.log.WithField("snapshots", len(snaps)).Info("exported ledger")
	return nil
}

// allSnapshots returns every snapshot chain, ordered by sequence number.
func allSnapshots(ctx context.Context, store *ledger.Store) ([]model.CostBasisSnapshot, error) {
	latest, err := store.Latest(ctx)
	if err != nil {
		return nil, err
	}
	var snaps []model.CostBasisSnapshot
	for _, sn := range latest {
		chain, err := store.ByGroup(ctx, sn.Key())
		if err != nil {
			return nil, err
		}
		snaps = append(snaps, chain...)
	}
	slices.SortFunc(snaps, func(a, b model.CostBasisSnapshot) int {
		return cmp.Compare(a.SequenceNumber, b.SequenceNumber)
	})
	return snaps, nil
}
