package commands

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/cleared-dev/basis/internal/model"
)

func newHistoryCommand(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history <symbol> <account>",
		Short: "Print the snapshot history of one position",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadProject(*configPath)
			if err != nil {
				return err
			}
			return runHistory(cmd.Context(), p, model.GroupKey{Symbol: args[0], Account: args[1]})
		},
	}

	return cmd
}

func runHistory(ctx context.Context, p *project, key model.GroupKey) error {
	store, err := p.openLedger(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	chain, err := store.ByGroup(ctx, key)
	if err != nil {
		return err
	}
	if len(chain) == 0 {
		return fmt.Errorf("no history for %s", key)
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "Seq\tDate\tAction\tQuantity\tAverage cost\tFee\tRealized gain\tDividend\t")
	for _, sn := range chain {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t\n",
			sn.SequenceNumber,
			sn.RecordDate.Format("2006-01-02"),
			sn.Action,
			decimal.NewFromFloat(sn.CurrentQuantity).Round(6).String(),
			decimal.NewFromFloat(sn.CurrentAverageCostBasis).StringFixed(4),
			decimal.NewFromFloat(sn.CurrentTotalFee).StringFixed(2),
			decimal.NewFromFloat(sn.CurrentTotalRealizedGain).StringFixed(2),
			decimal.NewFromFloat(sn.CurrentTotalDividend).StringFixed(2),
		)
	}
	return tw.Flush()
}
