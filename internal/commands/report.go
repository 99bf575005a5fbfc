package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/basis/internal/report"
)

func newReportCommand(configPath *string) *cobra.Command {
	var year int
	var raw bool
	var style string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print realized gain, fee and holdings summaries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadProject(*configPath)
			if err != nil {
				return err
			}
			return runReport(cmd.Context(), p, year, raw, style)
		},
	}

	cmd.Flags().IntVar(&year, "year", 0, "only report this year")
	cmd.Flags().BoolVar(&raw, "raw", false, "print markdown without rendering")
	cmd.Flags().StringVar(&style, "style", "auto", "glamour style (auto, dark, light, notty)")

	return cmd
}

func runReport(ctx context.Context, p *project, year int, raw bool, style string) error {
	store, err := p.openLedger(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	md, err := report.Markdown(ctx, store, report.Options{Year: year})
	if err != nil {
		return fmt.Errorf("building report: %w", err)
	}
	if raw {
		fmt.Print(md)
		return nil
	}

	out, err := report.Render(md, style, 100)
	if err != nil {
		return err
	}
	fmt.Print(out)
	return nil
}
