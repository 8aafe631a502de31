package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mrlokans/readinglog/internal/entrypoint"
	"github.com/mrlokans/readinglog/internal/stats"
)

func (a *app) statsCommand() *cobra.Command {
	var (
		days int
		fill bool
	)
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show reading totals, streaks and daily pages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("days") {
				days = a.cfg.Reading.ActivityDays
			}
			if days <= 0 {
				return fmt.Errorf("days must be positive, got %d", days)
			}

			return a.withRuntime(cmd, func(ctx context.Context, rt *entrypoint.Runtime) error {
				state := rt.Store.State()
				today := rt.Store.Today()
				out := cmd.OutOrStdout()

				printSummary(out, stats.Summarize(state, today, rt.Store.Location()))

				points := stats.DailyActivity(state.ReadingSessions, today, days)
				if fill {
					points = stats.FillDateGaps(points)
				}
				fmt.Fprintf(out, "\nLast %d days\n", days)
				printActivity(out, points)
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&days, "days", 30, "Size of the activity window ending today")
	cmd.Flags().BoolVar(&fill, "fill", false, "Include days without reading")
	return cmd
}
