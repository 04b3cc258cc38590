package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"cleverspend/internal/core"
)

func statsCmd() *cobra.Command {
	var period string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Summarize spending by category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := core.ParsePeriod(period)
			if err != nil {
				return err
			}
			sum, err := app.Stats.Summary(cmd.Context(), p)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Period: %s\nTotal expenses: %s (%d)\n", sum.Period, core.FormatAmount(sum.Total), sum.ExpenseCount)
			if !sum.CategorizedTotal.Equal(sum.Total) {
				fmt.Fprintf(out, "Categorized: %s\n", core.FormatAmount(sum.CategorizedTotal))
			}
			if len(sum.Categories) == 0 {
				fmt.Fprintln(out, "No categorized expenses.")
				return nil
			}

			fmt.Fprintln(out)
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "CATEGORY\tAMOUNT\tSHARE\tARC")
			for i, agg := range sum.Categories {
				arc := sum.Arcs[i]
				fmt.Fprintf(w, "%s\t%s\t%.1f%%\t%.1f° → %.1f°\n",
					agg.Name, core.FormatAmount(agg.Amount), agg.Percentage*100, arc.StartAngle, arc.EndAngle)
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&period, "period", "month", "day, month, year or all")
	return cmd
}
