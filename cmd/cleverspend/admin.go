package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"cleverspend/internal/core"
)

func resetCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete every expense and category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes {
				fmt.Fprint(cmd.OutOrStdout(), "This deletes all expenses and categories. Type 'yes' to continue: ")
				answer, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if strings.TrimSpace(answer) != "yes" {
					return fmt.Errorf("reset aborted")
				}
			}
			if err := app.Expenses.Reset(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Store reset.")
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "skip the confirmation prompt")
	return cmd
}

func exportCmd() *cobra.Command {
	var period string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Append a period's expenses to the configured spreadsheet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := core.ParsePeriod(period)
			if err != nil {
				return err
			}
			exports, err := app.Exports(cmd.Context())
			if err != nil {
				return err
			}
			n, where, err := exports.ExportPeriod(cmd.Context(), p)
			if err != nil {
				return err
			}
			if n == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "No expenses for period %s.\n", p)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d expenses to %s\n", n, where)
			return nil
		},
	}
	cmd.Flags().StringVar(&period, "period", "month", "day, month, year or all")
	return cmd
}
