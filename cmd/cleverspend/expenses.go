package main

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"cleverspend/internal/core"
	"cleverspend/internal/sheets"
)

func expensesCmd() *cobra.Command {
	var period, category string

	cmd := &cobra.Command{
		Use:   "expenses",
		Short: "List and manage expenses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := core.ParsePeriod(period)
			if err != nil {
				return err
			}
			exps, err := app.Expenses.Expenses(cmd.Context(), core.ExpenseFilter{Period: p, CategoryID: category})
			if err != nil {
				return err
			}
			if len(exps) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "No expenses for period %s.\n", p)
				return nil
			}

			loc := app.Config.Location()
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', tabwriter.AlignRight)
			defer w.Flush()
			fmt.Fprintln(w, "ID\tDATE\tAMOUNT\tCATEGORY\tNOTE\t")
			for _, e := range exps {
				name := sheets.UncategorizedLabel
				if e.Category != nil {
					name = e.Category.Name
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t\n",
					e.ID, e.Date.In(loc).Format(time.DateOnly), core.FormatAmount(e.Amount), name, e.Note)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&period, "period", "all", "day, month, year or all")
	cmd.Flags().StringVar(&category, "category", "", "category id to filter by")

	cmd.AddCommand(addExpenseCmd())
	cmd.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an expense",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Expenses.DeleteExpense(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted expense %s\n", args[0])
			return nil
		},
	})

	return cmd
}

func addExpenseCmd() *cobra.Command {
	var category, date, note string

	cmd := &cobra.Command{
		Use:   "add <amount>",
		Short: "Record an expense",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := core.ParseAmount(args[0])
			if err != nil {
				return err
			}

			loc := app.Config.Location()
			when := time.Now().In(loc)
			if date = strings.TrimSpace(date); date != "" {
				when, err = time.ParseInLocation(time.DateOnly, date, loc)
				if err != nil {
					return &core.ValidationError{Field: "date", Reason: "date must be YYYY-MM-DD"}
				}
			}

			exp, err := app.Expenses.AddExpense(cmd.Context(), core.ExpenseInput{
				Amount:     amount,
				Date:       when,
				Note:       note,
				CategoryID: category,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Recorded %s on %s (%s)\n",
				core.FormatAmount(exp.Amount), exp.Date.In(loc).Format(time.DateOnly), exp.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "category id (required)")
	cmd.Flags().StringVar(&date, "date", "", "date as YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&note, "note", "", "free-form note")
	_ = cmd.MarkFlagRequired("category")
	return cmd
}
