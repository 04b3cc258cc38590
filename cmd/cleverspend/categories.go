package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"cleverspend/internal/services"
)

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Create the default categories if none exist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			seeded, err := app.Expenses.SeedDefaults(cmd.Context(), services.DefaultSeedCategories)
			if err != nil {
				return err
			}
			if !seeded {
				fmt.Fprintln(cmd.OutOrStdout(), "Categories already present, nothing to seed.")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %d default categories.\n", len(services.DefaultSeedCategories))
			return nil
		},
	}
}

func categoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "List and manage categories",
		Args:  cobra.NoArgs,
		RunE:  listCategories,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List all categories",
		Args:  cobra.NoArgs,
		RunE:  listCategories,
	})
	cmd.AddCommand(addCategoryCmd())
	cmd.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a custom category; its expenses are kept",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Expenses.DeleteCategory(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted category %s\n", args[0])
			return nil
		},
	})

	return cmd
}

func listCategories(cmd *cobra.Command, _ []string) error {
	cats, err := app.Expenses.Categories(cmd.Context())
	if err != nil {
		return err
	}
	if len(cats) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No categories. Run 'cleverspend seed' to create the defaults.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	defer w.Flush()
	fmt.Fprintln(w, "ID\tNAME\tICON\tCOLOR\tCUSTOM")
	for _, c := range cats {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%t\n", c.ID, c.Name, c.Icon, c.Color, c.IsCustom)
	}
	return nil
}

func addCategoryCmd() *cobra.Command {
	var icon, color string

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a custom category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := app.Expenses.AddCustomCategory(cmd.Context(), args[0], icon, color)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created category %q (%s)\n", cat.Name, cat.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&icon, "icon", "tag.fill", "icon name")
	cmd.Flags().StringVar(&color, "color", "gray", "color name")
	return cmd
}
