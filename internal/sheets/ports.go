package sheets

import (
	"context"
	"time"

	"cleverspend/internal/core"
)

// ExpenseExporter is the outbound port for spreadsheet export.
type ExpenseExporter interface {
	// AppendExpenses writes one row per expense and returns a reference to
	// the written range.
	AppendExpenses(ctx context.Context, expenses []core.Expense) (rowRef string, err error)
}

// UncategorizedLabel stands in for the category of an orphaned expense.
const UncategorizedLabel = "Uncategorized"

// Row renders an expense as spreadsheet cells. Dates are written in loc as
// YYYY-MM-DD; amounts keep two decimals.
func Row(e core.Expense, loc *time.Location) []any {
	if loc == nil {
		loc = time.Local
	}
	category := UncategorizedLabel
	if e.Category != nil {
		category = e.Category.Name
	}
	return []any{
		e.Date.In(loc).Format(time.DateOnly),
		core.FormatAmount(e.Amount),
		category,
		e.Note,
	}
}

// Rows renders expenses in order.
func Rows(expenses []core.Expense, loc *time.Location) [][]any {
	out := make([][]any, 0, len(expenses))
	for _, e := range expenses {
		out = append(out, Row(e, loc))
	}
	return out
}
