package services

import (
	"context"
	"fmt"
	"log/slog"

	"cleverspend/internal/core"
	"cleverspend/internal/sheets"
)

// ExpenseLister is the read side of the store an export needs.
type ExpenseLister interface {
	ListExpenses(ctx context.Context, f core.ExpenseFilter) ([]core.Expense, error)
}

// ExportService copies a period's expenses to a spreadsheet.
type ExportService struct {
	expenses ExpenseLister
	exporter sheets.ExpenseExporter
}

func NewExportService(store ExpenseLister, exporter sheets.ExpenseExporter) *ExportService {
	return &ExportService{expenses: store, exporter: exporter}
}

// ExportPeriod appends the period's expenses, newest first, and returns how
// many rows were written together with the written range.
func (s *ExportService) ExportPeriod(ctx context.Context, period core.Period) (int, string, error) {
	if !period.IsValid() {
		return 0, "", &core.ValidationError{Field: "period", Reason: fmt.Sprintf("unknown period %q", period)}
	}

	exps, err := s.expenses.ListExpenses(ctx, core.ExpenseFilter{Period: period})
	if err != nil {
		return 0, "", fmt.Errorf("list expenses: %w", err)
	}
	if len(exps) == 0 {
		slog.InfoContext(ctx, "Nothing to export", "period", period)
		return 0, "", nil
	}

	ref, err := s.exporter.AppendExpenses(ctx, exps)
	if err != nil {
		return 0, "", fmt.Errorf("export %d expenses: %w", len(exps), err)
	}

	slog.InfoContext(ctx, "Exported expenses", "period", period, "rows", len(exps), "range", ref)
	return len(exps), ref, nil
}
