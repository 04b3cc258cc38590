// Package worker holds background consumers of change events.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"cleverspend/internal/amqp"
	"cleverspend/internal/core"
	"cleverspend/internal/services"
	"cleverspend/internal/sheets"
)

// ExportWorker appends newly created expenses to a spreadsheet as their
// change events arrive. It works from the snapshot each event carries and
// never opens the store.
type ExportWorker struct {
	exporter sheets.ExpenseExporter
}

func NewExportWorker(exporter sheets.ExpenseExporter) *ExportWorker {
	return &ExportWorker{exporter: exporter}
}

// Patterns returns the routing patterns the worker needs bound to its queue.
func (w *ExportWorker) Patterns(routingKey string) []string {
	if routingKey == "" {
		return []string{services.KindExpenseCreated}
	}
	return []string{routingKey + "." + services.KindExpenseCreated}
}

// HandleEvent exports the expense carried by an expense.created event.
// Other kinds, and events without a snapshot, are acknowledged and ignored.
func (w *ExportWorker) HandleEvent(ctx context.Context, ev amqp.ChangeEvent) error {
	if ev.Kind != services.KindExpenseCreated {
		slog.DebugContext(ctx, "Ignoring change event", "kind", ev.Kind)
		return nil
	}
	if ev.Expense == nil {
		slog.WarnContext(ctx, "Change event has no expense snapshot, skipping export", "expense_id", ev.EntityID)
		return nil
	}

	exp := *ev.Expense
	where, err := w.exporter.AppendExpenses(ctx, []core.Expense{exp})
	if err != nil {
		return fmt.Errorf("export expense: %w", err)
	}

	slog.InfoContext(ctx, "Exported expense",
		"expense_id", exp.ID,
		"amount", core.FormatAmount(exp.Amount),
		"range", where)
	return nil
}
