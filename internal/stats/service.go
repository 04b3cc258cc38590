package stats

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"cleverspend/internal/core"
)

// ExpenseLister is the read side of the store the statistics need.
type ExpenseLister interface {
	ListExpenses(ctx context.Context, f core.ExpenseFilter) ([]core.Expense, error)
}

// Service recomputes statistics from the store on every call; it keeps no
// state between calls.
type Service struct {
	expenses    ExpenseLister
	labelRadius float64
}

func NewService(expenses ExpenseLister) *Service {
	return &Service{
		expenses:    expenses,
		labelRadius: DefaultLabelRadius,
	}
}

// Summary aggregates the expenses of one period and lays out its chart.
func (s *Service) Summary(ctx context.Context, period core.Period) (core.Summary, error) {
	if period == "" {
		period = core.PeriodAll
	}
	if !period.IsValid() {
		return core.Summary{}, &core.ValidationError{Field: "period", Reason: fmt.Sprintf("unknown period %q", period)}
	}

	expenses, err := s.expenses.ListExpenses(ctx, core.ExpenseFilter{Period: period})
	if err != nil {
		return core.Summary{}, fmt.Errorf("list expenses for %s: %w", period, err)
	}

	aggregates := AggregateByCategory(expenses)
	arcs := ComputeArcSpans(aggregates)

	summary := core.Summary{
		Period:           period,
		Total:            SumExpenses(expenses),
		CategorizedTotal: Total(aggregates),
		ExpenseCount:     len(expenses),
		Categories:       aggregates,
		Arcs:             arcs,
		Labels:           Labels(aggregates, arcs, s.labelRadius),
	}

	slog.DebugContext(ctx, "Computed summary",
		"period", period,
		"expense_count", summary.ExpenseCount,
		"categories", len(aggregates),
		"total", summary.Total.String())

	return summary, nil
}

// Overview computes the summary of every period concurrently. Each summary
// reads its own consistent snapshot of the store.
func (s *Service) Overview(ctx context.Context) (map[core.Period]core.Summary, error) {
	periods := core.Periods()
	results := make([]core.Summary, len(periods))

	g, gctx := errgroup.WithContext(ctx)
	for i, p := range periods {
		g.Go(func() error {
			sum, err := s.Summary(gctx, p)
			if err != nil {
				return err
			}
			results[i] = sum
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("overview: %w", err)
	}

	out := make(map[core.Period]core.Summary, len(periods))
	for i, p := range periods {
		out[p] = results[i]
	}
	return out, nil
}
