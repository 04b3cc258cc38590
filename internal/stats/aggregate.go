// Package stats turns expense lists into per-category aggregates and the
// geometry of a pie chart. Everything here is a pure function of its input
// except Service, which reads the store on every call.
package stats

import (
	"sort"

	"github.com/shopspring/decimal"

	"cleverspend/internal/core"
)

// AggregateByCategory groups expenses by their resolved category. Orphaned
// expenses have no category to group under and are dropped. Percentages are
// fractions of the grouped total, or exactly 0 when that total is not
// positive. The result is ordered by amount descending, then name, then id.
func AggregateByCategory(expenses []core.Expense) []core.CategoryAggregate {
	index := make(map[string]int)
	out := make([]core.CategoryAggregate, 0)

	for _, e := range expenses {
		if e.Category == nil {
			continue
		}
		i, ok := index[e.Category.ID]
		if !ok {
			i = len(out)
			index[e.Category.ID] = i
			out = append(out, core.CategoryAggregate{
				CategoryID: e.Category.ID,
				Name:       e.Category.Name,
				Color:      e.Category.Color,
				Amount:     decimal.Zero,
			})
		}
		out[i].Amount = out[i].Amount.Add(e.Amount)
	}

	total := decimal.Zero
	for _, a := range out {
		total = total.Add(a.Amount)
	}
	for i := range out {
		out[i].Percentage = share(out[i].Amount, total)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if c := out[i].Amount.Cmp(out[j].Amount); c != 0 {
			return c > 0
		}
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].CategoryID < out[j].CategoryID
	})

	return out
}

// Total sums the aggregate amounts.
func Total(aggregates []core.CategoryAggregate) decimal.Decimal {
	total := decimal.Zero
	for _, a := range aggregates {
		total = total.Add(a.Amount)
	}
	return total
}

// SumExpenses sums every expense, orphans included.
func SumExpenses(expenses []core.Expense) decimal.Decimal {
	total := decimal.Zero
	for _, e := range expenses {
		total = total.Add(e.Amount)
	}
	return total
}

func share(amount, total decimal.Decimal) float64 {
	if !total.IsPositive() {
		return 0
	}
	return amount.DivRound(total, 16).InexactFloat64()
}
