package core

import "time"

// ExpenseFilter narrows ListExpenses. The zero value matches every expense.
type ExpenseFilter struct {
	// CategoryID, when set, keeps only expenses created against that category.
	CategoryID string
	// Period is resolved against the store's clock at query time; empty means
	// PeriodAll.
	Period Period
}

// Bounds is a filter resolved against a concrete instant.
type Bounds struct {
	CategoryID string
	Since      time.Time
	HasSince   bool
}

// Resolve fixes the filter's period start for the given now.
func (f ExpenseFilter) Resolve(now time.Time) Bounds {
	b := Bounds{CategoryID: f.CategoryID}
	b.Since, b.HasSince = f.Period.Start(now)
	return b
}

// Matches applies the resolved bounds to e. There is no upper bound, so
// future-dated expenses inside the period match.
func (b Bounds) Matches(e Expense) bool {
	if b.CategoryID != "" && e.CategoryID != b.CategoryID {
		return false
	}
	if b.HasSince && e.Date.Before(b.Since) {
		return false
	}
	return true
}
