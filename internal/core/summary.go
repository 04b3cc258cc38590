package core

import "github.com/shopspring/decimal"

// CategoryAggregate is the spending of one category within a set of expenses.
type CategoryAggregate struct {
	CategoryID string          `json:"category_id"`
	Name       string          `json:"name"`
	Amount     decimal.Decimal `json:"amount"`
	// Percentage is a fraction in [0, 1] for non-negative data.
	Percentage float64 `json:"percentage"`
	Color      string  `json:"color"`
}

// ArcSpan is one pie slice in degrees, clockwise from -90 (12 o'clock).
type ArcSpan struct {
	StartAngle float64 `json:"start_angle"`
	EndAngle   float64 `json:"end_angle"`
}

// Sweep returns the angular width of the span.
func (s ArcSpan) Sweep() float64 { return s.EndAngle - s.StartAngle }

// LabelPosition places an annotation for a slice.
type LabelPosition struct {
	CategoryID     string  `json:"category_id"`
	Angle          float64 `json:"angle"`
	RadiusFraction float64 `json:"radius_fraction"`
	// X and Y are offsets from the chart center in radius units, screen
	// orientation (y grows downward).
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Summary is the statistics view of one period.
type Summary struct {
	Period Period `json:"period"`
	// Total sums every expense in the period, orphans included.
	Total decimal.Decimal `json:"total"`
	// CategorizedTotal sums only expenses with a resolvable category.
	CategorizedTotal decimal.Decimal     `json:"categorized_total"`
	ExpenseCount     int                 `json:"expense_count"`
	Categories       []CategoryAggregate `json:"categories"`
	Arcs             []ArcSpan           `json:"arcs"`
	Labels           []LabelPosition     `json:"labels"`
}
