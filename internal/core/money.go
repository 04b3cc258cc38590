// Package core provides amount parsing for user-entered strings.
//
// Amounts are kept as exact decimals; only display code rounds them.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount converts a user-entered amount to a decimal.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators and
// surrounding whitespace. Negative values parse: the store accepts them and
// aggregation sums them like any other amount.
//
// Examples:
//
//	ParseAmount("12.34")  -> 12.34
//	ParseAmount("12,345") -> 12.345 (no rounding)
//	ParseAmount("-3")     -> -3
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, &ValidationError{Field: "amount", Reason: "amount is required"}
	}
	// Normalize decimal comma to dot
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, &ValidationError{Field: "amount", Reason: "invalid amount " + s}
	}
	return d, nil
}

// FormatAmount renders an amount with the two-decimal display convention.
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}
