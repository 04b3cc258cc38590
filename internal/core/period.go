package core

import (
	"fmt"
	"strings"
	"time"
)

// Period selects the lower time bound of a query.
type Period string

const (
	PeriodDay   Period = "day"
	PeriodMonth Period = "month"
	PeriodYear  Period = "year"
	PeriodAll   Period = "all"
)

// Periods lists every period in display order.
func Periods() []Period {
	return []Period{PeriodDay, PeriodMonth, PeriodYear, PeriodAll}
}

// ParsePeriod accepts a period name case-insensitively. An empty string is
// PeriodAll.
func ParsePeriod(s string) (Period, error) {
	switch p := Period(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return PeriodAll, nil
	case PeriodDay, PeriodMonth, PeriodYear, PeriodAll:
		return p, nil
	default:
		return "", &ValidationError{Field: "period", Reason: fmt.Sprintf("unknown period %q", s)}
	}
}

func (p Period) String() string { return string(p) }

// IsValid reports whether p is one of the known periods.
func (p Period) IsValid() bool {
	switch p {
	case PeriodDay, PeriodMonth, PeriodYear, PeriodAll:
		return true
	}
	return false
}

// Start returns the inclusive lower bound of p, evaluated in now's location.
// The second result is false for PeriodAll, which has no lower bound.
func (p Period) Start(now time.Time) (time.Time, bool) {
	loc := now.Location()
	switch p {
	case PeriodDay:
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc), true
	case PeriodMonth:
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc), true
	case PeriodYear:
		return time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, loc), true
	default:
		return time.Time{}, false
	}
}
