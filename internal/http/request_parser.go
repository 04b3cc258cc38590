// This file turns request bodies and query strings into store inputs.

package http

import (
	"net/http"
	"strings"
	"time"

	"cleverspend/internal/core"
)

type createCategoryRequest struct {
	Name  string `json:"name"`
	Icon  string `json:"icon"`
	Color string `json:"color"`
}

func (req createCategoryRequest) sanitized() createCategoryRequest {
	return createCategoryRequest{
		Name:  sanitizeInput(req.Name),
		Icon:  sanitizeInput(req.Icon),
		Color: sanitizeInput(req.Color),
	}
}

type createExpenseRequest struct {
	// Amount is a decimal string; "12.50" and "12,50" are both accepted.
	Amount     string `json:"amount"`
	Date       string `json:"date"`
	Note       string `json:"note"`
	CategoryID string `json:"category_id"`
}

// toInput converts the request. Date accepts YYYY-MM-DD (midnight in loc)
// or RFC 3339 and defaults to now.
func (req createExpenseRequest) toInput(now time.Time, loc *time.Location) (core.ExpenseInput, error) {
	amount, err := core.ParseAmount(req.Amount)
	if err != nil {
		return core.ExpenseInput{}, err
	}

	date, err := parseDate(req.Date, now, loc)
	if err != nil {
		return core.ExpenseInput{}, err
	}

	return core.ExpenseInput{
		Amount:     amount,
		Date:       date,
		Note:       sanitizeInput(req.Note),
		CategoryID: strings.TrimSpace(req.CategoryID),
	}, nil
}

func parseDate(s string, now time.Time, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return now, nil
	}
	if t, err := time.ParseInLocation(time.DateOnly, s, loc); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Time{}, &core.ValidationError{Field: "date", Reason: "date must be YYYY-MM-DD or RFC 3339"}
}

// parseExpenseFilter reads ?period= and ?category= from the query string.
func parseExpenseFilter(r *http.Request) (core.ExpenseFilter, error) {
	q := r.URL.Query()
	period, err := core.ParsePeriod(q.Get("period"))
	if err != nil {
		return core.ExpenseFilter{}, err
	}
	return core.ExpenseFilter{
		Period:     period,
		CategoryID: strings.TrimSpace(q.Get("category")),
	}, nil
}
