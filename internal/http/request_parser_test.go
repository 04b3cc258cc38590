package http

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cleverspend/internal/core"
)

func TestParseDate(t *testing.T) {
	rome, err := time.LoadLocation("Europe/Rome")
	require.NoError(t, err)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, rome)

	got, err := parseDate("", now, rome)
	require.NoError(t, err)
	assert.True(t, got.Equal(now))

	got, err = parseDate("2025-05-31", now, rome)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 5, 31, 0, 0, 0, 0, rome), got)

	got, err = parseDate("2025-05-31T10:00:00Z", now, rome)
	require.NoError(t, err)
	assert.True(t, got.Equal(time.Date(2025, 5, 31, 10, 0, 0, 0, time.UTC)))

	_, err = parseDate("yesterday", now, rome)
	assert.True(t, core.IsValidation(err))
}

func TestCreateExpenseRequest_ToInput(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	req := createExpenseRequest{Amount: " -4,20 ", Note: "refund\x00 ", CategoryID: " c1 "}

	in, err := req.toInput(now, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, "-4.2", in.Amount.String())
	assert.Equal(t, "refund", in.Note)
	assert.Equal(t, "c1", in.CategoryID)
	assert.True(t, in.Date.Equal(now))

	_, err = createExpenseRequest{Amount: ""}.toInput(now, time.UTC)
	assert.True(t, core.IsValidation(err))
}

func TestParseExpenseFilter(t *testing.T) {
	f, err := parseExpenseFilter(httptest.NewRequest("GET", "/api/expenses?period=Month&category=%20abc", nil))
	require.NoError(t, err)
	assert.Equal(t, core.ExpenseFilter{Period: core.PeriodMonth, CategoryID: "abc"}, f)

	f, err = parseExpenseFilter(httptest.NewRequest("GET", "/api/expenses", nil))
	require.NoError(t, err)
	assert.Equal(t, core.PeriodAll, f.Period)

	_, err = parseExpenseFilter(httptest.NewRequest("GET", "/api/expenses?period=week", nil))
	assert.True(t, core.IsValidation(err))
}

func TestSanitizeInput(t *testing.T) {
	assert.Equal(t, "a\tb", sanitizeInput("  a\tb\x07 "))
	assert.Equal(t, "line1\nline2", sanitizeInput("line1\nline2"))
}
