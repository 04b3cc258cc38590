package google

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	goption "google.golang.org/api/option"

	"cleverspend/internal/core"
)

func TestYearPrefixedName(t *testing.T) {
	tests := []struct {
		base string
		year int
		want string
	}{
		{"Expenses", 2025, "2025 Expenses"},
		{"  Expenses ", 2025, "2025 Expenses"},
		{"2024 Expenses", 2025, "2024 Expenses"},
		{"1800 Things", 2025, "2025 1800 Things"},
		{"", 2025, ""},
	}
	for _, tt := range tests {
		t.Run(tt.base, func(t *testing.T) {
			assert.Equal(t, tt.want, yearPrefixedName(tt.base, tt.year))
		})
	}
}

func TestNew_MissingSpreadsheetID(t *testing.T) {
	_, err := New(context.Background(), " ", "Expenses", time.UTC, goption.WithoutAuthentication())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing spreadsheet id")
}

func TestNewFromEnv_MissingCredentials(t *testing.T) {
	t.Setenv("GOOGLE_SERVICE_ACCOUNT_JSON", "")
	t.Setenv("GOOGLE_SERVICE_ACCOUNT_FILE", "")
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")

	_, err := NewFromEnv(context.Background(), "sheet-id", "Expenses", time.UTC)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing service account credentials")
}

func TestAppendExpenses(t *testing.T) {
	var gotPath string
	var gotBody struct {
		Values [][]any `json:"values"`
	}
	var gotQuery string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		b, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(b, &gotBody)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"updates":{"updatedRange":"'2025 Expenses'!A5:D6","updatedRows":2}}`)
	}))
	defer srv.Close()

	x, err := New(context.Background(), "sheet-id", "2025 Expenses", time.UTC,
		goption.WithEndpoint(srv.URL+"/"),
		goption.WithoutAuthentication(),
		goption.WithHTTPClient(srv.Client()))
	require.NoError(t, err)

	food := &core.Category{ID: "c1", Name: "Food"}
	day := time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)
	ref, err := x.AppendExpenses(context.Background(), []core.Expense{
		{Amount: decimal.RequireFromString("9.99"), Date: day, Note: "pizza", Category: food},
		{Amount: decimal.NewFromInt(4), Date: day, CategoryID: "gone"},
	})
	require.NoError(t, err)

	assert.Equal(t, "'2025 Expenses'!A5:D6", ref)
	assert.True(t, strings.HasSuffix(gotPath, ":append"), "path %s", gotPath)
	assert.Contains(t, gotPath, "/spreadsheets/sheet-id/values/")
	assert.Contains(t, gotQuery, "valueInputOption=USER_ENTERED")
	require.Len(t, gotBody.Values, 2)
	assert.Equal(t, []any{"2025-03-14", "9.99", "Food", "pizza"}, gotBody.Values[0])
	assert.Equal(t, "Uncategorized", gotBody.Values[1][2])
}

func TestAppendExpenses_EmptyIsNoop(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	x, err := New(context.Background(), "sheet-id", "Expenses", time.UTC,
		goption.WithEndpoint(srv.URL+"/"),
		goption.WithoutAuthentication())
	require.NoError(t, err)

	ref, err := x.AppendExpenses(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, ref)
	assert.False(t, called)
}

func TestAppendExpenses_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"code":403,"message":"denied"}}`, http.StatusForbidden)
	}))
	defer srv.Close()

	x, err := New(context.Background(), "sheet-id", "Expenses", time.UTC,
		goption.WithEndpoint(srv.URL+"/"),
		goption.WithoutAuthentication())
	require.NoError(t, err)

	_, err = x.AppendExpenses(context.Background(), []core.Expense{{Amount: decimal.NewFromInt(1), Date: time.Now()}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "append to sheet")
}
