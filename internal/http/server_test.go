package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cleverspend/internal/core"
	applog "cleverspend/internal/log"
	"cleverspend/internal/middleware/ratelimit"
	"cleverspend/internal/services"
	sheetsmem "cleverspend/internal/sheets/memory"
	"cleverspend/internal/stats"
	"cleverspend/internal/storage"
	"cleverspend/internal/storage/memory"
)

var testNow = time.Date(2025, time.March, 14, 15, 30, 0, 0, time.UTC)

type testServer struct {
	*Server
	store    *memory.Store
	exporter *sheetsmem.Exporter
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	store := memory.New().WithClock(func() time.Time { return testNow }).WithLocation(time.UTC)
	return newTestServerWithStore(t, store, store)
}

func newTestServerWithStore(t *testing.T, store storage.Store, mem *memory.Store) *testServer {
	t.Helper()
	logger := applog.New(applog.Config{Handler: slog.NewTextHandler(io.Discard, nil)})
	exporter := sheetsmem.New(time.UTC)

	srv := NewServer(":0",
		services.NewExpenseService(store, nil),
		stats.NewService(store),
		Options{
			Logger:    logger,
			Location:  time.UTC,
			Now:       func() time.Time { return testNow },
			RateLimit: ratelimit.Config{RequestsPerMinute: 10000, Burst: 1000},
			Exports:   services.NewExportService(store, exporter),
		})
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })
	return &testServer{Server: srv, store: mem, exporter: exporter}
}

func (ts *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		r = strings.NewReader(b)
	default:
		buf, err := json.Marshal(b)
		require.NoError(t, err)
		r = bytes.NewReader(buf)
	}
	req := httptest.NewRequest(method, path, r)
	rec := httptest.NewRecorder()
	ts.Handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func (ts *testServer) createCategory(t *testing.T, name string) core.Category {
	t.Helper()
	rec := ts.do(t, http.MethodPost, "/api/categories", map[string]string{"name": name, "color": "green"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[core.Category](t, rec)
}

func (ts *testServer) createExpense(t *testing.T, categoryID, amount, date string) core.Expense {
	t.Helper()
	rec := ts.do(t, http.MethodPost, "/api/expenses", map[string]string{
		"amount": amount, "date": date, "category_id": categoryID,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[core.Expense](t, rec)
}

func TestHealthAndReady(t *testing.T) {
	ts := newTestServer(t)
	for _, path := range []string{"/healthz", "/readyz"} {
		rec := ts.do(t, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusOK, rec.Code, path)
		assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
		assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	}
}

func TestCategories_CreateListDelete(t *testing.T) {
	ts := newTestServer(t)

	ts.createCategory(t, "Travel")
	food := ts.createCategory(t, "  Food ")
	assert.Equal(t, "Food", food.Name)
	assert.True(t, food.IsCustom)

	rec := ts.do(t, http.MethodGet, "/api/categories", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[categoriesResponse](t, rec)
	require.Len(t, list.Categories, 2)
	assert.Equal(t, "Food", list.Categories[0].Name)

	rec = ts.do(t, http.MethodDelete, "/api/categories/"+food.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = ts.do(t, http.MethodDelete, "/api/categories/"+food.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", decode[ErrorBody](t, rec).Error.Code)
}

func TestCategories_Validation(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/categories", map[string]string{"name": "   "})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := decode[ErrorBody](t, rec)
	assert.Equal(t, "validation", body.Error.Code)
	assert.Equal(t, "name", body.Error.Field)

	rec = ts.do(t, http.MethodPost, "/api/categories", "{not json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/categories", `{"name":"x","unknown":1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/categories", `{"name":"x"}{"name":"y"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCategories_DefaultsAreProtected(t *testing.T) {
	ts := newTestServer(t)
	_, err := services.NewExpenseService(ts.store, nil).SeedDefaults(context.Background(), services.DefaultSeedCategories)
	require.NoError(t, err)

	cats, err := ts.store.ListCategories(context.Background())
	require.NoError(t, err)

	rec := ts.do(t, http.MethodDelete, "/api/categories/"+cats[0].ID, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestExpenses_CreateAndFilter(t *testing.T) {
	ts := newTestServer(t)
	food := ts.createCategory(t, "Food")
	travel := ts.createCategory(t, "Travel")

	e1 := ts.createExpense(t, food.ID, "12,50", "2025-03-14")
	ts.createExpense(t, travel.ID, "100", "2025-02-01")
	ts.createExpense(t, food.ID, "7", "2024-12-31")

	assert.True(t, e1.Amount.Equal(decimal.RequireFromString("12.5")))
	require.NotNil(t, e1.Category)
	assert.Equal(t, "Food", e1.Category.Name)

	tests := []struct {
		query string
		count int
		total string
	}{
		{"", 3, "119.5"},
		{"?period=all", 3, "119.5"},
		{"?period=day", 1, "12.5"},
		{"?period=month", 1, "12.5"},
		{"?period=YEAR", 2, "112.5"},
		{"?period=year&category=" + food.ID, 1, "12.5"},
		{"?category=" + food.ID, 2, "19.5"},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			rec := ts.do(t, http.MethodGet, "/api/expenses"+tt.query, nil)
			require.Equal(t, http.StatusOK, rec.Code)
			got := decode[expensesResponse](t, rec)
			assert.Equal(t, tt.count, got.Count)
			assert.Len(t, got.Expenses, tt.count)
			assert.True(t, got.Total.Equal(decimal.RequireFromString(tt.total)), "total %s", got.Total)
		})
	}

	rec := ts.do(t, http.MethodGet, "/api/expenses?period=week", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestExpenses_DefaultDateIsNow(t *testing.T) {
	ts := newTestServer(t)
	food := ts.createCategory(t, "Food")

	exp := ts.createExpense(t, food.ID, "3", "")
	assert.True(t, exp.Date.Equal(testNow), "date %v", exp.Date)

	exp = ts.createExpense(t, food.ID, "3", "2025-03-10T08:00:00+01:00")
	assert.True(t, exp.Date.Equal(time.Date(2025, 3, 10, 7, 0, 0, 0, time.UTC)))
}

func TestExpenses_Validation(t *testing.T) {
	ts := newTestServer(t)
	food := ts.createCategory(t, "Food")

	tests := []struct {
		name  string
		body  map[string]string
		field string
	}{
		{"missing category", map[string]string{"amount": "1", "category_id": "nope"}, "category"},
		{"blank category", map[string]string{"amount": "1"}, "category"},
		{"bad amount", map[string]string{"amount": "lots", "category_id": food.ID}, "amount"},
		{"bad date", map[string]string{"amount": "1", "date": "14/03/2025", "category_id": food.ID}, "date"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := ts.do(t, http.MethodPost, "/api/expenses", tt.body)
			assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())
			assert.Equal(t, tt.field, decode[ErrorBody](t, rec).Error.Field)
		})
	}

	rec := ts.do(t, http.MethodGet, "/api/expenses", nil)
	assert.Zero(t, decode[expensesResponse](t, rec).Count)
}

func TestExpenses_Delete(t *testing.T) {
	ts := newTestServer(t)
	food := ts.createCategory(t, "Food")
	exp := ts.createExpense(t, food.ID, "5", "2025-03-14")

	assert.Equal(t, http.StatusNoContent, ts.do(t, http.MethodDelete, "/api/expenses/"+exp.ID, nil).Code)
	assert.Equal(t, http.StatusNotFound, ts.do(t, http.MethodDelete, "/api/expenses/"+exp.ID, nil).Code)
}

func TestStats(t *testing.T) {
	ts := newTestServer(t)
	food := ts.createCategory(t, "Food")
	transport := ts.createCategory(t, "Transport")
	ts.createExpense(t, food.ID, "25", "2025-03-14")
	ts.createExpense(t, transport.ID, "75", "2025-03-13")

	rec := ts.do(t, http.MethodGet, "/api/stats?period=month", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	sum := decode[core.Summary](t, rec)

	assert.Equal(t, core.PeriodMonth, sum.Period)
	require.Len(t, sum.Categories, 2)
	assert.Equal(t, "Transport", sum.Categories[0].Name)
	require.Len(t, sum.Arcs, 2)
	assert.InDelta(t, -90, sum.Arcs[0].StartAngle, 1e-9)
	assert.InDelta(t, 180, sum.Arcs[0].EndAngle, 1e-9)
	assert.InDelta(t, 270, sum.Arcs[1].EndAngle, 1e-9)

	rec = ts.do(t, http.MethodGet, "/api/stats?period=day", nil)
	sum = decode[core.Summary](t, rec)
	require.Len(t, sum.Categories, 1)
	assert.Equal(t, 1.0, sum.Categories[0].Percentage)

	rec = ts.do(t, http.MethodGet, "/api/stats?period=decade", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestStatsOverview(t *testing.T) {
	ts := newTestServer(t)
	food := ts.createCategory(t, "Food")
	ts.createExpense(t, food.ID, "10", "2025-03-14")
	ts.createExpense(t, food.ID, "10", "2023-01-01")

	rec := ts.do(t, http.MethodGet, "/api/stats/overview", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	overview := decode[map[string]core.Summary](t, rec)

	require.Len(t, overview, 4)
	assert.Equal(t, 1, overview["day"].ExpenseCount)
	assert.Equal(t, 2, overview["all"].ExpenseCount)
}

func TestReset(t *testing.T) {
	ts := newTestServer(t)
	food := ts.createCategory(t, "Food")
	ts.createExpense(t, food.ID, "10", "2025-03-14")

	assert.Equal(t, http.StatusNoContent, ts.do(t, http.MethodPost, "/api/reset", nil).Code)

	assert.Empty(t, decode[categoriesResponse](t, ts.do(t, http.MethodGet, "/api/categories", nil)).Categories)
	assert.Zero(t, decode[expensesResponse](t, ts.do(t, http.MethodGet, "/api/expenses", nil)).Count)
}

func TestExport(t *testing.T) {
	ts := newTestServer(t)
	food := ts.createCategory(t, "Food")
	ts.createExpense(t, food.ID, "10", "2025-03-14")
	ts.createExpense(t, food.ID, "20", "2024-03-14")

	rec := ts.do(t, http.MethodPost, "/api/export?period=year", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	got := decode[exportResponse](t, rec)
	assert.Equal(t, 1, got.Rows)
	assert.Len(t, ts.exporter.Rows(), 1)
}

func TestMethodNotAllowed(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.do(t, http.MethodPut, "/api/categories", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

type brokenStore struct{ *memory.Store }

func (brokenStore) ListCategories(context.Context) ([]core.Category, error) {
	return nil, &core.PersistenceError{Op: "query categories", Err: errors.New("database is locked")}
}

func TestPersistenceErrorsAre500(t *testing.T) {
	mem := memory.New()
	ts := newTestServerWithStore(t, brokenStore{mem}, mem)

	rec := ts.do(t, http.MethodGet, "/api/categories", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decode[ErrorBody](t, rec)
	assert.Equal(t, "persistence", body.Error.Code)
	assert.NotContains(t, body.Error.Message, "locked")

	rec = ts.do(t, http.MethodGet, "/readyz", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRateLimit(t *testing.T) {
	store := memory.New()
	srv := NewServer(":0", services.NewExpenseService(store, nil), stats.NewService(store), Options{
		Logger:    applog.New(applog.Config{Handler: slog.NewTextHandler(io.Discard, nil)}),
		RateLimit: ratelimit.Config{RequestsPerMinute: 1, Burst: 2},
	})
	defer srv.Shutdown(context.Background())

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/categories", nil))
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{200, 200, 429}, codes)

	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code, "health checks are not rate limited")
}
