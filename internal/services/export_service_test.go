package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cleverspend/internal/core"
	sheetsmem "cleverspend/internal/sheets/memory"
	"cleverspend/internal/storage/memory"
)

func TestExportPeriod(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 8, 20, 10, 0, 0, 0, time.UTC)
	store := memory.New().WithClock(func() time.Time { return now }).WithLocation(time.UTC)

	cat, err := store.AddCategory(ctx, core.CategoryInput{Name: "Food"})
	require.NoError(t, err)
	for _, d := range []time.Time{now, now.AddDate(0, 0, -1), now.AddDate(0, -1, 0)} {
		_, err := store.AddExpense(ctx, core.ExpenseInput{Amount: decimal.NewFromInt(10), Date: d, CategoryID: cat.ID})
		require.NoError(t, err)
	}

	x := sheetsmem.New(time.UTC)
	svc := NewExportService(store, x)

	n, ref, err := svc.ExportPeriod(ctx, core.PeriodMonth)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, "mem:1-2", ref)

	rows := x.Rows()
	require.Len(t, rows, 2)
	assert.Equal(t, "2025-08-20", rows[0][0], "newest first")
	assert.Equal(t, "2025-08-19", rows[1][0])
}

func TestExportPeriod_Empty(t *testing.T) {
	x := sheetsmem.New(time.UTC)
	svc := NewExportService(memory.New(), x)

	n, ref, err := svc.ExportPeriod(context.Background(), core.PeriodAll)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, ref)
	assert.Empty(t, x.Rows())
}

func TestExportPeriod_InvalidPeriod(t *testing.T) {
	svc := NewExportService(memory.New(), sheetsmem.New(time.UTC))
	_, _, err := svc.ExportPeriod(context.Background(), core.Period("fortnight"))
	assert.True(t, core.IsValidation(err))
}

type failingExporter struct{}

func (failingExporter) AppendExpenses(context.Context, []core.Expense) (string, error) {
	return "", errors.New("quota exceeded")
}

func TestExportPeriod_ExporterError(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	cat, err := store.AddCategory(ctx, core.CategoryInput{Name: "Food"})
	require.NoError(t, err)
	_, err = store.AddExpense(ctx, core.ExpenseInput{Amount: decimal.NewFromInt(1), Date: time.Now(), CategoryID: cat.ID})
	require.NoError(t, err)

	_, _, err = NewExportService(store, failingExporter{}).ExportPeriod(ctx, core.PeriodAll)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")
}
