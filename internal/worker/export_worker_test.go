package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cleverspend/internal/amqp"
	"cleverspend/internal/core"
	"cleverspend/internal/services"
	memsheet "cleverspend/internal/sheets/memory"
)

type failingExporter struct{}

func (failingExporter) AppendExpenses(context.Context, []core.Expense) (string, error) {
	return "", errors.New("quota exceeded")
}

func lunch() core.Expense {
	return core.Expense{
		ID:         "e-1",
		Amount:     decimal.RequireFromString("12.50"),
		Date:       time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC),
		Note:       "lunch",
		CategoryID: "c-1",
		Category:   &core.Category{ID: "c-1", Name: "Food"},
	}
}

func TestExportWorker_HandleEvent(t *testing.T) {
	x := memsheet.New(time.UTC)
	w := NewExportWorker(x)

	err := w.HandleEvent(context.Background(), *amqp.NewExpenseEvent(services.KindExpenseCreated, lunch()))
	require.NoError(t, err)

	require.Len(t, x.Rows(), 1)
	assert.Equal(t, []any{"2025-06-15", "12.50", "Food", "lunch"}, x.Rows()[0])
}

func TestExportWorker_SnapshotSurvivesTheWire(t *testing.T) {
	data, err := amqp.NewExpenseEvent(services.KindExpenseCreated, lunch()).ToJSON()
	require.NoError(t, err)
	ev, err := amqp.ChangeEventFromJSON(data)
	require.NoError(t, err)

	x := memsheet.New(time.UTC)
	require.NoError(t, NewExportWorker(x).HandleEvent(context.Background(), *ev))
	require.Len(t, x.Rows(), 1)
	assert.Equal(t, []any{"2025-06-15", "12.50", "Food", "lunch"}, x.Rows()[0])
}

func TestExportWorker_IgnoresOtherKinds(t *testing.T) {
	x := memsheet.New(time.UTC)
	w := NewExportWorker(x)

	for _, kind := range []string{services.KindExpenseDeleted, services.KindCategoryCreated, services.KindStoreReset} {
		require.NoError(t, w.HandleEvent(context.Background(), *amqp.NewExpenseEvent(kind, lunch())))
	}
	assert.Empty(t, x.Rows())
}

func TestExportWorker_SkipsEventWithoutSnapshot(t *testing.T) {
	x := memsheet.New(time.UTC)

	err := NewExportWorker(x).HandleEvent(context.Background(), *amqp.NewChangeEvent(services.KindExpenseCreated, "e-1"))
	require.NoError(t, err)
	assert.Empty(t, x.Rows())
}

func TestExportWorker_ExporterFailureIsReturned(t *testing.T) {
	err := NewExportWorker(failingExporter{}).HandleEvent(context.Background(), *amqp.NewExpenseEvent(services.KindExpenseCreated, lunch()))
	assert.ErrorContains(t, err, "quota exceeded")
}

func TestExportWorker_Patterns(t *testing.T) {
	w := NewExportWorker(nil)
	assert.Equal(t, []string{"cleverspend.expense.created"}, w.Patterns("cleverspend"))
	assert.Equal(t, []string{"expense.created"}, w.Patterns(""))
}
