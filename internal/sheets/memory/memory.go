// Package memory records exported rows in process. It backs the export
// command when no spreadsheet is configured, and tests.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"cleverspend/internal/core"
	"cleverspend/internal/sheets"
)

var _ sheets.ExpenseExporter = (*Exporter)(nil)

type Exporter struct {
	mu   sync.Mutex
	loc  *time.Location
	rows [][]any
}

func New(loc *time.Location) *Exporter {
	return &Exporter{loc: loc}
}

// AppendExpenses records the rows and returns a synthetic range reference.
func (x *Exporter) AppendExpenses(_ context.Context, expenses []core.Expense) (string, error) {
	x.mu.Lock()
	defer x.mu.Unlock()
	first := len(x.rows) + 1
	x.rows = append(x.rows, sheets.Rows(expenses, x.loc)...)
	return fmt.Sprintf("mem:%d-%d", first, len(x.rows)), nil
}

// Rows returns a copy of everything recorded so far.
func (x *Exporter) Rows() [][]any {
	x.mu.Lock()
	defer x.mu.Unlock()
	return append([][]any(nil), x.rows...)
}
