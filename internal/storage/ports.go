package storage

import (
	"context"

	"cleverspend/internal/core"
)

// Ports implemented by the entity stores.
type (
	// CategoryStore owns the category collection.
	CategoryStore interface {
		AddCategory(ctx context.Context, in core.CategoryInput) (core.Category, error)
		// DeleteCategory leaves expenses that reference the category untouched.
		DeleteCategory(ctx context.Context, id string) error
		// ListCategories is sorted by name, ties in insertion order.
		ListCategories(ctx context.Context) ([]core.Category, error)
		DeleteAllCategories(ctx context.Context) error
	}

	// ExpenseStore owns the expense collection.
	ExpenseStore interface {
		// AddExpense fails with a validation error when the category is absent.
		AddExpense(ctx context.Context, in core.ExpenseInput) (core.Expense, error)
		DeleteExpense(ctx context.Context, id string) error
		// ListExpenses is sorted by date descending, ties in insertion order.
		ListExpenses(ctx context.Context, f core.ExpenseFilter) ([]core.Expense, error)
		DeleteAllExpenses(ctx context.Context) error
	}

	// Store is the single source of truth for both collections. Mutations are
	// serialized and atomic per call; reads never see a partial mutation.
	Store interface {
		CategoryStore
		ExpenseStore
		// Reset empties both collections in one atomic step.
		Reset(ctx context.Context) error
		Close() error
	}
)
