package core

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type (
	// Category groups expenses. Seed categories have IsCustom == false.
	Category struct {
		ID        string    `json:"id"`
		Name      string    `json:"name"`
		Icon      string    `json:"icon"`
		Color     string    `json:"color"`
		IsCustom  bool      `json:"is_custom"`
		CreatedAt time.Time `json:"created_at"`
	}

	// CategoryInput carries the caller-supplied fields of a new category.
	CategoryInput struct {
		Name     string
		Icon     string
		Color    string
		IsCustom bool
	}

	// Expense is an immutable spending record.
	Expense struct {
		ID         string          `json:"id"`
		Amount     decimal.Decimal `json:"amount"`
		Date       time.Time       `json:"date"`
		Note       string          `json:"note,omitempty"`
		CategoryID string          `json:"category_id"`
		// Category is resolved when the expense is read and is nil once the
		// referenced category has been deleted.
		Category *Category `json:"category,omitempty"`
	}

	// ExpenseInput carries the caller-supplied fields of a new expense.
	ExpenseInput struct {
		Amount     decimal.Decimal
		Date       time.Time
		Note       string
		CategoryID string
	}
)

// Validate checks the fields the store cannot check on its own.
func (in CategoryInput) Validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return &ValidationError{Field: "name", Reason: "category name cannot be empty"}
	}
	return nil
}

// Validate checks the expense fields that do not depend on store state.
// Category existence is checked by the store inside its transaction.
func (in ExpenseInput) Validate() error {
	if strings.TrimSpace(in.CategoryID) == "" {
		return &ValidationError{Field: "category", Reason: "category is required"}
	}
	if in.Date.IsZero() {
		return &ValidationError{Field: "date", Reason: "date cannot be zero"}
	}
	return nil
}

// IsOrphan reports whether the expense's category no longer exists.
func (e Expense) IsOrphan() bool {
	return e.Category == nil
}
