package core

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestCategoryInputValidate(t *testing.T) {
	cases := []struct {
		in CategoryInput
		ok bool
	}{
		{CategoryInput{Name: "Food"}, true},
		{CategoryInput{Name: "  Food  ", Icon: "cart.fill", Color: "green"}, true},
		{CategoryInput{Name: ""}, false},
		{CategoryInput{Name: "   "}, false},
	}
	for i, tc := range cases {
		err := tc.in.Validate()
		if tc.ok && err != nil {
			t.Fatalf("case %d expected ok, got %v", i, err)
		}
		if !tc.ok {
			if err == nil {
				t.Fatalf("case %d expected error", i)
			}
			if !IsValidation(err) {
				t.Fatalf("case %d expected validation error, got %T", i, err)
			}
		}
	}
}

func TestExpenseInputValidate(t *testing.T) {
	good := ExpenseInput{
		Amount:     decimal.NewFromInt(100),
		Date:       time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC),
		CategoryID: "cat",
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	negative := good
	negative.Amount = decimal.NewFromInt(-5)
	if err := negative.Validate(); err != nil {
		t.Fatalf("negative amounts are accepted, got %v", err)
	}

	bads := []ExpenseInput{
		{Amount: decimal.NewFromInt(1), Date: good.Date},                   // no category
		{Amount: decimal.NewFromInt(1), CategoryID: "cat"},                 // zero date
		{Amount: decimal.NewFromInt(1), Date: good.Date, CategoryID: "  "}, // blank category
	}
	for i, e := range bads {
		if err := e.Validate(); !IsValidation(err) {
			t.Fatalf("case %d expected validation error, got %v", i, err)
		}
	}
}

func TestErrorTaxonomy(t *testing.T) {
	cause := errors.New("disk full")
	wrapped := fmt.Errorf("add expense: %w", &PersistenceError{Op: "commit", Err: cause})

	if !IsPersistence(wrapped) {
		t.Fatalf("expected persistence error")
	}
	if !errors.Is(wrapped, cause) {
		t.Fatalf("persistence error should unwrap to its cause")
	}
	if IsValidation(wrapped) || IsNotFound(wrapped) {
		t.Fatalf("persistence error matched the wrong sentinel")
	}

	nf := fmt.Errorf("delete: %w", &NotFoundError{Kind: "expense", ID: "x"})
	if !IsNotFound(nf) {
		t.Fatalf("expected not found")
	}
	var target *NotFoundError
	if !errors.As(nf, &target) || target.ID != "x" {
		t.Fatalf("errors.As should recover the NotFoundError, got %+v", target)
	}
}

func TestExpenseIsOrphan(t *testing.T) {
	if !(Expense{CategoryID: "gone"}).IsOrphan() {
		t.Fatalf("expense without resolved category is an orphan")
	}
	if (Expense{CategoryID: "c", Category: &Category{ID: "c"}}).IsOrphan() {
		t.Fatalf("expense with resolved category is not an orphan")
	}
}
