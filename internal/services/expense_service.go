package services

import (
	"context"
	"fmt"
	"log/slog"

	"cleverspend/internal/core"
	"cleverspend/internal/storage"
)

// Change kinds published after committed mutations.
const (
	KindCategoryCreated  = "category.created"
	KindCategoryDeleted  = "category.deleted"
	KindExpenseCreated   = "expense.created"
	KindExpenseDeleted   = "expense.deleted"
	KindCategoriesSeeded = "categories.seeded"
	KindStoreReset       = "store.reset"
)

// Notifier announces a committed change. Implementations must not block for
// long; the service only logs their failures.
type Notifier interface {
	Publish(ctx context.Context, kind, entityID string) error
	// PublishExpense also carries the committed expense.
	PublishExpense(ctx context.Context, kind string, exp core.Expense) error
}

// SeedCategory is a default category created on first launch.
type SeedCategory struct {
	Name  string
	Icon  string
	Color string
}

// DefaultSeedCategories are created when the store holds no categories.
var DefaultSeedCategories = []SeedCategory{
	{Name: "Groceries", Icon: "cart.fill", Color: "green"},
	{Name: "Transport", Icon: "car.fill", Color: "blue"},
	{Name: "Housing", Icon: "house.fill", Color: "orange"},
	{Name: "Entertainment", Icon: "gamecontroller.fill", Color: "purple"},
	{Name: "Health", Icon: "heart.fill", Color: "red"},
	{Name: "Clothing", Icon: "bag.fill", Color: "pink"},
	{Name: "Restaurants", Icon: "fork.knife", Color: "yellow"},
	{Name: "Travel", Icon: "airplane", Color: "indigo"},
	{Name: "Education", Icon: "book.fill", Color: "mint"},
	{Name: "Gifts", Icon: "gift.fill", Color: "teal"},
}

// ExpenseService applies caller policy on top of the store and publishes
// change events.
type ExpenseService struct {
	store    storage.Store
	notifier Notifier
}

// NewExpenseService wires the service. notifier may be nil.
func NewExpenseService(store storage.Store, notifier Notifier) *ExpenseService {
	return &ExpenseService{
		store:    store,
		notifier: notifier,
	}
}

// AddCustomCategory creates a user-defined category.
func (s *ExpenseService) AddCustomCategory(ctx context.Context, name, icon, color string) (core.Category, error) {
	cat, err := s.store.AddCategory(ctx, core.CategoryInput{
		Name:     name,
		Icon:     icon,
		Color:    color,
		IsCustom: true,
	})
	if err != nil {
		return core.Category{}, fmt.Errorf("add category: %w", err)
	}
	s.publish(ctx, KindCategoryCreated, cat.ID)
	return cat, nil
}

// DeleteCategory removes a custom category. Seed categories are protected.
// Expenses that reference the category are kept as orphans.
func (s *ExpenseService) DeleteCategory(ctx context.Context, id string) error {
	cats, err := s.store.ListCategories(ctx)
	if err != nil {
		return fmt.Errorf("list categories: %w", err)
	}
	for _, c := range cats {
		if c.ID == id && !c.IsCustom {
			return &core.ValidationError{Field: "category", Reason: fmt.Sprintf("default category %q cannot be deleted", c.Name)}
		}
	}

	if err := s.store.DeleteCategory(ctx, id); err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	s.publish(ctx, KindCategoryDeleted, id)
	return nil
}

func (s *ExpenseService) AddExpense(ctx context.Context, in core.ExpenseInput) (core.Expense, error) {
	exp, err := s.store.AddExpense(ctx, in)
	if err != nil {
		return core.Expense{}, fmt.Errorf("add expense: %w", err)
	}
	if s.notifier != nil {
		if err := s.notifier.PublishExpense(ctx, KindExpenseCreated, exp); err != nil {
			s.publishFailed(ctx, KindExpenseCreated, exp.ID, err)
		}
	}
	return exp, nil
}

func (s *ExpenseService) DeleteExpense(ctx context.Context, id string) error {
	if err := s.store.DeleteExpense(ctx, id); err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	s.publish(ctx, KindExpenseDeleted, id)
	return nil
}

func (s *ExpenseService) Categories(ctx context.Context) ([]core.Category, error) {
	return s.store.ListCategories(ctx)
}

func (s *ExpenseService) Expenses(ctx context.Context, f core.ExpenseFilter) ([]core.Expense, error) {
	return s.store.ListExpenses(ctx, f)
}

// SeedDefaults creates seeds as non-custom categories when the store has no
// categories yet. It reports whether anything was created.
func (s *ExpenseService) SeedDefaults(ctx context.Context, seeds []SeedCategory) (bool, error) {
	cats, err := s.store.ListCategories(ctx)
	if err != nil {
		return false, fmt.Errorf("list categories: %w", err)
	}
	if len(cats) > 0 {
		slog.DebugContext(ctx, "Categories present, skipping seed", "count", len(cats))
		return false, nil
	}

	for _, seed := range seeds {
		if _, err := s.store.AddCategory(ctx, core.CategoryInput{
			Name:  seed.Name,
			Icon:  seed.Icon,
			Color: seed.Color,
		}); err != nil {
			return false, fmt.Errorf("seed category %q: %w", seed.Name, err)
		}
	}

	slog.InfoContext(ctx, "Seeded default categories", "count", len(seeds))
	s.publish(ctx, KindCategoriesSeeded, "")
	return true, nil
}

// Reset empties the store in one step.
func (s *ExpenseService) Reset(ctx context.Context) error {
	if err := s.store.Reset(ctx); err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	slog.WarnContext(ctx, "Store reset")
	s.publish(ctx, KindStoreReset, "")
	return nil
}

func (s *ExpenseService) publish(ctx context.Context, kind, id string) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Publish(ctx, kind, id); err != nil {
		s.publishFailed(ctx, kind, id, err)
	}
}

// publishFailed logs a lost event; the mutation itself is committed.
func (s *ExpenseService) publishFailed(ctx context.Context, kind, id string, err error) {
	slog.ErrorContext(ctx, "Failed to publish change event",
		"kind", kind, "id", id, "error", err)
}
