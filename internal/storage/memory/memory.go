// Package memory is a non-durable Store with the same semantics as the SQLite
// repository. It backs the "memory" data backend and fast tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"cleverspend/internal/core"
)

type Store struct {
	mu   sync.RWMutex
	cats []core.Category
	// exps is kept in insertion order; listing sorts a copy.
	exps []core.Expense
	now  func() time.Time
	loc  *time.Location
}

func New() *Store {
	return &Store{now: time.Now, loc: time.Local}
}

// WithClock replaces the clock used to resolve query periods.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	if now != nil {
		s.now = now
	}
	return s
}

// WithLocation sets the calendar used for period boundaries.
func (s *Store) WithLocation(loc *time.Location) *Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	if loc != nil {
		s.loc = loc
	}
	return s
}

func (s *Store) AddCategory(_ context.Context, in core.CategoryInput) (core.Category, error) {
	if err := in.Validate(); err != nil {
		return core.Category{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cat := core.Category{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(in.Name),
		Icon:      in.Icon,
		Color:     in.Color,
		IsCustom:  in.IsCustom,
		CreatedAt: s.now().In(s.loc),
	}
	s.cats = append(s.cats, cat)
	return cat, nil
}

func (s *Store) DeleteCategory(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, c := range s.cats {
		if c.ID == id {
			s.cats = append(s.cats[:i:i], s.cats[i+1:]...)
			return nil
		}
	}
	return &core.NotFoundError{Kind: "category", ID: id}
}

// ListCategories sorts bytewise by name, matching SQLite's BINARY collation.
func (s *Store) ListCategories(_ context.Context) ([]core.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := append([]core.Category{}, s.cats...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) DeleteAllCategories(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cats = nil
	return nil
}

func (s *Store) AddExpense(_ context.Context, in core.ExpenseInput) (core.Expense, error) {
	if err := in.Validate(); err != nil {
		return core.Expense{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.category(in.CategoryID); !ok {
		return core.Expense{}, &core.ValidationError{Field: "category", Reason: "category \"" + in.CategoryID + "\" does not exist"}
	}
	exp := core.Expense{
		ID:         uuid.NewString(),
		Amount:     in.Amount,
		Date:       in.Date.In(s.loc),
		Note:       in.Note,
		CategoryID: in.CategoryID,
	}
	s.exps = append(s.exps, exp)
	return s.resolve(exp), nil
}

func (s *Store) DeleteExpense(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, e := range s.exps {
		if e.ID == id {
			s.exps = append(s.exps[:i:i], s.exps[i+1:]...)
			return nil
		}
	}
	return &core.NotFoundError{Kind: "expense", ID: id}
}

func (s *Store) ListExpenses(_ context.Context, f core.ExpenseFilter) ([]core.Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	bounds := f.Resolve(s.now().In(s.loc))
	out := make([]core.Expense, 0, len(s.exps))
	for _, e := range s.exps {
		if bounds.Matches(e) {
			out = append(out, s.resolve(e))
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

func (s *Store) DeleteAllExpenses(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.exps = nil
	return nil
}

func (s *Store) Reset(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.exps = nil
	s.cats = nil
	return nil
}

func (s *Store) Close() error { return nil }

// category looks up a category by id. Callers hold s.mu.
func (s *Store) category(id string) (core.Category, bool) {
	for _, c := range s.cats {
		if c.ID == id {
			return c, true
		}
	}
	return core.Category{}, false
}

// resolve attaches the current category, if any. Callers hold s.mu.
func (s *Store) resolve(e core.Expense) core.Expense {
	e.Category = nil
	if c, ok := s.category(e.CategoryID); ok {
		e.Category = &c
	}
	return e
}
