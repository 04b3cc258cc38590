// Package storagetest holds the behavioural contract every storage.Store
// implementation must satisfy.
package storagetest

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cleverspend/internal/core"
	"cleverspend/internal/storage"
)

// Factory builds an empty store whose clock is now and whose calendar is loc.
type Factory func(t *testing.T, now func() time.Time, loc *time.Location) storage.Store

// Now is the fixed instant the contract runs at.
var Now = time.Date(2025, time.March, 14, 15, 30, 0, 0, time.UTC)

// Run executes the contract against stores built by newStore.
func Run(t *testing.T, newStore Factory) {
	t.Helper()

	fixed := func() time.Time { return Now }
	buildIn := func(t *testing.T, loc *time.Location) storage.Store {
		t.Helper()
		s := newStore(t, fixed, loc)
		t.Cleanup(func() { _ = s.Close() })
		return s
	}
	build := func(t *testing.T) storage.Store {
		t.Helper()
		return buildIn(t, time.UTC)
	}

	t.Run("empty store reads are total", func(t *testing.T) {
		s := build(t)
		ctx := context.Background()

		cats, err := s.ListCategories(ctx)
		require.NoError(t, err)
		assert.Empty(t, cats)

		for _, p := range core.Periods() {
			exps, err := s.ListExpenses(ctx, core.ExpenseFilter{Period: p})
			require.NoError(t, err)
			assert.Empty(t, exps, "period %s", p)
		}
	})

	t.Run("add category validates name", func(t *testing.T) {
		s := build(t)
		_, err := s.AddCategory(context.Background(), core.CategoryInput{Name: "  "})
		require.Error(t, err)
		assert.True(t, core.IsValidation(err), "got %v", err)
	})

	t.Run("categories sorted by name with stable ties", func(t *testing.T) {
		s := build(t)
		ctx := context.Background()

		transport := mustCategory(t, s, "Transport")
		food1 := mustCategory(t, s, "Food")
		zoo := mustCategory(t, s, "Zoo")
		food2 := mustCategory(t, s, "Food")
		lower := mustCategory(t, s, "apples")

		cats, err := s.ListCategories(ctx)
		require.NoError(t, err)
		// BINARY collation: upper case sorts before lower case
		assert.Equal(t, []string{food1.ID, food2.ID, transport.ID, zoo.ID, lower.ID}, ids(cats))
	})

	t.Run("category fields round trip", func(t *testing.T) {
		s := build(t)
		ctx := context.Background()

		in := core.CategoryInput{Name: "Groceries", Icon: "cart.fill", Color: "green", IsCustom: false}
		got, err := s.AddCategory(ctx, in)
		require.NoError(t, err)
		assert.NotEmpty(t, got.ID)

		cats, err := s.ListCategories(ctx)
		require.NoError(t, err)
		require.Len(t, cats, 1)
		assert.Equal(t, got.ID, cats[0].ID)
		assert.Equal(t, "Groceries", cats[0].Name)
		assert.Equal(t, "cart.fill", cats[0].Icon)
		assert.Equal(t, "green", cats[0].Color)
		assert.False(t, cats[0].IsCustom)
	})

	t.Run("add expense requires existing category", func(t *testing.T) {
		s := build(t)
		ctx := context.Background()
		food := mustCategory(t, s, "Food")

		_, err := s.AddExpense(ctx, core.ExpenseInput{
			Amount: decimal.NewFromInt(100), Date: Now, CategoryID: food.ID,
		})
		require.NoError(t, err)

		_, err = s.AddExpense(ctx, core.ExpenseInput{
			Amount: decimal.NewFromInt(50), Date: Now, CategoryID: "transport-does-not-exist",
		})
		require.Error(t, err)
		assert.True(t, core.IsValidation(err), "got %v", err)

		exps, err := s.ListExpenses(ctx, core.ExpenseFilter{})
		require.NoError(t, err)
		assert.Len(t, exps, 1, "failed add must not persist anything")
	})

	t.Run("expense fields round trip", func(t *testing.T) {
		s := build(t)
		ctx := context.Background()
		food := mustCategory(t, s, "Food")

		date := time.Date(2025, time.March, 10, 8, 15, 30, 123456789, time.UTC)
		added, err := s.AddExpense(ctx, core.ExpenseInput{
			Amount:     decimal.RequireFromString("12.345"),
			Date:       date,
			Note:       "lunch",
			CategoryID: food.ID,
		})
		require.NoError(t, err)
		require.NotNil(t, added.Category)
		assert.Equal(t, food.ID, added.Category.ID)

		exps, err := s.ListExpenses(ctx, core.ExpenseFilter{})
		require.NoError(t, err)
		require.Len(t, exps, 1)
		got := exps[0]
		assert.Equal(t, added.ID, got.ID)
		assert.True(t, got.Amount.Equal(decimal.RequireFromString("12.345")), "amount %s", got.Amount)
		assert.True(t, got.Date.Equal(date), "date %v", got.Date)
		assert.Equal(t, "lunch", got.Note)
		require.NotNil(t, got.Category)
		assert.Equal(t, "Food", got.Category.Name)
	})

	t.Run("negative amounts are stored", func(t *testing.T) {
		s := build(t)
		ctx := context.Background()
		food := mustCategory(t, s, "Food")

		_, err := s.AddExpense(ctx, core.ExpenseInput{
			Amount: decimal.NewFromInt(-20), Date: Now, CategoryID: food.ID,
		})
		require.NoError(t, err)

		exps, err := s.ListExpenses(ctx, core.ExpenseFilter{})
		require.NoError(t, err)
		require.Len(t, exps, 1)
		assert.True(t, exps[0].Amount.Equal(decimal.NewFromInt(-20)))
	})

	t.Run("expenses sorted by date descending with stable ties", func(t *testing.T) {
		s := build(t)
		ctx := context.Background()
		food := mustCategory(t, s, "Food")

		old := mustExpense(t, s, food.ID, "1", Now.Add(-48*time.Hour))
		tieA := mustExpense(t, s, food.ID, "2", Now.Add(-time.Hour))
		newest := mustExpense(t, s, food.ID, "3", Now)
		tieB := mustExpense(t, s, food.ID, "4", Now.Add(-time.Hour))

		exps, err := s.ListExpenses(ctx, core.ExpenseFilter{})
		require.NoError(t, err)
		assert.Equal(t, []string{newest.ID, tieA.ID, tieB.ID, old.ID}, expenseIDs(exps))
	})

	t.Run("period filter has an inclusive lower bound and no upper bound", func(t *testing.T) {
		s := build(t)
		ctx := context.Background()
		food := mustCategory(t, s, "Food")

		dayStart := time.Date(2025, time.March, 14, 0, 0, 0, 0, time.UTC)
		monthStart := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
		yearStart := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)

		atDay := mustExpense(t, s, food.ID, "1", dayStart)
		beforeDay := mustExpense(t, s, food.ID, "1", dayStart.Add(-time.Nanosecond))
		atMonth := mustExpense(t, s, food.ID, "1", monthStart)
		atYear := mustExpense(t, s, food.ID, "1", yearStart)
		lastYear := mustExpense(t, s, food.ID, "1", yearStart.Add(-time.Second))
		future := mustExpense(t, s, food.ID, "1", Now.AddDate(0, 2, 0))

		cases := []struct {
			period core.Period
			want   []string
		}{
			{core.PeriodDay, []string{future.ID, atDay.ID}},
			{core.PeriodMonth, []string{future.ID, atDay.ID, beforeDay.ID, atMonth.ID}},
			{core.PeriodYear, []string{future.ID, atDay.ID, beforeDay.ID, atMonth.ID, atYear.ID}},
			{core.PeriodAll, []string{future.ID, atDay.ID, beforeDay.ID, atMonth.ID, atYear.ID, lastYear.ID}},
		}
		for _, tc := range cases {
			exps, err := s.ListExpenses(ctx, core.ExpenseFilter{Period: tc.period})
			require.NoError(t, err)
			assert.Equal(t, tc.want, expenseIDs(exps), "period %s", tc.period)
		}
	})

	t.Run("period starts follow the store calendar", func(t *testing.T) {
		// Now is 00:30 on March 15 in UTC+9.
		tokyo := time.FixedZone("UTC+9", 9*60*60)
		s := buildIn(t, tokyo)
		ctx := context.Background()
		food := mustCategory(t, s, "Food")

		localDay := time.Date(2025, time.March, 15, 0, 0, 0, 0, tokyo)
		localMonth := time.Date(2025, time.March, 1, 0, 0, 0, 0, tokyo)

		atDay := mustExpense(t, s, food.ID, "1", localDay)
		// 23:59 local on March 14, handed to the store in UTC
		beforeDay := mustExpense(t, s, food.ID, "1", localDay.Add(-time.Minute).UTC())
		atMonth := mustExpense(t, s, food.ID, "1", localMonth.UTC())
		mustExpense(t, s, food.ID, "1", localMonth.Add(-time.Minute))

		cases := []struct {
			period core.Period
			want   []string
		}{
			{core.PeriodDay, []string{atDay.ID}},
			{core.PeriodMonth, []string{atDay.ID, beforeDay.ID, atMonth.ID}},
		}
		for _, tc := range cases {
			exps, err := s.ListExpenses(ctx, core.ExpenseFilter{Period: tc.period})
			require.NoError(t, err)
			assert.Equal(t, tc.want, expenseIDs(exps), "period %s", tc.period)
		}

		exps, err := s.ListExpenses(ctx, core.ExpenseFilter{})
		require.NoError(t, err)
		require.NotEmpty(t, exps)
		assert.Equal(t, tokyo.String(), exps[0].Date.Location().String(), "dates are returned in the store calendar")
	})

	t.Run("dates far from the present round trip and filter", func(t *testing.T) {
		s := build(t)
		ctx := context.Background()
		food := mustCategory(t, s, "Food")

		farFuture := time.Date(2300, time.January, 1, 0, 0, 0, 0, time.UTC)
		farPast := time.Date(1500, time.June, 1, 12, 0, 0, 500, time.UTC)
		future := mustExpense(t, s, food.ID, "1", farFuture)
		past := mustExpense(t, s, food.ID, "1", farPast)

		exps, err := s.ListExpenses(ctx, core.ExpenseFilter{Period: core.PeriodYear})
		require.NoError(t, err)
		require.Equal(t, []string{future.ID}, expenseIDs(exps))
		assert.True(t, exps[0].Date.Equal(farFuture), "date %v", exps[0].Date)

		exps, err = s.ListExpenses(ctx, core.ExpenseFilter{})
		require.NoError(t, err)
		require.Equal(t, []string{future.ID, past.ID}, expenseIDs(exps))
		assert.True(t, exps[1].Date.Equal(farPast), "date %v", exps[1].Date)
	})

	t.Run("category and period filters combine with AND", func(t *testing.T) {
		s := build(t)
		ctx := context.Background()
		food := mustCategory(t, s, "Food")
		transport := mustCategory(t, s, "Transport")

		foodToday := mustExpense(t, s, food.ID, "10", Now)
		mustExpense(t, s, food.ID, "10", Now.AddDate(-1, 0, 0))
		mustExpense(t, s, transport.ID, "10", Now)

		exps, err := s.ListExpenses(ctx, core.ExpenseFilter{CategoryID: food.ID, Period: core.PeriodDay})
		require.NoError(t, err)
		assert.Equal(t, []string{foodToday.ID}, expenseIDs(exps))

		exps, err = s.ListExpenses(ctx, core.ExpenseFilter{CategoryID: food.ID})
		require.NoError(t, err)
		assert.Len(t, exps, 2)
	})

	t.Run("deleting a category orphans its expenses", func(t *testing.T) {
		s := build(t)
		ctx := context.Background()
		food := mustCategory(t, s, "Food")
		exp := mustExpense(t, s, food.ID, "42", Now)

		require.NoError(t, s.DeleteCategory(ctx, food.ID))

		exps, err := s.ListExpenses(ctx, core.ExpenseFilter{})
		require.NoError(t, err)
		require.Len(t, exps, 1)
		assert.Equal(t, exp.ID, exps[0].ID)
		assert.Equal(t, food.ID, exps[0].CategoryID, "dangling reference is kept")
		assert.True(t, exps[0].IsOrphan())

		// The filter still matches on the retained id
		exps, err = s.ListExpenses(ctx, core.ExpenseFilter{CategoryID: food.ID})
		require.NoError(t, err)
		assert.Len(t, exps, 1)

		_, err = s.AddExpense(ctx, core.ExpenseInput{Amount: decimal.NewFromInt(1), Date: Now, CategoryID: food.ID})
		assert.True(t, core.IsValidation(err), "new expenses cannot target a deleted category, got %v", err)
	})

	t.Run("deleting absent ids reports not found", func(t *testing.T) {
		s := build(t)
		ctx := context.Background()
		food := mustCategory(t, s, "Food")
		exp := mustExpense(t, s, food.ID, "1", Now)

		require.NoError(t, s.DeleteExpense(ctx, exp.ID))
		err := s.DeleteExpense(ctx, exp.ID)
		assert.True(t, core.IsNotFound(err), "got %v", err)

		require.NoError(t, s.DeleteCategory(ctx, food.ID))
		err = s.DeleteCategory(ctx, food.ID)
		assert.True(t, core.IsNotFound(err), "got %v", err)

		err = s.DeleteExpense(ctx, "never-existed")
		assert.True(t, core.IsNotFound(err), "got %v", err)
	})

	t.Run("ids are never reused", func(t *testing.T) {
		s := build(t)
		ctx := context.Background()
		seen := map[string]bool{}
		for i := 0; i < 5; i++ {
			c := mustCategory(t, s, "Food")
			assert.False(t, seen[c.ID], "category id reused")
			seen[c.ID] = true
			e := mustExpense(t, s, c.ID, "1", Now)
			assert.False(t, seen[e.ID], "expense id reused")
			seen[e.ID] = true
			require.NoError(t, s.DeleteExpense(ctx, e.ID))
			require.NoError(t, s.DeleteCategory(ctx, c.ID))
		}
	})

	t.Run("bulk clears leave a valid empty store", func(t *testing.T) {
		s := build(t)
		ctx := context.Background()
		food := mustCategory(t, s, "Food")
		mustExpense(t, s, food.ID, "1", Now)

		require.NoError(t, s.DeleteAllExpenses(ctx))
		exps, err := s.ListExpenses(ctx, core.ExpenseFilter{})
		require.NoError(t, err)
		assert.Empty(t, exps)
		cats, err := s.ListCategories(ctx)
		require.NoError(t, err)
		assert.Len(t, cats, 1, "clearing expenses keeps categories")

		require.NoError(t, s.DeleteAllCategories(ctx))
		cats, err = s.ListCategories(ctx)
		require.NoError(t, err)
		assert.Empty(t, cats)

		again := mustCategory(t, s, "Food")
		mustExpense(t, s, again.ID, "1", Now)
	})

	t.Run("reset empties both collections", func(t *testing.T) {
		s := build(t)
		ctx := context.Background()
		food := mustCategory(t, s, "Food")
		mustExpense(t, s, food.ID, "1", Now)
		mustExpense(t, s, food.ID, "2", Now)

		require.NoError(t, s.Reset(ctx))

		cats, err := s.ListCategories(ctx)
		require.NoError(t, err)
		assert.Empty(t, cats)
		exps, err := s.ListExpenses(ctx, core.ExpenseFilter{})
		require.NoError(t, err)
		assert.Empty(t, exps)
	})

	t.Run("concurrent writers and readers", func(t *testing.T) {
		s := build(t)
		ctx := context.Background()
		food := mustCategory(t, s, "Food")

		const writers, perWriter = 4, 10
		var wg sync.WaitGroup
		for w := 0; w < writers; w++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := 0; i < perWriter; i++ {
					_, err := s.AddExpense(ctx, core.ExpenseInput{
						Amount: decimal.NewFromInt(1), Date: Now, CategoryID: food.ID,
					})
					assert.NoError(t, err)
				}
			}()
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := 0; i < perWriter; i++ {
					exps, err := s.ListExpenses(ctx, core.ExpenseFilter{Period: core.PeriodDay})
					assert.NoError(t, err)
					for _, e := range exps {
						assert.NotNil(t, e.Category)
					}
				}
			}()
		}
		wg.Wait()

		exps, err := s.ListExpenses(ctx, core.ExpenseFilter{})
		require.NoError(t, err)
		assert.Len(t, exps, writers*perWriter)
	})
}

func mustCategory(t *testing.T, s storage.Store, name string) core.Category {
	t.Helper()
	c, err := s.AddCategory(context.Background(), core.CategoryInput{Name: name, IsCustom: true})
	require.NoError(t, err)
	return c
}

func mustExpense(t *testing.T, s storage.Store, categoryID, amount string, date time.Time) core.Expense {
	t.Helper()
	e, err := s.AddExpense(context.Background(), core.ExpenseInput{
		Amount:     decimal.RequireFromString(amount),
		Date:       date,
		CategoryID: categoryID,
		Note:       fmt.Sprintf("amount %s", amount),
	})
	require.NoError(t, err)
	return e
}

func ids(cats []core.Category) []string {
	out := make([]string, len(cats))
	for i, c := range cats {
		out[i] = c.ID
	}
	return out
}

func expenseIDs(exps []core.Expense) []string {
	out := make([]string, len(exps))
	for i, e := range exps {
		out[i] = e.ID
	}
	return out
}
