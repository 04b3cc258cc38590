package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"cleverspend/internal/core"

	_ "modernc.org/sqlite"
)

// SQLiteRepository is the durable Store. A store-wide RWMutex serializes
// mutations against each other and against reads; every mutation runs in a
// single SQL transaction.
type SQLiteRepository struct {
	mu     sync.RWMutex
	db     *sql.DB
	dbPath string
	now    func() time.Time
	loc    *time.Location
}

var _ Store = (*SQLiteRepository)(nil)

// Option configures a repository.
type Option func(*SQLiteRepository)

// WithClock sets the source of "now" used to resolve query periods.
func WithClock(now func() time.Time) Option {
	return func(r *SQLiteRepository) {
		if now != nil {
			r.now = now
		}
	}
}

// WithLocation sets the calendar used for period boundaries and returned dates.
func WithLocation(loc *time.Location) Option {
	return func(r *SQLiteRepository) {
		if loc != nil {
			r.loc = loc
		}
	}
}

func NewSQLiteRepository(dbPath string, opts ...Option) (*SQLiteRepository, error) {
	if strings.TrimSpace(dbPath) == "" {
		return nil, errors.New("empty database path")
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	// Run migrations before the main connection pool is opened
	if _, err := RunMigrations(dbPath); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	repo := &SQLiteRepository{
		db:     db,
		dbPath: dbPath,
		now:    time.Now,
		loc:    time.Local,
	}
	for _, opt := range opts {
		opt(repo)
	}

	return repo, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// withTx runs fn in a transaction under the write lock. Driver failures are
// reported as PersistenceError; domain errors from fn pass through unchanged.
func (r *SQLiteRepository) withTx(ctx context.Context, op string, fn func(tx *sql.Tx) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return &core.PersistenceError{Op: op + ": begin", Err: err}
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			slog.ErrorContext(ctx, "Rollback failed", "operation", op, "error", rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return &core.PersistenceError{Op: op + ": commit", Err: err}
	}
	return nil
}

// AddCategory implements CategoryStore
func (r *SQLiteRepository) AddCategory(ctx context.Context, in core.CategoryInput) (core.Category, error) {
	if err := in.Validate(); err != nil {
		return core.Category{}, err
	}

	cat := core.Category{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(in.Name),
		Icon:      in.Icon,
		Color:     in.Color,
		IsCustom:  in.IsCustom,
		CreatedAt: r.now().In(r.loc),
	}

	err := r.withTx(ctx, "add category", func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO categories (id, name, icon, color, is_custom, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
			cat.ID, cat.Name, cat.Icon, cat.Color, cat.IsCustom, cat.CreatedAt.UnixNano())
		if err != nil {
			return &core.PersistenceError{Op: "insert category", Err: err}
		}
		return nil
	})
	if err != nil {
		return core.Category{}, fmt.Errorf("add category: %w", err)
	}

	slog.InfoContext(ctx, "Category saved to SQLite",
		"id", cat.ID,
		"name", cat.Name,
		"is_custom", cat.IsCustom)

	return cat, nil
}

// DeleteCategory implements CategoryStore
func (r *SQLiteRepository) DeleteCategory(ctx context.Context, id string) error {
	err := r.withTx(ctx, "delete category", func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
		if err != nil {
			return &core.PersistenceError{Op: "delete category", Err: err}
		}
		return requireAffected(res, "category", id)
	})
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}

	slog.InfoContext(ctx, "Category deleted", "id", id)
	return nil
}

// ListCategories implements CategoryStore
func (r *SQLiteRepository) ListCategories(ctx context.Context) ([]core.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, icon, color, is_custom, created_at FROM categories ORDER BY name ASC, seq ASC`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", &core.PersistenceError{Op: "query categories", Err: err})
	}
	defer rows.Close()

	categories := make([]core.Category, 0)
	for rows.Next() {
		var (
			cat       core.Category
			createdAt int64
		)
		if err := rows.Scan(&cat.ID, &cat.Name, &cat.Icon, &cat.Color, &cat.IsCustom, &createdAt); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		cat.CreatedAt = time.Unix(0, createdAt).In(r.loc)
		categories = append(categories, cat)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}

	return categories, nil
}

// DeleteAllCategories implements CategoryStore
func (r *SQLiteRepository) DeleteAllCategories(ctx context.Context) error {
	err := r.withTx(ctx, "delete all categories", func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM categories`); err != nil {
			return &core.PersistenceError{Op: "delete categories", Err: err}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete all categories: %w", err)
	}

	slog.InfoContext(ctx, "All categories deleted")
	return nil
}

// AddExpense implements ExpenseStore
func (r *SQLiteRepository) AddExpense(ctx context.Context, in core.ExpenseInput) (core.Expense, error) {
	if err := in.Validate(); err != nil {
		return core.Expense{}, err
	}

	exp := core.Expense{
		ID:         uuid.NewString(),
		Amount:     in.Amount,
		Date:       in.Date.In(r.loc),
		Note:       in.Note,
		CategoryID: in.CategoryID,
	}

	err := r.withTx(ctx, "add expense", func(tx *sql.Tx) error {
		cat, err := r.categoryTx(ctx, tx, in.CategoryID)
		if err != nil {
			return err
		}
		exp.Category = &cat

		_, err = tx.ExecContext(ctx,
			`INSERT INTO expenses (id, amount, date_unix, date_nanos, note, category_id, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			exp.ID, exp.Amount.String(), exp.Date.Unix(), exp.Date.Nanosecond(), exp.Note, exp.CategoryID, r.now().UnixNano())
		if err != nil {
			return &core.PersistenceError{Op: "insert expense", Err: err}
		}
		return nil
	})
	if err != nil {
		return core.Expense{}, fmt.Errorf("add expense: %w", err)
	}

	slog.InfoContext(ctx, "Expense saved to SQLite",
		"id", exp.ID,
		"amount", exp.Amount.String(),
		"date", exp.Date,
		"category_id", exp.CategoryID)

	return exp, nil
}

func (r *SQLiteRepository) categoryTx(ctx context.Context, tx *sql.Tx, id string) (core.Category, error) {
	var (
		cat       core.Category
		createdAt int64
	)
	err := tx.QueryRowContext(ctx,
		`SELECT id, name, icon, color, is_custom, created_at FROM categories WHERE id = ?`, id).
		Scan(&cat.ID, &cat.Name, &cat.Icon, &cat.Color, &cat.IsCustom, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Category{}, &core.ValidationError{
			Field:  "category",
			Reason: fmt.Sprintf("category %q does not exist", id),
		}
	}
	if err != nil {
		return core.Category{}, &core.PersistenceError{Op: "lookup category", Err: err}
	}
	cat.CreatedAt = time.Unix(0, createdAt).In(r.loc)
	return cat, nil
}

// DeleteExpense implements ExpenseStore
func (r *SQLiteRepository) DeleteExpense(ctx context.Context, id string) error {
	err := r.withTx(ctx, "delete expense", func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM expenses WHERE id = ?`, id)
		if err != nil {
			return &core.PersistenceError{Op: "delete expense", Err: err}
		}
		return requireAffected(res, "expense", id)
	})
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}

	slog.InfoContext(ctx, "Expense deleted", "id", id)
	return nil
}

// ListExpenses implements ExpenseStore
func (r *SQLiteRepository) ListExpenses(ctx context.Context, f core.ExpenseFilter) ([]core.Expense, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	bounds := f.Resolve(r.now().In(r.loc))

	var (
		where []string
		args  []any
	)
	if bounds.CategoryID != "" {
		where = append(where, "e.category_id = ?")
		args = append(args, bounds.CategoryID)
	}
	if bounds.HasSince {
		sec, nsec := bounds.Since.Unix(), bounds.Since.Nanosecond()
		where = append(where, "(e.date_unix > ? OR (e.date_unix = ? AND e.date_nanos >= ?))")
		args = append(args, sec, sec, nsec)
	}

	query := `SELECT e.id, e.amount, e.date_unix, e.date_nanos, e.note, e.category_id,
		c.id, c.name, c.icon, c.color, c.is_custom, c.created_at
		FROM expenses e LEFT JOIN categories c ON c.id = e.category_id`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY e.date_unix DESC, e.date_nanos DESC, e.seq ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", &core.PersistenceError{Op: "query expenses", Err: err})
	}
	defer rows.Close()

	expenses := make([]core.Expense, 0)
	for rows.Next() {
		exp, err := r.scanExpense(rows)
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, exp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expenses: %w", err)
	}

	slog.DebugContext(ctx, "Listed expenses",
		"category_id", f.CategoryID,
		"period", f.Period,
		"count", len(expenses))

	return expenses, nil
}

func (r *SQLiteRepository) scanExpense(rows *sql.Rows) (core.Expense, error) {
	var (
		exp       core.Expense
		amount    string
		dateUnix  int64
		dateNanos int64
		catID     sql.NullString
		catName   sql.NullString
		catIcon   sql.NullString
		catColor  sql.NullString
		catCustom sql.NullBool
		catAt     sql.NullInt64
	)
	if err := rows.Scan(&exp.ID, &amount, &dateUnix, &dateNanos, &exp.Note, &exp.CategoryID,
		&catID, &catName, &catIcon, &catColor, &catCustom, &catAt); err != nil {
		return core.Expense{}, fmt.Errorf("scan expense: %w", err)
	}

	d, err := decimal.NewFromString(amount)
	if err != nil {
		return core.Expense{}, &core.PersistenceError{Op: "decode amount", Err: err}
	}
	exp.Amount = d
	exp.Date = time.Unix(dateUnix, dateNanos).In(r.loc)

	if catID.Valid {
		exp.Category = &core.Category{
			ID:        catID.String,
			Name:      catName.String,
			Icon:      catIcon.String,
			Color:     catColor.String,
			IsCustom:  catCustom.Bool,
			CreatedAt: time.Unix(0, catAt.Int64).In(r.loc),
		}
	}
	return exp, nil
}

// DeleteAllExpenses implements ExpenseStore
func (r *SQLiteRepository) DeleteAllExpenses(ctx context.Context) error {
	err := r.withTx(ctx, "delete all expenses", func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM expenses`); err != nil {
			return &core.PersistenceError{Op: "delete expenses", Err: err}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete all expenses: %w", err)
	}

	slog.InfoContext(ctx, "All expenses deleted")
	return nil
}

// Reset implements Store
func (r *SQLiteRepository) Reset(ctx context.Context) error {
	err := r.withTx(ctx, "reset", func(tx *sql.Tx) error {
		for _, table := range []string{"expenses", "categories"} {
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
				return &core.PersistenceError{Op: "clear " + table, Err: err}
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("reset store: %w", err)
	}

	slog.InfoContext(ctx, "Store reset", "db_path", r.dbPath)
	return nil
}

func requireAffected(res sql.Result, kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return &core.PersistenceError{Op: "rows affected", Err: err}
	}
	if n == 0 {
		return &core.NotFoundError{Kind: kind, ID: id}
	}
	return nil
}
