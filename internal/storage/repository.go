package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
	path    string
	schema  SchemaStatus
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, core.NewStorageError("create db directory", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, core.NewStorageError("open sqlite database", err)
	}
	// One writer, one user: a single connection keeps SQLite locking trivial.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, core.NewStorageError("ping database", err)
	}

	schema, err := RunMigrations(dbPath)
	if err != nil {
		db.Close()
		return nil, core.NewStorageError("run migrations", err)
	}
	if schema.Legacy {
		slog.Info("Adopted legacy transactions table", "path", dbPath, "schema_version", schema.Version)
	} else {
		slog.Debug("Database schema ready", "path", dbPath, "schema_version", schema.Version)
	}

	repo := &SQLiteRepository{
		db:      db,
		queries: New(db),
		path:    dbPath,
		schema:  schema,
	}

	return repo, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		err := r.db.Close()
		r.db = nil
		return err
	}
	return nil
}

// Schema returns the schema status found when the repository was opened.
func (r *SQLiteRepository) Schema() SchemaStatus {
	return r.schema
}

// Path returns the database file path.
func (r *SQLiteRepository) Path() string {
	return r.path
}

// Insert implements ports.TransactionWriter
func (r *SQLiteRepository) Insert(ctx context.Context, t core.Transaction) (int64, error) {
	t.Category = core.NormalizeCategory(t.Category)
	if err := t.Validate(); err != nil {
		return 0, err
	}

	id, err := r.queries.CreateTransaction(ctx, CreateTransactionParams{
		Type:     string(t.Kind),
		Amount:   t.Amount.InexactFloat64(),
		Category: t.Category,
		Date:     t.Date.String(),
	})
	if err != nil {
		return 0, core.NewStorageError("insert transaction", err)
	}

	slog.DebugContext(ctx, "Transaction saved to SQLite",
		"id", id,
		"type", t.Kind,
		"amount", t.Amount.String(),
		"category", t.Category,
		"date", t.Date.String())

	return id, nil
}

// Get implements ports.TransactionReader
func (r *SQLiteRepository) Get(ctx context.Context, id int64) (core.Transaction, error) {
	row, err := r.queries.GetTransaction(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Transaction{}, fmt.Errorf("get transaction %d: %w", id, core.ErrNotFound)
		}
		return core.Transaction{}, core.NewStorageError("get transaction", err)
	}
	return rowToTransaction(row)
}

// Update implements ports.TransactionWriter
func (r *SQLiteRepository) Update(ctx context.Context, id int64, u core.TransactionUpdate) error {
	if err := u.Validate(); err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return core.NewStorageError("begin update", err)
	}
	defer tx.Rollback()

	q := r.queries.WithTx(tx)
	row, err := q.GetTransaction(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("update transaction %d: %w", id, core.ErrNotFound)
		}
		return core.NewStorageError("load transaction for update", err)
	}
	current, err := rowToTransaction(row)
	if err != nil {
		return err
	}

	next := current.Apply(u)
	if _, err := q.UpdateTransaction(ctx, UpdateTransactionParams{
		ID:       id,
		Amount:   next.Amount.InexactFloat64(),
		Category: next.Category,
		Date:     next.Date.String(),
	}); err != nil {
		return core.NewStorageError("update transaction", err)
	}

	if err := tx.Commit(); err != nil {
		return core.NewStorageError("commit update", err)
	}

	slog.DebugContext(ctx, "Transaction updated", "id", id)
	return nil
}

// Delete implements ports.TransactionWriter
func (r *SQLiteRepository) Delete(ctx context.Context, id int64) error {
	n, err := r.queries.DeleteTransaction(ctx, id)
	if err != nil {
		return core.NewStorageError("delete transaction", err)
	}
	if n == 0 {
		return fmt.Errorf("delete transaction %d: %w", id, core.ErrNotFound)
	}

	slog.DebugContext(ctx, "Transaction deleted", "id", id)
	return nil
}

// List implements ports.TransactionLister
func (r *SQLiteRepository) List(ctx context.Context, f *core.Filter, offset, limit int) ([]core.Transaction, error) {
	where, args, err := buildWhere(f)
	if err != nil {
		return nil, err
	}
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = -1
	}

	rows, err := r.queries.ListTransactions(ctx, where, args, offset, limit)
	if err != nil {
		return nil, core.NewStorageError("list transactions", err)
	}
	return rowsToTransactions(rows)
}

// Count implements ports.TransactionLister
func (r *SQLiteRepository) Count(ctx context.Context, f *core.Filter) (int, error) {
	where, args, err := buildWhere(f)
	if err != nil {
		return 0, err
	}
	n, err := r.queries.CountTransactions(ctx, where, args)
	if err != nil {
		return 0, core.NewStorageError("count transactions", err)
	}
	return n, nil
}

// MonthlyTotals implements ports.SummaryReader. Sums are computed in decimal
// rather than with SQL SUM over REAL values.
func (r *SQLiteRepository) MonthlyTotals(ctx context.Context, year, month int) (core.MonthlyTotals, error) {
	totals := core.MonthlyTotals{Year: year, Month: month}

	from, err := core.NewDate(year, month, 1)
	if err != nil {
		return totals, err
	}
	to := core.Date{Time: from.AddDate(0, 1, 0)}

	rows, err := r.queries.GetTransactionsInRange(ctx, from.String(), to.String())
	if err != nil {
		return totals, core.NewStorageError("get month transactions", err)
	}

	txs, err := rowsToTransactions(rows)
	if err != nil {
		return totals, err
	}
	for _, t := range txs {
		totals.Add(t)
	}

	return totals, nil
}

func rowsToTransactions(rows []TransactionRow) ([]core.Transaction, error) {
	out := make([]core.Transaction, 0, len(rows))
	for _, row := range rows {
		t, err := rowToTransaction(row)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

func rowToTransaction(row TransactionRow) (core.Transaction, error) {
	dateText := row.Date
	// tolerate "YYYY-MM-DD hh:mm:ss" values written by older tools
	if len(dateText) > len(core.DateLayout) {
		dateText = dateText[:len(core.DateLayout)]
	}
	date, err := core.ParseDate(dateText)
	if err != nil {
		return core.Transaction{}, core.NewStorageError(fmt.Sprintf("decode date of row %d", row.ID), fmt.Errorf("%q: %v", row.Date, err))
	}

	return core.Transaction{
		ID:       row.ID,
		Kind:     core.Kind(row.Type),
		Amount:   decimal.NewFromFloat(row.Amount),
		Category: core.NormalizeCategory(row.Category.String),
		Date:     date,
	}, nil
}
