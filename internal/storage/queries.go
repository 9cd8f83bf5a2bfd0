package storage

import (
	"context"
	"database/sql"
	"strings"
)

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
	QueryContext(context.Context, string, ...any) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...any) *sql.Row
}

// Queries holds the SQL for the transactions table. Every value reaches the
// driver as a bound parameter.
type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// WithTx returns a Queries bound to tx.
func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

// TransactionRow mirrors one row of the transactions table.
type TransactionRow struct {
	ID       int64
	Type     string
	Amount   float64
	Category sql.NullString
	Date     string
}

const transactionColumns = `id, type, amount, category, date`

const createTransaction = `INSERT INTO transactions (type, amount, category, date) VALUES (?, ?, ?, ?)`

type CreateTransactionParams struct {
	Type     string
	Amount   float64
	Category string
	Date     string
}

func (q *Queries) CreateTransaction(ctx context.Context, arg CreateTransactionParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, createTransaction, arg.Type, arg.Amount, arg.Category, arg.Date)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

const getTransaction = `SELECT ` + transactionColumns + ` FROM transactions WHERE id = ?`

func (q *Queries) GetTransaction(ctx context.Context, id int64) (TransactionRow, error) {
	row := q.db.QueryRowContext(ctx, getTransaction, id)
	var r TransactionRow
	err := row.Scan(&r.ID, &r.Type, &r.Amount, &r.Category, &r.Date)
	return r, err
}

const updateTransaction = `UPDATE transactions SET amount = ?, category = ?, date = ? WHERE id = ?`

type UpdateTransactionParams struct {
	ID       int64
	Amount   float64
	Category string
	Date     string
}

func (q *Queries) UpdateTransaction(ctx context.Context, arg UpdateTransactionParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, updateTransaction, arg.Amount, arg.Category, arg.Date, arg.ID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const deleteTransaction = `DELETE FROM transactions WHERE id = ?`

func (q *Queries) DeleteTransaction(ctx context.Context, id int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteTransaction, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ListTransactions runs a filtered page query. where and args come from
// buildWhere; limit < 0 means no limit.
func (q *Queries) ListTransactions(ctx context.Context, where string, args []any, offset, limit int) ([]TransactionRow, error) {
	var b strings.Builder
	b.WriteString(`SELECT ` + transactionColumns + ` FROM transactions`)
	b.WriteString(where)
	b.WriteString(` ORDER BY date ASC, id ASC LIMIT ? OFFSET ?`)

	params := append(append([]any(nil), args...), limit, offset)
	rows, err := q.db.QueryContext(ctx, b.String(), params...)
	if err != nil {
		return nil, err
	}
	return scanRows(rows)
}

func (q *Queries) CountTransactions(ctx context.Context, where string, args []any) (int, error) {
	var n int
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions`+where, args...).Scan(&n)
	return n, err
}

// Range on the ISO date text so the (date, id) index is usable.
const getTransactionsInRange = `SELECT ` + transactionColumns + ` FROM transactions
WHERE date >= ? AND date < ?
ORDER BY date ASC, id ASC`

func (q *Queries) GetTransactionsInRange(ctx context.Context, from, to string) ([]TransactionRow, error) {
	rows, err := q.db.QueryContext(ctx, getTransactionsInRange, from, to)
	if err != nil {
		return nil, err
	}
	return scanRows(rows)
}

func scanRows(rows *sql.Rows) ([]TransactionRow, error) {
	defer rows.Close()
	var items []TransactionRow
	for rows.Next() {
		var r TransactionRow
		if err := rows.Scan(&r.ID, &r.Type, &r.Amount, &r.Category, &r.Date); err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
