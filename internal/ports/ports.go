package ports

import (
	"context"

	"fintrack/internal/core"
)

// Ports implemented by the transaction stores.
type (
	TransactionWriter interface {
		// Insert persists a new transaction and returns its assigned id.
		Insert(ctx context.Context, t core.Transaction) (id int64, err error)
		// Update changes amount, category and/or date. Returns core.ErrNotFound
		// for an unknown id.
		Update(ctx context.Context, id int64, u core.TransactionUpdate) error
		// Delete removes a transaction. Returns core.ErrNotFound for an unknown id.
		Delete(ctx context.Context, id int64) error
	}

	TransactionReader interface {
		Get(ctx context.Context, id int64) (core.Transaction, error)
	}

	// TransactionLister returns filtered pages ordered by (date, id).
	TransactionLister interface {
		// List returns at most limit matching transactions starting at offset.
		// A limit <= 0 returns everything from offset on.
		List(ctx context.Context, f *core.Filter, offset, limit int) ([]core.Transaction, error)
		Count(ctx context.Context, f *core.Filter) (int, error)
	}

	// SummaryReader aggregates income and expense per calendar month.
	SummaryReader interface {
		MonthlyTotals(ctx context.Context, year, month int) (core.MonthlyTotals, error)
	}

	// Store is the full transaction store, owning its storage handle.
	Store interface {
		TransactionWriter
		TransactionReader
		TransactionLister
		SummaryReader
		Close() error
	}
)
