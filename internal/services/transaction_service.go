package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/cache"
	"fintrack/internal/core"
	"fintrack/internal/ports"
)

// EventPublisher is the subset of the AMQP client the service needs.
type EventPublisher interface {
	PublishTransactionEvent(ctx context.Context, event *amqp.TransactionEvent) error
	Close() error
}

// TransactionService orchestrates ledger operations across the store, the
// monthly summary cache and optional change events.
type TransactionService struct {
	store     ports.Store
	publisher EventPublisher
	summaries *cache.LRUCache[core.MonthlyTotals]
}

// Options tunes the summary cache.
type Options struct {
	SummaryCacheSize int
	SummaryCacheTTL  time.Duration
}

func DefaultOptions() Options {
	return Options{
		SummaryCacheSize: 24,
		SummaryCacheTTL:  10 * time.Minute,
	}
}

// NewTransactionService wires a store with an optional publisher (nil disables events).
func NewTransactionService(store ports.Store, publisher EventPublisher, opts Options) *TransactionService {
	return &TransactionService{
		store:     store,
		publisher: publisher,
		summaries: cache.NewLRUCache[core.MonthlyTotals](opts.SummaryCacheSize, opts.SummaryCacheTTL),
	}
}

// AddTransaction records a new income or expense and returns it with its id.
func (s *TransactionService) AddTransaction(ctx context.Context, kind core.Kind, amount string, category string, date core.Date) (core.Transaction, error) {
	value, err := core.ParseAmount(amount)
	if err != nil {
		return core.Transaction{}, err
	}
	t := core.Transaction{
		Kind:     kind,
		Amount:   value,
		Category: core.NormalizeCategory(category),
		Date:     date,
	}
	return s.Create(ctx, t)
}

// Create persists t and returns it with the assigned id.
func (s *TransactionService) Create(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	t.Category = core.NormalizeCategory(t.Category)
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}

	id, err := s.store.Insert(ctx, t)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("save transaction: %w", err)
	}
	t.ID = id
	s.afterWrite(ctx, amqp.ActionCreated, t)

	slog.InfoContext(ctx, "Transaction created",
		"id", id,
		"type", t.Kind,
		"amount", t.Amount.String(),
		"date", t.Date.String())
	return t, nil
}

func (s *TransactionService) Get(ctx context.Context, id int64) (core.Transaction, error) {
	if id <= 0 {
		return core.Transaction{}, fmt.Errorf("%w: %d", core.ErrInvalidID, id)
	}
	return s.store.Get(ctx, id)
}

// Update applies u to the transaction and returns the new state. An empty
// update is a no-op that still verifies the id exists.
func (s *TransactionService) Update(ctx context.Context, id int64, u core.TransactionUpdate) (core.Transaction, error) {
	if err := u.Validate(); err != nil {
		return core.Transaction{}, err
	}
	if u.IsEmpty() {
		return s.Get(ctx, id)
	}
	if err := s.store.Update(ctx, id, u); err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction: %w", err)
	}
	t, err := s.store.Get(ctx, id)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("reload transaction: %w", err)
	}
	s.afterWrite(ctx, amqp.ActionUpdated, t)

	slog.InfoContext(ctx, "Transaction updated", "id", id)
	return t, nil
}

// Delete removes a transaction.
func (s *TransactionService) Delete(ctx context.Context, id int64) error {
	t, err := s.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	s.afterWrite(ctx, amqp.ActionDeleted, t)

	slog.InfoContext(ctx, "Transaction deleted", "id", id)
	return nil
}

// Page is one screen of a filtered listing.
type Page struct {
	Items  []core.Transaction
	Offset int
	Total  int
}

// HasPrev reports whether an earlier page exists for the given page size.
func (p Page) HasPrev(size int) bool {
	return p.Offset >= size
}

// HasNext reports whether records exist after this page.
func (p Page) HasNext() bool {
	return p.Offset+len(p.Items) < p.Total
}

// ListPage returns the page of f starting at offset.
func (s *TransactionService) ListPage(ctx context.Context, f *core.Filter, offset, size int) (Page, error) {
	items, err := s.store.List(ctx, f, offset, size)
	if err != nil {
		return Page{}, fmt.Errorf("list transactions: %w", err)
	}
	total, err := s.store.Count(ctx, f)
	if err != nil {
		return Page{}, fmt.Errorf("count transactions: %w", err)
	}
	return Page{Items: items, Offset: offset, Total: total}, nil
}

// ListAll returns every transaction matching f, in listing order.
func (s *TransactionService) ListAll(ctx context.Context, f *core.Filter) ([]core.Transaction, error) {
	items, err := s.store.List(ctx, f, 0, 0)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return items, nil
}

// MonthlyTotals returns cached totals when available.
func (s *TransactionService) MonthlyTotals(ctx context.Context, year, month int) (core.MonthlyTotals, error) {
	if _, err := core.NewDate(year, month, 1); err != nil {
		return core.MonthlyTotals{}, err
	}
	key := fmt.Sprintf("%04d-%02d", year, month)
	if totals, ok := s.summaries.Get(key); ok {
		slog.DebugContext(ctx, "Monthly totals cache hit", "key", key)
		return totals, nil
	}

	totals, err := s.store.MonthlyTotals(ctx, year, month)
	if err != nil {
		return core.MonthlyTotals{}, fmt.Errorf("monthly totals: %w", err)
	}
	s.summaries.Set(key, totals)
	return totals, nil
}

// afterWrite invalidates cached summaries and publishes the change event.
func (s *TransactionService) afterWrite(ctx context.Context, action string, t core.Transaction) {
	s.summaries.Clear()

	if s.publisher == nil {
		return
	}
	// The local write already succeeded, so a failed publish is only logged.
	if err := s.publisher.PublishTransactionEvent(ctx, amqp.NewTransactionEvent(action, t)); err != nil {
		slog.WarnContext(ctx, "Failed to publish transaction event",
			"action", action,
			"id", t.ID,
			"error", err)
	}
}

// Close closes both the store and the AMQP connection
func (s *TransactionService) Close() error {
	var errs []error

	stats := s.summaries.Stats()
	slog.Debug("Summary cache stats",
		"size", stats.Size,
		"hits", stats.Hits,
		"misses", stats.Misses)

	if s.store != nil {
		if err := s.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	if s.publisher != nil {
		if err := s.publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close transaction service: %w", errors.Join(errs...))
	}

	return nil
}
