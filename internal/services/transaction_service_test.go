package services

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/storage/memory"
)

type fakePublisher struct {
	events []*amqp.TransactionEvent
	err    error
	closed bool
}

func (f *fakePublisher) PublishTransactionEvent(_ context.Context, e *amqp.TransactionEvent) error {
	f.events = append(f.events, e)
	return f.err
}

func (f *fakePublisher) Close() error {
	f.closed = true
	return nil
}

// countingStore counts MonthlyTotals calls that reach the store.
type countingStore struct {
	*memory.Store
	totalsCalls int
}

func (c *countingStore) MonthlyTotals(ctx context.Context, year, month int) (core.MonthlyTotals, error) {
	c.totalsCalls++
	return c.Store.MonthlyTotals(ctx, year, month)
}

func newService(t *testing.T) (*TransactionService, *countingStore, *fakePublisher) {
	t.Helper()
	store := &countingStore{Store: memory.New()}
	pub := &fakePublisher{}
	return NewTransactionService(store, pub, DefaultOptions()), store, pub
}

func TestNewTransactionService(t *testing.T) {
	service := NewTransactionService(nil, nil, DefaultOptions())
	if service == nil {
		t.Fatal("NewTransactionService should return a non-nil service")
	}
	if err := service.Close(); err != nil {
		t.Fatalf("Close should not return error with nil components: %v", err)
	}
}

func TestAddTransaction(t *testing.T) {
	svc, _, pub := newService(t)
	ctx := context.Background()

	tx, err := svc.AddTransaction(ctx, core.Expense, "12,50", "", core.MustDate(2024, 1, 10))
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if tx.ID != 1 || tx.Category != core.DefaultCategory || !tx.Amount.Equal(decimal.RequireFromString("12.5")) {
		t.Fatalf("unexpected transaction %+v", tx)
	}
	if len(pub.events) != 1 || pub.events[0].Action != amqp.ActionCreated || pub.events[0].ID != 1 {
		t.Fatalf("expected one created event, got %+v", pub.events)
	}

	if _, err := svc.AddTransaction(ctx, core.Expense, "ten", "Food", core.MustDate(2024, 1, 10)); !errors.Is(err, core.ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
	if len(pub.events) != 1 {
		t.Fatalf("failed insert must not publish")
	}
}

func TestPublishFailureDoesNotFailWrite(t *testing.T) {
	svc, _, pub := newService(t)
	pub.err = errors.New("connection refused")

	tx, err := svc.AddTransaction(context.Background(), core.Income, "5", "Tip", core.MustDate(2024, 1, 1))
	if err != nil {
		t.Fatalf("write should succeed even if publish fails: %v", err)
	}
	if _, err := svc.Get(context.Background(), tx.ID); err != nil {
		t.Fatalf("transaction should be stored: %v", err)
	}
}

func TestUpdateAndDelete(t *testing.T) {
	svc, _, pub := newService(t)
	ctx := context.Background()
	tx, _ := svc.AddTransaction(ctx, core.Income, "100", "Salary", core.MustDate(2024, 1, 31))

	amount := decimal.NewFromInt(150)
	updated, err := svc.Update(ctx, tx.ID, core.TransactionUpdate{Amount: &amount})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !updated.Amount.Equal(amount) || updated.Category != "Salary" || updated.Kind != core.Income || updated.ID != tx.ID {
		t.Fatalf("unexpected update result %+v", updated)
	}

	same, err := svc.Update(ctx, tx.ID, core.TransactionUpdate{})
	if err != nil || !same.Amount.Equal(amount) {
		t.Fatalf("empty update should return current state: %+v %v", same, err)
	}

	if _, err := svc.Update(ctx, 404, core.TransactionUpdate{Amount: &amount}); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := svc.Delete(ctx, tx.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := svc.Delete(ctx, tx.ID); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := svc.Get(ctx, 0); !errors.Is(err, core.ErrInvalidID) {
		t.Fatalf("expected ErrInvalidID, got %v", err)
	}

	actions := []string{}
	for _, e := range pub.events {
		actions = append(actions, e.Action)
	}
	want := []string{amqp.ActionCreated, amqp.ActionUpdated, amqp.ActionDeleted}
	if len(actions) != len(want) {
		t.Fatalf("events = %v, want %v", actions, want)
	}
	for i := range want {
		if actions[i] != want[i] {
			t.Fatalf("events = %v, want %v", actions, want)
		}
	}
	if pub.events[2].Category != "Salary" {
		t.Fatalf("delete event should carry the last state, got %+v", pub.events[2])
	}
}

func TestMonthlyTotalsCache(t *testing.T) {
	svc, store, _ := newService(t)
	ctx := context.Background()

	if _, err := svc.AddTransaction(ctx, core.Income, "10", "A", core.MustDate(2024, 5, 1)); err != nil {
		t.Fatalf("add: %v", err)
	}

	first, err := svc.MonthlyTotals(ctx, 2024, 5)
	if err != nil {
		t.Fatalf("totals: %v", err)
	}
	if _, err := svc.MonthlyTotals(ctx, 2024, 5); err != nil {
		t.Fatalf("totals: %v", err)
	}
	if store.totalsCalls != 1 {
		t.Fatalf("second call should be served from cache, store calls = %d", store.totalsCalls)
	}
	if !first.Balance().Equal(decimal.NewFromInt(10)) {
		t.Fatalf("balance = %s", first.Balance())
	}

	// a write invalidates the cache
	if _, err := svc.AddTransaction(ctx, core.Expense, "4", "B", core.MustDate(2024, 5, 2)); err != nil {
		t.Fatalf("add: %v", err)
	}
	second, _ := svc.MonthlyTotals(ctx, 2024, 5)
	if store.totalsCalls != 2 {
		t.Fatalf("cache should be invalidated after write, store calls = %d", store.totalsCalls)
	}
	if !second.Balance().Equal(decimal.NewFromInt(6)) {
		t.Fatalf("balance = %s", second.Balance())
	}

	if _, err := svc.MonthlyTotals(ctx, 2024, 0); !errors.Is(err, core.ErrInvalidMonth) {
		t.Fatalf("expected ErrInvalidMonth, got %v", err)
	}
}

func TestListPage(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()
	for i := 1; i <= 15; i++ {
		if _, err := svc.AddTransaction(ctx, core.Expense, "1", "Misc", core.MustDate(2024, 2, i)); err != nil {
			t.Fatalf("add: %v", err)
		}
	}

	p, err := svc.ListPage(ctx, nil, 0, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(p.Items) != 10 || p.Total != 15 || p.HasPrev(10) || !p.HasNext() {
		t.Fatalf("unexpected first page: items=%d total=%d", len(p.Items), p.Total)
	}
	p, _ = svc.ListPage(ctx, nil, 10, 10)
	if len(p.Items) != 5 || !p.HasPrev(10) || p.HasNext() {
		t.Fatalf("unexpected second page: items=%d", len(p.Items))
	}
	p, _ = svc.ListPage(ctx, nil, 20, 10)
	if len(p.Items) != 0 {
		t.Fatalf("expected empty page, got %d", len(p.Items))
	}

	all, err := svc.ListAll(ctx, core.NewFilter().ByDate(core.MustDate(2024, 2, 3)))
	if err != nil || len(all) != 1 {
		t.Fatalf("ListAll = %d rows, err = %v", len(all), err)
	}
}

func TestClose(t *testing.T) {
	svc, _, pub := newService(t)
	if err := svc.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if !pub.closed {
		t.Fatal("publisher should be closed")
	}
}
