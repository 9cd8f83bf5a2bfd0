package memory

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"

	"fintrack/internal/core"
)

// Store keeps transactions in memory with the same semantics as the SQLite
// repository. Useful for demos and tests; nothing survives Close.
type Store struct {
	mu     sync.Mutex
	nextID int64
	items  []core.Transaction // sorted by (date, id)
}

func New() *Store {
	return &Store{nextID: 1}
}

// NewFromFile seeds the store from a CSV file in export format
// (ID,Type,Amount,Category,Date). Ids from the file are not kept; records
// are renumbered in file order. A missing file yields an empty store.
func NewFromFile(path string) (*Store, error) {
	s := New()
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("open seed file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comment = '#'
	r.FieldsPerRecord = len(seedHeader)
	r.TrimLeadingSpace = true

	first := true
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read seed file: %w", err)
		}
		line, _ := r.FieldPos(0)
		if first {
			first = false
			if strings.EqualFold(record[0], seedHeader[0]) {
				continue
			}
		}
		t, err := parseSeedRecord(record)
		if err != nil {
			return nil, fmt.Errorf("seed line %d: %w", line, err)
		}
		if _, err := s.Insert(context.Background(), t); err != nil {
			return nil, fmt.Errorf("seed line %d: %w", line, err)
		}
	}
	return s, nil
}

var seedHeader = []string{"ID", "Type", "Amount", "Category", "Date"}

func parseSeedRecord(record []string) (core.Transaction, error) {
	kind, err := core.ParseKind(record[1])
	if err != nil {
		return core.Transaction{}, err
	}
	amount, err := core.ParseAmount(record[2])
	if err != nil {
		return core.Transaction{}, err
	}
	date, err := core.ParseDate(record[4])
	if err != nil {
		return core.Transaction{}, err
	}
	return core.Transaction{Kind: kind, Amount: amount, Category: record[3], Date: date}, nil
}

// Insert stores the transaction and assigns the next id.
func (s *Store) Insert(_ context.Context, t core.Transaction) (int64, error) {
	t.Category = core.NormalizeCategory(t.Category)
	if err := t.Validate(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	t.ID = s.nextID
	s.nextID++
	s.items = append(s.items, t)
	s.sortLocked()
	return t.ID, nil
}

func (s *Store) Get(_ context.Context, id int64) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexLocked(id)
	if i < 0 {
		return core.Transaction{}, fmt.Errorf("get transaction %d: %w", id, core.ErrNotFound)
	}
	return s.items[i], nil
}

func (s *Store) Update(_ context.Context, id int64, u core.TransactionUpdate) error {
	if err := u.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexLocked(id)
	if i < 0 {
		return fmt.Errorf("update transaction %d: %w", id, core.ErrNotFound)
	}
	s.items[i] = s.items[i].Apply(u)
	s.sortLocked()
	return nil
}

func (s *Store) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexLocked(id)
	if i < 0 {
		return fmt.Errorf("delete transaction %d: %w", id, core.ErrNotFound)
	}
	s.items = append(s.items[:i], s.items[i+1:]...)
	return nil
}

func (s *Store) List(_ context.Context, f *core.Filter, offset, limit int) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if offset < 0 {
		offset = 0
	}
	out := []core.Transaction{}
	skipped := 0
	for _, t := range s.items {
		if !f.Match(t) {
			continue
		}
		if skipped < offset {
			skipped++
			continue
		}
		if limit > 0 && len(out) >= limit {
			break
		}
		out = append(out, t)
	}
	return out, nil
}

func (s *Store) Count(_ context.Context, f *core.Filter) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.items {
		if f.Match(t) {
			n++
		}
	}
	return n, nil
}

func (s *Store) MonthlyTotals(_ context.Context, year, month int) (core.MonthlyTotals, error) {
	totals := core.MonthlyTotals{Year: year, Month: month}
	if _, err := core.NewDate(year, month, 1); err != nil {
		return totals, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.items {
		if t.Date.InMonth(year, month) {
			totals.Add(t)
		}
	}
	return totals, nil
}

// Close drops all data.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
	return nil
}

func (s *Store) indexLocked(id int64) int {
	for i, t := range s.items {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) sortLocked() {
	sort.SliceStable(s.items, func(i, j int) bool {
		a, b := s.items[i], s.items[j]
		if !a.Date.Equal(b.Date.Time) {
			return a.Date.Before(b.Date.Time)
		}
		return a.ID < b.ID
	})
}
