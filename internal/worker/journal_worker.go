// Package worker consumes ledger change events outside the interactive
// process.
package worker

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"fintrack/internal/amqp"
)

// JournalWorker appends every change event it receives to a journal as one
// JSON object per line. Events whose id is already journaled are skipped,
// so broker redeliveries do not duplicate entries.
type JournalWorker struct {
	mu        sync.Mutex
	w         io.Writer
	seen      map[string]struct{}
	processed int
	skipped   int
}

// NewJournalWorker writes to w. seen holds the event ids already present in
// the journal and may be nil.
func NewJournalWorker(w io.Writer, seen map[string]struct{}) *JournalWorker {
	if seen == nil {
		seen = make(map[string]struct{})
	}
	return &JournalWorker{w: w, seen: seen}
}

// OpenJournal opens path for appending, creating it and its directory.
func OpenJournal(path string) (*os.File, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create journal directory: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	return f, nil
}

// LoadEventIDs reads the ids of the events already journaled at path.
// A missing journal is empty.
func LoadEventIDs(path string) (map[string]struct{}, error) {
	ids := make(map[string]struct{})
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return ids, nil
		}
		return nil, fmt.Errorf("open journal: %w", err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	line := 0
	for sc.Scan() {
		line++
		if len(sc.Bytes()) == 0 {
			continue
		}
		event, err := amqp.TransactionEventFromJSON(sc.Bytes())
		if err != nil {
			return nil, fmt.Errorf("journal line %d: %w", line, err)
		}
		if event.EventID != "" {
			ids[event.EventID] = struct{}{}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read journal: %w", err)
	}
	return ids, nil
}

// HandleTransactionEvent journals one event. Unknown actions are rejected so
// the broker requeues them instead of losing them.
func (w *JournalWorker) HandleTransactionEvent(ctx context.Context, event *amqp.TransactionEvent) error {
	switch event.Action {
	case amqp.ActionCreated, amqp.ActionUpdated, amqp.ActionDeleted:
	default:
		return fmt.Errorf("unknown event action %q", event.Action)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if _, dup := w.seen[event.EventID]; dup && event.EventID != "" {
		w.skipped++
		slog.DebugContext(ctx, "Skipping duplicate event", "event_id", event.EventID)
		return nil
	}

	line, err := event.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	line = append(line, '\n')

	if _, err := w.w.Write(line); err != nil {
		return fmt.Errorf("append to journal: %w", err)
	}
	if event.EventID != "" {
		w.seen[event.EventID] = struct{}{}
	}
	w.processed++

	slog.InfoContext(ctx, "Journaled transaction event",
		"event_id", event.EventID,
		"action", event.Action,
		"transaction_id", event.ID,
		"date", event.Date)
	return nil
}

// Processed returns the number of events journaled by this worker.
func (w *JournalWorker) Processed() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.processed
}

// Skipped returns the number of duplicate events ignored.
func (w *JournalWorker) Skipped() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.skipped
}
