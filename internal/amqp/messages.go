package amqp

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"fintrack/internal/core"
)

// Event actions, also used as the message type header.
const (
	ActionCreated = "transaction.created"
	ActionUpdated = "transaction.updated"
	ActionDeleted = "transaction.deleted"
)

// TransactionEvent describes one change to the ledger. Deleted events carry
// the last known state of the record.
type TransactionEvent struct {
	EventID   string    `json:"event_id"`
	Action    string    `json:"action"`
	ID        int64     `json:"id"`
	Kind      string    `json:"type"`
	Amount    string    `json:"amount"`
	Category  string    `json:"category"`
	Date      string    `json:"date"`
	Timestamp time.Time `json:"timestamp"`
}

// NewTransactionEvent snapshots t for the given action under a fresh
// event id, which consumers use to drop redeliveries.
func NewTransactionEvent(action string, t core.Transaction) *TransactionEvent {
	return &TransactionEvent{
		EventID:   uuid.NewString(),
		Action:    action,
		ID:        t.ID,
		Kind:      string(t.Kind),
		Amount:    t.Amount.String(),
		Category:  t.Category,
		Date:      t.Date.String(),
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *TransactionEvent) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// TransactionEventFromJSON creates a message from JSON bytes
func TransactionEventFromJSON(data []byte) (*TransactionEvent, error) {
	var msg TransactionEvent
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
