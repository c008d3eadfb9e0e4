package amqp

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"fintrack/internal/core"
)

// EventType names what happened to a transaction in the store.
type EventType string

const (
	EventCreated EventType = "created"
	EventDeleted EventType = "deleted"
)

var ErrMalformedEvent = errors.New("malformed transaction event")

// TransactionEvent is published after the store commits a change. Created
// events carry the full record; deleted events only the kind and id. UserID
// is the owner of the record.
type TransactionEvent struct {
	Event       EventType         `json:"event"`
	UserID      string            `json:"user_id"`
	Kind        core.Kind         `json:"kind"`
	ID          string            `json:"id"`
	Transaction *core.Transaction `json:"transaction,omitempty"`
	Timestamp   time.Time         `json:"timestamp"`
}

func NewCreatedEvent(userID string, t core.Transaction) *TransactionEvent {
	return &TransactionEvent{
		Event:       EventCreated,
		UserID:      userID,
		Kind:        t.Kind,
		ID:          t.ID,
		Transaction: &t,
		Timestamp:   time.Now().UTC(),
	}
}

func NewDeletedEvent(userID string, kind core.Kind, id string) *TransactionEvent {
	return &TransactionEvent{
		Event:     EventDeleted,
		UserID:    userID,
		Kind:      kind,
		ID:        id,
		Timestamp: time.Now().UTC(),
	}
}

// Validate rejects events a consumer cannot act on.
func (e *TransactionEvent) Validate() error {
	switch e.Event {
	case EventCreated:
		if e.Transaction == nil {
			return fmt.Errorf("%w: created event without transaction", ErrMalformedEvent)
		}
	case EventDeleted:
	default:
		return fmt.Errorf("%w: unknown event %q", ErrMalformedEvent, e.Event)
	}
	if !e.Kind.Valid() {
		return fmt.Errorf("%w: invalid kind %q", ErrMalformedEvent, e.Kind)
	}
	if e.ID == "" {
		return fmt.Errorf("%w: missing id", ErrMalformedEvent)
	}
	if e.UserID == "" {
		return fmt.Errorf("%w: missing user_id", ErrMalformedEvent)
	}
	return nil
}

func (e *TransactionEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// TransactionEventFromJSON decodes and validates a message body.
func TransactionEventFromJSON(data []byte) (*TransactionEvent, error) {
	var ev TransactionEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	if err := ev.Validate(); err != nil {
		return nil, err
	}
	return &ev, nil
}
