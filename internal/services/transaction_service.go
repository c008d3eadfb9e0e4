package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/store"
)

// EventPublisher announces committed changes. *amqp.Client implements it.
type EventPublisher interface {
	PublishTransactionEvent(ctx context.Context, ev *amqp.TransactionEvent) error
}

// ErrNoOwner is returned when a call does not name the acting user.
var ErrNoOwner = errors.New("transaction owner required")

// TransactionService validates and persists transactions, then publishes
// an event for each committed change. Every call acts on behalf of one user
// and only sees that user's records.
type TransactionService struct {
	repo       store.TransactionRepository
	categories core.CategoryChecker
	publisher  EventPublisher
	newID      func() string
}

// NewTransactionService wires the service. A nil publisher disables events.
func NewTransactionService(repo store.TransactionRepository, categories core.CategoryChecker, publisher EventPublisher) *TransactionService {
	return &TransactionService{
		repo:       repo,
		categories: categories,
		publisher:  publisher,
		newID:      uuid.NewString,
	}
}

// List returns userID's transactions of kind in insertion order.
func (s *TransactionService) List(ctx context.Context, userID string, kind core.Kind) ([]core.Transaction, error) {
	if userID == "" {
		return nil, ErrNoOwner
	}
	if !kind.Valid() {
		return nil, &core.ValidationError{Field: "type", Reason: core.ErrInvalidKind}
	}
	txs, err := s.repo.List(ctx, userID, kind)
	if err != nil {
		return nil, fmt.Errorf("list %ss: %w", kind, err)
	}
	return txs, nil
}

// Create re-validates t as kind, assigns a fresh id and saves it for
// userID. Any id sent by the caller is ignored.
func (s *TransactionService) Create(ctx context.Context, userID string, kind core.Kind, t core.Transaction) (core.Transaction, error) {
	if userID == "" {
		return core.Transaction{}, ErrNoOwner
	}
	t.Kind = kind
	t.ID = ""
	if err := t.Validate(s.categories); err != nil {
		return core.Transaction{}, err
	}
	// Stored amounts use canonical text: "012.50" becomes "12.5".
	d, _ := t.Amount.Decimal()
	t.Amount = core.NewAmount(d)

	t.ID = s.newID()
	if err := s.repo.Insert(ctx, userID, t); err != nil {
		return core.Transaction{}, fmt.Errorf("save %s: %w", kind, err)
	}

	s.publish(ctx, amqp.NewCreatedEvent(userID, t))
	return t, nil
}

// Delete removes one of userID's transactions. Records owned by someone
// else are reported as store.ErrNotFound.
func (s *TransactionService) Delete(ctx context.Context, userID string, kind core.Kind, id string) error {
	if userID == "" {
		return ErrNoOwner
	}
	if !kind.Valid() {
		return &core.ValidationError{Field: "type", Reason: core.ErrInvalidKind}
	}
	if err := s.repo.Delete(ctx, userID, kind, id); err != nil {
		return fmt.Errorf("delete %s %s: %w", kind, id, err)
	}

	s.publish(ctx, amqp.NewDeletedEvent(userID, kind, id))
	return nil
}

// publish is best effort: the change is already committed.
func (s *TransactionService) publish(ctx context.Context, ev *amqp.TransactionEvent) {
	if s.publisher == nil {
		slog.DebugContext(ctx, "Event publisher not configured, skipping event", "event", ev.Event, "id", ev.ID)
		return
	}
	if err := s.publisher.PublishTransactionEvent(ctx, ev); err != nil {
		slog.ErrorContext(ctx, "Failed to publish transaction event",
			"event", ev.Event,
			"user_id", ev.UserID,
			"kind", ev.Kind,
			"id", ev.ID,
			"error", err)
	}
}

// Close closes the repository and publisher when they hold resources.
func (s *TransactionService) Close() error {
	var errs []error

	if c, ok := s.repo.(io.Closer); ok {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("store: %w", err))
		}
	}
	if c, ok := s.publisher.(io.Closer); ok {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("close transaction service: %w", err)
	}
	return nil
}
