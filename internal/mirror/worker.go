// Package mirror copies store events into a secondary transaction store,
// normally the spreadsheet.
package mirror

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/store"
)

// Target is where mirrored transactions are written.
type Target interface {
	Insert(ctx context.Context, userID string, t core.Transaction) error
	Delete(ctx context.Context, userID string, kind core.Kind, id string) error
}

// Worker applies transaction events to a Target. Redelivered events are
// harmless: a repeated create or a delete of a missing row is a no-op.
type Worker struct {
	target Target
}

func NewWorker(target Target) *Worker {
	return &Worker{target: target}
}

// Handle matches amqp.Handler. A returned error makes the broker requeue
// the event.
func (w *Worker) Handle(ctx context.Context, ev *amqp.TransactionEvent) error {
	switch ev.Event {
	case amqp.EventCreated:
		return w.handleCreated(ctx, ev)
	case amqp.EventDeleted:
		return w.handleDeleted(ctx, ev)
	default:
		// Already rejected by the decoder; kept for handlers called directly.
		return fmt.Errorf("%w: unknown event %q", amqp.ErrMalformedEvent, ev.Event)
	}
}

func (w *Worker) handleCreated(ctx context.Context, ev *amqp.TransactionEvent) error {
	t := *ev.Transaction
	t.Kind, t.ID = ev.Kind, ev.ID

	err := w.target.Insert(ctx, ev.UserID, t)
	switch {
	case errors.Is(err, store.ErrDuplicate):
		slog.InfoContext(ctx, "Transaction already mirrored", "kind", ev.Kind, "id", ev.ID)
		return nil
	case err != nil:
		return fmt.Errorf("mirror %s %s: %w", ev.Kind, ev.ID, err)
	}

	slog.InfoContext(ctx, "Mirrored transaction",
		"user_id", ev.UserID,
		"kind", ev.Kind,
		"id", ev.ID,
		"title", t.Title)
	return nil
}

func (w *Worker) handleDeleted(ctx context.Context, ev *amqp.TransactionEvent) error {
	err := w.target.Delete(ctx, ev.UserID, ev.Kind, ev.ID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		slog.InfoContext(ctx, "Transaction not in mirror, nothing to delete", "kind", ev.Kind, "id", ev.ID)
		return nil
	case err != nil:
		return fmt.Errorf("delete mirrored %s %s: %w", ev.Kind, ev.ID, err)
	}

	slog.InfoContext(ctx, "Deleted mirrored transaction", "kind", ev.Kind, "id", ev.ID)
	return nil
}
