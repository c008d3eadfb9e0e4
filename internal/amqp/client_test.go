package amqp

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"fintrack/internal/core"
)

func TestExponentialBackoff(t *testing.T) {
	tests := []struct {
		attempt  int
		expected time.Duration
	}{
		{-1, 1 * time.Second},
		{0, 1 * time.Second},
		{1, 2 * time.Second},
		{2, 4 * time.Second},
		{3, 8 * time.Second},
		{4, 16 * time.Second},
		{5, 30 * time.Second},  // capped at 30s
		{10, 30 * time.Second}, // capped at 30s
		{64, 30 * time.Second}, // no overflow
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("attempt_%d", tt.attempt), func(t *testing.T) {
			result := exponentialBackoff(tt.attempt)
			if result != tt.expected {
				t.Errorf("exponentialBackoff(%d) = %v, want %v", tt.attempt, result, tt.expected)
			}
		})
	}
}

func TestIsConnectionError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil error", nil, false},
		{"connection refused", errors.New("dial tcp: connection refused"), true},
		{"EOF", errors.New("unexpected EOF"), true},
		{"broken pipe", errors.New("write: broken pipe"), true},
		{"amqp closed", fmt.Errorf("publish message: %w", amqp091.ErrClosed), true},
		{"deliveries closed", errDeliveriesClosed, true},
		{"validation error", errors.New("invalid input"), false},
		{"other error", errors.New("some other error"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isConnectionError(tt.err); got != tt.expected {
				t.Errorf("isConnectionError(%v) = %v, want %v", tt.err, got, tt.expected)
			}
		})
	}
}

// recordingAck captures the acknowledgement a delivery received.
type recordingAck struct {
	acked    bool
	nacked   bool
	requeued bool
}

func (r *recordingAck) Ack(tag uint64, multiple bool) error {
	r.acked = true
	return nil
}

func (r *recordingAck) Nack(tag uint64, multiple, requeue bool) error {
	r.nacked = true
	r.requeued = requeue
	return nil
}

func (r *recordingAck) Reject(tag uint64, requeue bool) error {
	return r.Nack(tag, false, requeue)
}

func sampleTransaction() core.Transaction {
	return core.Transaction{
		ID:       "6f1c",
		Kind:     core.KindIncome,
		Title:    "Salary",
		Amount:   "100",
		Date:     core.NewDate(2024, 3, 5),
		Category: "salary",
	}
}

func TestHandleDelivery(t *testing.T) {
	created, err := NewCreatedEvent("u1", sampleTransaction()).ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() error = %v", err)
	}

	tests := []struct {
		name       string
		body       []byte
		handlerErr error
		wantAck    bool
		wantNack   bool
		wantQueue  bool
		wantCalled bool
	}{
		{"success acks", created, nil, true, false, false, true},
		{"handler failure requeues", created, errors.New("sheets down"), false, true, true, true},
		{"garbage is dropped", []byte("{not json"), nil, false, true, false, false},
		{"unknown event is dropped", []byte(`{"event":"updated","kind":"income","id":"1"}`), nil, false, true, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ack := &recordingAck{}
			called := false
			handler := func(ctx context.Context, ev *TransactionEvent) error {
				called = true
				return tt.handlerErr
			}

			handleDelivery(context.Background(), amqp091.Delivery{Acknowledger: ack, Body: tt.body}, handler)

			if called != tt.wantCalled {
				t.Errorf("handler called = %v, want %v", called, tt.wantCalled)
			}
			if ack.acked != tt.wantAck || ack.nacked != tt.wantNack || ack.requeued != tt.wantQueue {
				t.Errorf("ack state = %+v", *ack)
			}
		})
	}
}

func TestPublishRespectsCancelledContext(t *testing.T) {
	c := &Client{exchangeName: "fintrack", queueName: "transaction_events"}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := c.PublishTransactionEvent(ctx, NewDeletedEvent("u1", core.KindExpense, "1"))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("PublishTransactionEvent() error = %v, want context.Canceled", err)
	}
}

func TestPublishWithoutChannel(t *testing.T) {
	c := &Client{exchangeName: "fintrack", queueName: "transaction_events"}

	err := c.PublishTransactionEvent(context.Background(), NewDeletedEvent("u1", core.KindExpense, "1"))
	if !errors.Is(err, amqp091.ErrClosed) {
		t.Errorf("PublishTransactionEvent() error = %v, want ErrClosed", err)
	}
}
