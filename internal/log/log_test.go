package log

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"fintrack/internal/core"
)

func newBufferLogger(level slog.Level) (*Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return New(Config{Level: level, Component: ComponentHTTP, Output: &buf}), &buf
}

func TestLoggerAddsComponent(t *testing.T) {
	logger, buf := newBufferLogger(slog.LevelInfo)

	logger.Info("hello", "k", "v")
	logger.WithComponent(ComponentAuth).Warn("careful")

	out := buf.String()
	if !strings.Contains(out, "component=http") || !strings.Contains(out, "k=v") {
		t.Errorf("first record missing fields: %s", out)
	}
	if !strings.Contains(out, "component=auth") {
		t.Errorf("WithComponent not applied: %s", out)
	}
	if strings.Count(out, "component=") != 2 {
		t.Errorf("component logged more than once per record: %s", out)
	}
}

func TestLoggerRespectsLevel(t *testing.T) {
	logger, buf := newBufferLogger(slog.LevelWarn)

	logger.Info("hidden")
	logger.Debug("hidden too")
	if buf.Len() != 0 {
		t.Fatalf("expected nothing below warn, got %q", buf.String())
	}
}

func TestFromContextFallsBack(t *testing.T) {
	l := FromContext(context.Background())
	if l == nil || l.Component() != ComponentApp {
		t.Fatalf("FromContext() = %+v", l)
	}

	logger, _ := newBufferLogger(slog.LevelInfo)
	ctx := NewContext(context.Background(), logger)
	if got := FromContext(ctx); got != logger {
		t.Error("FromContext did not return the stored logger")
	}
}

func TestMiddlewareTagsRequestID(t *testing.T) {
	logger, buf := newBufferLogger(slog.LevelInfo)
	h := Middleware(logger, func(*http.Request) string { return "req-1" })(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			FromContext(r.Context()).Info("inside")
		}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if !strings.Contains(buf.String(), "request_id=req-1") {
		t.Errorf("request id missing: %s", buf.String())
	}
}

func TestLogHTTPEndLevels(t *testing.T) {
	tests := []struct {
		status int
		want   string
	}{
		{200, "level=INFO"},
		{404, "level=WARN"},
		{503, "level=ERROR"},
	}
	for _, tt := range tests {
		logger, buf := newBufferLogger(slog.LevelInfo)
		sl := NewStructuredLogger(logger)
		ctx := NewContext(context.Background(), logger)
		r := httptest.NewRequest(http.MethodGet, "/api/v1/get-incomes", nil)

		sl.LogHTTPEnd(ctx, r, tt.status, 3, "10.0.0.1")

		if !strings.Contains(buf.String(), tt.want) {
			t.Errorf("status %d: want %s in %s", tt.status, tt.want, buf.String())
		}
	}
}

func TestLogFields(t *testing.T) {
	tx := core.Transaction{
		ID:       "abc",
		Kind:     core.KindExpense,
		Title:    "Rent",
		Amount:   "12.50",
		Date:     core.NewDate(2024, 3, 1),
		Category: "rent",
	}
	f := NewFields().WithTransaction(tx).WithError(errors.New("boom")).WithError(nil)

	if f[FieldID] != "abc" || f[FieldAmount] != "12.50" || f[FieldDate] != "2024-03-01" {
		t.Errorf("unexpected fields: %v", f)
	}
	if f[FieldError] != "boom" {
		t.Errorf("error field = %v", f[FieldError])
	}
	if got := len(NewFields().WithComponent("x").ToSlice()); got != 0 {
		t.Errorf("component should not be flattened, got %d items", got)
	}
}
