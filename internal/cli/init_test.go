package cli

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestSetupLoggerLevel(t *testing.T) {
	logger := SetupLogger("debug", "test")
	if !logger.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("debug level should be enabled")
	}
	if logger.Component() != "test" {
		t.Errorf("Component() = %q", logger.Component())
	}

	logger = SetupLogger("loud", "test")
	if logger.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("unknown level should fall back to info")
	}
}

func TestSetupLoggerTo(t *testing.T) {
	var buf bytes.Buffer
	logger := SetupLoggerTo(&buf, "warn", "cli")
	t.Cleanup(func() { SetupLogger("info", "test") })

	logger.Info("hidden")
	slog.Warn("shown", "key", "value")
	logger.Warn("stamped")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info record written at warn level: %q", out)
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "key=value") {
		t.Errorf("default logger not redirected: %q", out)
	}
	if !strings.Contains(out, "component=cli") {
		t.Errorf("component missing: %q", out)
	}
}

func TestGracefulShutdownStop(t *testing.T) {
	logger := SetupLogger("error", "test")
	cleaned := make(chan struct{})

	ctx, stop, done := GracefulShutdown(logger, time.Second, func(ctx context.Context) {
		if ctx.Err() != nil {
			t.Error("cleanup context should still be live")
		}
		close(cleaned)
	})
	stop()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("shutdown did not finish")
	}
	if ctx.Err() == nil {
		t.Error("context should be cancelled")
	}
	select {
	case <-cleaned:
	default:
		t.Error("cleanup did not run")
	}
}
