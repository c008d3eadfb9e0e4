// Package cli holds the start-up steps shared by the fintrack binaries.
package cli

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"fintrack/internal/catalog"
	"fintrack/internal/config"
	appLog "fintrack/internal/log"
)

// SetupLogger installs a text logger on stdout at the given level (debug,
// info, warn, error) as the process default. Unknown levels fall back to
// info.
func SetupLogger(level, component string) *appLog.Logger {
	return SetupLoggerTo(os.Stdout, level, component)
}

// SetupLoggerTo is SetupLogger writing to out.
func SetupLoggerTo(out io.Writer, level, component string) *appLog.Logger {
	lvl, err := config.ParseLevel(level)
	logger := appLog.New(appLog.Config{
		Level:     lvl,
		Component: component,
		Output:    out,
	})
	appLog.SetDefault(logger)
	if err != nil {
		logger.Warn("Falling back to info level", "error", err)
	}
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration and checks it with validate.
// It exits the process on failure.
func LoadAndValidateConfig(logger *appLog.Logger, validate func(*config.Config) error) *config.Config {
	cfg := config.Load()
	if err := validate(cfg); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	return cfg
}

// LoadCatalog reads the category file, or the built-in set when path is
// empty. It exits the process on failure.
func LoadCatalog(logger *appLog.Logger, path string) *catalog.Catalog {
	cat, err := catalog.Load(path)
	if err != nil {
		logger.Error("Failed to load categories", "error", err, "path", path)
		os.Exit(1)
	}
	logger.Info("Loaded categories", "count", len(cat.Tags()), "path", path)
	return cat
}

// GracefulShutdown returns a context cancelled on SIGINT, SIGTERM or a call
// to stop. The cleanup then runs with a context bounded by timeout, and
// done closes once it returns.
func GracefulShutdown(logger *appLog.Logger, timeout time.Duration, cleanup func(ctx context.Context)) (ctx context.Context, stop context.CancelFunc, done <-chan struct{}) {
	ctx, cancel := context.WithCancel(context.Background())
	finished := make(chan struct{})

	go func() {
		defer close(finished)

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigChan)

		select {
		case sig := <-sigChan:
			logger.Info("Shutdown signal received", "signal", sig.String())
		case <-ctx.Done():
		}

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
		defer shutdownCancel()

		cancel()
		if cleanup != nil {
			cleanup(shutdownCtx)
		}

		if shutdownCtx.Err() != nil {
			logger.Warn("Shutdown timeout reached")
			return
		}
		logger.Info("Shutdown complete")
	}()

	return ctx, cancel, finished
}
