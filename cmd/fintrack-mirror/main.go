package main

import (
	"context"
	"errors"
	"os"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/backend"
	"fintrack/internal/cli"
	"fintrack/internal/config"
	appLog "fintrack/internal/log"
	"fintrack/internal/mirror"
)

func main() {
	cli.LoadEnvFile()

	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"), appLog.ComponentMirror)
	logger.Info("Starting fintrack-mirror")

	cfg := cli.LoadAndValidateConfig(logger, (*config.Config).ValidateMirror)

	target, err := backend.OpenSheets(context.Background(), backend.Config{
		Type:                     backend.SheetsBackend,
		GoogleSpreadsheetID:      cfg.GoogleSpreadsheetID,
		GoogleTransactionsSheet:  cfg.GoogleTransactionsSheet,
		GoogleUsersSheet:         cfg.GoogleUsersSheet,
		GoogleServiceAccountJSON: cfg.GoogleServiceAccountJSON,
		GoogleServiceAccountFile: cfg.GoogleServiceAccountFile,
	})
	if err != nil {
		logger.Error("Failed to initialize Google Sheets client", "error", err)
		os.Exit(1)
	}
	logger.Info("Google Sheets client initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}

	worker := mirror.NewWorker(target)

	ctx, stop, done := cli.GracefulShutdown(logger, 30*time.Second, func(context.Context) {
		if err := client.Close(); err != nil {
			logger.Warn("Failed to close AMQP client", "error", err)
		}
	})

	go func() {
		if err := client.Run(ctx, worker.Handle); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("Message consumption failed", "error", err)
		}
		stop()
	}()

	<-done
	logger.Info("Mirror worker stopped")
}
