package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/auth"
	"fintrack/internal/backend"
	"fintrack/internal/cache"
	"fintrack/internal/cli"
	"fintrack/internal/config"
	apphttp "fintrack/internal/http"
	appLog "fintrack/internal/log"
	"fintrack/internal/services"
	"fintrack/internal/store"
)

const shutdownTimeout = 30 * time.Second

func main() {
	cli.LoadEnvFile()

	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"), appLog.ComponentApp)
	cfg := cli.LoadAndValidateConfig(logger, (*config.Config).Validate)
	categories := cli.LoadCatalog(logger, cfg.CategoriesFile)

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", "error", err)
		os.Exit(1)
	}
	res, err := backend.NewFactory(logger.Logger).CreateBackend(context.Background(), backendCfg)
	if err != nil {
		logger.Error("Failed to initialize backend", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}

	// AMQP is optional; without it events are skipped.
	var publisher services.EventPublisher
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without events", "error", err)
		} else {
			logger.Info("Initialized AMQP client", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
			publisher = client
		}
	}

	txService := services.NewTransactionService(res.Repository, categories, publisher)
	authService := auth.NewService(res.Repository, auth.Options{
		SessionTTL:  cfg.SessionTTL,
		MaxSessions: cfg.MaxSessions,
	})

	opts := apphttp.Options{
		Addr:               ":" + cfg.Port,
		Transactions:       txService,
		Auth:               authService,
		Logger:             logger.WithComponent(appLog.ComponentHTTP),
		RateLimitPerMinute: cfg.RateLimitPerMinute,
	}
	if p, ok := res.Repository.(store.Pinger); ok {
		opts.Ready = p
	}
	srv := apphttp.NewServer(opts)

	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, stop, done := cli.GracefulShutdown(logger, shutdownTimeout, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		// The service closes the repository and the AMQP client.
		if err := txService.Close(); err != nil {
			logger.Error("Failed to close resources", "error", err)
		}
	})

	go cache.RunJanitor(ctx, 10*time.Minute, authService.Sessions())

	logger.Info("Starting fintrack store", "port", cfg.Port, "backend", cfg.DataBackend)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		stop()
		<-done
		os.Exit(1)
	}

	<-done
	logger.Info("Server stopped gracefully")
}
