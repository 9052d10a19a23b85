package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"

	"stash/internal/alerts"
	"stash/internal/amqp"
	"stash/internal/backend"
	"stash/internal/config"
	"stash/internal/worker"
)

func newLogger(format string) *slog.Logger {
	switch format {
	case "json":
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	case "pretty":
		return slog.New(tint.NewHandler(os.Stdout, &tint.Options{
			Level:      slog.LevelInfo,
			TimeFormat: time.Kitchen,
		}))
	default:
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
}

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		slog.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.LogFormat)
	slog.SetDefault(logger)

	logger.Info("Starting stash-worker")

	st, err := backend.Open(cfg, logger)
	if err != nil {
		logger.Error("Failed to open data backend", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	defer st.Close()

	// The worker persists its own digest alerts; it never publishes back to
	// the queue it consumes from.
	dispatcher := alerts.NewDispatcher(st, nil)
	digestWorker := worker.NewDigestWorker(st, dispatcher)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// AMQP consumption is optional: without it the worker still runs digests.
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
		defer amqpClient.Close()

		go func() {
			err := amqpClient.ConsumeAlerts(ctx, func(msg *amqp.AlertCreatedMessage) error {
				return digestWorker.HandleAlertMessage(ctx, msg)
			})
			if err != nil && err != context.Canceled {
				logger.Error("Message consumption failed", "error", err)
				cancel()
			}
		}()
	} else {
		logger.Info("Skipping AMQP message consumption - no URL configured")
	}

	// Run a digest pass at startup, then on the configured interval.
	if err := digestWorker.RunDigest(ctx); err != nil {
		logger.Error("Startup digest failed", "error", err)
	}

	ticker := time.NewTicker(cfg.DigestInterval)
	defer ticker.Stop()

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := digestWorker.RunDigest(ctx); err != nil {
					logger.Error("Periodic digest failed", "error", err)
				}
			}
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Info("Shutdown signal received", "signal", sig.String())
	case <-ctx.Done():
		logger.Info("Context cancelled")
	}

	logger.Info("Shutting down worker...")
	cancel()

	logger.Info("Worker shutdown complete")
}
