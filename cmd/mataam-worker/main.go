package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"mataam/internal/amqp"
	"mataam/internal/config"
	applog "mataam/internal/log"
	gsheet "mataam/internal/sheets/google"
	"mataam/internal/storage"
	"mataam/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := applog.New(applog.Config{Component: applog.ComponentWorker})
	applog.SetDefault(logger)

	logger.Info("Starting mataam-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// The Google Sheets ledger is optional. Without it the worker has
	// nothing to export and idles until shutdown.
	var exportWorker *worker.ExportWorker
	if os.Getenv("GOOGLE_SPREADSHEET_ID") != "" {
		ledger, err := gsheet.NewFromEnv(ctx)
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", "error", err)
			os.Exit(1)
		}
		exportWorker = worker.NewExportWorker(repo, ledger, cfg.ExportBatchSize)
		logger.Info("Google Sheets ledger initialized")
	} else {
		logger.Info("Google Sheets disabled - no GOOGLE_SPREADSHEET_ID provided")
	}

	if exportWorker != nil {
		// Catch orders placed while the worker was down.
		logger.Info("Performing startup export check...")
		if err := exportWorker.StartupCheck(ctx); err != nil {
			logger.Error("Failed startup export check", "error", err)
			// Keep running; the sweep retries on its interval.
		}

		if cfg.AMQPURL != "" {
			amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
			if err != nil {
				logger.Error("Failed to initialize AMQP client", "error", err)
				os.Exit(1)
			}
			defer amqpClient.Close()

			go func() {
				handler := func(msg *amqp.OrderCreatedMessage) error {
					return exportWorker.HandleOrderCreated(ctx, msg)
				}
				if err := amqpClient.ConsumeOrderCreated(ctx, handler); err != nil {
					if err != context.Canceled {
						logger.Error("Message consumption failed", "error", err)
					}
					cancel()
				}
			}()
		} else {
			logger.Info("AMQP disabled - relying on periodic sweep only")
		}

		go exportWorker.RunSweep(ctx, cfg.ExportInterval)
	} else {
		logger.Info("Skipping export operations - no ledger available")
	}

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

	// Give in-flight exports a moment to finish.
	time.Sleep(2 * time.Second)
	logger.Info("Worker shutdown complete")
}
