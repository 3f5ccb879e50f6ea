package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"pocketpal/internal/amqp"
	"pocketpal/internal/backup/google"
	"pocketpal/internal/cli"
	"pocketpal/internal/log"
	"pocketpal/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentWorker)
	logger.Info("Starting pocketpal-worker")

	cfg := cli.LoadAndValidateConfig(logger)

	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the backup worker")
		os.Exit(1)
	}
	if cfg.BackupSpreadsheetID == "" {
		logger.Error("BACKUP_SPREADSHEET_ID is required for the backup worker")
		os.Exit(1)
	}

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	exporter, err := google.NewFromEnv(ctx)
	if err != nil {
		logger.Error("Failed to initialize backup exporter", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Backup exporter initialized",
		"spreadsheet_id", cfg.BackupSpreadsheetID,
		"sheet", cfg.BackupSheetName)

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	w := worker.NewBackupWorker(repo, exporter, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return amqpClient.ConsumeExpenseRecorded(gctx, func(msg *amqp.ExpenseRecordedMessage) error {
			return w.HandleExpenseRecorded(gctx, msg)
		})
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Worker stopped gracefully")
}
