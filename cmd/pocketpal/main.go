package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"pocketpal/internal/amqp"
	"pocketpal/internal/cache"
	"pocketpal/internal/cli"
	apphttp "pocketpal/internal/http"
	"pocketpal/internal/log"
	"pocketpal/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentApp)
	cfg := cli.LoadAndValidateConfig(logger)

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	// AMQP is optional; without it expenses are still stored, only the
	// off-site backup pipeline is disabled.
	var events services.EventPublisher
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", log.FieldError, err)
			os.Exit(1)
		}
		defer amqpClient.Close()
		events = amqpClient
		logger.Info("Backup pipeline enabled", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	} else {
		logger.Info("Backup pipeline disabled - no AMQP_URL provided")
	}

	sessions := services.NewSessionService(repo, logger)
	ledger := services.NewLedgerService(repo, events, logger)
	insights := services.NewInsightsService(repo, logger, cfg.CacheSize, cfg.CacheTTL)

	caches := cache.NewManager()
	insights.RegisterCaches(caches)
	caches.StartSweep(10 * time.Minute)
	defer caches.Stop()

	srv := apphttp.NewServer(apphttp.Config{
		Addr:               ":" + cfg.Port,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
	}, sessions, ledger, insights, logger)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
	})

	logger.Info("Starting pocketpal server", "port", cfg.Port)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
