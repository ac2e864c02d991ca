package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/openblox/liveops/internal/app"
	"github.com/openblox/liveops/internal/auth"
	"github.com/openblox/liveops/internal/handler"
	"github.com/openblox/liveops/internal/infra"
	"github.com/openblox/liveops/internal/service"
	"github.com/openblox/liveops/internal/store"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load config
	cfg, err := infra.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}

	// Connect to Postgres and migrate
	pool, err := infra.NewPostgresPool(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pool.Close()
	logger.Info("connected to postgres")

	if err := infra.RunMigrations(cfg.DSN(), logger); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	// Store with retry on transient write failures
	kv := store.WithRetry(store.NewPostgres(pool), cfg.StoreRetryAttempts)

	// Event stream (best-effort)
	producer := infra.NewKafkaProducer(cfg.KafkaBrokers, cfg.KafkaEnabled, logger)
	defer producer.Close()

	// Services
	presenceSvc := service.NewPresenceService(kv, cfg.PresenceTTL, cfg.PresenceIndexRewriteEvery, logger)
	ledgerSvc := service.NewLedgerService(kv, cfg.LedgerMax, cfg.OperatorIdentity, logger)
	commandSvc := service.NewCommandService(kv, ledgerSvc, producer, cfg.CommandTTL, logger)
	lockSvc := service.NewLockService(kv, cfg.LockCooldown, producer, logger)

	// Router
	r := app.NewRouter(app.Deps{
		Presence:             presenceSvc,
		Commands:             commandSvc,
		Ledger:               ledgerSvc,
		Lock:                 lockSvc,
		Secrets:              auth.Secrets{ProcessKey: cfg.ProcessAPIKey, AdminKey: cfg.AdminAPIKey},
		HistoryRequiresAdmin: cfg.HistoryRequiresAdmin,
		Logger:               logger,
		Health:               handler.HealthHandler(pool),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.APIPort),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("api listening", "port", cfg.APIPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
