package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"opsdesk_backend/internal/audit"
	"opsdesk_backend/migrations"
	"opsdesk_backend/platform/config"
	"opsdesk_backend/platform/db"
	"opsdesk_backend/platform/logger"
)

// The worker drains the audit queue and runs the periodic retention sweep.
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting audit worker", "env", cfg.Env, "queue", cfg.AuditQueueName)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, cfg, migrations.FS)
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()
	log.Info("database connection established")

	worker, err := audit.NewWorker(cfg, pool, log)
	if err != nil {
		log.Error("failed to initialize audit worker", "error", err)
		panic("failed to initialize audit worker: " + err.Error())
	}

	recorder, err := audit.NewRecorder(cfg, log)
	if err != nil {
		log.Error("failed to initialize audit recorder", "error", err)
		panic("failed to initialize audit recorder: " + err.Error())
	}
	defer func() { _ = recorder.Close() }()

	go scheduleRetentionSweeps(ctx, recorder, cfg, log)

	worker.Run(ctx)
	log.Info("audit worker stopped")
}

// scheduleRetentionSweeps enqueues a daily cleanup task until shutdown.
func scheduleRetentionSweeps(ctx context.Context, recorder *audit.Recorder, cfg config.AuditConfig, log *logger.Logger) {
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	for {
		if err := recorder.ScheduleCleanup(ctx, cfg.GetAuditRetention()); err != nil {
			log.Error("failed to schedule audit cleanup", "error", err)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
		}

		if attempt < attempts {
			delay := baseDelay * time.Duration(attempt)
			log.Warn("retrying after failure", "operation", name, "attempt", attempt, "delay", delay, "error", lastErr)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", name, attempts, lastErr)
}
