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
	"opsdesk_backend/internal/directory"
	"opsdesk_backend/internal/events"
	apphttp "opsdesk_backend/internal/http"
	"opsdesk_backend/internal/http/router"
	"opsdesk_backend/internal/search"
	"opsdesk_backend/migrations"
	"opsdesk_backend/platform/cache"
	"opsdesk_backend/platform/config"
	"opsdesk_backend/platform/db"
	"opsdesk_backend/platform/logger"
	"opsdesk_backend/platform/validator"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize structured logger
	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, cfg, migrations.FS)
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

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

	if err := directory.Seed(ctx, pool, log); err != nil {
		log.Error("failed to seed reference data", "error", err)
		panic("failed to seed reference data: " + err.Error())
	}

	var store *cache.Redis
	if err := withRetry(ctx, log, "redis connection", 5, 2*time.Second, func() error {
		r, err := cache.NewRedis(cfg.GetRedisURL(), cfg.GetRedisTLSInsecure())
		if err != nil {
			return err
		}
		if err := r.Ping(ctx); err != nil {
			_ = r.Close()
			return err
		}
		store = r
		return nil
	}); err != nil {
		log.Error("failed to connect to redis", "error", err)
		panic("failed to connect to redis: " + err.Error())
	}
	defer func() { _ = store.Close() }()
	log.Info("redis connection established")

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)

	// Shared validator instance for dependency injection
	val := validator.New()

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	recorder, err := audit.NewRecorder(cfg, log)
	if err != nil {
		log.Error("failed to initialize audit recorder", "error", err)
		panic("failed to initialize audit recorder: " + err.Error())
	}
	if recorder != nil {
		defer func() { _ = recorder.Close() }()
		audit.NewSubscriber(recorder).RegisterHandlers(eventBus)
	} else {
		log.Warn("REDIS_URL not configured for audit queue; audit trail disabled")
	}

	repo := directory.New(pool)
	cachedDirectory := directory.NewCached(repo, store, log)

	searchModule := search.NewModule(search.Deps{
		Users:    cachedDirectory,
		Patterns: cachedDirectory,
		Catalog:  cachedDirectory,
		Quotes:   cachedDirectory,
		Audit:    recorder,
		Cache:    store,
		Bus:      eventBus,
		Config:   cfg,
		Val:      val,
		Log:      log,
	})

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:      cfg,
		Logger:      log,
		Health:      db.NewPoolAdapter(pool),
		CacheHealth: store,
		EventBus:    eventBus,
		Modules: []apphttp.Module{
			searchModule,
		},
	}

	engine := router.New(app)

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- engine.Run(cfg.HTTPAddr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = shutdownCtx
	case err := <-srvErr:
		if err != nil {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
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
