package audit

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"

	"opsdesk_backend/platform/config"
	"opsdesk_backend/platform/logger"
)

// Worker consumes the audit queue and writes entries to Postgres.
type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	repo   *Repository
	log    *logger.Logger
}

func NewWorker(cfg config.AuditConfig, pool *pgxpool.Pool, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAuditQueueName()
	if queue == "" {
		queue = "audit"
	}

	concurrency := cfg.GetAuditConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server: server,
		mux:    mux,
		repo:   NewRepository(pool),
		log:    log,
	}

	mux.HandleFunc(TaskRecordEntry, w.handleRecordEntry)
	mux.HandleFunc(TaskCleanup, w.handleCleanup)

	return w, nil
}

func (w *Worker) handleRecordEntry(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseRecordEntryPayload(task)
	if err != nil {
		return err
	}

	if err := w.repo.Insert(ctx, payload); err != nil {
		w.log.DatabaseError("audit_insert", err)
		return err
	}
	return nil
}

func (w *Worker) handleCleanup(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseCleanupPayload(task)
	if err != nil {
		return err
	}

	removed, err := w.repo.Prune(ctx, payload.Before)
	if err != nil {
		w.log.DatabaseError("audit_prune", err)
		return err
	}
	w.log.Info("audit retention sweep complete", "removed", removed, "before", payload.Before)
	return nil
}

// Run blocks until ctx is cancelled, then shuts the server down.
func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("audit worker stopped", "error", err)
	}
}
