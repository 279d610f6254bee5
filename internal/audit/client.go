package audit

import (
	"context"
	"crypto/tls"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"opsdesk_backend/internal/search/ports"
	"opsdesk_backend/platform/config"
	"opsdesk_backend/platform/logger"
)

// Recorder enqueues audit entries. It implements the search module's
// AuditLog contract: Record never blocks the caller on the store and never
// returns an error; enqueue failures are logged and dropped.
type Recorder struct {
	client *asynq.Client
	queue  string
	log    *logger.Logger
}

// NewRecorder creates the enqueue-side audit client. Returns nil without
// error when Redis is not configured; a nil Recorder silently drops entries.
func NewRecorder(cfg config.AuditConfig, log *logger.Logger) (*Recorder, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, nil
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAuditQueueName()
	if queue == "" {
		queue = "audit"
	}

	return &Recorder{
		client: asynq.NewClient(opt),
		queue:  queue,
		log:    log,
	}, nil
}

var _ ports.AuditLog = (*Recorder)(nil)

// Record enqueues one audit entry, fire-and-forget.
func (r *Recorder) Record(ctx context.Context, kind string, actor uuid.UUID, payload map[string]string) {
	if r == nil || r.client == nil {
		return
	}

	task, err := NewRecordEntryTask(RecordEntryPayload{
		Kind:       kind,
		ActorID:    actor.String(),
		Payload:    payload,
		OccurredAt: time.Now().UTC(),
	})
	if err != nil {
		r.log.Error("failed to build audit task", "kind", kind, "error", err)
		return
	}

	if _, err := r.client.EnqueueContext(ctx, task, asynq.Queue(r.queue)); err != nil {
		r.log.Error("failed to enqueue audit entry", "kind", kind, "error", err)
	}
}

// ScheduleCleanup enqueues a retention sweep removing entries older than the
// configured retention window.
func (r *Recorder) ScheduleCleanup(ctx context.Context, retention time.Duration) error {
	if r == nil || r.client == nil {
		return nil
	}

	task, err := NewCleanupTask(CleanupPayload{Before: time.Now().UTC().Add(-retention)})
	if err != nil {
		return err
	}

	_, err = r.client.EnqueueContext(ctx, task, asynq.Queue(r.queue))
	return err
}

func (r *Recorder) Close() error {
	if r == nil || r.client == nil {
		return nil
	}
	return r.client.Close()
}

func redisClientOpt(redisURL string, tlsInsecure bool) (asynq.RedisClientOpt, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return asynq.RedisClientOpt{}, err
	}

	var tlsConfig *tls.Config
	if opt.TLSConfig != nil {
		clone := opt.TLSConfig.Clone()
		if tlsInsecure {
			clone.InsecureSkipVerify = true
		}
		tlsConfig = clone
	} else if tlsInsecure {
		tlsConfig = &tls.Config{InsecureSkipVerify: true}
	}

	return asynq.RedisClientOpt{
		Addr:      opt.Addr,
		Password:  opt.Password,
		DB:        opt.DB,
		TLSConfig: tlsConfig,
	}, nil
}
