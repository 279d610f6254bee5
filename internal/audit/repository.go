package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists audit entries.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Insert appends one audit entry. Payload is stored as JSONB.
func (r *Repository) Insert(ctx context.Context, entry RecordEntryPayload) error {
	data, err := json.Marshal(entry.Payload)
	if err != nil {
		return fmt.Errorf("marshal audit payload: %w", err)
	}

	query := `
		INSERT INTO audit_entries (kind, actor_id, payload, occurred_at)
		VALUES ($1, $2, $3, $4)`

	if _, err := r.pool.Exec(ctx, query, entry.Kind, entry.ActorID, data, entry.OccurredAt); err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

// Prune deletes entries older than the cutoff and returns the removed count.
func (r *Repository) Prune(ctx context.Context, before time.Time) (int64, error) {
	query := `DELETE FROM audit_entries WHERE occurred_at < $1`

	result, err := r.pool.Exec(ctx, query, before)
	if err != nil {
		return 0, fmt.Errorf("prune audit entries: %w", err)
	}
	return result.RowsAffected(), nil
}
