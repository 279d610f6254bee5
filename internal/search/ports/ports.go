// Package ports declares the consumer-side contracts for the external
// collaborators of the search subsystem. Production implementations live in
// internal/directory and internal/audit; tests supply in-memory fakes.
package ports

import (
	"context"

	"github.com/google/uuid"

	"opsdesk_backend/internal/search/domain"
)

// UserDirectory resolves user attributes owned by the external identity
// system. Lookup failure means the user has no department/role, which the
// logic stage treats as a rejection.
type UserDirectory interface {
	GetDepartment(ctx context.Context, userID uuid.UUID) (domain.Department, error)
	GetRole(ctx context.Context, userID uuid.UUID) (string, error)
}

// PatternStore serves department grammars and vocabularies. Patterns are
// returned in insertion order; the logic stage depends on that for its
// first-match-wins behavior.
type PatternStore interface {
	GetPatterns(ctx context.Context, dept domain.Department) ([]domain.DepartmentPattern, error)
	GetVocabulary(ctx context.Context, dept domain.Department) ([]string, error)
}

// ModelCatalog resolves model codes to pricing and availability.
// Unknown codes return apperr.NotFound.
type ModelCatalog interface {
	GetModelInfo(ctx context.Context, modelCode string) (domain.ModelInfo, error)
}

// QuoteHistory serves recent quotes for a set of model codes (marketing only).
type QuoteHistory interface {
	GetRecentQuotes(ctx context.Context, modelCodes []string) ([]domain.RecentQuote, error)
}

// AuditLog records audit entries fire-and-forget: implementations must never
// block or fail the validation result.
type AuditLog interface {
	Record(ctx context.Context, kind string, actor uuid.UUID, payload map[string]string)
}
