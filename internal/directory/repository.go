// Package directory implements the search subsystem's external collaborator
// contracts against Postgres: user attributes, department grammars and
// vocabularies, the model catalog and the quote history.
package directory

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"opsdesk_backend/internal/search/domain"
	"opsdesk_backend/internal/search/ports"
	"opsdesk_backend/platform/apperr"
)

const (
	userNotFoundMessage  = "user not found"
	modelNotFoundMessage = "model not found"
)

// Repo implements every port against the shared pool.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a directory repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

var (
	_ ports.UserDirectory = (*Repo)(nil)
	_ ports.PatternStore  = (*Repo)(nil)
	_ ports.ModelCatalog  = (*Repo)(nil)
	_ ports.QuoteHistory  = (*Repo)(nil)
)

// GetDepartment resolves the user's department assignment.
func (r *Repo) GetDepartment(ctx context.Context, userID uuid.UUID) (domain.Department, error) {
	query := `SELECT department FROM users WHERE id = $1`

	var name string
	if err := r.pool.QueryRow(ctx, query, userID).Scan(&name); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.DepartmentUnknown, apperr.NotFound(userNotFoundMessage)
		}
		return domain.DepartmentUnknown, fmt.Errorf("get department: %w", err)
	}

	return domain.ParseDepartment(name)
}

// GetRole resolves the user's role name.
func (r *Repo) GetRole(ctx context.Context, userID uuid.UUID) (string, error) {
	query := `SELECT role FROM users WHERE id = $1`

	var role string
	if err := r.pool.QueryRow(ctx, query, userID).Scan(&role); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", apperr.NotFound(userNotFoundMessage)
		}
		return "", fmt.Errorf("get role: %w", err)
	}
	return role, nil
}

// GetPatterns returns the department grammar in insertion order. The logic
// stage depends on stable ordering for its first-match behavior, so the sort
// key is the serial position column, not the pattern text.
func (r *Repo) GetPatterns(ctx context.Context, dept domain.Department) ([]domain.DepartmentPattern, error) {
	query := `
		SELECT id, pattern, regex, description
		FROM department_patterns
		WHERE department = $1
		ORDER BY position ASC`

	rows, err := r.pool.Query(ctx, query, dept.String())
	if err != nil {
		return nil, fmt.Errorf("get patterns: %w", err)
	}
	defer rows.Close()

	patterns := make([]domain.DepartmentPattern, 0)
	for rows.Next() {
		var pattern domain.DepartmentPattern
		if err := rows.Scan(&pattern.ID, &pattern.Pattern, &pattern.Regex, &pattern.Description); err != nil {
			return nil, fmt.Errorf("scan pattern: %w", err)
		}
		patterns = append(patterns, pattern)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate patterns: %w", err)
	}
	return patterns, nil
}

// GetVocabulary returns the known command phrases for one department.
func (r *Repo) GetVocabulary(ctx context.Context, dept domain.Department) ([]string, error) {
	query := `
		SELECT phrase
		FROM department_vocabulary
		WHERE department = $1
		ORDER BY phrase ASC`

	rows, err := r.pool.Query(ctx, query, dept.String())
	if err != nil {
		return nil, fmt.Errorf("get vocabulary: %w", err)
	}
	defer rows.Close()

	vocab := make([]string, 0)
	for rows.Next() {
		var phrase string
		if err := rows.Scan(&phrase); err != nil {
			return nil, fmt.Errorf("scan vocabulary: %w", err)
		}
		vocab = append(vocab, phrase)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate vocabulary: %w", err)
	}
	return vocab, nil
}

// GetModelInfo resolves a model code to pricing plus per-branch stock.
func (r *Repo) GetModelInfo(ctx context.Context, modelCode string) (domain.ModelInfo, error) {
	query := `SELECT model_code, model_name, unit_price_cents FROM catalog_models WHERE model_code = $1`

	var info domain.ModelInfo
	if err := r.pool.QueryRow(ctx, query, modelCode).Scan(&info.ModelCode, &info.ModelName, &info.UnitPriceCents); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ModelInfo{}, apperr.NotFound(modelNotFoundMessage)
		}
		return domain.ModelInfo{}, fmt.Errorf("get model info: %w", err)
	}

	stockQuery := `
		SELECT branch, stock
		FROM catalog_branch_stock
		WHERE model_code = $1
		ORDER BY branch ASC`

	rows, err := r.pool.Query(ctx, stockQuery, modelCode)
	if err != nil {
		return domain.ModelInfo{}, fmt.Errorf("get branch stock: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var stock domain.BranchStock
		if err := rows.Scan(&stock.Branch, &stock.Stock); err != nil {
			return domain.ModelInfo{}, fmt.Errorf("scan branch stock: %w", err)
		}
		info.BranchAvailability = append(info.BranchAvailability, stock)
	}
	if err := rows.Err(); err != nil {
		return domain.ModelInfo{}, fmt.Errorf("iterate branch stock: %w", err)
	}
	return info, nil
}

// GetRecentQuotes returns the latest quotes for the given model codes,
// newest first, capped at ten rows.
func (r *Repo) GetRecentQuotes(ctx context.Context, modelCodes []string) ([]domain.RecentQuote, error) {
	if len(modelCodes) == 0 {
		return []domain.RecentQuote{}, nil
	}

	query := `
		SELECT model_code, customer_name, unit_price_cents, quoted_at
		FROM recent_quotes
		WHERE model_code = ANY($1)
		ORDER BY quoted_at DESC
		LIMIT 10`

	rows, err := r.pool.Query(ctx, query, modelCodes)
	if err != nil {
		return nil, fmt.Errorf("get recent quotes: %w", err)
	}
	defer rows.Close()

	quotes := make([]domain.RecentQuote, 0)
	for rows.Next() {
		var quote domain.RecentQuote
		if err := rows.Scan(&quote.ModelCode, &quote.CustomerName, &quote.UnitPriceCents, &quote.Date); err != nil {
			return nil, fmt.Errorf("scan recent quote: %w", err)
		}
		quotes = append(quotes, quote)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate recent quotes: %w", err)
	}
	return quotes, nil
}
