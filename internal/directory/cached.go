package directory

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"opsdesk_backend/internal/search/domain"
	"opsdesk_backend/internal/search/ports"
	"opsdesk_backend/platform/cache"
	"opsdesk_backend/platform/logger"
)

// Reference-data TTLs. Department assignments move slowest, model prices
// fastest. Cache failures fall through to the repository, never to the caller.
const (
	departmentTTL = 30 * time.Minute
	patternTTL    = 15 * time.Minute
	vocabularyTTL = 15 * time.Minute
	modelTTL      = 10 * time.Minute
)

// Cached decorates the repository with read-through caching. Only lookups on
// the validation hot path are cached; role checks and the quote history go
// straight to the repository.
type Cached struct {
	inner *Repo
	store cache.Store
	log   *logger.Logger
}

// NewCached wraps the repository with the shared cache.
func NewCached(inner *Repo, store cache.Store, log *logger.Logger) *Cached {
	return &Cached{inner: inner, store: store, log: log}
}

var (
	_ ports.UserDirectory = (*Cached)(nil)
	_ ports.PatternStore  = (*Cached)(nil)
	_ ports.ModelCatalog  = (*Cached)(nil)
	_ ports.QuoteHistory  = (*Cached)(nil)
)

func (c *Cached) GetDepartment(ctx context.Context, userID uuid.UUID) (domain.Department, error) {
	key := cache.Fingerprint("directory:department", userID.String(), "")

	var name string
	if err := c.lookup(ctx, key, &name); err == nil {
		dept, parseErr := domain.ParseDepartment(name)
		if parseErr == nil {
			return dept, nil
		}
	}

	dept, err := c.inner.GetDepartment(ctx, userID)
	if err != nil {
		return domain.DepartmentUnknown, err
	}
	c.fill(ctx, key, dept.String(), departmentTTL)
	return dept, nil
}

func (c *Cached) GetRole(ctx context.Context, userID uuid.UUID) (string, error) {
	return c.inner.GetRole(ctx, userID)
}

func (c *Cached) GetPatterns(ctx context.Context, dept domain.Department) ([]domain.DepartmentPattern, error) {
	key := cache.Fingerprint("directory:patterns", dept.String(), "")

	var patterns []domain.DepartmentPattern
	if err := c.lookup(ctx, key, &patterns); err == nil {
		return patterns, nil
	}

	patterns, err := c.inner.GetPatterns(ctx, dept)
	if err != nil {
		return nil, err
	}
	c.fill(ctx, key, patterns, patternTTL)
	return patterns, nil
}

func (c *Cached) GetVocabulary(ctx context.Context, dept domain.Department) ([]string, error) {
	key := cache.Fingerprint("directory:vocabulary", dept.String(), "")

	var vocab []string
	if err := c.lookup(ctx, key, &vocab); err == nil {
		return vocab, nil
	}

	vocab, err := c.inner.GetVocabulary(ctx, dept)
	if err != nil {
		return nil, err
	}
	c.fill(ctx, key, vocab, vocabularyTTL)
	return vocab, nil
}

func (c *Cached) GetModelInfo(ctx context.Context, modelCode string) (domain.ModelInfo, error) {
	key := cache.Fingerprint("directory:model", modelCode, "")

	var info domain.ModelInfo
	if err := c.lookup(ctx, key, &info); err == nil {
		return info, nil
	}

	info, err := c.inner.GetModelInfo(ctx, modelCode)
	if err != nil {
		return domain.ModelInfo{}, err
	}
	c.fill(ctx, key, info, modelTTL)
	return info, nil
}

func (c *Cached) GetRecentQuotes(ctx context.Context, modelCodes []string) ([]domain.RecentQuote, error) {
	return c.inner.GetRecentQuotes(ctx, modelCodes)
}

func (c *Cached) lookup(ctx context.Context, key string, out interface{}) error {
	err := cache.GetJSON(ctx, c.store, key, out)
	if err != nil && !errors.Is(err, cache.ErrMiss) {
		c.log.LookupError("cache", err)
	}
	return err
}

func (c *Cached) fill(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	if err := cache.SetJSON(ctx, c.store, key, value, ttl); err != nil {
		c.log.LookupError("cache", err)
	}
}
