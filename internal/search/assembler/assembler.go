// Package assembler executes an approved, interpreted query: it fans out to
// the external catalog/metrics collaborators, aggregates totals, and caches
// the composed response under a composite fingerprint key.
//
// Error policy: the assembler never fails past its own boundary. Any lookup
// failure degrades to an empty result set for that department.
package assembler

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"opsdesk_backend/internal/search/domain"
	"opsdesk_backend/internal/search/parser"
	"opsdesk_backend/internal/search/ports"
	"opsdesk_backend/platform/cache"
	"opsdesk_backend/platform/logger"
)

const responseNamespace = "search:response"

// Config carries the assembler's tunables from the composition root.
type Config struct {
	// LookupTimeout bounds every external lookup batch.
	LookupTimeout time.Duration
	// PriceTTL caches price-bearing responses; shorter because price
	// volatility is higher than reference data.
	PriceTTL time.Duration
	// ReferenceTTL caches static reference responses.
	ReferenceTTL time.Duration
}

// Assembler builds cached SearchResponses for approved queries.
type Assembler struct {
	store   cache.Store
	catalog ports.ModelCatalog
	quotes  ports.QuoteHistory
	cfg     Config
	log     *logger.Logger
}

// New creates a result assembler.
func New(store cache.Store, catalog ports.ModelCatalog, quotes ports.QuoteHistory, cfg Config, log *logger.Logger) *Assembler {
	if cfg.LookupTimeout <= 0 {
		cfg.LookupTimeout = 3 * time.Second
	}
	if cfg.PriceTTL <= 0 {
		cfg.PriceTTL = 5 * time.Minute
	}
	if cfg.ReferenceTTL <= 0 {
		cfg.ReferenceTTL = time.Hour
	}
	return &Assembler{store: store, catalog: catalog, quotes: quotes, cfg: cfg, log: log}
}

// Assemble returns the cached response for (user, department, query) or
// builds, caches and returns a fresh one. Concurrent invocations for the
// same key may both build; last cache write wins.
func (a *Assembler) Assemble(ctx context.Context, userID uuid.UUID, dept domain.Department, interpretedQuery string) domain.SearchResponse {
	key := cache.Fingerprint(responseNamespace, userID.String(), dept.String()+"\x00"+interpretedQuery)

	var cached domain.SearchResponse
	err := cache.GetJSON(ctx, a.store, key, &cached)
	if err == nil {
		a.log.CacheEvent(responseNamespace, true)
		cached.FromCache = true
		return cached
	}
	if !errors.Is(err, cache.ErrMiss) {
		a.log.LookupError("cache", err)
	}
	a.log.CacheEvent(responseNamespace, false)

	response, priceBearing := a.build(ctx, dept, interpretedQuery)

	ttl := a.cfg.ReferenceTTL
	if priceBearing {
		ttl = a.cfg.PriceTTL
	}
	if err := cache.SetJSON(ctx, a.store, key, response, ttl); err != nil {
		a.log.LookupError("cache", err)
	}

	return response
}

func (a *Assembler) build(ctx context.Context, dept domain.Department, interpretedQuery string) (domain.SearchResponse, bool) {
	response := domain.SearchResponse{
		Department:  dept.String(),
		Query:       interpretedQuery,
		Entries:     []domain.ResultEntry{},
		GeneratedAt: time.Now().UTC(),
	}

	if parser.IsMultiModelFormat(interpretedQuery) {
		a.buildModelQuote(ctx, &response, dept, parser.Parse(interpretedQuery))
		return response, true
	}

	builder := builderFor(dept)
	if builder != nil {
		response.Entries = builder(interpretedQuery)
	}
	return response, false
}

// buildModelQuote resolves every model code concurrently under the lookup
// timeout. Codes the catalog cannot resolve are omitted from the response;
// a wholesale failure leaves the quote empty rather than propagating.
func (a *Assembler) buildModelQuote(ctx context.Context, response *domain.SearchResponse, dept domain.Department, query domain.ModelQuery) {
	lookupCtx, cancel := context.WithTimeout(ctx, a.cfg.LookupTimeout)
	defer cancel()

	lines := make([]*domain.ModelQuoteLine, len(query.Models))
	group, groupCtx := errgroup.WithContext(lookupCtx)

	for i, token := range query.Models {
		group.Go(func() error {
			info, err := a.catalog.GetModelInfo(groupCtx, token.ModelCode)
			if err != nil {
				a.log.LookupError("model_catalog", err)
				return nil
			}
			lines[i] = &domain.ModelQuoteLine{
				ModelCode:          info.ModelCode,
				ModelName:          info.ModelName,
				Quantity:           token.Quantity,
				UnitPriceCents:     info.UnitPriceCents,
				TotalPriceCents:    info.UnitPriceCents * int64(token.Quantity),
				BranchAvailability: info.BranchAvailability,
			}
			return nil
		})
	}
	_ = group.Wait()

	for _, line := range lines {
		if line == nil {
			continue
		}
		response.QuoteLines = append(response.QuoteLines, *line)
		response.TotalQuantity += line.Quantity
		response.TotalPriceCents += line.TotalPriceCents
	}

	for _, line := range response.QuoteLines {
		response.Entries = append(response.Entries, domain.ResultEntry{
			Type:        "model_quote",
			Title:       line.ModelCode + " x" + strconv.Itoa(line.Quantity),
			Description: line.ModelName,
			ValueCents:  line.TotalPriceCents,
			Context:     query.Context,
		})
	}

	if dept == domain.DepartmentMarketing {
		a.appendRecentQuotes(lookupCtx, response, query)
	}
}

// appendRecentQuotes adds the marketing-only quote history entries.
func (a *Assembler) appendRecentQuotes(ctx context.Context, response *domain.SearchResponse, query domain.ModelQuery) {
	if a.quotes == nil {
		return
	}

	codes := make([]string, len(query.Models))
	for i, token := range query.Models {
		codes[i] = token.ModelCode
	}

	recent, err := a.quotes.GetRecentQuotes(ctx, codes)
	if err != nil {
		a.log.LookupError("quote_history", err)
		return
	}

	for _, quote := range recent {
		response.Entries = append(response.Entries, domain.ResultEntry{
			Type:        "recent_quote",
			Title:       quote.ModelCode + " quoted to " + quote.CustomerName,
			Description: quote.Date.Format("2006-01-02"),
			ValueCents:  quote.UnitPriceCents,
			Context:     query.Context,
		})
	}
}
