package assembler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"opsdesk_backend/internal/search/domain"
	"opsdesk_backend/platform/apperr"
	"opsdesk_backend/platform/cache"
	"opsdesk_backend/platform/logger"
)

type fakeCatalog struct {
	models map[string]domain.ModelInfo
	calls  int
	err    error
}

func (f *fakeCatalog) GetModelInfo(ctx context.Context, modelCode string) (domain.ModelInfo, error) {
	f.calls++
	if f.err != nil {
		return domain.ModelInfo{}, f.err
	}
	info, ok := f.models[modelCode]
	if !ok {
		return domain.ModelInfo{}, apperr.NotFound("model not found")
	}
	return info, nil
}

type fakeQuotes struct {
	quotes []domain.RecentQuote
	calls  int
	err    error
}

func (f *fakeQuotes) GetRecentQuotes(ctx context.Context, modelCodes []string) ([]domain.RecentQuote, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.quotes, nil
}

type fixture struct {
	assembler *Assembler
	redis     *miniredis.Miniredis
	catalog   *fakeCatalog
	quotes    *fakeQuotes
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	mr := miniredis.RunT(t)
	store := cache.NewRedisWithClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))

	catalog := &fakeCatalog{models: map[string]domain.ModelInfo{
		"A2B": {ModelCode: "A2B", ModelName: "compressor a2b", UnitPriceCents: 1500,
			BranchAvailability: []domain.BranchStock{{Branch: "north", Stock: 4}}},
		"E4S": {ModelCode: "E4S", ModelName: "filter e4s", UnitPriceCents: 250},
	}}
	quotes := &fakeQuotes{quotes: []domain.RecentQuote{
		{ModelCode: "A2B", CustomerName: "acme", UnitPriceCents: 1400, Date: time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)},
	}}

	cfg := Config{LookupTimeout: time.Second, PriceTTL: 5 * time.Minute, ReferenceTTL: time.Hour}
	return &fixture{
		assembler: New(store, catalog, quotes, cfg, logger.New("development")),
		redis:     mr,
		catalog:   catalog,
		quotes:    quotes,
	}
}

func TestMultiModelQuoteAggregatesTotals(t *testing.T) {
	f := newFixture(t)

	response := f.assembler.Assemble(context.Background(), uuid.New(), domain.DepartmentInventory, "a2b=2 e4s=3")

	if len(response.QuoteLines) != 2 {
		t.Fatalf("expected 2 quote lines, got %+v", response.QuoteLines)
	}
	if response.TotalQuantity != 5 {
		t.Fatalf("expected total quantity 5, got %d", response.TotalQuantity)
	}
	// 2*1500 + 3*250
	if response.TotalPriceCents != 3750 {
		t.Fatalf("expected total 3750 cents, got %d", response.TotalPriceCents)
	}
	if response.FromCache {
		t.Fatal("first assembly must not report a cache hit")
	}
	if f.quotes.calls != 0 {
		t.Fatal("quote history is marketing-only")
	}
}

func TestQuoteLinesPreserveTokenOrder(t *testing.T) {
	f := newFixture(t)

	response := f.assembler.Assemble(context.Background(), uuid.New(), domain.DepartmentInventory, "e4s=1 a2b=1")

	if response.QuoteLines[0].ModelCode != "E4S" || response.QuoteLines[1].ModelCode != "A2B" {
		t.Fatalf("lines must follow token order, got %+v", response.QuoteLines)
	}
}

func TestUnknownModelCodeIsOmittedNotFatal(t *testing.T) {
	f := newFixture(t)

	response := f.assembler.Assemble(context.Background(), uuid.New(), domain.DepartmentInventory, "a2b=2 zz9=1")

	if len(response.QuoteLines) != 1 || response.QuoteLines[0].ModelCode != "A2B" {
		t.Fatalf("unresolvable codes must be dropped, got %+v", response.QuoteLines)
	}
	if response.TotalPriceCents != 3000 {
		t.Fatalf("totals must cover resolved lines only, got %d", response.TotalPriceCents)
	}
}

func TestCatalogFailureYieldsEmptyQuoteNotError(t *testing.T) {
	f := newFixture(t)
	f.catalog.err = errors.New("catalog down")

	response := f.assembler.Assemble(context.Background(), uuid.New(), domain.DepartmentInventory, "a2b=2")

	if len(response.QuoteLines) != 0 || response.TotalPriceCents != 0 {
		t.Fatalf("expected empty quote on catalog failure, got %+v", response)
	}
}

func TestSecondAssemblyServedFromCache(t *testing.T) {
	f := newFixture(t)
	userID := uuid.New()

	first := f.assembler.Assemble(context.Background(), userID, domain.DepartmentInventory, "a2b=2")
	second := f.assembler.Assemble(context.Background(), userID, domain.DepartmentInventory, "a2b=2")

	if first.FromCache {
		t.Fatal("first call must build")
	}
	if !second.FromCache {
		t.Fatal("second call must hit the cache")
	}
	if f.catalog.calls != 1 {
		t.Fatalf("catalog must be consulted once, got %d", f.catalog.calls)
	}
	if second.TotalPriceCents != first.TotalPriceCents {
		t.Fatalf("cached totals must match: %d vs %d", second.TotalPriceCents, first.TotalPriceCents)
	}
}

func TestCacheKeyIsScopedPerUserAndDepartment(t *testing.T) {
	f := newFixture(t)

	f.assembler.Assemble(context.Background(), uuid.New(), domain.DepartmentInventory, "a2b=2")
	other := f.assembler.Assemble(context.Background(), uuid.New(), domain.DepartmentInventory, "a2b=2")

	if other.FromCache {
		t.Fatal("a different user must not share the cache entry")
	}
	if f.catalog.calls != 2 {
		t.Fatalf("expected one catalog lookup per user, got %d", f.catalog.calls)
	}
}

func TestPriceBearingResponseExpiresOnPriceTTL(t *testing.T) {
	f := newFixture(t)
	userID := uuid.New()

	f.assembler.Assemble(context.Background(), userID, domain.DepartmentInventory, "a2b=2")
	f.redis.FastForward(5*time.Minute + time.Second)
	rebuilt := f.assembler.Assemble(context.Background(), userID, domain.DepartmentInventory, "a2b=2")

	if rebuilt.FromCache {
		t.Fatal("entry must expire after the price TTL")
	}
	if f.catalog.calls != 2 {
		t.Fatalf("expected a rebuild after expiry, got %d catalog calls", f.catalog.calls)
	}
}

func TestPlainDialectResponseUsesReferenceTTL(t *testing.T) {
	f := newFixture(t)
	userID := uuid.New()

	f.assembler.Assemble(context.Background(), userID, domain.DepartmentFinance, "t bnk p")
	f.redis.FastForward(30 * time.Minute)
	cached := f.assembler.Assemble(context.Background(), userID, domain.DepartmentFinance, "t bnk p")

	if !cached.FromCache {
		t.Fatal("reference responses must outlive the price TTL")
	}
}

func TestMarketingMultiModelIncludesRecentQuotes(t *testing.T) {
	f := newFixture(t)

	response := f.assembler.Assemble(context.Background(), uuid.New(), domain.DepartmentMarketing, "a2b=2")

	if f.quotes.calls != 1 {
		t.Fatalf("expected one quote-history lookup, got %d", f.quotes.calls)
	}
	var recent int
	for _, e := range response.Entries {
		if e.Type == "recent_quote" {
			recent++
		}
	}
	if recent != 1 {
		t.Fatalf("expected one recent_quote entry, got %+v", response.Entries)
	}
}

func TestQuoteHistoryFailureDegradesSilently(t *testing.T) {
	f := newFixture(t)
	f.quotes.err = errors.New("history down")

	response := f.assembler.Assemble(context.Background(), uuid.New(), domain.DepartmentMarketing, "a2b=2")

	if len(response.QuoteLines) != 1 {
		t.Fatalf("quote lines must survive a history failure, got %+v", response.QuoteLines)
	}
	for _, e := range response.Entries {
		if e.Type == "recent_quote" {
			t.Fatal("no recent_quote entries expected on failure")
		}
	}
}

func TestDepartmentBuildersCoverEveryDepartment(t *testing.T) {
	for _, dept := range domain.Departments() {
		if builderFor(dept) == nil {
			t.Fatalf("department %s has no result builder", dept)
		}
	}
}

func TestPlainDialectEntriesComeFromDepartmentBuilder(t *testing.T) {
	f := newFixture(t)

	response := f.assembler.Assemble(context.Background(), uuid.New(), domain.DepartmentFinance, "t bnk p")

	if len(response.Entries) != 1 || response.Entries[0].Type != "bank_transfer" {
		t.Fatalf("expected the finance bank_transfer entry, got %+v", response.Entries)
	}
	if f.catalog.calls != 0 {
		t.Fatal("plain dialect must not touch the model catalog")
	}
}
