package typo

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"opsdesk_backend/internal/events"
	"opsdesk_backend/internal/search/domain"
	"opsdesk_backend/platform/logger"
)

type fakeStore struct {
	patterns []domain.DepartmentPattern
	vocab    []string
	err      error
}

func (f *fakeStore) GetPatterns(ctx context.Context, dept domain.Department) ([]domain.DepartmentPattern, error) {
	return f.patterns, f.err
}

func (f *fakeStore) GetVocabulary(ctx context.Context, dept domain.Department) ([]string, error) {
	return f.vocab, f.err
}

func newCorrector(store *fakeStore) *Corrector {
	return New(store, nil, logger.New("development"))
}

func TestFindsCloseCorrection(t *testing.T) {
	store := &fakeStore{vocab: []string{"t bnk p", "p st", "inv lst"}}
	c := newCorrector(store)

	candidates := c.FindCorrections(context.Background(), uuid.New(), "t bnk o", domain.DepartmentFinance)

	if len(candidates) == 0 {
		t.Fatal("expected at least one candidate")
	}
	if candidates[0].CorrectedText != "t bnk p" {
		t.Fatalf("expected closest phrase first, got %q", candidates[0].CorrectedText)
	}
	if candidates[0].EditDistance != 1 {
		t.Fatalf("expected edit distance 1, got %d", candidates[0].EditDistance)
	}
}

func TestCandidatesSortedByDescendingScore(t *testing.T) {
	store := &fakeStore{vocab: []string{"t bnk p", "t bnk pp", "t bnkx pq"}}
	c := newCorrector(store)

	candidates := c.FindCorrections(context.Background(), uuid.New(), "t bnk o", domain.DepartmentFinance)

	for i := 1; i < len(candidates); i++ {
		if candidates[i].Score > candidates[i-1].Score {
			t.Fatalf("candidates out of order: %+v", candidates)
		}
	}
}

func TestTieBreakIsDeterministic(t *testing.T) {
	// Both phrases are one substitution away from the input and equal length,
	// so score and distance tie; lexical order must decide.
	store := &fakeStore{vocab: []string{"p sx", "p sa"}}
	c := newCorrector(store)

	first := c.FindCorrections(context.Background(), uuid.New(), "p st", domain.DepartmentFinance)
	second := c.FindCorrections(context.Background(), uuid.New(), "p st", domain.DepartmentFinance)

	if len(first) != 2 {
		t.Fatalf("expected two candidates, got %+v", first)
	}
	if first[0].CorrectedText != "p sa" {
		t.Fatalf("expected lexical tie-break, got %q first", first[0].CorrectedText)
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("identical input must yield identical output: %+v vs %+v", first, second)
		}
	}
}

func TestCapIsThree(t *testing.T) {
	store := &fakeStore{vocab: []string{"t bnk a", "t bnk b", "t bnk c", "t bnk d", "t bnk e"}}
	c := newCorrector(store)

	candidates := c.FindCorrections(context.Background(), uuid.New(), "t bnk x", domain.DepartmentFinance)

	if len(candidates) != 3 {
		t.Fatalf("expected 3 candidates, got %d", len(candidates))
	}
}

func TestFloorFiltersDistantPhrases(t *testing.T) {
	store := &fakeStore{vocab: []string{"completely unrelated phrase"}}
	c := newCorrector(store)

	candidates := c.FindCorrections(context.Background(), uuid.New(), "t bnk", domain.DepartmentFinance)

	if len(candidates) != 0 {
		t.Fatalf("expected no candidates below the floor, got %+v", candidates)
	}
}

func TestStoreFailureYieldsEmptyList(t *testing.T) {
	c := newCorrector(&fakeStore{err: errors.New("store down")})

	candidates := c.FindCorrections(context.Background(), uuid.New(), "t bnk p", domain.DepartmentFinance)

	if len(candidates) != 0 {
		t.Fatalf("expected empty list on store failure, got %+v", candidates)
	}
}

func TestPatternCandidatesCarrySourceID(t *testing.T) {
	store := &fakeStore{
		patterns: []domain.DepartmentPattern{{ID: "fin-1", Pattern: "t bnk p"}},
	}
	c := newCorrector(store)

	candidates := c.FindCorrections(context.Background(), uuid.New(), "t bnk o", domain.DepartmentFinance)

	if len(candidates) == 0 || candidates[0].SourcePatternID != "fin-1" {
		t.Fatalf("expected pattern-sourced candidate, got %+v", candidates)
	}
}

func TestApplyCorrectionReturnsCorrectedTextAndPublishes(t *testing.T) {
	bus := events.NewInMemoryBus(logger.New("development"))
	recorded := make(chan events.Event, 2)
	bus.Subscribe(events.CorrectionAppliedName, events.HandlerFunc(func(ctx context.Context, event events.Event) error {
		recorded <- event
		return nil
	}))

	c := New(&fakeStore{}, bus, logger.New("development"))
	userID := uuid.New()

	got := c.ApplyCorrection(context.Background(), userID, "t bnk o", "t bnk p", domain.DepartmentFinance)
	if got != "t bnk p" {
		t.Fatalf("expected corrected text back, got %q", got)
	}

	event := <-recorded
	applied, ok := event.(events.CorrectionApplied)
	if !ok {
		t.Fatalf("unexpected event type %T", event)
	}
	if applied.UserID != userID || applied.CorrectedText != "t bnk p" {
		t.Fatalf("unexpected event payload: %+v", applied)
	}

	// Reapplying is idempotent: no error surface, one more audit event.
	_ = c.ApplyCorrection(context.Background(), userID, "t bnk o", "t bnk p", domain.DepartmentFinance)
	<-recorded
}
