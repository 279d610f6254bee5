// Package typo implements the fuzzy-matching suggestion engine. It is only
// invoked for input the heuristic scanner flagged as suspicious.
package typo

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"opsdesk_backend/internal/events"
	"opsdesk_backend/internal/search/domain"
	"opsdesk_backend/internal/search/ports"
	"opsdesk_backend/platform/logger"
)

const (
	// similarityFloor is the minimum similarity a candidate must reach.
	// Below the floor the caller falls through to a SEMANTIC rejection
	// rather than silently approving.
	similarityFloor = 0.55

	maxCandidates = 3
)

// Corrector ranks correction candidates from the department vocabulary.
type Corrector struct {
	patterns ports.PatternStore
	bus      events.Bus
	log      *logger.Logger
}

// New creates a typo corrector.
func New(patterns ports.PatternStore, bus events.Bus, log *logger.Logger) *Corrector {
	return &Corrector{patterns: patterns, bus: bus, log: log}
}

// FindCorrections returns up to three candidates above the similarity floor,
// ordered by descending score, ties broken by shorter edit distance then
// lexical order. Store failures yield an empty list; the pipeline then
// rejects as SEMANTIC instead of approving unverified input.
func (c *Corrector) FindCorrections(ctx context.Context, userID uuid.UUID, text string, dept domain.Department) []domain.CorrectionCandidate {
	normalized := strings.ToLower(strings.TrimSpace(text))

	candidates := make([]domain.CorrectionCandidate, 0)
	seen := make(map[string]struct{})

	grammar, err := c.patterns.GetPatterns(ctx, dept)
	if err != nil {
		c.log.LookupError("pattern_store", err)
	}
	for _, entry := range grammar {
		addCandidate(&candidates, seen, normalized, strings.ToLower(entry.Pattern), entry.ID)
	}

	vocab, err := c.patterns.GetVocabulary(ctx, dept)
	if err != nil {
		c.log.LookupError("pattern_store", err)
	}
	for _, phrase := range vocab {
		addCandidate(&candidates, seen, normalized, strings.ToLower(phrase), "vocabulary")
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		if candidates[i].EditDistance != candidates[j].EditDistance {
			return candidates[i].EditDistance < candidates[j].EditDistance
		}
		return candidates[i].CorrectedText < candidates[j].CorrectedText
	})

	if len(candidates) > maxCandidates {
		candidates = candidates[:maxCandidates]
	}
	return candidates
}

// ApplyCorrection records the accepted correction and returns the corrected
// text as the new validated query. The operation is idempotent per
// (user, original, corrected): reapplying records a duplicate audit entry
// but never errors.
func (c *Corrector) ApplyCorrection(ctx context.Context, userID uuid.UUID, originalText, correctedText string, dept domain.Department) string {
	if c.bus != nil {
		c.bus.Publish(ctx, events.CorrectionApplied{
			BaseEvent:     events.NewBaseEvent(),
			UserID:        userID,
			Department:    dept.String(),
			OriginalText:  originalText,
			CorrectedText: correctedText,
		})
	}
	return correctedText
}

func addCandidate(candidates *[]domain.CorrectionCandidate, seen map[string]struct{}, input, phrase, sourceID string) {
	if phrase == "" || phrase == input {
		return
	}
	if _, dup := seen[phrase]; dup {
		return
	}

	distance := levenshtein(input, phrase)
	score := similarity(input, phrase, distance)
	if score < similarityFloor {
		return
	}

	seen[phrase] = struct{}{}
	*candidates = append(*candidates, domain.CorrectionCandidate{
		CorrectedText:   phrase,
		Score:           score,
		EditDistance:    distance,
		SourcePatternID: sourceID,
	})
}

// similarity maps edit distance into (0,1]; closer strings score higher.
func similarity(a, b string, distance int) float64 {
	longest := len(a)
	if len(b) > longest {
		longest = len(b)
	}
	if longest == 0 {
		return 0
	}
	return 1 - float64(distance)/float64(longest)
}

// levenshtein computes the edit distance with a two-row matrix.
func levenshtein(a, b string) int {
	if a == b {
		return 0
	}
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	previous := make([]int, len(b)+1)
	current := make([]int, len(b)+1)
	for j := 0; j <= len(b); j++ {
		previous[j] = j
	}

	for i := 1; i <= len(a); i++ {
		current[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			current[j] = minInt(
				previous[j]+1,
				current[j-1]+1,
				previous[j-1]+cost,
			)
		}
		previous, current = current, previous
	}

	return previous[len(b)]
}

func minInt(values ...int) int {
	lowest := values[0]
	for _, v := range values[1:] {
		if v < lowest {
			lowest = v
		}
	}
	return lowest
}
