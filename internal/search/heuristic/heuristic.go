// Package heuristic implements the cheap statistical stage of the validation
// pipeline. It runs synchronously with no suspension points: the department
// vocabulary is supplied by the caller (already cached) and request history
// is an in-process bounded ring, never an external lookup.
//
// Verdicts are stable: a shape already in the caller's history window returns
// its stored verdict, so retrying the same input never flips the outcome.
// The repetition signal scores how much of the caller's recent history was
// flagged, raising suspicion of the next unseen shape after a run of
// malformed ones.
//
// Policy: the scanner fails open. Any internal fault yields a non-suspicious
// verdict with confidence 0, so legitimate traffic is never blocked by a
// broken scorer. Stricter behavior would be a deliberate policy change here.
package heuristic

import (
	"math"
	"strings"
	"sync"

	"github.com/google/uuid"

	"opsdesk_backend/internal/search/domain"
	"opsdesk_backend/platform/logger"
)

const (
	// suspicionThreshold gates the semantic stage. Tunable constant.
	suspicionThreshold = 0.3

	historySize = 10

	weightRarity     = 0.5
	weightLengthDev  = 0.3
	weightRepetition = 0.2
)

// observation is one scored shape in a caller's history window.
type observation struct {
	shape   string
	verdict domain.HeuristicVerdict
}

// Scanner scores input shape against the department's known vocabulary and
// the caller's recent inputs. Safe for concurrent use.
type Scanner struct {
	mu     sync.Mutex
	recent map[string][]observation
	log    *logger.Logger
}

// New creates a heuristic scanner.
func New(log *logger.Logger) *Scanner {
	return &Scanner{
		recent: make(map[string][]observation),
		log:    log,
	}
}

// Check computes the suspicion verdict for one input. vocab may be nil when
// the vocabulary fetch failed upstream; the rarity signal then contributes
// nothing (fail open).
func (s *Scanner) Check(userID uuid.UUID, text string, dept domain.Department, vocab []string) (verdict domain.HeuristicVerdict) {
	defer func() {
		if r := recover(); r != nil {
			if s.log != nil {
				s.log.Warn("heuristic scanner fault, failing open", "panic", r)
			}
			verdict = domain.HeuristicVerdict{Suspicious: false, Confidence: 0}
		}
	}()

	normalized := strings.ToLower(strings.TrimSpace(text))
	key := userID.String() + "|" + dept.String()

	s.mu.Lock()
	defer s.mu.Unlock()

	history := s.recent[key]

	// A shape still in the window keeps its verdict. Identical invocations
	// must yield identical results all the way to the pipeline output.
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].shape == normalized {
			return history[i].verdict
		}
	}

	rarity := tokenRarity(normalized, vocab)
	lengthDev := lengthDeviation(normalized, vocab)
	repetition := suspiciousStreak(history)

	score := weightRarity*rarity + weightLengthDev*lengthDev + weightRepetition*repetition

	verdict = domain.HeuristicVerdict{
		Suspicious: score > suspicionThreshold,
		Confidence: confidence(score),
	}

	history = append(history, observation{shape: normalized, verdict: verdict})
	if len(history) > historySize {
		history = history[len(history)-historySize:]
	}
	s.recent[key] = history

	return verdict
}

// confidence is the scanner's certainty in its own verdict: scores far from
// the threshold on either side are confident calls, scores near it are not.
func confidence(score float64) float64 {
	distance := math.Abs(score-suspicionThreshold) / (1 - suspicionThreshold)
	return math.Min(1, distance)
}

// tokenRarity is the fraction of input tokens absent from the department's
// vocabulary token set.
func tokenRarity(normalized string, vocab []string) float64 {
	tokens := strings.Fields(normalized)
	if len(tokens) == 0 {
		return 0
	}

	known := make(map[string]struct{})
	for _, phrase := range vocab {
		for _, token := range strings.Fields(strings.ToLower(phrase)) {
			known[token] = struct{}{}
		}
	}
	if len(known) == 0 {
		return 0
	}

	rare := 0
	for _, token := range tokens {
		if _, ok := known[token]; !ok {
			rare++
		}
	}
	return float64(rare) / float64(len(tokens))
}

// lengthDeviation measures how far the input length strays from the typical
// phrase length of the department vocabulary, normalized to [0,1].
func lengthDeviation(normalized string, vocab []string) float64 {
	if len(vocab) == 0 {
		return 0
	}

	total := 0
	for _, phrase := range vocab {
		total += len(phrase)
	}
	typical := float64(total) / float64(len(vocab))
	if typical <= 0 {
		return 0
	}

	deviation := math.Abs(float64(len(normalized))-typical) / typical
	return math.Min(1, deviation)
}

// suspiciousStreak scores how many of the caller's recent shapes were
// flagged. Three flagged shapes saturate the signal.
func suspiciousStreak(history []observation) float64 {
	flagged := 0
	for _, entry := range history {
		if entry.verdict.Suspicious {
			flagged++
		}
	}
	return math.Min(1, float64(flagged)/3)
}
