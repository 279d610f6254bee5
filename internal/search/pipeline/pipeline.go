// Package pipeline sequences the validation stages. Stage order encodes a
// cost-escalation policy, not merely a logical dependency: zero-cost lexical
// checks always run before anything that touches external state, and the
// first rejection short-circuits every later stage.
package pipeline

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"opsdesk_backend/internal/events"
	"opsdesk_backend/internal/search/domain"
	"opsdesk_backend/internal/search/ports"
	"opsdesk_backend/platform/logger"
)

// SyntaxChecker is the zero-cost lexical stage.
type SyntaxChecker interface {
	Validate(text string) domain.ValidationResult
}

// LogicChecker is the pattern-table stage; it also resolves the department.
type LogicChecker interface {
	Validate(ctx context.Context, userID uuid.UUID, text string) (domain.ValidationResult, domain.Department)
}

// HeuristicChecker is the statistical stage. It must not perform I/O; the
// vocabulary is supplied by the pipeline from the cached store.
type HeuristicChecker interface {
	Check(userID uuid.UUID, text string, dept domain.Department, vocab []string) domain.HeuristicVerdict
}

// CorrectionFinder is the fuzzy-matching stage, run only for suspicious input.
type CorrectionFinder interface {
	FindCorrections(ctx context.Context, userID uuid.UUID, text string, dept domain.Department) []domain.CorrectionCandidate
}

// Pipeline is the validation state machine. REJECTED is absorbing: once a
// stage rejects, no later stage runs.
type Pipeline struct {
	syntax     SyntaxChecker
	logic      LogicChecker
	heuristics HeuristicChecker
	corrector  CorrectionFinder
	patterns   ports.PatternStore
	bus        events.Bus
	log        *logger.Logger
}

// New creates a validation pipeline.
func New(syntax SyntaxChecker, logic LogicChecker, heuristics HeuristicChecker, corrector CorrectionFinder, patterns ports.PatternStore, bus events.Bus, log *logger.Logger) *Pipeline {
	return &Pipeline{
		syntax:     syntax,
		logic:      logic,
		heuristics: heuristics,
		corrector:  corrector,
		patterns:   patterns,
		bus:        bus,
		log:        log,
	}
}

// Validate runs the staged checks and returns the terminal result plus the
// resolved department (unknown when rejection happened before resolution).
func (p *Pipeline) Validate(ctx context.Context, req domain.SearchRequest) (domain.ValidationResult, domain.Department) {
	result := p.syntax.Validate(req.RawInput)
	if result.Status == domain.StatusRejected {
		return p.reject(ctx, req, result, domain.DepartmentUnknown), domain.DepartmentUnknown
	}

	result, dept := p.logic.Validate(ctx, req.UserID, req.RawInput)
	if result.Status == domain.StatusRejected {
		return p.reject(ctx, req, result, dept), dept
	}

	// The vocabulary backs both the heuristic rarity signal and the semantic
	// fallback. A failed fetch leaves it nil: the scanner fails open, the
	// semantic fallback fails closed.
	vocab, err := p.patterns.GetVocabulary(ctx, dept)
	if err != nil {
		p.log.LookupError("pattern_store", err)
		vocab = nil
	}

	verdict := p.heuristics.Check(req.UserID, req.RawInput, dept, vocab)
	if !verdict.Suspicious {
		return p.approve(req, dept, req.RawInput, verdict.Confidence), dept
	}

	candidates := p.corrector.FindCorrections(ctx, req.UserID, req.RawInput, dept)
	if len(candidates) > 0 {
		suggestions := make([]string, len(candidates))
		for i, candidate := range candidates {
			suggestions[i] = candidate.CorrectedText
		}
		result = domain.ValidationResult{
			Status:          domain.StatusRejected,
			ErrorType:       domain.ErrorTypo,
			ErrorMessage:    "did you mean one of these?",
			Suggestions:     suggestions,
			ConfidenceScore: verdict.Confidence,
			IsCorrectable:   true,
		}
		return p.reject(ctx, req, result, dept), dept
	}

	if semanticAccept(req.RawInput, vocab) {
		return p.approve(req, dept, req.RawInput, verdict.Confidence), dept
	}

	result = domain.Rejected(domain.ErrorSemantic, "command looks anomalous and no correction was found", nil)
	result.ConfidenceScore = verdict.Confidence
	return p.reject(ctx, req, result, dept), dept
}

// semanticAccept is the policy fallback for suspicious input with no
// corrections: accept only when every token is part of the department
// vocabulary, i.e. the suspicion was a false positive on a known shape.
func semanticAccept(text string, vocab []string) bool {
	if len(vocab) == 0 {
		return false
	}

	known := make(map[string]struct{})
	for _, phrase := range vocab {
		for _, token := range fields(phrase) {
			known[token] = struct{}{}
		}
	}

	tokens := fields(text)
	if len(tokens) == 0 {
		return false
	}
	for _, token := range tokens {
		if _, ok := known[token]; !ok {
			return false
		}
	}
	return true
}

func fields(text string) []string {
	return strings.Fields(strings.ToLower(text))
}

func (p *Pipeline) approve(req domain.SearchRequest, dept domain.Department, validatedText string, confidence float64) domain.ValidationResult {
	p.log.ValidationVerdict(req.UserID.String(), dept.String(), string(domain.StatusApproved), "", confidence)
	return domain.Approved(validatedText, confidence)
}

func (p *Pipeline) reject(ctx context.Context, req domain.SearchRequest, result domain.ValidationResult, dept domain.Department) domain.ValidationResult {
	p.log.ValidationVerdict(req.UserID.String(), dept.String(), string(result.Status), string(result.ErrorType), result.ConfidenceScore)
	if p.bus != nil {
		p.bus.Publish(ctx, events.SearchRejected{
			BaseEvent:  events.NewBaseEvent(),
			UserID:     req.UserID,
			Department: dept.String(),
			ErrorType:  string(result.ErrorType),
			Input:      req.RawInput,
		})
	}
	return result
}
