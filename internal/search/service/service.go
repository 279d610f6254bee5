// Package service orchestrates the validation pipeline and the result
// assembler behind the search API.
package service

import (
	"context"

	"github.com/google/uuid"

	"opsdesk_backend/internal/search/domain"
	"opsdesk_backend/internal/search/ports"
	"opsdesk_backend/internal/search/transport"
	"opsdesk_backend/platform/apperr"
)

// Validator is the staged validation pipeline.
type Validator interface {
	Validate(ctx context.Context, req domain.SearchRequest) (domain.ValidationResult, domain.Department)
}

// Corrector applies a user-accepted typo correction.
type Corrector interface {
	ApplyCorrection(ctx context.Context, userID uuid.UUID, originalText, correctedText string, dept domain.Department) string
}

// ResultAssembler builds the cached response for an approved query.
type ResultAssembler interface {
	Assemble(ctx context.Context, userID uuid.UUID, dept domain.Department, interpretedQuery string) domain.SearchResponse
}

type Service struct {
	validator Validator
	corrector Corrector
	assembler ResultAssembler
	users     ports.UserDirectory
	patterns  ports.PatternStore
	audit     ports.AuditLog
}

func New(validator Validator, corrector Corrector, assembler ResultAssembler, users ports.UserDirectory, patterns ports.PatternStore, audit ports.AuditLog) *Service {
	return &Service{
		validator: validator,
		corrector: corrector,
		assembler: assembler,
		users:     users,
		patterns:  patterns,
		audit:     audit,
	}
}

// Execute validates the raw input and, on approval, assembles the response.
// Rejections are not errors: the caller receives the structured verdict with
// suggestions so the client can offer corrections.
func (s *Service) Execute(ctx context.Context, userID uuid.UUID, input string) (*transport.SearchResult, error) {
	result, dept := s.validator.Validate(ctx, domain.SearchRequest{UserID: userID, RawInput: input})
	outcome := transport.FromValidation(result)

	// Rejections are audited by the event-bus subscriber; only successful
	// executions are recorded here.
	if result.Status == domain.StatusRejected {
		return &transport.SearchResult{Validation: outcome}, nil
	}

	response := s.assembler.Assemble(ctx, userID, dept, result.ValidatedText)
	s.record(ctx, "search.executed", userID, map[string]string{
		"department": dept.String(),
		"query":      result.ValidatedText,
	})

	return &transport.SearchResult{Validation: outcome, Response: &response}, nil
}

// ApplyCorrection accepts a suggested correction on the user's behalf and
// executes the search with the corrected text. A corrected command that
// still fails validation is a policy error, not a silent rejection: the
// suggestion came from us, so the client should surface the failure loudly.
func (s *Service) ApplyCorrection(ctx context.Context, userID uuid.UUID, req transport.CorrectionRequest) (*transport.SearchResult, error) {
	dept, err := s.users.GetDepartment(ctx, userID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindNotFound, "user has no department assignment", err).WithOp("search.ApplyCorrection")
	}

	corrected := s.corrector.ApplyCorrection(ctx, userID, req.OriginalInput, req.CorrectedInput, dept)

	result, err := s.Execute(ctx, userID, corrected)
	if err != nil {
		return nil, err
	}
	if result.Response == nil {
		return nil, apperr.Unprocessable("corrected command was rejected").
			WithOp("search.ApplyCorrection").
			WithDetails(result.Validation)
	}
	return result, nil
}

// DepartmentPatterns lists the grammar for one department, for the client's
// command help screen.
func (s *Service) DepartmentPatterns(ctx context.Context, departmentName string) (*transport.PatternList, error) {
	dept, err := domain.ParseDepartment(departmentName)
	if err != nil {
		return nil, apperr.BadRequest("unknown department").WithOp("search.DepartmentPatterns")
	}

	grammar, err := s.patterns.GetPatterns(ctx, dept)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "pattern lookup failed", err).WithOp("search.DepartmentPatterns")
	}

	entries := make([]transport.PatternEntry, len(grammar))
	for i, pattern := range grammar {
		entries[i] = transport.PatternEntry{
			ID:          pattern.ID,
			Pattern:     pattern.Pattern,
			Description: pattern.Description,
		}
	}
	return &transport.PatternList{Department: dept.String(), Patterns: entries}, nil
}

func (s *Service) record(ctx context.Context, kind string, userID uuid.UUID, payload map[string]string) {
	if s.audit == nil {
		return
	}
	s.audit.Record(ctx, kind, userID, payload)
}
