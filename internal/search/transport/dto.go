package transport

import (
	"opsdesk_backend/internal/search/domain"
)

type ExecuteRequest struct {
	Input string `json:"input" validate:"required,max=200"`
}

type CorrectionRequest struct {
	OriginalInput  string `json:"originalInput" validate:"required,max=200"`
	CorrectedInput string `json:"correctedInput" validate:"required,max=200"`
}

// ValidationOutcome mirrors the pipeline verdict for API consumers.
type ValidationOutcome struct {
	Status          string   `json:"status"` // "APPROVED" | "REJECTED"
	ErrorType       string   `json:"errorType,omitempty"`
	ErrorMessage    string   `json:"errorMessage,omitempty"`
	Suggestions     []string `json:"suggestions,omitempty"`
	ConfidenceScore float64  `json:"confidenceScore"`
	IsCorrectable   bool     `json:"isCorrectable"`
}

// SearchResult is the full API answer: the verdict plus, on approval, the
// assembled response. Response is nil on rejection.
type SearchResult struct {
	Validation ValidationOutcome      `json:"validation"`
	Response   *domain.SearchResponse `json:"response,omitempty"`
}

type PatternEntry struct {
	ID          string `json:"id"`
	Pattern     string `json:"pattern"`
	Description string `json:"description"`
}

type PatternList struct {
	Department string         `json:"department"`
	Patterns   []PatternEntry `json:"patterns"`
}

// FromValidation maps the pipeline verdict onto the wire type.
func FromValidation(result domain.ValidationResult) ValidationOutcome {
	return ValidationOutcome{
		Status:          string(result.Status),
		ErrorType:       string(result.ErrorType),
		ErrorMessage:    result.ErrorMessage,
		Suggestions:     result.Suggestions,
		ConfidenceScore: result.ConfidenceScore,
		IsCorrectable:   result.IsCorrectable,
	}
}
