// Package domain holds the value types shared by the validation pipeline,
// the multi-model parser and the result assembler. All types are immutable
// once constructed; nothing here performs I/O.
package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Department is the closed set of organizational units with their own
// command grammar and vocabulary. Adding a department means extending this
// enum and the assembler's builder map, checked at compile time.
type Department int

const (
	DepartmentUnknown Department = iota
	DepartmentFinance
	DepartmentSales
	DepartmentInventory
	DepartmentService
	DepartmentMarketing
)

var departmentNames = map[Department]string{
	DepartmentFinance:   "finance",
	DepartmentSales:     "sales",
	DepartmentInventory: "inventory",
	DepartmentService:   "service",
	DepartmentMarketing: "marketing",
}

// String returns the canonical lowercase department name.
func (d Department) String() string {
	if name, ok := departmentNames[d]; ok {
		return name
	}
	return "unknown"
}

// ParseDepartment maps a stored department name onto the enum.
func ParseDepartment(name string) (Department, error) {
	for dept, deptName := range departmentNames {
		if deptName == name {
			return dept, nil
		}
	}
	return DepartmentUnknown, fmt.Errorf("unknown department %q", name)
}

// Departments returns all known departments in declaration order.
func Departments() []Department {
	return []Department{
		DepartmentFinance,
		DepartmentSales,
		DepartmentInventory,
		DepartmentService,
		DepartmentMarketing,
	}
}

// Status is the terminal verdict of the validation pipeline.
type Status string

const (
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"
)

// ErrorType classifies a rejection. HEURISTIC never surfaces to users
// directly; it gates the semantic stage.
type ErrorType string

const (
	ErrorNone       ErrorType = ""
	ErrorSyntax     ErrorType = "SYNTAX"
	ErrorLogic      ErrorType = "LOGIC"
	ErrorHeuristic  ErrorType = "HEURISTIC"
	ErrorSemantic   ErrorType = "SEMANTIC"
	ErrorTypo       ErrorType = "TYPO"
	ErrorDepartment ErrorType = "DEPARTMENT_VALIDATION"
	ErrorProcessing ErrorType = "PROCESSING"
)

// SearchRequest is one validation/search invocation. Constructed per call,
// never persisted.
type SearchRequest struct {
	UserID   uuid.UUID
	RawInput string
}

// ValidationResult is the terminal output of the pipeline.
type ValidationResult struct {
	Status          Status
	ErrorType       ErrorType
	ErrorMessage    string
	Suggestions     []string
	ConfidenceScore float64
	IsCorrectable   bool
	// ValidatedText carries the (possibly corrected) query on approval.
	ValidatedText string
}

// Approved builds an APPROVED result for the validated text.
func Approved(validatedText string, confidence float64) ValidationResult {
	return ValidationResult{
		Status:          StatusApproved,
		ValidatedText:   validatedText,
		ConfidenceScore: confidence,
	}
}

// Rejected builds a REJECTED result. Suggestions should be human-actionable;
// callers fall back to a generic retry hint when they have nothing better.
func Rejected(errType ErrorType, message string, suggestions []string) ValidationResult {
	if len(suggestions) == 0 {
		suggestions = []string{"check the command format and try again"}
	}
	return ValidationResult{
		Status:       StatusRejected,
		ErrorType:    errType,
		ErrorMessage: message,
		Suggestions:  suggestions,
	}
}

// HeuristicVerdict is the output of the heuristic scanner. Confidence is the
// scanner's certainty in its own verdict, independent of the suspicion score,
// and is surfaced even on the approved path.
type HeuristicVerdict struct {
	Suspicious bool
	Confidence float64
}

// CorrectionCandidate is one ranked typo correction.
type CorrectionCandidate struct {
	CorrectedText   string
	Score           float64
	EditDistance    int
	SourcePatternID string
}

// DepartmentPattern is a department-scoped grammar entry. Reference data
// owned by the pattern store; consumed in insertion order.
type DepartmentPattern struct {
	ID          string
	Pattern     string
	Regex       string
	Description string
}

// QueryContext is the reporting window requested by a multi-model query.
type QueryContext string

const (
	ContextCurrent      QueryContext = "current"
	ContextCurrentMonth QueryContext = "current_month"
	ContextLastMonth    QueryContext = "last_month"
	ContextLastYear     QueryContext = "last_year"
	ContextLastWeek     QueryContext = "last_week"
	ContextThisWeek     QueryContext = "this_week"
)

// ModelToken is one code=qty pair from the multi-model micro-language.
// Invariant: ModelCode matches ^[A-Z0-9]{2,4}$ and Quantity is in [1,99].
type ModelToken struct {
	ModelCode string
	Quantity  int
}

// ModelQuery is the parsed form of a multi-model bulk-item query.
type ModelQuery struct {
	Models        []ModelToken
	Context       QueryContext
	OriginalInput string
}

// BranchStock is per-branch availability for a model.
type BranchStock struct {
	Branch string `json:"branch"`
	Stock  int    `json:"stock"`
}

// ModelInfo is the catalog record for a model code.
type ModelInfo struct {
	ModelCode          string
	ModelName          string
	UnitPriceCents     int64
	BranchAvailability []BranchStock
}

// ModelQuoteLine is one priced line of a multi-model response.
// Read-only once assembled.
type ModelQuoteLine struct {
	ModelCode          string        `json:"modelCode"`
	ModelName          string        `json:"modelName"`
	Quantity           int           `json:"quantity"`
	UnitPriceCents     int64         `json:"unitPriceCents"`
	TotalPriceCents    int64         `json:"totalPriceCents"`
	BranchAvailability []BranchStock `json:"branchAvailability"`
}

// ResultEntry is one typed entry contributed by a department result builder.
type ResultEntry struct {
	Type        string       `json:"type"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	ValueCents  int64        `json:"valueCents,omitempty"`
	Context     QueryContext `json:"context"`
}

// RecentQuote is a marketing-only quote-history record.
type RecentQuote struct {
	ModelCode      string    `json:"modelCode"`
	CustomerName   string    `json:"customerName"`
	UnitPriceCents int64     `json:"unitPriceCents"`
	Date           time.Time `json:"date"`
}

// SearchResponse is the composed answer for an approved query.
type SearchResponse struct {
	Department      string           `json:"department"`
	Query           string           `json:"query"`
	Entries         []ResultEntry    `json:"entries"`
	QuoteLines      []ModelQuoteLine `json:"quoteLines,omitempty"`
	TotalQuantity   int              `json:"totalQuantity,omitempty"`
	TotalPriceCents int64            `json:"totalPriceCents,omitempty"`
	FromCache       bool             `json:"fromCache"`
	GeneratedAt     time.Time        `json:"generatedAt"`
}
