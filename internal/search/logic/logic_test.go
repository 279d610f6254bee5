package logic

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"opsdesk_backend/internal/search/domain"
	"opsdesk_backend/platform/logger"
)

type fakeDirectory struct {
	dept domain.Department
	err  error
}

func (f *fakeDirectory) GetDepartment(ctx context.Context, userID uuid.UUID) (domain.Department, error) {
	return f.dept, f.err
}

func (f *fakeDirectory) GetRole(ctx context.Context, userID uuid.UUID) (string, error) {
	return "agent", nil
}

type fakeStore struct {
	patterns []domain.DepartmentPattern
	err      error
}

func (f *fakeStore) GetPatterns(ctx context.Context, dept domain.Department) ([]domain.DepartmentPattern, error) {
	return f.patterns, f.err
}

func (f *fakeStore) GetVocabulary(ctx context.Context, dept domain.Department) ([]string, error) {
	return nil, nil
}

func newTestValidator(dir *fakeDirectory, store *fakeStore) *Validator {
	return New(dir, store, logger.New("development"))
}

func financePatterns() []domain.DepartmentPattern {
	return []domain.DepartmentPattern{
		{ID: "fin-1", Pattern: "t bnk", Regex: `^t\s+bnk(\s+p)?(\s+(cm|lm|ly|lw|tw))?$`, Description: "bank payment overview"},
		{ID: "fin-2", Pattern: "p st", Regex: `^p\s+st$`, Description: "payment status"},
	}
}

func TestApprovesOnFirstMatchingPattern(t *testing.T) {
	v := newTestValidator(&fakeDirectory{dept: domain.DepartmentFinance}, &fakeStore{patterns: financePatterns()})

	result, dept := v.Validate(context.Background(), uuid.New(), "t bnk p cm")

	if result.Status != domain.StatusApproved {
		t.Fatalf("expected approval, got %+v", result)
	}
	if dept != domain.DepartmentFinance {
		t.Fatalf("expected finance department, got %s", dept)
	}
}

func TestRejectsUnmatchedInputWithExamples(t *testing.T) {
	v := newTestValidator(&fakeDirectory{dept: domain.DepartmentFinance}, &fakeStore{patterns: financePatterns()})

	result, _ := v.Validate(context.Background(), uuid.New(), "xx yy")

	if result.Status != domain.StatusRejected || result.ErrorType != domain.ErrorLogic {
		t.Fatalf("expected LOGIC rejection, got %+v", result)
	}
	if len(result.Suggestions) == 0 || len(result.Suggestions) > 3 {
		t.Fatalf("expected 1-3 example suggestions, got %d", len(result.Suggestions))
	}
	if result.Suggestions[0] != "t bnk - bank payment overview" {
		t.Fatalf("suggestions must follow insertion order, got %q", result.Suggestions[0])
	}
}

func TestSuggestionCapIsThree(t *testing.T) {
	patterns := []domain.DepartmentPattern{
		{ID: "1", Pattern: "a b", Regex: `^a\s+b$`},
		{ID: "2", Pattern: "c d", Regex: `^c\s+d$`},
		{ID: "3", Pattern: "e f", Regex: `^e\s+f$`},
		{ID: "4", Pattern: "g h", Regex: `^g\s+h$`},
	}
	v := newTestValidator(&fakeDirectory{dept: domain.DepartmentSales}, &fakeStore{patterns: patterns})

	result, _ := v.Validate(context.Background(), uuid.New(), "zz")

	if len(result.Suggestions) != 3 {
		t.Fatalf("expected exactly 3 suggestions, got %d", len(result.Suggestions))
	}
}

func TestFailsClosedWhenDirectoryFails(t *testing.T) {
	v := newTestValidator(&fakeDirectory{err: errors.New("directory down")}, &fakeStore{patterns: financePatterns()})

	result, dept := v.Validate(context.Background(), uuid.New(), "t bnk")

	if result.Status != domain.StatusRejected || result.ErrorType != domain.ErrorLogic {
		t.Fatalf("expected LOGIC rejection on directory failure, got %+v", result)
	}
	if dept != domain.DepartmentUnknown {
		t.Fatalf("expected unknown department, got %s", dept)
	}
}

func TestFailsClosedWhenPatternFetchFails(t *testing.T) {
	v := newTestValidator(&fakeDirectory{dept: domain.DepartmentFinance}, &fakeStore{err: errors.New("store down")})

	result, _ := v.Validate(context.Background(), uuid.New(), "t bnk")

	if result.Status != domain.StatusRejected || result.ErrorType != domain.ErrorLogic {
		t.Fatalf("expected LOGIC rejection on pattern fetch failure, got %+v", result)
	}
}

func TestBrokenPatternIsSkippedNotFatal(t *testing.T) {
	patterns := []domain.DepartmentPattern{
		{ID: "bad", Pattern: "broken", Regex: `([`},
		{ID: "good", Pattern: "t bnk", Regex: `^t\s+bnk$`},
	}
	v := newTestValidator(&fakeDirectory{dept: domain.DepartmentFinance}, &fakeStore{patterns: patterns})

	result, _ := v.Validate(context.Background(), uuid.New(), "t bnk")

	if result.Status != domain.StatusApproved {
		t.Fatalf("expected approval via the remaining valid pattern, got %+v", result)
	}
}
