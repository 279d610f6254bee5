package heuristic

import (
	"testing"

	"github.com/google/uuid"

	"opsdesk_backend/internal/search/domain"
	"opsdesk_backend/platform/logger"
)

var financeVocab = []string{"t bnk p", "p st", "t bnk", "pay cm"}

func TestKnownVocabularyInputIsNotSuspicious(t *testing.T) {
	s := New(logger.New("development"))

	verdict := s.Check(uuid.New(), "t bnk p", domain.DepartmentFinance, financeVocab)

	if verdict.Suspicious {
		t.Fatalf("vocabulary-shaped input must not be suspicious: %+v", verdict)
	}
}

func TestRareTokensRaiseSuspicion(t *testing.T) {
	s := New(logger.New("development"))

	verdict := s.Check(uuid.New(), "zq xw vy", domain.DepartmentFinance, financeVocab)

	if !verdict.Suspicious {
		t.Fatalf("input with only unknown tokens must be suspicious: %+v", verdict)
	}
}

var junkInputs = []string{"zq xw vy", "qq ww rr", "xj yk zl"}

func TestSuspiciousStreakRaisesSuspicion(t *testing.T) {
	s := New(logger.New("development"))
	userID := uuid.New()

	// A run of distinct flagged shapes lowers trust in the caller's next
	// unseen shape. On its own "p zqx" scores just under the threshold.
	fresh := s.Check(uuid.New(), "p zqx", domain.DepartmentFinance, financeVocab)
	if fresh.Suspicious {
		t.Fatalf("borderline shape must pass without a streak: %+v", fresh)
	}

	for _, input := range junkInputs {
		verdict := s.Check(userID, input, domain.DepartmentFinance, financeVocab)
		if !verdict.Suspicious {
			t.Fatalf("junk shape %q must be suspicious: %+v", input, verdict)
		}
	}

	after := s.Check(userID, "p zqx", domain.DepartmentFinance, financeVocab)
	if !after.Suspicious {
		t.Fatalf("borderline shape after a flagged streak must be suspicious: %+v", after)
	}
}

func TestIdenticalCallsReturnIdenticalVerdicts(t *testing.T) {
	s := New(logger.New("development"))

	// Covers both outcomes: a clean shape and a flagged one.
	for _, input := range []string{"t bnk p", "zq xw vy"} {
		userID := uuid.New()
		first := s.Check(userID, input, domain.DepartmentFinance, financeVocab)
		second := s.Check(userID, input, domain.DepartmentFinance, financeVocab)
		if first != second {
			t.Fatalf("verdict for %q changed on retry: %+v vs %+v", input, first, second)
		}
	}
}

func TestBorderlineShapeDoesNotFlipOnRetry(t *testing.T) {
	s := New(logger.New("development"))
	userID := uuid.New()

	first := s.Check(userID, "t bnk q", domain.DepartmentFinance, []string{"t bnk"})
	second := s.Check(userID, "t bnk q", domain.DepartmentFinance, []string{"t bnk"})

	if first.Suspicious {
		t.Fatalf("near-vocabulary shape must not be suspicious: %+v", first)
	}
	if second != first {
		t.Fatalf("retry flipped the verdict: %+v vs %+v", first, second)
	}
}

func TestHistoryIsScopedPerUser(t *testing.T) {
	s := New(logger.New("development"))
	repeatOffender := uuid.New()

	for _, input := range junkInputs {
		s.Check(repeatOffender, input, domain.DepartmentFinance, financeVocab)
	}

	fresh := s.Check(uuid.New(), "t bnk p", domain.DepartmentFinance, financeVocab)
	if fresh.Suspicious {
		t.Fatalf("another user's history must not leak: %+v", fresh)
	}
}

func TestNilVocabularyFailsOpen(t *testing.T) {
	s := New(logger.New("development"))

	verdict := s.Check(uuid.New(), "anything at all here", domain.DepartmentSales, nil)

	if verdict.Suspicious {
		t.Fatalf("missing vocabulary must fail open: %+v", verdict)
	}
}

func TestConfidenceIsBounded(t *testing.T) {
	s := New(logger.New("development"))

	for _, input := range []string{"t bnk p", "zq xw vy", "p st"} {
		verdict := s.Check(uuid.New(), input, domain.DepartmentFinance, financeVocab)
		if verdict.Confidence < 0 || verdict.Confidence > 1 {
			t.Fatalf("confidence out of range for %q: %+v", input, verdict)
		}
	}
}

func TestConfidenceSurfacedOnApprovedPath(t *testing.T) {
	s := New(logger.New("development"))

	verdict := s.Check(uuid.New(), "t bnk p", domain.DepartmentFinance, financeVocab)

	if verdict.Suspicious {
		t.Fatalf("expected non-suspicious verdict: %+v", verdict)
	}
	if verdict.Confidence == 0 {
		t.Fatalf("clear verdicts should carry non-zero confidence: %+v", verdict)
	}
}
