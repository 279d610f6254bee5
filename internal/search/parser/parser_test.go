package parser

import (
	"testing"

	"opsdesk_backend/internal/search/domain"
)

func TestParsesModelsWithDefaultContext(t *testing.T) {
	query := Parse("a2b=2 e4s=3")

	if len(query.Models) != 2 {
		t.Fatalf("expected 2 models, got %+v", query.Models)
	}
	if query.Models[0] != (domain.ModelToken{ModelCode: "A2B", Quantity: 2}) {
		t.Fatalf("unexpected first token: %+v", query.Models[0])
	}
	if query.Models[1] != (domain.ModelToken{ModelCode: "E4S", Quantity: 3}) {
		t.Fatalf("unexpected second token: %+v", query.Models[1])
	}
	if query.Context != domain.ContextCurrent {
		t.Fatalf("expected current context, got %s", query.Context)
	}
	if query.OriginalInput != "a2b=2 e4s=3" {
		t.Fatalf("original input must be preserved, got %q", query.OriginalInput)
	}
}

func TestContextTokenSetsReportingWindow(t *testing.T) {
	query := Parse("a2b=2 e4s=3 cm")

	if len(query.Models) != 2 {
		t.Fatalf("expected 2 models, got %+v", query.Models)
	}
	if query.Context != domain.ContextCurrentMonth {
		t.Fatalf("expected current_month, got %s", query.Context)
	}
}

func TestLastContextTokenWins(t *testing.T) {
	query := Parse("a2b=2 cm lw")

	if query.Context != domain.ContextLastWeek {
		t.Fatalf("expected last context hint to win, got %s", query.Context)
	}
}

func TestAllContextAbbreviations(t *testing.T) {
	cases := map[string]domain.QueryContext{
		"cm": domain.ContextCurrentMonth,
		"lm": domain.ContextLastMonth,
		"ly": domain.ContextLastYear,
		"lw": domain.ContextLastWeek,
		"tw": domain.ContextThisWeek,
	}

	for token, want := range cases {
		if got := Parse("a2b=1 " + token).Context; got != want {
			t.Fatalf("token %q: expected %s, got %s", token, want, got)
		}
	}
}

func TestMalformedTokensAreDroppedNotFatal(t *testing.T) {
	query := Parse("a2b=2 nonsense=999 x=1 e4s=3")

	if len(query.Models) != 2 {
		t.Fatalf("expected malformed tokens dropped, got %+v", query.Models)
	}
	if query.Models[0].ModelCode != "A2B" || query.Models[1].ModelCode != "E4S" {
		t.Fatalf("unexpected surviving tokens: %+v", query.Models)
	}
}

func TestZeroQuantityIsDropped(t *testing.T) {
	query := Parse("a2b=0 e4s=3")

	if len(query.Models) != 1 || query.Models[0].ModelCode != "E4S" {
		t.Fatalf("quantity 0 must be dropped, got %+v", query.Models)
	}
}

func TestCaseInsensitiveCodesNormalizedUppercase(t *testing.T) {
	query := Parse("A2b=2 E4S=3")

	if query.Models[0].ModelCode != "A2B" || query.Models[1].ModelCode != "E4S" {
		t.Fatalf("codes must normalize to uppercase, got %+v", query.Models)
	}
}

func TestPreCheckAcceptsWellFormedQueries(t *testing.T) {
	for _, input := range []string{"a2b=2", "a2b=2 e4s=3", "a2b=2 e4s=3 cm", "A2B=2 LM"} {
		if !IsMultiModelFormat(input) {
			t.Fatalf("expected pre-check to accept %q", input)
		}
	}
}

func TestPreCheckRejectsMalformedQueries(t *testing.T) {
	cases := []string{
		"a2b=200",   // quantity exceeds 2 digits
		"a2b=2 p!",  // unsupported character
		"cm",        // context only, no model token
		"t bnk p",   // plain command dialect
		"",          // empty
		"abcde=2",   // code too long
	}
	for _, input := range cases {
		if IsMultiModelFormat(input) {
			t.Fatalf("expected pre-check to reject %q", input)
		}
	}
}

func TestPreCheckGateIsStricterThanParse(t *testing.T) {
	// Parse tolerates what the gate refuses: a2b=200 aborts the whole string
	// at the gate, while Parse would simply drop the malformed token.
	input := "a2b=200 e4s=3"

	if IsMultiModelFormat(input) {
		t.Fatal("gate must reject the whole string")
	}
	query := Parse(input)
	if len(query.Models) != 1 || query.Models[0].ModelCode != "E4S" {
		t.Fatalf("parse must drop only the malformed token, got %+v", query.Models)
	}
}
