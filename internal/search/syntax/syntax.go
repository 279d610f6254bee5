// Package syntax implements the zero-cost lexical gate of the validation
// pipeline. Every check is pure and total: no I/O, no panics, the only
// failure mode is a typed REJECTED result.
package syntax

import (
	"regexp"
	"strings"
	"unicode"

	"opsdesk_backend/internal/search/domain"
)

const (
	minLength = 2
	maxLength = 20
)

var (
	allowedChars = regexp.MustCompile(`^[a-z0-9\s{}\-=]*$`)
	braceContent = regexp.MustCompile(`^[a-z0-9]+$`)
)

// Validator performs the lexical checks. Stateless and safe for concurrent use.
type Validator struct{}

// New creates a syntax validator.
func New() *Validator {
	return &Validator{}
}

// Validate runs the lexical checks in fixed order and returns the first
// failure as a distinct REJECTED result.
func (v *Validator) Validate(text string) domain.ValidationResult {
	if text == "" {
		return domain.Rejected(domain.ErrorSyntax, "command is empty",
			[]string{"type a command, for example: t bnk p"})
	}

	if !allowedChars.MatchString(text) {
		return domain.Rejected(domain.ErrorSyntax, "command contains unsupported characters",
			[]string{"use only lowercase letters, digits, spaces, braces, '-' and '='"})
	}

	if len(text) < minLength || len(text) > maxLength {
		return domain.Rejected(domain.ErrorSyntax, "command length must be between 2 and 20 characters",
			[]string{"shorten or extend the command to 2-20 characters"})
	}

	if strings.ContainsAny(text, "{}") {
		if ok := validBraces(text); !ok {
			return domain.Rejected(domain.ErrorSyntax, "braces must balance and contain a variable name",
				[]string{"write placeholders as {name} with lowercase letters or digits"})
		}
	}

	if text != strings.TrimSpace(text) {
		return domain.Rejected(domain.ErrorSyntax, "command must not start or end with whitespace",
			[]string{"remove the leading or trailing spaces"})
	}

	if hasConsecutiveWhitespace(text) {
		return domain.Rejected(domain.ErrorSyntax, "command must use single spaces between tokens",
			[]string{"separate tokens with a single space"})
	}

	return domain.Approved(text, 0)
}

// validBraces checks that every brace pair balances and wraps a non-empty
// lowercase alphanumeric variable name.
func validBraces(text string) bool {
	depth := 0
	var current strings.Builder

	for _, r := range text {
		switch r {
		case '{':
			depth++
			if depth > 1 {
				return false
			}
			current.Reset()
		case '}':
			depth--
			if depth < 0 {
				return false
			}
			if !braceContent.MatchString(current.String()) {
				return false
			}
		default:
			if depth > 0 {
				current.WriteRune(r)
			}
		}
	}

	return depth == 0
}

func hasConsecutiveWhitespace(text string) bool {
	previous := false
	for _, r := range text {
		current := unicode.IsSpace(r)
		if current && previous {
			return true
		}
		previous = current
	}
	return false
}
