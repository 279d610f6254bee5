// Package logic implements the pattern-table stage of the validation
// pipeline: the input must match one of the caller's department grammars.
package logic

import (
	"context"
	"regexp"
	"strings"
	"sync"

	"github.com/google/uuid"

	"opsdesk_backend/internal/search/domain"
	"opsdesk_backend/internal/search/ports"
	"opsdesk_backend/platform/logger"
)

const maxSuggestions = 3

// Validator matches input against department-registered grammars.
// Pattern fetch failures fail closed: approving on missing grammar data
// would bypass validation entirely.
type Validator struct {
	users    ports.UserDirectory
	patterns ports.PatternStore
	log      *logger.Logger

	// compiled memoizes regex compilation keyed by pattern ID + source.
	compiled sync.Map
}

// New creates a logic validator.
func New(users ports.UserDirectory, patterns ports.PatternStore, log *logger.Logger) *Validator {
	return &Validator{users: users, patterns: patterns, log: log}
}

// Validate resolves the caller's department and accepts if the normalized
// text matches any department pattern. Evaluation order is the store's
// insertion order; the first match wins.
func (v *Validator) Validate(ctx context.Context, userID uuid.UUID, text string) (domain.ValidationResult, domain.Department) {
	dept, err := v.users.GetDepartment(ctx, userID)
	if err != nil || dept == domain.DepartmentUnknown {
		if err != nil {
			v.log.LookupError("user_directory", err)
		}
		return domain.Rejected(domain.ErrorLogic, "no department registered for this user",
			[]string{"contact an administrator to assign your department"}), domain.DepartmentUnknown
	}

	entries, err := v.patterns.GetPatterns(ctx, dept)
	if err != nil {
		v.log.LookupError("pattern_store", err)
		return domain.Rejected(domain.ErrorLogic, "command validation is temporarily unavailable",
			[]string{"try again in a moment"}), dept
	}

	normalized := strings.ToLower(strings.TrimSpace(text))
	for _, entry := range entries {
		re, compileErr := v.compile(entry)
		if compileErr != nil {
			// A broken grammar entry is skipped, not fatal: the remaining
			// patterns still define the department's accepted commands.
			v.log.Warn("invalid department pattern", "pattern_id", entry.ID, "error", compileErr)
			continue
		}
		if re.MatchString(normalized) {
			return domain.Approved(text, 0), dept
		}
	}

	return domain.Rejected(domain.ErrorLogic, "command not recognized for your department",
		exampleSuggestions(entries)), dept
}

func (v *Validator) compile(entry domain.DepartmentPattern) (*regexp.Regexp, error) {
	key := entry.ID + "\x00" + entry.Regex
	if cached, ok := v.compiled.Load(key); ok {
		return cached.(*regexp.Regexp), nil
	}

	re, err := regexp.Compile(entry.Regex)
	if err != nil {
		return nil, err
	}
	v.compiled.Store(key, re)
	return re, nil
}

// exampleSuggestions surfaces up to three valid patterns, in insertion order,
// as human-actionable examples.
func exampleSuggestions(entries []domain.DepartmentPattern) []string {
	suggestions := make([]string, 0, maxSuggestions)
	for _, entry := range entries {
		if len(suggestions) == maxSuggestions {
			break
		}
		if entry.Description != "" {
			suggestions = append(suggestions, entry.Pattern+" - "+entry.Description)
			continue
		}
		suggestions = append(suggestions, entry.Pattern)
	}
	return suggestions
}
