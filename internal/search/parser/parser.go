// Package parser implements the code=qty micro-language used for bulk-item
// queries. Two distinct policies live here on purpose: IsMultiModelFormat is
// an all-or-nothing pre-validation gate over the whole string, while Parse
// is permissive and silently drops malformed tokens.
package parser

import (
	"regexp"
	"strconv"
	"strings"

	"opsdesk_backend/internal/search/domain"
)

const (
	minQuantity = 1
	maxQuantity = 99
)

var (
	// The gate accepts code=qty tokens interleaved with the fixed context
	// abbreviations; at least one code=qty token is required.
	precheckRE = regexp.MustCompile(`(?i)^\s*(?:(?:[a-z0-9]{2,4}=\d{1,2}|cm|lm|ly|lw|tw)\s*)+$`)

	modelTokenRE = regexp.MustCompile(`(?i)^([a-z0-9]{2,4})=(\d{1,2})$`)
)

var contextTokens = map[string]domain.QueryContext{
	"cm": domain.ContextCurrentMonth,
	"lm": domain.ContextLastMonth,
	"ly": domain.ContextLastYear,
	"lw": domain.ContextLastWeek,
	"tw": domain.ContextThisWeek,
}

// IsMultiModelFormat reports whether the whole string is a well-formed
// bulk-item query. Unlike Parse it rejects the entire input on any
// malformed token; quantities with more than two digits fail here before
// parsing is attempted.
func IsMultiModelFormat(text string) bool {
	if !precheckRE.MatchString(text) {
		return false
	}
	return strings.Contains(text, "=")
}

// Parse tokenizes a bulk-item query. Tokens matching code=qty with the
// quantity in [1,99] become ModelTokens; context abbreviations set the
// reporting window, last occurrence wins; anything else is dropped.
func Parse(text string) domain.ModelQuery {
	query := domain.ModelQuery{
		Models:        []domain.ModelToken{},
		Context:       domain.ContextCurrent,
		OriginalInput: text,
	}

	for _, token := range strings.Fields(text) {
		lowered := strings.ToLower(token)

		if queryContext, ok := contextTokens[lowered]; ok {
			query.Context = queryContext
			continue
		}

		match := modelTokenRE.FindStringSubmatch(token)
		if match == nil {
			continue
		}

		quantity, err := strconv.Atoi(match[2])
		if err != nil || quantity < minQuantity || quantity > maxQuantity {
			continue
		}

		query.Models = append(query.Models, domain.ModelToken{
			ModelCode: strings.ToUpper(match[1]),
			Quantity:  quantity,
		})
	}

	return query
}
