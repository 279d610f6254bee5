package assembler

import (
	"strings"

	"opsdesk_backend/internal/search/domain"
)

// resultBuilder turns an approved plain-dialect command into result entries.
// Builders are pure: no I/O, no shared state.
type resultBuilder func(interpretedQuery string) []domain.ResultEntry

// builders is the closed department dispatch table. A department without a
// builder yields an empty result set, never an error.
var builders = map[domain.Department]resultBuilder{
	domain.DepartmentFinance:   buildFinance,
	domain.DepartmentSales:     buildSales,
	domain.DepartmentInventory: buildInventory,
	domain.DepartmentService:   buildService,
	domain.DepartmentMarketing: buildMarketing,
}

func builderFor(dept domain.Department) resultBuilder {
	return builders[dept]
}

func hasToken(query, token string) bool {
	for _, field := range strings.Fields(strings.ToLower(query)) {
		if field == token {
			return true
		}
	}
	return false
}

func entry(entryType, title, description string) domain.ResultEntry {
	return domain.ResultEntry{
		Type:        entryType,
		Title:       title,
		Description: description,
		Context:     domain.ContextCurrent,
	}
}

func buildFinance(query string) []domain.ResultEntry {
	switch {
	case hasToken(query, "bnk"):
		return []domain.ResultEntry{entry("bank_transfer", "bank transfer overview", query)}
	case hasToken(query, "pay"):
		return []domain.ResultEntry{entry("payment", "payment status", query)}
	default:
		return []domain.ResultEntry{entry("finance_report", "finance report", query)}
	}
}

func buildSales(query string) []domain.ResultEntry {
	switch {
	case hasToken(query, "lead"):
		return []domain.ResultEntry{entry("lead_list", "open leads", query)}
	case hasToken(query, "deal"):
		return []domain.ResultEntry{entry("deal_list", "deals in progress", query)}
	default:
		return []domain.ResultEntry{entry("sales_report", "sales report", query)}
	}
}

func buildInventory(query string) []domain.ResultEntry {
	switch {
	case hasToken(query, "st"):
		return []domain.ResultEntry{entry("stock_level", "stock levels", query)}
	case hasToken(query, "ord"):
		return []domain.ResultEntry{entry("order_list", "open purchase orders", query)}
	default:
		return []domain.ResultEntry{entry("inventory_report", "inventory report", query)}
	}
}

func buildService(query string) []domain.ResultEntry {
	switch {
	case hasToken(query, "tkt"):
		return []domain.ResultEntry{entry("ticket_list", "open tickets", query)}
	case hasToken(query, "sla"):
		return []domain.ResultEntry{entry("sla_status", "sla compliance", query)}
	default:
		return []domain.ResultEntry{entry("service_report", "service report", query)}
	}
}

func buildMarketing(query string) []domain.ResultEntry {
	switch {
	case hasToken(query, "cmp"):
		return []domain.ResultEntry{entry("campaign_list", "running campaigns", query)}
	case hasToken(query, "seg"):
		return []domain.ResultEntry{entry("segment_list", "audience segments", query)}
	default:
		return []domain.ResultEntry{entry("marketing_report", "marketing report", query)}
	}
}
