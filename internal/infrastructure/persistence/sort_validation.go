package persistence

import (
	"strings"
)

// Sort input arrives straight from query parameters and is spliced
// into ORDER BY clauses, so both pieces are validated against closed
// sets rather than escaped.

// ValidateSortOrder normalizes the direction to ASC or DESC, falling
// back to DESC for anything unrecognized.
func ValidateSortOrder(orderDir string) string {
	if strings.EqualFold(strings.TrimSpace(orderDir), "asc") {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField accepts the requested column only when the
// whitelist knows it, otherwise it returns defaultField.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	if trimmed := strings.TrimSpace(sortField); allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// sortFields builds a whitelist from the audit columns every table
// shares plus the entity-specific ones.
func sortFields(extra ...string) map[string]bool {
	fields := map[string]bool{"id": true, "created_at": true, "updated_at": true}
	for _, f := range extra {
		fields[f] = true
	}
	return fields
}

var (
	CommonSortFields = sortFields()

	QuoteSortFields = sortFields(
		"quote_number", "account_name", "status", "total_amount",
		"valid_until", "sent_at", "approved_at")

	InvoiceSortFields = sortFields(
		"invoice_number", "account_name", "status", "total_amount",
		"amount_due", "issue_date", "due_date", "paid_at")

	ProductSortFields = sortFields(
		"sku", "name", "type", "unit_price", "cost", "active")

	ContactSortFields = sortFields(
		"first_name", "last_name", "email", "is_primary")

	AccountSortFields = sortFields(
		"name", "industry", "active")
)
