package persistence

import "strings"

// ValidateSortOrder normalizes a sort direction string. Anything that is not
// a case-insensitive "desc" falls back to ASC.
func ValidateSortOrder(order string) string {
	if strings.EqualFold(order, "desc") {
		return "DESC"
	}
	return "ASC"
}

// ValidateSortField returns the column name mapped to the requested sort
// field, or defaultField when the request is empty or not in the whitelist.
// Whitelisting prevents user-controlled ORDER BY injection.
func ValidateSortField(field string, allowed map[string]string, defaultField string) string {
	if field == "" {
		return defaultField
	}
	if column, ok := allowed[strings.ToLower(field)]; ok {
		return column
	}
	return defaultField
}

// CommonSortFields covers columns shared by every table.
var CommonSortFields = map[string]string{
	"id":         "id",
	"created_at": "created_at",
	"updated_at": "updated_at",
}

// ChargeSortFields whitelists sortable columns on charges.
var ChargeSortFields = map[string]string{
	"id":           "id",
	"created_at":   "created_at",
	"updated_at":   "updated_at",
	"title":        "title",
	"status":       "status",
	"total_amount": "total_amount",
	"due_date":     "due_date",
}

// PaymentSortFields whitelists sortable columns on payments.
var PaymentSortFields = map[string]string{
	"id":               "id",
	"created_at":       "created_at",
	"updated_at":       "updated_at",
	"amount":           "amount",
	"status":           "status",
	"method":           "method",
	"reference_number": "reference_number",
	"verified_at":      "verified_at",
}

// ExpenseSortFields whitelists sortable columns on expenses.
var ExpenseSortFields = map[string]string{
	"id":           "id",
	"created_at":   "created_at",
	"updated_at":   "updated_at",
	"title":        "title",
	"category":     "category",
	"amount":       "amount",
	"status":       "status",
	"expense_date": "expense_date",
}

// FundTransactionSortFields whitelists sortable columns on fund transactions.
var FundTransactionSortFields = map[string]string{
	"id":         "id",
	"created_at": "created_at",
	"type":       "type",
	"direction":  "direction",
	"amount":     "amount",
}
