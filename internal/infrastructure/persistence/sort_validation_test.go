package persistence

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateSortOrder(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty defaults to asc", "", "ASC"},
		{"asc lowercase", "asc", "ASC"},
		{"desc lowercase", "desc", "DESC"},
		{"desc mixed case", "DeSc", "DESC"},
		{"garbage defaults to asc", "sideways", "ASC"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidateSortOrder(tt.input))
		})
	}
}

func TestValidateSortField(t *testing.T) {
	tests := []struct {
		name    string
		field   string
		allowed map[string]string
		def     string
		want    string
	}{
		{"empty returns default", "", ChargeSortFields, "created_at", "created_at"},
		{"allowed charge field", "due_date", ChargeSortFields, "created_at", "due_date"},
		{"uppercase is normalized", "TOTAL_AMOUNT", ChargeSortFields, "created_at", "total_amount"},
		{"unknown returns default", "password", ChargeSortFields, "created_at", "created_at"},
		{"payment reference", "reference_number", PaymentSortFields, "created_at", "reference_number"},
		{"expense date", "expense_date", ExpenseSortFields, "created_at", "expense_date"},
		{"transaction amount", "amount", FundTransactionSortFields, "created_at", "amount"},
		{"injection attempt rejected", "amount; DROP TABLE charges", ExpenseSortFields, "created_at", "created_at"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidateSortField(tt.field, tt.allowed, tt.def))
		})
	}
}
