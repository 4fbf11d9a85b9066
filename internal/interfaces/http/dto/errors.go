package dto

import (
	"net/http"
	"strings"
)

// General error codes
const (
	ErrCodeUnknown      = "INTERNAL_ERROR"
	ErrCodeBadRequest   = "BAD_REQUEST"
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeForbidden    = "FORBIDDEN"
	ErrCodeNotFound     = "NOT_FOUND"
	ErrCodeValidation   = "VALIDATION_ERROR"
)

// ErrorCodeHTTPStatus maps domain error codes to HTTP status codes.
// Codes not listed fall through to the prefix rules in GetHTTPStatus.
var ErrorCodeHTTPStatus = map[string]int{
	// Input and validation -> 400
	ErrCodeBadRequest: http.StatusBadRequest,
	ErrCodeValidation: http.StatusBadRequest,

	// Auth
	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,
	"TOKEN_EXPIRED":     http.StatusUnauthorized,
	"INVALID_TOKEN":     http.StatusUnauthorized,

	// Missing resources -> 404
	ErrCodeNotFound:      http.StatusNotFound,
	"CHARGE_NOT_FOUND":   http.StatusNotFound,
	"PAYMENT_NOT_FOUND":  http.StatusNotFound,
	"EXPENSE_NOT_FOUND":  http.StatusNotFound,
	"FUND_NOT_FOUND":     http.StatusNotFound,
	"UNIT_NOT_FOUND":     http.StatusNotFound,
	"BUILDING_NOT_FOUND": http.StatusNotFound,

	// Races and duplicates -> 409
	"ALREADY_EXISTS":        http.StatusConflict,
	"ALREADY_PROCESSED":     http.StatusConflict,
	"DUPLICATE_REFERENCE":   http.StatusConflict,
	"DUPLICATE_UNIT":        http.StatusConflict,
	"OPTIMISTIC_LOCK_ERROR": http.StatusConflict,
	"CONCURRENCY_CONFLICT":  http.StatusConflict,

	// Business rules -> 422
	"ALREADY_PAID":              http.StatusUnprocessableEntity,
	"AMOUNT_EXCEEDS_REMAINING":  http.StatusUnprocessableEntity,
	"DISTRIBUTION_IMPOSSIBLE":   http.StatusUnprocessableEntity,
	"HAS_PAYMENTS":              http.StatusUnprocessableEntity,
	"INSUFFICIENT_FUND_BALANCE": http.StatusUnprocessableEntity,
	"INVALID_STATUS_TRANSITION": http.StatusUnprocessableEntity,
	"INVALID_STATE":             http.StatusUnprocessableEntity,
	"NOT_OVERDUE":               http.StatusUnprocessableEntity,
	"UNIT_NOT_ASSESSED":         http.StatusUnprocessableEntity,
}

// GetHTTPStatus returns the HTTP status code for a domain error code.
// INVALID_* codes map to 400; anything unknown is a 500.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	if strings.HasPrefix(code, "INVALID_") {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
