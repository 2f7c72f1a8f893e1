package dto

import "net/http"

// API error codes, ERR_<CATEGORY>_<DESCRIPTION>. These are the only
// codes clients ever see; domain codes are normalized into them.
const (
	ErrCodeUnknown  = "ERR_UNKNOWN"
	ErrCodeInternal = "ERR_INTERNAL"

	ErrCodeValidation         = "ERR_VALIDATION"
	ErrCodeValidationRequired = "ERR_VALIDATION_REQUIRED"
	ErrCodeValidationFormat   = "ERR_VALIDATION_FORMAT"
	ErrCodeValidationRange    = "ERR_VALIDATION_RANGE"

	ErrCodeUnauthorized = "ERR_UNAUTHORIZED"
	ErrCodeForbidden    = "ERR_FORBIDDEN"
	ErrCodeTokenExpired = "ERR_TOKEN_EXPIRED"
	ErrCodeTokenInvalid = "ERR_TOKEN_INVALID"

	ErrCodeNotFound            = "ERR_NOT_FOUND"
	ErrCodeAlreadyExists       = "ERR_ALREADY_EXISTS"
	ErrCodeConflict            = "ERR_CONFLICT"
	ErrCodeConcurrencyConflict = "ERR_CONCURRENCY_CONFLICT"
	ErrCodeDuplicateRequest    = "ERR_DUPLICATE_REQUEST"

	ErrCodeInvalidState  = "ERR_INVALID_STATE"
	ErrCodeBusinessRule  = "ERR_BUSINESS_RULE"
	ErrCodeEmptyDocument = "ERR_EMPTY_DOCUMENT"
	ErrCodeOverpayment   = "ERR_OVERPAYMENT"

	ErrCodeBadRequest   = "ERR_BAD_REQUEST"
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
	ErrCodeInvalidJSON  = "ERR_INVALID_JSON"

	ErrCodeRateLimited = "ERR_RATE_LIMITED"
)

// ErrorCodeHTTPStatus is the canonical status for each API error code.
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	ErrCodeValidation:         http.StatusBadRequest,
	ErrCodeValidationRequired: http.StatusBadRequest,
	ErrCodeValidationFormat:   http.StatusBadRequest,
	ErrCodeValidationRange:    http.StatusBadRequest,
	ErrCodeBadRequest:         http.StatusBadRequest,
	ErrCodeInvalidInput:       http.StatusBadRequest,
	ErrCodeInvalidJSON:        http.StatusBadRequest,

	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeTokenExpired: http.StatusUnauthorized,
	ErrCodeTokenInvalid: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,

	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeAlreadyExists:       http.StatusConflict,
	ErrCodeConflict:            http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,
	ErrCodeDuplicateRequest:    http.StatusConflict,

	// Business rule violations are well-formed requests the domain
	// refuses, so they map to 422.
	ErrCodeInvalidState:  http.StatusUnprocessableEntity,
	ErrCodeBusinessRule:  http.StatusUnprocessableEntity,
	ErrCodeEmptyDocument: http.StatusUnprocessableEntity,
	ErrCodeOverpayment:   http.StatusUnprocessableEntity,

	ErrCodeRateLimited: http.StatusTooManyRequests,
}

// GetHTTPStatus resolves an API error code to its status; unknown
// codes fall back to 500.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DomainErrorCodeMapping translates the short codes domain errors
// carry (NOT_FOUND, EMPTY_QUOTE) into the ERR_ vocabulary above.
var DomainErrorCodeMapping = map[string]string{
	"NOT_FOUND":            ErrCodeNotFound,
	"ALREADY_EXISTS":       ErrCodeAlreadyExists,
	"INVALID_INPUT":        ErrCodeInvalidInput,
	"INVALID_STATE":        ErrCodeInvalidState,
	"UNAUTHORIZED":         ErrCodeUnauthorized,
	"FORBIDDEN":            ErrCodeForbidden,
	"CONCURRENCY_CONFLICT": ErrCodeConcurrencyConflict,
	"VALIDATION_ERROR":     ErrCodeValidation,
	"BAD_REQUEST":          ErrCodeBadRequest,
	"INTERNAL_ERROR":       ErrCodeInternal,

	// Billing codes
	"DUPLICATE_REQUEST": ErrCodeDuplicateRequest,
	"DUPLICATE_SKU":     ErrCodeAlreadyExists,
	"EMPTY_QUOTE":       ErrCodeEmptyDocument,
	"EMPTY_INVOICE":     ErrCodeEmptyDocument,
	"OVERPAYMENT":       ErrCodeOverpayment,
	"NOT_DUE":           ErrCodeBusinessRule,
	"HAS_PAYMENTS":      ErrCodeBusinessRule,
	"ITEM_NOT_FOUND":    ErrCodeNotFound,
	"PAYMENT_NOT_FOUND": ErrCodeNotFound,
	"INVALID_ACCOUNT":   ErrCodeInvalidInput,
	"INVALID_PRODUCT":   ErrCodeInvalidInput,

	// Field-level domain validation codes
	"INVALID_NAME":           ErrCodeValidation,
	"INVALID_ACCOUNT_NAME":   ErrCodeValidation,
	"INVALID_DESCRIPTION":    ErrCodeValidation,
	"INVALID_SKU":            ErrCodeValidation,
	"INVALID_QUOTE_NUMBER":   ErrCodeValidation,
	"INVALID_INVOICE_NUMBER": ErrCodeValidation,
	"INVALID_PAYMENT_NUMBER": ErrCodeValidation,
}

// NormalizeErrorCode maps a domain code to its API equivalent; codes
// already in the API vocabulary (or unknown ones) pass through.
func NormalizeErrorCode(code string) string {
	if apiCode, ok := DomainErrorCodeMapping[code]; ok {
		return apiCode
	}
	return code
}
