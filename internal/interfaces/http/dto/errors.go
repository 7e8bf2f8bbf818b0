package dto

import (
	"net/http"

	"github.com/grocer/backoffice/internal/domain/shared"
)

// Transport-level error codes. Domain codes (shared.Code*) pass through unchanged.
const (
	ErrCodeInternal        = "INTERNAL_ERROR"
	ErrCodeBadRequest      = "BAD_REQUEST"
	ErrCodeInvalidJSON     = "INVALID_JSON"
	ErrCodeUnauthorized    = "UNAUTHORIZED"
	ErrCodeForbidden       = "FORBIDDEN"
	ErrCodeRequestTooLarge = "REQUEST_TOO_LARGE"
	ErrCodeRateLimited     = "RATE_LIMITED"
	ErrCodeRouteNotFound   = "ROUTE_NOT_FOUND"
	ErrCodeValidation      = shared.CodeValidation
)

// Codes kept for domain errors that predate the ledger taxonomy
const (
	codeAlreadyExists       = "ALREADY_EXISTS"
	codeConcurrencyConflict = "CONCURRENCY_CONFLICT"
	codeInsufficientStock   = "INSUFFICIENT_STOCK"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:               http.StatusInternalServerError,
	shared.CodeInvariantViolation: http.StatusInternalServerError,

	// Validation -> 400
	shared.CodeValidation:    http.StatusBadRequest,
	shared.CodeInvalidAmount: http.StatusBadRequest,
	ErrCodeBadRequest:        http.StatusBadRequest,
	ErrCodeInvalidJSON:       http.StatusBadRequest,

	// Auth
	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,

	// Resources
	shared.CodeNotFound:         http.StatusNotFound,
	ErrCodeRouteNotFound:        http.StatusNotFound,
	shared.CodeIDConflict:       http.StatusConflict,
	shared.CodeAlreadyRestored:  http.StatusConflict,
	shared.CodeDuplicateRequest: http.StatusConflict,
	codeAlreadyExists:           http.StatusConflict,
	codeConcurrencyConflict:     http.StatusConflict,

	// Business rules -> 422
	shared.CodeAmountExceedsBalance:   http.StatusUnprocessableEntity,
	shared.CodeCreditLimitExceeded:    http.StatusUnprocessableEntity,
	shared.CodeInvalidStateTransition: http.StatusUnprocessableEntity,
	codeInsufficientStock:             http.StatusUnprocessableEntity,

	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,
	ErrCodeRateLimited:     http.StatusTooManyRequests,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Unknown codes map to 500.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// LegacyErrorCodeMapping folds older domain codes into the ledger taxonomy
var LegacyErrorCodeMapping = map[string]string{
	"INVALID_INPUT":  shared.CodeValidation,
	"INVALID_STATE":  shared.CodeInvalidStateTransition,
	"INTERNAL":       ErrCodeInternal,
	"ERR_NOT_FOUND":  shared.CodeNotFound,
	"ERR_VALIDATION": shared.CodeValidation,
}

// NormalizeErrorCode converts a legacy error code to its current form.
// Current or unknown codes are returned as-is.
func NormalizeErrorCode(code string) string {
	if newCode, ok := LegacyErrorCodeMapping[code]; ok {
		return newCode
	}
	return code
}
