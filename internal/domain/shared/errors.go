package shared

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Error codes shared by the ledger, archive and sequence components
const (
	CodeNotFound               = "NOT_FOUND"
	CodeValidation             = "VALIDATION_ERROR"
	CodeInvalidAmount          = "INVALID_AMOUNT"
	CodeAmountExceedsBalance   = "AMOUNT_EXCEEDS_BALANCE"
	CodeCreditLimitExceeded    = "CREDIT_LIMIT_EXCEEDED"
	CodeInvalidStateTransition = "INVALID_STATE_TRANSITION"
	CodeIDConflict             = "ID_CONFLICT"
	CodeAlreadyRestored        = "ALREADY_RESTORED"
	CodeInvariantViolation     = "INVARIANT_VIOLATION"
	CodeDuplicateRequest       = "DUPLICATE_REQUEST"
)

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Is reports whether target is a DomainError carrying the same code, so
// errors.Is(err, ErrNotFound) matches any not-found error regardless of message.
func (e *DomainError) Is(target error) bool {
	var t *DomainError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound            = NewDomainError(CodeNotFound, "Resource not found")
	ErrAlreadyExists       = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput        = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrConcurrencyConflict = NewDomainError("CONCURRENCY_CONFLICT", "Resource was modified by another process")
	ErrInvalidState        = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
	ErrInsufficientStock   = NewDomainError("INSUFFICIENT_STOCK", "Insufficient stock available")
	ErrAlreadyRestored     = NewDomainError(CodeAlreadyRestored, "Snapshot has already been restored")
	ErrDuplicateRequest    = NewDomainError(CodeDuplicateRequest, "Request with this idempotency key was already processed")
)

// NewNotFoundError creates a not-found error naming the missing resource
func NewNotFoundError(resource string) *DomainError {
	return NewDomainError(CodeNotFound, fmt.Sprintf("%s not found", resource))
}

// NewValidationError creates a validation error for malformed input
func NewValidationError(message string) *DomainError {
	return NewDomainError(CodeValidation, message)
}

// NewInvalidStateTransition reports a forbidden status change
func NewInvalidStateTransition(entity, from, to string) *DomainError {
	return NewDomainError(CodeInvalidStateTransition,
		fmt.Sprintf("Cannot transition %s from %s to %s", entity, from, to))
}

// CreditLimitExceededError is returned when a limit-checked charge would push
// the outstanding balance above the credit limit.
type CreditLimitExceededError struct {
	DomainError
	Limit     decimal.Decimal `json:"limit"`
	Current   decimal.Decimal `json:"current"`
	Attempted decimal.Decimal `json:"attempted"`
}

// NewCreditLimitExceededError creates a CreditLimitExceededError
func NewCreditLimitExceededError(limit, current, attempted decimal.Decimal) *CreditLimitExceededError {
	return &CreditLimitExceededError{
		DomainError: DomainError{
			Code: CodeCreditLimitExceeded,
			Message: fmt.Sprintf("Credit limit exceeded: limit %s, outstanding %s, attempted %s",
				limit.StringFixed(2), current.StringFixed(2), attempted.StringFixed(2)),
		},
		Limit:     limit,
		Current:   current,
		Attempted: attempted,
	}
}

// Unwrap exposes the embedded DomainError to errors.As
func (e *CreditLimitExceededError) Unwrap() error { return &e.DomainError }

// Details returns the structured fields for client display
func (e *CreditLimitExceededError) Details() map[string]any {
	return map[string]any{
		"limit":     e.Limit.StringFixed(2),
		"current":   e.Current.StringFixed(2),
		"attempted": e.Attempted.StringFixed(2),
	}
}

// IDConflictError is returned when a restore target id is already live
type IDConflictError struct {
	DomainError
	OriginalID uuid.UUID `json:"original_id"`
}

// NewIDConflictError creates an IDConflictError
func NewIDConflictError(entity string, originalID uuid.UUID) *IDConflictError {
	return &IDConflictError{
		DomainError: DomainError{
			Code:    CodeIDConflict,
			Message: fmt.Sprintf("Cannot restore %s: a live record with id %s already exists", entity, originalID),
		},
		OriginalID: originalID,
	}
}

// Unwrap exposes the embedded DomainError to errors.As
func (e *IDConflictError) Unwrap() error { return &e.DomainError }

// Details returns the structured fields for client display
func (e *IDConflictError) Details() map[string]any {
	return map[string]any{"original_id": e.OriginalID.String()}
}

// InvariantViolationError signals logic drift: a well-formed operation would
// have broken a ledger invariant. It is never clamped away.
type InvariantViolationError struct {
	DomainError
	Invariant string `json:"invariant"`
}

// NewInvariantViolationError creates an InvariantViolationError
func NewInvariantViolationError(invariant, message string) *InvariantViolationError {
	return &InvariantViolationError{
		DomainError: DomainError{Code: CodeInvariantViolation, Message: message},
		Invariant:   invariant,
	}
}

// Unwrap exposes the embedded DomainError to errors.As
func (e *InvariantViolationError) Unwrap() error { return &e.DomainError }

// HasCode reports whether err carries a DomainError with the given code
func HasCode(err error, code string) bool {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}
