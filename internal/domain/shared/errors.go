package shared

import "fmt"

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// NewValidationError creates a domain error for invalid input
func NewValidationError(message string) *DomainError {
	return NewDomainError("VALIDATION_ERROR", message)
}

// Common domain errors
var (
	ErrNotFound            = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists       = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput        = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrConcurrencyConflict = NewDomainError("CONCURRENCY_CONFLICT", "Resource was modified by another process")
	ErrUnauthorized        = NewDomainError("UNAUTHORIZED", "Not authorized to perform this action")
	ErrForbidden           = NewDomainError("FORBIDDEN", "Access to this resource is forbidden")
	ErrInvalidState        = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
)

// InvalidStateTransitionError is returned when a lifecycle operation is
// invoked on an aggregate whose current state does not allow it. It carries
// both the state and the attempted operation so callers can report exactly
// what was rejected instead of a generic conflict.
type InvalidStateTransitionError struct {
	CurrentState string `json:"current_state"`
	Operation    string `json:"operation"`
}

// Error implements the error interface
func (e *InvalidStateTransitionError) Error() string {
	return fmt.Sprintf("operation %q is not allowed in state %q", e.Operation, e.CurrentState)
}

// NewInvalidStateTransitionError creates a new state transition error
func NewInvalidStateTransitionError(currentState, operation string) *InvalidStateTransitionError {
	return &InvalidStateTransitionError{
		CurrentState: currentState,
		Operation:    operation,
	}
}
