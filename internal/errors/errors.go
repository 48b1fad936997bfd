package errors

import "fmt"

// Error codes
const (
	ErrCodeNotFound     = "NOT_FOUND"
	ErrCodeValidation   = "VALIDATION_ERROR"
	ErrCodeInternal     = "INTERNAL_ERROR"
	ErrCodeBadRequest   = "BAD_REQUEST"
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeTransient    = "TRANSIENT_STORE_ERROR"
	ErrCodeInvariant    = "INVARIANT_VIOLATION"
)

// AppError represents an application error with HTTP status code and error code
type AppError struct {
	Code      string // Error code (e.g., "NOT_FOUND", "VALIDATION_ERROR")
	Message   string // Human-readable error message
	Status    int    // HTTP status code
	Retryable bool   // Whether the caller may safely resubmit
	Err       error  // Wrapped underlying error (optional)
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for error wrapping support
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewNotFoundError creates a new NOT_FOUND error
func NewNotFoundError(resource string, id interface{}) *AppError {
	return &AppError{
		Code:    ErrCodeNotFound,
		Message: fmt.Sprintf("%s not found: %v", resource, id),
		Status:  404,
	}
}

// NewValidationError creates a new VALIDATION_ERROR
func NewValidationError(field string, reason string) *AppError {
	return &AppError{
		Code:    ErrCodeValidation,
		Message: fmt.Sprintf("validation failed for %s: %s", field, reason),
		Status:  400,
	}
}

// NewInternalError creates a new INTERNAL_ERROR
func NewInternalError(err error) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: "internal server error",
		Status:  500,
		Err:     err,
	}
}

// NewBadRequestError creates a new BAD_REQUEST error
func NewBadRequestError(message string) *AppError {
	return &AppError{
		Code:    ErrCodeBadRequest,
		Message: message,
		Status:  400,
	}
}

// NewUnauthorizedError creates a new UNAUTHORIZED error
func NewUnauthorizedError(message string) *AppError {
	return &AppError{
		Code:    ErrCodeUnauthorized,
		Message: message,
		Status:  401,
	}
}

// NewTransientError wraps a backing-store failure the caller may retry.
func NewTransientError(err error) *AppError {
	return &AppError{
		Code:      ErrCodeTransient,
		Message:   "backing store unavailable, retry later",
		Status:    503,
		Retryable: true,
		Err:       err,
	}
}

// NewInvariantError reports a broken internal invariant. These should never
// occur in correct operation and are surfaced, never silently corrected.
func NewInvariantError(message string) *AppError {
	return &AppError{
		Code:    ErrCodeInvariant,
		Message: message,
		Status:  500,
	}
}

// IsRetryable reports whether err carries a retryable AppError.
func IsRetryable(err error) bool {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Retryable
	}
	return false
}
