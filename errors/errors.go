package errors

import (
	stderrors "errors"
	"fmt"
)

// AppError is the unified application error type.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Retryable indicates if the operation can be retried.
	Retryable bool `json:"retryable"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError with automatic retryable detection.
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:      code,
		Message:   message,
		Retryable: IsRetryableCode(code),
	}
}

// HasCode reports whether err carries the given error code.
func HasCode(err error, code ErrorCode) bool {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// --- Common Error Constructors ---

// ServiceUnavailable creates a new AppError for a capability that is temporarily unavailable.
func ServiceUnavailable(service string) *AppError {
	return &AppError{
		Code: ErrCodeServiceUnavailable, Message: fmt.Sprintf("The %s is temporarily unavailable.", service),
		Retryable: true,
		Details:   map[string]any{"service": service},
	}
}

// Timeout creates a new AppError for an operation that timed out.
func Timeout(operation string) *AppError {
	return &AppError{
		Code: ErrCodeTimeout, Message: "The operation took too long.",
		Retryable: true,
		Details:   map[string]any{"operation": operation},
	}
}

// UnroutableBranch creates a new AppError for a coordinator label that cannot
// be routed in the current topology.
func UnroutableBranch(label string) *AppError {
	return &AppError{
		Code: ErrCodeUnroutableBranch, Message: fmt.Sprintf("Unexpected coordinator response: %s", label),
		Retryable: false,
		Details:   map[string]any{"label": label},
	}
}

// ExtractionFailed creates a new AppError for a failed structured extraction.
func ExtractionFailed(stage string) *AppError {
	return &AppError{
		Code: ErrCodeExtractionFailed, Message: fmt.Sprintf("No structured data in %s output.", stage),
		Retryable: false,
		Details:   map[string]any{"stage": stage},
	}
}

// InvalidInput creates a new AppError for invalid input.
func InvalidInput(field, reason string) *AppError {
	details := make(map[string]any)
	if field != "" {
		details["field"] = field
	}
	return &AppError{
		Code: ErrCodeInvalidInput, Message: fmt.Sprintf("Invalid input: %s", reason),
		Retryable: false, Details: details,
	}
}

// Validation creates a new AppError for validation errors.
func Validation(message string) *AppError {
	return &AppError{
		Code: ErrCodeInvalidInput, Message: message,
		Retryable: false,
	}
}

// NotFound creates a new AppError for a resource that was not found.
func NotFound(resource, id string) *AppError {
	details := map[string]any{"resource": resource}
	if id != "" {
		details["id"] = id
	}
	return &AppError{
		Code: ErrCodeNotFound, Message: fmt.Sprintf("The requested %s was not found.", resource),
		Retryable: false, Details: details,
	}
}

// Internal creates a new AppError for an internal error.
func Internal(cause error) *AppError {
	return &AppError{
		Code: ErrCodeInternal, Message: "An unexpected error occurred.",
		Retryable: false, Cause: cause,
	}
}
