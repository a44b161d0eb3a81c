package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Availability errors (retryable)
const (
	// ErrCodeServiceUnavailable indicates a capability backend is temporarily unavailable.
	ErrCodeServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
	// ErrCodeTimeout indicates a capability invocation timed out.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
)

// Screening errors
const (
	// ErrCodeExtractionFailed indicates structured data could not be recovered
	// from a capability's raw output. Never surfaced to callers; the run
	// degrades to an empty assessment instead.
	ErrCodeExtractionFailed ErrorCode = "EXTRACTION_FAILED"
	// ErrCodeUnroutableBranch indicates the coordinator emitted a label that
	// is unrecognized or unreachable in the current topology.
	ErrCodeUnroutableBranch ErrorCode = "UNROUTABLE_BRANCH"
)

// Validation errors
const (
	// ErrCodeInvalidInput indicates the input is invalid.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
)

// Internal errors
const (
	// ErrCodeInternal indicates an unexpected internal error.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
	// ErrCodeNotFound indicates a requested resource was not found.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodeServiceUnavailable: true,
	ErrCodeTimeout:            true,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
