// Package errors provides unified error handling for fraudguard.
// It implements structured error types with machine-readable codes and
// retryable detection, so callers can distinguish a degraded assessment
// (tolerated) from an unroutable coordinator decision (fatal to the run).
package errors
