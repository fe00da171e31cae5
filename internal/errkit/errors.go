package errkit

import (
	"fmt"
)

// RAGError is the structured error type for the engine.
// It provides rich context for error handling, logging, and the structured
// responses callers receive in place of exceptions.
type RAGError struct {
	// Code is the unique error code (e.g., "ERR_301_EMBEDDING_UNAVAILABLE").
	Code string

	// Message is the human-readable error message.
	Message string

	// Category is the error category (Ingest, Storage, Provider, ...).
	Category Category

	// Severity is the error severity level.
	Severity Severity

	// Details contains additional context as key-value pairs.
	Details map[string]string

	// Cause is the underlying error that caused this error.
	Cause error

	// Retryable indicates if the operation can be retried.
	Retryable bool
}

// Error implements the error interface.
func (e *RAGError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for error chain support.
func (e *RAGError) Unwrap() error {
	return e.Cause
}

// Is checks if this error matches the target error by code.
// This enables errors.Is() to work with RAGError.
func (e *RAGError) Is(target error) bool {
	if t, ok := target.(*RAGError); ok {
		return e.Code == t.Code
	}
	return false
}

// WithDetail adds a key-value detail to the error.
// Returns the error for method chaining.
func (e *RAGError) WithDetail(key, value string) *RAGError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// New creates a new RAGError with the given code and message.
// Category, severity, and retryable flag are derived from the code.
func New(code string, message string, cause error) *RAGError {
	return &RAGError{
		Code:      code,
		Message:   message,
		Category:  categoryFromCode(code),
		Severity:  severityFromCode(code),
		Cause:     cause,
		Retryable: isRetryableCode(code),
	}
}

// Wrap creates a RAGError from an existing error.
// The error's message becomes the RAGError message.
func Wrap(code string, err error) *RAGError {
	if err == nil {
		return nil
	}
	return New(code, err.Error(), err)
}

// UnsupportedFormat creates the ingest-time unsupported-format error.
func UnsupportedFormat(filename string, cause error) *RAGError {
	return New(ErrCodeUnsupportedFormat, fmt.Sprintf("unsupported document format: %s", filename), cause).
		WithDetail("filename", filename)
}

// EmbeddingUnavailable creates a transient embedding-provider error.
func EmbeddingUnavailable(message string, cause error) *RAGError {
	return New(ErrCodeEmbeddingUnavailable, message, cause)
}

// LLMUnavailable creates a transient LLM-provider error.
func LLMUnavailable(message string, cause error) *RAGError {
	return New(ErrCodeLLMUnavailable, message, cause)
}

// IndexCorruption creates a fatal HNSW-store load-time consistency error.
func IndexCorruption(message string, cause error) *RAGError {
	return New(ErrCodeIndexCorruption, message, cause)
}

// CapacityExhausted creates a vector-store capacity error.
func CapacityExhausted(current, max int) *RAGError {
	return New(ErrCodeCapacityExhausted, fmt.Sprintf("store is at capacity (%d/%d)", current, max), nil).
		WithDetail("current", fmt.Sprintf("%d", current)).
		WithDetail("max_elements", fmt.Sprintf("%d", max))
}

// Timeout creates a query wall-clock-budget-exceeded error.
func Timeout(message string, cause error) *RAGError {
	return New(ErrCodeTimeout, message, cause)
}

// NotFound creates a missing-resource error. Callers should translate this
// into a not-found status, never propagate it as an exception.
func NotFound(resource, id string) *RAGError {
	return New(ErrCodeNotFound, fmt.Sprintf("%s not found: %s", resource, id), nil).
		WithDetail("resource", resource).
		WithDetail("id", id)
}

// InternalError creates an unclassified internal error.
func InternalError(message string, cause error) *RAGError {
	return New(ErrCodeInternal, message, cause)
}

// IsRetryable checks if an error is retryable.
// Returns true if the error is a RAGError with Retryable flag set.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if re, ok := err.(*RAGError); ok {
		return re.Retryable
	}
	return false
}

// IsFatal checks if an error has fatal severity.
// Fatal errors should abort the current operation.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	if re, ok := err.(*RAGError); ok {
		return re.Severity == SeverityFatal
	}
	return false
}

// IsNotFound reports whether err is a RAGError with the not-found code.
func IsNotFound(err error) bool {
	if re, ok := err.(*RAGError); ok {
		return re.Code == ErrCodeNotFound
	}
	return false
}

// GetCode extracts the error code from a RAGError.
// Returns empty string if not a RAGError.
func GetCode(err error) string {
	if re, ok := err.(*RAGError); ok {
		return re.Code
	}
	return ""
}

// GetCategory extracts the category from a RAGError.
// Returns empty string if not a RAGError.
func GetCategory(err error) Category {
	if re, ok := err.(*RAGError); ok {
		return re.Category
	}
	return ""
}
