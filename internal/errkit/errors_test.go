package errkit

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRAGError_Unwrap_PreservesOriginalError(t *testing.T) {
	originalErr := errors.New("original error")

	wrapped := New(ErrCodeNotFound, "document not found: doc1", originalErr)

	require.NotNil(t, wrapped)
	assert.Equal(t, originalErr, errors.Unwrap(wrapped))
	assert.True(t, errors.Is(wrapped, originalErr))
}

func TestRAGError_Error_ReturnsFormattedMessage(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		message  string
		expected string
	}{
		{
			name:     "ingest error",
			code:     ErrCodeUnsupportedFormat,
			message:  "unsupported document format",
			expected: "[ERR_101_UNSUPPORTED_FORMAT] unsupported document format",
		},
		{
			name:     "storage error",
			code:     ErrCodeNotFound,
			message:  "document not found",
			expected: "[ERR_202_NOT_FOUND] document not found",
		},
		{
			name:     "provider error",
			code:     ErrCodeEmbeddingUnavailable,
			message:  "embedding provider unreachable",
			expected: "[ERR_301_EMBEDDING_UNAVAILABLE] embedding provider unreachable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code, tt.message, nil)
			assert.Equal(t, tt.expected, err.Error())
		})
	}
}

func TestRAGError_Is_MatchesByCode(t *testing.T) {
	err1 := New(ErrCodeNotFound, "document A not found", nil)
	err2 := New(ErrCodeNotFound, "document B not found", nil)

	assert.True(t, errors.Is(err1, err2))
}

func TestRAGError_Is_DoesNotMatchDifferentCodes(t *testing.T) {
	err1 := New(ErrCodeNotFound, "not found", nil)
	err2 := New(ErrCodeUnsupportedFormat, "unsupported", nil)

	assert.False(t, errors.Is(err1, err2))
}

func TestRAGError_WithDetail_AddsContext(t *testing.T) {
	err := New(ErrCodeNotFound, "document not found", nil)

	err = err.WithDetail("kb_id", "kb1")
	err = err.WithDetail("document_id", "doc1")

	assert.Equal(t, "kb1", err.Details["kb_id"])
	assert.Equal(t, "doc1", err.Details["document_id"])
}

func TestRAGError_CategoryFromCode(t *testing.T) {
	tests := []struct {
		code         string
		wantCategory Category
	}{
		{ErrCodeUnsupportedFormat, CategoryIngest},
		{ErrCodeIndexCorruption, CategoryStorage},
		{ErrCodeNotFound, CategoryStorage},
		{ErrCodeEmbeddingUnavailable, CategoryProvider},
		{ErrCodeLLMUnavailable, CategoryProvider},
		{ErrCodeTimeout, CategoryProvider},
		{ErrCodeCapacityExhausted, CategoryCapacity},
		{ErrCodeInternal, CategoryInternal},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			err := New(tt.code, "test message", nil)
			assert.Equal(t, tt.wantCategory, err.Category)
		})
	}
}

func TestRAGError_SeverityFromCode(t *testing.T) {
	tests := []struct {
		code         string
		wantSeverity Severity
	}{
		{ErrCodeIndexCorruption, SeverityFatal},
		{ErrCodeNotFound, SeverityError},
		{ErrCodeEmbeddingUnavailable, SeverityWarning},
		{ErrCodeLLMUnavailable, SeverityWarning},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			err := New(tt.code, "test message", nil)
			assert.Equal(t, tt.wantSeverity, err.Severity)
		})
	}
}

func TestRAGError_RetryableFromCode(t *testing.T) {
	tests := []struct {
		code          string
		wantRetryable bool
	}{
		{ErrCodeEmbeddingUnavailable, true},
		{ErrCodeLLMUnavailable, true},
		{ErrCodeNotFound, false},
		{ErrCodeUnsupportedFormat, false},
		{ErrCodeIndexCorruption, false},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			err := New(tt.code, "test message", nil)
			assert.Equal(t, tt.wantRetryable, err.Retryable)
		})
	}
}

func TestWrap_CreatesRAGErrorFromError(t *testing.T) {
	originalErr := errors.New("something went wrong")

	wrapped := Wrap(ErrCodeInternal, originalErr)

	require.NotNil(t, wrapped)
	assert.Equal(t, ErrCodeInternal, wrapped.Code)
	assert.Equal(t, "something went wrong", wrapped.Message)
	assert.Equal(t, originalErr, wrapped.Cause)
}

func TestWrap_NilErrorReturnsNil(t *testing.T) {
	assert.Nil(t, Wrap(ErrCodeInternal, nil))
}

func TestUnsupportedFormat_SetsFilenameDetail(t *testing.T) {
	err := UnsupportedFormat("notes.docx", nil)

	assert.Equal(t, ErrCodeUnsupportedFormat, err.Code)
	assert.Equal(t, "notes.docx", err.Details["filename"])
}

func TestCapacityExhausted_SetsCountDetails(t *testing.T) {
	err := CapacityExhausted(999_998, 1_000_000)

	assert.Equal(t, ErrCodeCapacityExhausted, err.Code)
	assert.Equal(t, "999998", err.Details["current"])
	assert.Equal(t, "1000000", err.Details["max_elements"])
}

func TestNotFound_SetsResourceAndID(t *testing.T) {
	err := NotFound("document", "doc-42")

	assert.Equal(t, ErrCodeNotFound, err.Code)
	assert.Equal(t, "document", err.Details["resource"])
	assert.Equal(t, "doc-42", err.Details["id"])
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, IsNotFound(NotFound("kb", "kb1")))
	assert.False(t, IsNotFound(New(ErrCodeInternal, "boom", nil)))
	assert.False(t, IsNotFound(errors.New("standard")))
}

func TestIsRetryable_ChecksRetryableFlag(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{
			name:     "retryable RAGError",
			err:      New(ErrCodeEmbeddingUnavailable, "timeout", nil),
			expected: true,
		},
		{
			name:     "non-retryable RAGError",
			err:      New(ErrCodeNotFound, "not found", nil),
			expected: false,
		},
		{
			name:     "wrapped retryable error",
			err:      Wrap(ErrCodeLLMUnavailable, errors.New("wrapped")),
			expected: true,
		},
		{
			name:     "standard error",
			err:      errors.New("standard error"),
			expected: false,
		},
		{
			name:     "nil error",
			err:      nil,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsRetryable(tt.err))
		})
	}
}

func TestIsFatal_ChecksFatalSeverity(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{
			name:     "index corruption is fatal",
			err:      New(ErrCodeIndexCorruption, "hnsw.bin / metadata.json mismatch", nil),
			expected: true,
		},
		{
			name:     "not found is not fatal",
			err:      New(ErrCodeNotFound, "not found", nil),
			expected: false,
		},
		{
			name:     "standard error",
			err:      errors.New("standard error"),
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsFatal(tt.err))
		})
	}
}
