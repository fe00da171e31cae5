package errkit

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatForUser_BasicError(t *testing.T) {
	err := New(ErrCodeNotFound, "document 'config.yaml' not found", nil)

	result := FormatForUser(err)

	assert.Contains(t, result, "document 'config.yaml' not found")
	assert.Contains(t, result, "[ERR_202_NOT_FOUND]")
}

func TestFormatForUser_WithDetails(t *testing.T) {
	err := EmbeddingUnavailable("embedding provider unreachable", nil).
		WithDetail("provider", "openai")

	result := FormatForUser(err)

	assert.Contains(t, result, "embedding provider unreachable")
	assert.Contains(t, result, "ERR_301_EMBEDDING_UNAVAILABLE")
}

func TestFormatForUser_StandardError(t *testing.T) {
	err := errors.New("something went wrong")

	result := FormatForUser(err)

	assert.Contains(t, result, "something went wrong")
}

func TestFormatForUser_NilError(t *testing.T) {
	result := FormatForUser(nil)

	assert.Empty(t, result)
}

func TestFormatJSON_BasicError(t *testing.T) {
	err := New(ErrCodeNotFound, "document not found", nil).
		WithDetail("path", "/foo/bar.txt")

	data, jsonErr := FormatJSON(err)

	require.NoError(t, jsonErr)

	var result map[string]any
	require.NoError(t, json.Unmarshal(data, &result))

	assert.Equal(t, ErrCodeNotFound, result["code"])
	assert.Equal(t, "document not found", result["message"])
	assert.Equal(t, string(CategoryStorage), result["category"])
	assert.Equal(t, string(SeverityError), result["severity"])

	details, ok := result["details"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "/foo/bar.txt", details["path"])
}

func TestFormatJSON_StandardError(t *testing.T) {
	err := errors.New("generic error")

	data, jsonErr := FormatJSON(err)

	require.NoError(t, jsonErr)

	var result map[string]any
	require.NoError(t, json.Unmarshal(data, &result))

	assert.Equal(t, ErrCodeInternal, result["code"])
	assert.Equal(t, "generic error", result["message"])
}

func TestFormatJSON_NilError(t *testing.T) {
	data, err := FormatJSON(nil)

	assert.NoError(t, err)
	assert.Equal(t, "null", strings.TrimSpace(string(data)))
}

func TestFormatJSON_WithCause(t *testing.T) {
	cause := errors.New("underlying error")
	err := New(ErrCodeInternal, "operation failed", cause)

	data, jsonErr := FormatJSON(err)

	require.NoError(t, jsonErr)

	var result map[string]any
	require.NoError(t, json.Unmarshal(data, &result))

	assert.Equal(t, "underlying error", result["cause"])
}

func TestFormatForCLI_ShowsCodeAndMessage(t *testing.T) {
	err := IndexCorruption("hnsw.bin / metadata.json mismatch", nil)

	result := FormatForCLI(err)

	assert.Contains(t, result, "hnsw.bin / metadata.json mismatch")
	assert.Contains(t, result, "ERR_201_INDEX_CORRUPTION")
}

func TestFormatForCLI_ShortFormat(t *testing.T) {
	err := New(ErrCodeNotFound, "document not found", nil)

	result := FormatForCLI(err)

	lines := strings.Split(strings.TrimSpace(result), "\n")
	assert.LessOrEqual(t, len(lines), 5, "should be concise")
}

func TestFormatForLog_ReturnsStructuredFields(t *testing.T) {
	err := CapacityExhausted(999_998, 1_000_000)

	fields := FormatForLog(err)

	assert.Equal(t, ErrCodeCapacityExhausted, fields["error_code"])
	assert.Equal(t, string(CategoryCapacity), fields["category"])
	assert.Equal(t, false, fields["retryable"])
	assert.Equal(t, "999998", fields["detail_current"])
}

func TestFormatForLog_StandardError(t *testing.T) {
	err := errors.New("plain error")

	fields := FormatForLog(err)

	assert.Equal(t, "plain error", fields["error"])
}

func TestFormatForLog_NilError(t *testing.T) {
	assert.Nil(t, FormatForLog(nil))
}
