package mcpserver

import (
	"context"
	"errors"
	"fmt"

	"github.com/ragkb/ragkb/internal/errkit"
)

// Standard JSON-RPC error codes, plus a private range for domain errors.
const (
	ErrCodeInvalidParams = -32602
	ErrCodeInternalError = -32603
	ErrCodeMethodNotFound = -32601

	ErrCodeKBNotFound       = -32001
	ErrCodeUnsupportedFormat = -32002
	ErrCodeEmbeddingUnavailable = -32003
	ErrCodeTimeout          = -32004
	ErrCodeCapacityExhausted = -32005
)

var ErrToolNotFound = errors.New("tool not found")

// MCPError is the JSON-RPC error shape returned for a failed tool call.
type MCPError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *MCPError) Error() string { return fmt.Sprintf("mcp error %d: %s", e.Code, e.Message) }

// MapError converts an internal error into the MCP error shape, preferring
// the RAGError code when present (errkit.codes.go §7 error kinds).
func MapError(err error) *MCPError {
	if err == nil {
		return nil
	}

	var ragErr *errkit.RAGError
	if errors.As(err, &ragErr) {
		return mapRAGError(ragErr)
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return &MCPError{Code: ErrCodeTimeout, Message: "request timed out"}
	case errors.Is(err, context.Canceled):
		return &MCPError{Code: ErrCodeTimeout, Message: "request was canceled"}
	case errors.Is(err, ErrToolNotFound):
		return &MCPError{Code: ErrCodeMethodNotFound, Message: err.Error()}
	default:
		return &MCPError{Code: ErrCodeInternalError, Message: err.Error()}
	}
}

func mapRAGError(e *errkit.RAGError) *MCPError {
	switch e.Code {
	case errkit.ErrCodeNotFound:
		return &MCPError{Code: ErrCodeKBNotFound, Message: e.Message}
	case errkit.ErrCodeUnsupportedFormat:
		return &MCPError{Code: ErrCodeUnsupportedFormat, Message: e.Message}
	case errkit.ErrCodeEmbeddingUnavailable, errkit.ErrCodeLLMUnavailable:
		return &MCPError{Code: ErrCodeEmbeddingUnavailable, Message: e.Message}
	case errkit.ErrCodeTimeout:
		return &MCPError{Code: ErrCodeTimeout, Message: e.Message}
	case errkit.ErrCodeCapacityExhausted:
		return &MCPError{Code: ErrCodeCapacityExhausted, Message: e.Message}
	default:
		return &MCPError{Code: ErrCodeInternalError, Message: e.Message}
	}
}

// NewInvalidParamsError builds an invalid-params MCPError with a custom message.
func NewInvalidParamsError(msg string) *MCPError {
	return &MCPError{Code: ErrCodeInvalidParams, Message: msg}
}
