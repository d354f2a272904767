package lsp

import (
	"errors"
	"fmt"
)

var (
	// ErrShutdown indicates the transport or proxy has been shut down.
	ErrShutdown = errors.New("lsp: shut down")

	// ErrNotRunning indicates a request made while the server is not running.
	ErrNotRunning = errors.New("lsp: server not running")

	// ErrNoCommand indicates a proxy configured without a server command.
	ErrNoCommand = errors.New("lsp: no server command configured")

	// ErrMissingContentLength indicates a frame without a Content-Length header.
	ErrMissingContentLength = errors.New("lsp: missing Content-Length header")
)

// RPCError represents a JSON-RPC error from the server.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// Error implements the error interface.
func (e *RPCError) Error() string {
	if e.Data != nil {
		return fmt.Sprintf("rpc error %d: %s (data: %v)", e.Code, e.Message, e.Data)
	}
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// Standard JSON-RPC error codes.
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603

	CodeServerNotInitialized = -32002
	CodeRequestCancelled     = -32800
)

// StartError records why a language server could not be started.
type StartError struct {
	Command string
	Stage   string // "spawn" or "initialize"
	Err     error
}

// Error implements the error interface.
func (e *StartError) Error() string {
	if e.Command == "" {
		return fmt.Sprintf("lsp: %s: %v", e.Stage, e.Err)
	}
	return fmt.Sprintf("lsp: %s %s: %v", e.Stage, e.Command, e.Err)
}

// Unwrap returns the underlying error.
func (e *StartError) Unwrap() error {
	return e.Err
}
