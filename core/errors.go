package core

import (
	"errors"
	"fmt"
)

// ErrorKind categorizes every failure the orchestration loop can surface.
// Kinds split into retryable (transient, retried locally with backoff) and
// terminal (transition the session to Failed immediately).
type ErrorKind string

const (
	// ErrUnknownTool indicates a tool call referenced a name absent from the registry.
	ErrUnknownTool ErrorKind = "UnknownTool"
	// ErrSchemaMismatch indicates tool arguments violated the declared input schema.
	ErrSchemaMismatch ErrorKind = "SchemaMismatch"
	// ErrToolTimeout indicates a tool invocation exceeded its timeout (retryable).
	ErrToolTimeout ErrorKind = "ToolTimeout"
	// ErrToolFailure indicates a tool returned a non-transient error.
	ErrToolFailure ErrorKind = "ToolFailure"
	// ErrEngineUnavailable indicates a transient reasoning engine failure (retryable).
	ErrEngineUnavailable ErrorKind = "EngineUnavailable"
	// ErrEngineRejected indicates the reasoning engine rejected the request (e.g. malformed prompt).
	ErrEngineRejected ErrorKind = "EngineRejected"
	// ErrBudgetExceeded indicates the session exhausted its turn budget.
	ErrBudgetExceeded ErrorKind = "BudgetExceeded"
	// ErrSessionNotFound indicates the referenced session does not exist.
	ErrSessionNotFound ErrorKind = "SessionNotFound"
)

// Error is the framework error type carrying a taxonomy Kind, an optional
// violated Field (SchemaMismatch) and an optional wrapped Cause.
type Error struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
	Field   string    `json:"field,omitempty"`
	Cause   error     `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	switch {
	case e.Field != "":
		return fmt.Sprintf("%s: %s (field %q)", e.Kind, e.Message, e.Field)
	case e.Cause != nil:
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	default:
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
}

// Unwrap exposes the wrapped cause for errors.Is / errors.As chains.
func (e *Error) Unwrap() error { return e.Cause }

// NewError constructs an Error of the given kind with a formatted message.
func NewError(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WrapError constructs an Error of the given kind wrapping cause.
func WrapError(kind ErrorKind, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// KindOf extracts the ErrorKind from err, unwrapping as needed. Returns the
// empty kind for nil and for errors outside the taxonomy.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsRetryable reports whether err is safe to retry. Only transient kinds
// (ToolTimeout, EngineUnavailable) qualify; errors outside the taxonomy are
// never retried.
func IsRetryable(err error) bool {
	switch KindOf(err) {
	case ErrToolTimeout, ErrEngineUnavailable:
		return true
	default:
		return false
	}
}
