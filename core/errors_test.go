package core

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorMessage(t *testing.T) {
	t.Run("plain", func(t *testing.T) {
		err := NewError(ErrUnknownTool, "tool %q is not registered", "lookup")
		assert.Equal(t, `UnknownTool: tool "lookup" is not registered`, err.Error())
	})

	t.Run("with field", func(t *testing.T) {
		err := &Error{Kind: ErrSchemaMismatch, Message: "required field is missing", Field: "location"}
		assert.Contains(t, err.Error(), `field "location"`)
	})

	t.Run("with cause", func(t *testing.T) {
		cause := errors.New("connection refused")
		err := WrapError(ErrEngineUnavailable, cause, "engine call failed")
		assert.Contains(t, err.Error(), "connection refused")
	})
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("boom")
	err := WrapError(ErrToolFailure, cause, "tool failed")

	assert.ErrorIs(t, err, cause)

	var fe *Error
	require.True(t, errors.As(fmt.Errorf("outer: %w", err), &fe))
	assert.Equal(t, ErrToolFailure, fe.Kind)
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, ErrBudgetExceeded, KindOf(NewError(ErrBudgetExceeded, "out of turns")))
	assert.Equal(t, ErrorKind(""), KindOf(errors.New("plain error")))
	assert.Equal(t, ErrorKind(""), KindOf(nil))

	wrapped := fmt.Errorf("context: %w", NewError(ErrToolTimeout, "deadline"))
	assert.Equal(t, ErrToolTimeout, KindOf(wrapped))
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(NewError(ErrToolTimeout, "deadline")))
	assert.True(t, IsRetryable(NewError(ErrEngineUnavailable, "503")))

	assert.False(t, IsRetryable(NewError(ErrUnknownTool, "missing")))
	assert.False(t, IsRetryable(NewError(ErrSchemaMismatch, "bad args")))
	assert.False(t, IsRetryable(NewError(ErrToolFailure, "broke")))
	assert.False(t, IsRetryable(NewError(ErrEngineRejected, "bad prompt")))
	assert.False(t, IsRetryable(NewError(ErrBudgetExceeded, "out of turns")))
	assert.False(t, IsRetryable(errors.New("outside the taxonomy")))
	assert.False(t, IsRetryable(nil))
}
