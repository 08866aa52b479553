package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionLifecycle(t *testing.T) {
	s := NewSession("s1")
	assert.Equal(t, StatusActive, s.GetStatus())
	assert.False(t, s.GetStatus().Terminal())

	require.NoError(t, s.SetStatus(StatusCompleted))
	assert.Equal(t, StatusCompleted, s.GetStatus())
	assert.True(t, s.GetStatus().Terminal())
}

func TestSessionTerminalStatusIsImmutable(t *testing.T) {
	s := NewSession("s1")
	require.NoError(t, s.SetStatus(StatusFailed))

	assert.Error(t, s.SetStatus(StatusCompleted))
	assert.Error(t, s.SetStatus(StatusActive))
	assert.Equal(t, StatusFailed, s.GetStatus())
}

func TestSessionForwardOnlyTransitions(t *testing.T) {
	s := NewSession("s1")
	assert.Error(t, s.SetStatus(StatusActive), "re-activating an active session is rejected")

	require.NoError(t, s.SetStatus(StatusCompleted))
	assert.Error(t, s.SetStatus(StatusActive))
}

func TestSessionAppendTurn(t *testing.T) {
	s := NewSession("s1")

	require.NoError(t, s.AppendTurn(Turn{ID: "t1", Decision: "tool_calls"}))
	require.NoError(t, s.AppendTurn(Turn{ID: "t2", Decision: "final"}))

	turns := s.GetTurns()
	require.Len(t, turns, 2)
	assert.Equal(t, 0, turns[0].Index)
	assert.Equal(t, 1, turns[1].Index)
	assert.False(t, turns[0].Committed.IsZero())
}

func TestSessionAppendTurnAfterTerminal(t *testing.T) {
	s := NewSession("s1")
	require.NoError(t, s.SetStatus(StatusCompleted))

	assert.Error(t, s.AppendTurn(Turn{ID: "t1"}))
	assert.Equal(t, 0, s.TurnCount())
}

func TestSessionClone(t *testing.T) {
	s := NewSession("s1")
	require.NoError(t, s.AppendTurn(Turn{ID: "t1", Decision: "final", Answer: "42"}))

	clone := s.Clone()
	require.NoError(t, clone.SetStatus(StatusFailed))
	require.NoError(t, s.AppendTurn(Turn{ID: "t2"}))

	assert.Equal(t, StatusActive, s.GetStatus())
	assert.Equal(t, 1, clone.TurnCount())
	assert.Equal(t, 2, s.TurnCount())
}

func TestToolInvocationFailed(t *testing.T) {
	assert.False(t, ToolInvocation{Tool: "add", Result: 42}.Failed())
	assert.True(t, ToolInvocation{Tool: "add", ErrorKind: ErrToolTimeout}.Failed())
}
