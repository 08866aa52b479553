package core

import (
	"context"
	"iter"

	"github.com/flowgentic/agentloop/logging"
)

// ToolContext provides a constrained, auditable surface for tool
// implementations invoked by the orchestration loop. It carries the
// invocation-scoped cancellation context, correlation identifiers and
// read/append access to session memory.
type ToolContext struct {
	ctx       context.Context
	sessionID string
	turnID    string
	callID    string
	memory    MemoryStore
	logger    logging.Logger
}

// NewToolContext constructs a tool context bound to one tool call within a turn.
func NewToolContext(
	ctx context.Context,
	sessionID, turnID, callID string,
	memory MemoryStore,
	logger logging.Logger,
) *ToolContext {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return &ToolContext{
		ctx:       ctx,
		sessionID: sessionID,
		turnID:    turnID,
		callID:    callID,
		memory:    memory,
		logger:    logger,
	}
}

// Context returns the cancellation context of the invocation. It carries the
// per-call timeout and the session-level cancellation signal.
func (tc *ToolContext) Context() context.Context { return tc.ctx }

// SessionID returns the owning session identifier.
func (tc *ToolContext) SessionID() string { return tc.sessionID }

// TurnID returns the identifier of the turn that requested the call.
func (tc *ToolContext) TurnID() string { return tc.turnID }

// CallID returns the identifier correlating the engine's tool request with
// this execution.
func (tc *ToolContext) CallID() string { return tc.callID }

// Logger returns the structured logger for the invocation.
func (tc *ToolContext) Logger() logging.Logger { return tc.logger }

// QueryMemory reads the session's memory through the given window. Tools may
// read memory but never write it directly; results are committed by the
// orchestrator after the call returns.
func (tc *ToolContext) QueryMemory(w Window) (iter.Seq[MemoryEntry], error) {
	if tc.memory == nil {
		return func(func(MemoryEntry) bool) {}, nil
	}
	return tc.memory.Query(tc.sessionID, w)
}
