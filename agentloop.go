// Package agentloop is a framework for running tool-using agent sessions
// against pluggable reasoning engines. It pairs an orchestration loop with a
// validated tool registry, append-only session memory and a forward-only
// session lifecycle.
//
// The top-level Loop type is a thin façade over the orchestrator for the
// common case; advanced callers can assemble the pieces from the
// orchestrator, engine, tool, memory and session packages directly.
package agentloop

import (
	"context"
	"iter"

	"github.com/flowgentic/agentloop/core"
	"github.com/flowgentic/agentloop/engine"
	"github.com/flowgentic/agentloop/logging"
	"github.com/flowgentic/agentloop/orchestrator"
	"github.com/flowgentic/agentloop/tool"
)

// Options configure a Loop.
type Options struct {
	Config       orchestrator.Config
	SessionStore core.SessionStore
	MemoryStore  core.MemoryStore
	Registry     *tool.Registry
	Logger       *logging.LoopLogger
}

// Loop runs agent sessions end to end: input in, reasoning turns and tool
// calls in the middle, a final answer (or suspension, or failure) out.
type Loop struct {
	orch *orchestrator.Orchestrator
}

// New creates a Loop around the given reasoning engine.
func New(eng engine.Engine, optFns ...func(o *Options)) *Loop {
	opts := Options{Config: orchestrator.DefaultConfig()}
	for _, fn := range optFns {
		fn(&opts)
	}

	orch := orchestrator.New(eng, func(o *orchestrator.Options) {
		o.Config = opts.Config
		o.SessionStore = opts.SessionStore
		o.MemoryStore = opts.MemoryStore
		o.Registry = opts.Registry
		o.Logger = opts.Logger
	})
	return &Loop{orch: orch}
}

// RegisterTool adds a tool to the loop's registry.
func (l *Loop) RegisterTool(t tool.Tool) error {
	return l.orch.RegisterTool(t)
}

// StartSession creates a session and runs it with the given input. Returns
// the session id and the run outcome.
func (l *Loop) StartSession(ctx context.Context, input string) (string, *orchestrator.TurnResult, error) {
	return l.orch.StartSession(ctx, input)
}

// ContinueSession resumes an active session with additional input.
func (l *Loop) ContinueSession(ctx context.Context, sessionID, input string) (*orchestrator.TurnResult, error) {
	return l.orch.ContinueSession(ctx, sessionID, input)
}

// GetStatus returns the session's lifecycle status.
func (l *Loop) GetStatus(sessionID string) (core.Status, error) {
	return l.orch.GetStatus(sessionID)
}

// GetSession returns a deep clone of the session including turn history.
func (l *Loop) GetSession(sessionID string) (*core.Session, error) {
	return l.orch.GetSession(sessionID)
}

// CancelSession aborts the session's active run. The session stays active
// and may be resumed with ContinueSession.
func (l *Loop) CancelSession(sessionID string) error {
	return l.orch.CancelSession(sessionID)
}

// QueryMemory reads the session's memory through the given window.
func (l *Loop) QueryMemory(sessionID string, w core.Window) (iter.Seq[core.MemoryEntry], error) {
	return l.orch.QueryMemory(sessionID, w)
}
