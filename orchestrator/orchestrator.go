package orchestrator

import (
	"context"
	"fmt"
	"iter"
	"sync"
	"time"

	"github.com/flowgentic/agentloop/core"
	"github.com/flowgentic/agentloop/engine"
	"github.com/flowgentic/agentloop/logging"
	"github.com/flowgentic/agentloop/memory"
	"github.com/flowgentic/agentloop/session"
	"github.com/flowgentic/agentloop/tool"
)

// Config tunes the orchestration loop.
type Config struct {
	// MaxTurns bounds the number of turns a session may consume before it
	// fails with BudgetExceeded.
	MaxTurns int

	// Instructions is the system prompt sent with every reasoning request.
	Instructions string

	// EngineRetry bounds retries of transient engine failures.
	EngineRetry RetryPolicy

	// ToolRetry bounds retries of retryable tool failures (idempotent tools only).
	ToolRetry RetryPolicy

	// DefaultToolTimeout applies to tools that declare no timeout of their own.
	DefaultToolTimeout time.Duration

	// MaxParallelTools bounds concurrent tool executions within a turn.
	MaxParallelTools int

	// Window bounds the memory snapshot sent to the engine each turn.
	Window core.Window
}

// DefaultConfig returns the baseline loop configuration.
func DefaultConfig() Config {
	return Config{
		MaxTurns:           10,
		EngineRetry:        DefaultRetryPolicy(),
		ToolRetry:          DefaultRetryPolicy(),
		DefaultToolTimeout: 30 * time.Second,
		MaxParallelTools:   4,
		Window:             core.Window{LastN: 50},
	}
}

// Options configure an Orchestrator beyond its engine.
type Options struct {
	Config       Config
	SessionStore core.SessionStore
	MemoryStore  core.MemoryStore
	Registry     *tool.Registry
	Logger       *logging.LoopLogger
}

// Orchestrator drives agent sessions against a reasoning engine and a tool
// registry. It owns the session lifecycle, the memory commit points and the
// per-session cancellation handles. Safe for concurrent use across sessions;
// at most one run may be active per session at a time.
type Orchestrator struct {
	engine   engine.Engine
	cfg      Config
	sessions core.SessionStore
	memory   core.MemoryStore
	registry *tool.Registry
	logger   *logging.LoopLogger

	mu   sync.Mutex
	runs map[string]context.CancelFunc
}

// New creates an orchestrator for the given engine. Defaults: in-memory
// session and memory stores, an empty registry and a JSON logger.
func New(eng engine.Engine, optFns ...func(o *Options)) *Orchestrator {
	opts := Options{Config: DefaultConfig()}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.SessionStore == nil {
		opts.SessionStore = session.NewInMemoryStore()
	}
	if opts.MemoryStore == nil {
		opts.MemoryStore = memory.NewInMemoryStore()
	}
	if opts.Registry == nil {
		opts.Registry = tool.NewRegistry()
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewLoopLogger(nil)
	}

	return &Orchestrator{
		engine:   eng,
		cfg:      opts.Config,
		sessions: opts.SessionStore,
		memory:   opts.MemoryStore,
		registry: opts.Registry,
		logger:   opts.Logger,
	}
}

// RegisterTool adds a tool to the orchestrator's registry.
func (o *Orchestrator) RegisterTool(t tool.Tool) error {
	return o.registry.Register(t)
}

// StartSession creates a new session and runs the loop with the given input.
// It returns the new session's id together with the run outcome.
func (o *Orchestrator) StartSession(ctx context.Context, input string) (string, *TurnResult, error) {
	id := core.NewID()
	if _, err := o.sessions.Create(id); err != nil {
		return "", nil, err
	}
	result, err := o.run(ctx, id, input)
	return id, result, err
}

// ContinueSession resumes an active session with additional input (typically
// after a needs-input suspension or a cancelled run). Terminal sessions
// reject further input.
func (o *Orchestrator) ContinueSession(ctx context.Context, sessionID, input string) (*TurnResult, error) {
	sess, err := o.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}
	if status := sess.GetStatus(); status.Terminal() {
		return nil, fmt.Errorf("session %s is %s; cannot continue", sessionID, status)
	}
	return o.run(ctx, sessionID, input)
}

// GetStatus returns the session's lifecycle status.
func (o *Orchestrator) GetStatus(sessionID string) (core.Status, error) {
	sess, err := o.sessions.Get(sessionID)
	if err != nil {
		return "", err
	}
	return sess.GetStatus(), nil
}

// GetSession returns a deep clone of the session including turn history.
func (o *Orchestrator) GetSession(sessionID string) (*core.Session, error) {
	return o.sessions.Get(sessionID)
}

// CancelSession aborts the session's active run, if any. Uncommitted work is
// discarded; the session remains active and may be resumed with
// ContinueSession. Cancelling a session with no active run is a no-op.
func (o *Orchestrator) CancelSession(sessionID string) error {
	if _, err := o.sessions.Get(sessionID); err != nil {
		return err
	}

	o.mu.Lock()
	cancel, running := o.runs[sessionID]
	o.mu.Unlock()

	if running {
		cancel()
	}
	return nil
}

// QueryMemory reads the session's memory through the given window.
func (o *Orchestrator) QueryMemory(sessionID string, w core.Window) (iter.Seq[core.MemoryEntry], error) {
	return o.memory.Query(sessionID, w)
}

// Memory returns the underlying memory store.
func (o *Orchestrator) Memory() core.MemoryStore { return o.memory }

// Registry returns the tool registry.
func (o *Orchestrator) Registry() *tool.Registry { return o.registry }

// run executes the loop for one session, registering a cancellation handle
// for the duration. A second concurrent run on the same session is rejected.
func (o *Orchestrator) run(ctx context.Context, sessionID, input string) (*TurnResult, error) {
	runCtx, cancel, err := o.beginRun(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	defer o.endRun(sessionID, cancel)

	return o.runLoop(runCtx, sessionID, input, "user")
}

func (o *Orchestrator) beginRun(ctx context.Context, sessionID string) (context.Context, context.CancelFunc, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.runs == nil {
		o.runs = make(map[string]context.CancelFunc)
	}
	if _, active := o.runs[sessionID]; active {
		return nil, nil, fmt.Errorf("session %s already has an active run", sessionID)
	}
	runCtx, cancel := context.WithCancel(ctx)
	o.runs[sessionID] = cancel
	return runCtx, cancel, nil
}

func (o *Orchestrator) endRun(sessionID string, cancel context.CancelFunc) {
	cancel()
	o.mu.Lock()
	delete(o.runs, sessionID)
	o.mu.Unlock()
}
