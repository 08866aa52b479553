package orchestrator

import (
	"context"
	"errors"
	"time"

	"github.com/flowgentic/agentloop/core"
	"github.com/flowgentic/agentloop/engine"
	"github.com/flowgentic/agentloop/logging"
)

// TurnResult summarizes where a session stands after a run of the loop.
type TurnResult struct {
	SessionID     string         `json:"session_id"`
	Status        core.Status    `json:"status"`
	Answer        string         `json:"answer,omitempty"`
	AwaitingInput bool           `json:"awaiting_input,omitempty"`
	Prompt        string         `json:"prompt,omitempty"`
	ErrKind       core.ErrorKind `json:"error_kind,omitempty"`
	ErrMessage    string         `json:"error_message,omitempty"`
	Turns         int            `json:"turns"`
}

// runLoop drives the session until a final answer, a needs-input suspension,
// a terminal error or budget exhaustion. Cancellation aborts mid-turn without
// committing partial results; the session stays active and resumable.
func (o *Orchestrator) runLoop(ctx context.Context, sessionID, input, inputSource string) (*TurnResult, error) {
	logger := o.logger.WithComponent("orchestrator").WithSession(sessionID)
	executor := &toolExecutor{
		registry:       o.registry,
		memory:         o.memory,
		logger:         logger,
		retry:          o.cfg.ToolRetry,
		defaultTimeout: o.cfg.DefaultToolTimeout,
		maxParallel:    o.cfg.MaxParallelTools,
	}

	for {
		sess, err := o.sessions.Get(sessionID)
		if err != nil {
			return nil, err
		}
		if sess.TurnCount() >= o.cfg.MaxTurns {
			budgetErr := core.NewError(core.ErrBudgetExceeded, "session exhausted its %d-turn budget", o.cfg.MaxTurns)
			return o.failTurn(sessionID, core.Turn{
				ID:          core.NewID(),
				Input:       input,
				InputSource: inputSource,
			}, budgetErr, logger)
		}

		turnID := core.NewID()
		turn := core.Turn{ID: turnID, Input: input, InputSource: inputSource}

		if inputSource == "user" && input != "" {
			if _, err := o.memory.Append(sessionID, core.MemoryEntry{
				Key:    core.KeyInput,
				Value:  input,
				TurnID: turnID,
			}); err != nil {
				return nil, err
			}
		}

		req, err := buildRequest(o.cfg.Instructions, o.memory, sessionID, o.cfg.Window, o.registry)
		if err != nil {
			return nil, err
		}

		decision, err := o.decide(ctx, req, logger)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return o.failTurn(sessionID, turn, err, logger)
		}

		switch d := decision.(type) {
		case engine.FinalAnswer:
			if _, err := o.memory.Append(sessionID, core.MemoryEntry{
				Key:    core.KeyAnswer,
				Value:  d.Text,
				TurnID: turnID,
			}); err != nil {
				return nil, err
			}
			turn.Decision = "final"
			turn.Answer = d.Text
			if err := o.sessions.AppendTurn(sessionID, turn); err != nil {
				return nil, err
			}
			if err := o.sessions.SetStatus(sessionID, core.StatusCompleted); err != nil {
				return nil, err
			}
			logger.Info("Session completed", "turns", sess.TurnCount()+1)
			return o.result(sessionID, &TurnResult{Answer: d.Text}), nil

		case engine.NeedsInput:
			if _, err := o.memory.Append(sessionID, core.MemoryEntry{
				Key:    core.KeyPrompt,
				Value:  d.Prompt,
				TurnID: turnID,
			}); err != nil {
				return nil, err
			}
			turn.Decision = "needs_input"
			turn.Prompt = d.Prompt
			if err := o.sessions.AppendTurn(sessionID, turn); err != nil {
				return nil, err
			}
			logger.Info("Session awaiting input", "prompt", d.Prompt)
			return o.result(sessionID, &TurnResult{AwaitingInput: true, Prompt: d.Prompt}), nil

		case engine.ToolRequests:
			invocations, err := executor.Execute(ctx, sessionID, turnID, d.Calls)
			if ctx.Err() != nil {
				// Abort without committing: the turn never happened.
				return nil, ctx.Err()
			}
			turn.Decision = "tool_calls"
			turn.Invocations = invocations
			if err != nil {
				return o.failTurn(sessionID, turn, err, logger)
			}

			// Commit results to memory in request order, then start the
			// follow-up reasoning turn.
			for _, inv := range invocations {
				if _, err := o.memory.Append(sessionID, core.MemoryEntry{
					Key:    core.ToolResultKey(inv.Tool, inv.CallID),
					Value:  inv.Result,
					TurnID: turnID,
				}); err != nil {
					return nil, err
				}
			}
			if err := o.sessions.AppendTurn(sessionID, turn); err != nil {
				return nil, err
			}
			input = ""
			inputSource = "tool"

		default:
			rejected := core.NewError(core.ErrEngineRejected, "engine returned unknown decision %T", decision)
			return o.failTurn(sessionID, turn, rejected, logger)
		}
	}
}

// decide calls the engine with retry on transient failures. Errors outside
// the taxonomy are treated as transient engine unavailability.
func (o *Orchestrator) decide(ctx context.Context, req engine.Request, logger *logging.LoopLogger) (engine.Decision, error) {
	start := time.Now()
	decision, _, err := Retry(ctx, o.cfg.EngineRetry, func(ctx context.Context) (engine.Decision, error) {
		d, err := o.engine.Decide(ctx, req)
		if err != nil && core.KindOf(err) == "" && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
			err = core.WrapError(core.ErrEngineUnavailable, err, "engine call failed")
		}
		return d, err
	})
	logger.LogEngineCall(o.engine.Info().Name, time.Since(start), err)
	return decision, err
}

// failTurn records the failure in memory and the turn history, then moves the
// session to Failed. The error entry and turn are committed before the status
// transition so the history always explains the terminal state.
func (o *Orchestrator) failTurn(sessionID string, turn core.Turn, cause error, logger *logging.LoopLogger) (*TurnResult, error) {
	kind := core.KindOf(cause)
	if kind == "" {
		kind = core.ErrToolFailure
	}

	if _, err := o.memory.Append(sessionID, core.MemoryEntry{
		Key:    core.KeyError,
		Value:  cause.Error(),
		TurnID: turn.ID,
	}); err != nil {
		logger.Error("Failed to record error in memory", "error", err)
	}

	turn.Decision = "error"
	turn.ErrorKind = kind
	if err := o.sessions.AppendTurn(sessionID, turn); err != nil {
		logger.Error("Failed to commit error turn", "error", err)
	}
	if err := o.sessions.SetStatus(sessionID, core.StatusFailed); err != nil {
		logger.Error("Failed to mark session failed", "error", err)
	}

	logger.Warn("Session failed", "error_kind", string(kind), "error", cause.Error())
	return o.result(sessionID, &TurnResult{ErrKind: kind, ErrMessage: cause.Error()}), nil
}

// result fills the session-derived fields of a TurnResult.
func (o *Orchestrator) result(sessionID string, r *TurnResult) *TurnResult {
	r.SessionID = sessionID
	if sess, err := o.sessions.Get(sessionID); err == nil {
		r.Status = sess.GetStatus()
		r.Turns = sess.TurnCount()
	}
	return r
}
