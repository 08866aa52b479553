package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/flowgentic/agentloop/core"
	"github.com/flowgentic/agentloop/engine"
	"github.com/flowgentic/agentloop/logging"
	"github.com/flowgentic/agentloop/tool"
)

// toolExecutor runs the tool calls of one turn. All calls are validated
// before any executes. Idempotent calls fan out in parallel bounded by a
// semaphore; non-idempotent calls are serialized per tool name in request
// order. Results join back in request order.
type toolExecutor struct {
	registry       *tool.Registry
	memory         core.MemoryStore
	logger         *logging.LoopLogger
	retry          RetryPolicy
	defaultTimeout time.Duration
	maxParallel    int
}

// plannedCall is one validated call ready for execution.
type plannedCall struct {
	index int
	tool  tool.Tool
	call  engine.ToolCall
	args  map[string]any
}

// Execute validates and runs calls, returning one invocation record per call
// in request order. If validation fails nothing executes and the validation
// error is returned. After execution the first failed invocation in request
// order determines the returned error; context cancellation propagates as-is.
func (x *toolExecutor) Execute(ctx context.Context, sessionID, turnID string, calls []engine.ToolCall) ([]core.ToolInvocation, error) {
	planned := make([]plannedCall, len(calls))
	for i, call := range calls {
		args, err := decodeArguments(call.Arguments)
		if err != nil {
			return invalidInvocations(calls, i, err), err
		}
		t, err := x.registry.Validate(call.Name, args)
		if err != nil {
			return invalidInvocations(calls, i, err), err
		}
		planned[i] = plannedCall{index: i, tool: t, call: call, args: args}
	}

	results := make([]core.ToolInvocation, len(calls))

	// Non-idempotent calls to the same tool must not overlap; group them
	// into per-tool lanes preserving request order. Everything else runs in
	// its own goroutine under the shared semaphore.
	lanes := make(map[string][]plannedCall)
	var parallel []plannedCall
	for _, pc := range planned {
		if pc.tool.Idempotent() {
			parallel = append(parallel, pc)
		} else {
			lanes[pc.call.Name] = append(lanes[pc.call.Name], pc)
		}
	}

	maxParallel := x.maxParallel
	if maxParallel < 1 {
		maxParallel = 1
	}
	sem := make(chan struct{}, maxParallel)
	var wg sync.WaitGroup

	for _, lane := range lanes {
		wg.Add(1)
		go func(lane []plannedCall) {
			defer wg.Done()
			for _, pc := range lane {
				sem <- struct{}{}
				results[pc.index] = x.runOne(ctx, sessionID, turnID, pc)
				<-sem
			}
		}(lane)
	}
	for _, pc := range parallel {
		wg.Add(1)
		go func(pc plannedCall) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			results[pc.index] = x.runOne(ctx, sessionID, turnID, pc)
		}(pc)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return results, err
	}

	for _, inv := range results {
		if inv.Failed() {
			return results, core.NewError(inv.ErrorKind, "tool %q: %s", inv.Tool, inv.ErrorMessage)
		}
	}
	return results, nil
}

// runOne executes a single validated call with per-attempt timeout, bounded
// retries for retryable failures and panic containment.
func (x *toolExecutor) runOne(ctx context.Context, sessionID, turnID string, pc plannedCall) core.ToolInvocation {
	timeout := pc.tool.Timeout()
	if timeout <= 0 {
		timeout = x.defaultTimeout
	}

	start := time.Now()
	policy := x.retry
	if !pc.tool.Idempotent() {
		// A non-idempotent tool may have fired before the failure was
		// observed; a second attempt could duplicate the side effect.
		policy.MaxAttempts = 1
	}

	result, attempts, err := Retry(ctx, policy, func(ctx context.Context) (any, error) {
		return x.attempt(ctx, sessionID, turnID, pc, timeout)
	})

	inv := core.ToolInvocation{
		Tool:      pc.call.Name,
		CallID:    pc.call.ID,
		Arguments: pc.call.Arguments,
		Latency:   time.Since(start),
		Attempts:  attempts,
	}
	if err != nil {
		kind := core.KindOf(err)
		if kind == "" {
			kind = core.ErrToolFailure
		}
		inv.ErrorKind = kind
		inv.ErrorMessage = err.Error()
	} else {
		inv.Result = result
	}
	x.logger.LogToolCall(pc.call.Name, attempts, inv.Latency, err)
	return inv
}

// attempt performs one execution attempt under the per-call timeout.
func (x *toolExecutor) attempt(ctx context.Context, sessionID, turnID string, pc plannedCall, timeout time.Duration) (result any, err error) {
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			err = core.NewError(core.ErrToolFailure, "tool %q panicked: %v", pc.call.Name, r)
		}
	}()

	tctx := core.NewToolContext(callCtx, sessionID, turnID, pc.call.ID, x.memory, x.logger)
	result, err = pc.tool.Call(tctx, pc.args)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			return nil, core.WrapError(core.ErrToolTimeout, err, "tool %q exceeded timeout %s", pc.call.Name, timeout)
		}
		return nil, err
	}
	if errors.Is(callCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
		return nil, core.NewError(core.ErrToolTimeout, "tool %q exceeded timeout %s", pc.call.Name, timeout)
	}
	return result, nil
}

// decodeArguments parses the engine's serialized arguments payload.
func decodeArguments(raw string) (map[string]any, error) {
	if raw == "" {
		return map[string]any{}, nil
	}
	var args map[string]any
	if err := json.Unmarshal([]byte(raw), &args); err != nil {
		return nil, core.WrapError(core.ErrSchemaMismatch, err, "tool arguments are not a JSON object")
	}
	if args == nil {
		args = map[string]any{}
	}
	return args, nil
}

// invalidInvocations records a validation failure at position failed; calls
// after it carry zero attempts because nothing executed.
func invalidInvocations(calls []engine.ToolCall, failed int, err error) []core.ToolInvocation {
	invs := make([]core.ToolInvocation, len(calls))
	for i, call := range calls {
		invs[i] = core.ToolInvocation{
			Tool:      call.Name,
			CallID:    call.ID,
			Arguments: call.Arguments,
		}
	}
	kind := core.KindOf(err)
	if kind == "" {
		kind = core.ErrSchemaMismatch
	}
	invs[failed].ErrorKind = kind
	invs[failed].ErrorMessage = err.Error()
	return invs
}
