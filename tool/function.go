package tool

import (
	"time"

	"github.com/flowgentic/agentloop/core"
	"github.com/flowgentic/agentloop/internal/util"
)

// Function is the signature adapted by FunctionTool.
type Function func(tctx *core.ToolContext, args map[string]any) (any, error)

// Options configure a FunctionTool.
type Options struct {
	// OutputSchema optionally documents the result shape.
	OutputSchema map[string]any

	// Idempotent marks the tool safe for retries and parallel execution.
	// Defaults to false: unknown side effects are assumed unsafe.
	Idempotent bool

	// Timeout is the per-call deadline. Zero uses the orchestrator default.
	Timeout time.Duration
}

// FunctionTool adapts a plain Go function into a Tool. Arguments are
// validated against the declared schema before the function runs.
type FunctionTool struct {
	name        string
	description string
	inputSchema map[string]any
	fn          Function
	opts        Options
}

// NewFunctionTool creates a tool from a function and an explicit input schema.
func NewFunctionTool(name, description string, inputSchema map[string]any, fn Function, optFns ...func(o *Options)) *FunctionTool {
	opts := Options{}
	for _, optFn := range optFns {
		optFn(&opts)
	}

	if inputSchema == nil {
		inputSchema = map[string]any{
			"type":       "object",
			"properties": map[string]any{},
		}
	}

	return &FunctionTool{
		name:        name,
		description: description,
		inputSchema: inputSchema,
		fn:          fn,
		opts:        opts,
	}
}

// NewFunctionToolFromStruct creates a tool whose input schema is derived from
// a struct type via reflection (json and description tags).
func NewFunctionToolFromStruct(name, description string, paramStruct any, fn Function, optFns ...func(o *Options)) *FunctionTool {
	return NewFunctionTool(name, description, util.CreateSchema(paramStruct), fn, optFns...)
}

// Name returns the unique name of the tool.
func (t *FunctionTool) Name() string { return t.name }

// Description returns a human-readable description of the tool.
func (t *FunctionTool) Description() string { return t.description }

// InputSchema returns the JSON schema for the tool's input arguments.
func (t *FunctionTool) InputSchema() map[string]any { return t.inputSchema }

// OutputSchema returns the JSON schema for the tool's result, or nil.
func (t *FunctionTool) OutputSchema() map[string]any { return t.opts.OutputSchema }

// Idempotent reports whether the tool is side-effect safe under retries.
func (t *FunctionTool) Idempotent() bool { return t.opts.Idempotent }

// Timeout returns the per-call execution deadline (zero means default).
func (t *FunctionTool) Timeout() time.Duration { return t.opts.Timeout }

// Call validates args against the input schema, then executes the wrapped
// function. Schema violations become SchemaMismatch errors naming the field;
// plain function errors are wrapped as ToolFailure, framework errors pass
// through untouched.
func (t *FunctionTool) Call(tctx *core.ToolContext, args map[string]any) (any, error) {
	start := time.Now()

	if err := util.ValidateParameters(args, t.inputSchema); err != nil {
		if verr, ok := err.(*util.ValidationError); ok {
			return nil, &core.Error{
				Kind:    core.ErrSchemaMismatch,
				Message: verr.Message,
				Field:   verr.Field,
			}
		}
		return nil, core.WrapError(core.ErrSchemaMismatch, err, "invalid arguments for tool %q", t.name)
	}

	result, err := t.fn(tctx, args)
	if err != nil {
		var ferr *core.Error
		if e, ok := err.(*core.Error); ok {
			ferr = e
		} else {
			ferr = core.WrapError(core.ErrToolFailure, err, "tool %q failed", t.name)
		}
		tctx.Logger().Error("Tool execution failed",
			"tool", t.name,
			"fc_id", tctx.CallID(),
			"duration_ms", time.Since(start).Milliseconds(),
			"error", ferr,
		)
		return nil, ferr
	}

	tctx.Logger().Debug("Tool executed",
		"tool", t.name,
		"fc_id", tctx.CallID(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return result, nil
}

var _ Tool = (*FunctionTool)(nil)
