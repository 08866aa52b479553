package tool

import (
	"time"

	"github.com/flowgentic/agentloop/core"
)

// Tool is a callable capability exposed to the reasoning engine.
//
// Contract:
//   - Name returns a non-empty identifier, unique within a registry.
//   - InputSchema describes the accepted arguments as a JSON Schema object;
//     arguments are validated against it before Call runs.
//   - Idempotent reports whether the call may be retried and executed in
//     parallel with other calls. Non-idempotent tools are serialized per name
//     in request order.
//   - Timeout returns the per-call deadline, or zero to use the loop default.
//   - Call executes with validated arguments and must honor cancellation via
//     tctx.Context(). Failures should be *core.Error values; anything else is
//     wrapped as ToolFailure.
type Tool interface {
	// Name returns the unique name of the tool.
	Name() string

	// Description returns a human-readable description shown to the engine.
	Description() string

	// InputSchema returns the JSON schema for the tool's input arguments.
	InputSchema() map[string]any

	// OutputSchema returns the JSON schema for the tool's result, or nil if
	// the result shape is unconstrained.
	OutputSchema() map[string]any

	// Idempotent reports whether repeated execution with identical arguments
	// is side-effect safe.
	Idempotent() bool

	// Timeout returns the per-call execution deadline (zero means default).
	Timeout() time.Duration

	// Call executes the tool with the given arguments.
	Call(tctx *core.ToolContext, args map[string]any) (any, error)
}
