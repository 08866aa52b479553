package engine

import (
	"context"

	"github.com/flowgentic/agentloop/core"
)

// ToolDefinition declaratively exposes a callable tool to the engine.
// Parameters is a JSON Schema object (minimal subset).
type ToolDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// ToolCall is an engine-requested tool invocation. Arguments is the
// serialized JSON payload validated downstream against the tool's schema.
type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments,omitempty"`
}

// Request captures the serialized context sent to the engine each turn: the
// system instructions, the bounded memory window in ordering-index order and
// the tools currently available.
type Request struct {
	Instructions string             `json:"instructions,omitempty"`
	Window       []core.MemoryEntry `json:"window"`
	Tools        []ToolDefinition   `json:"tools,omitempty"`
}

// Decision is the closed variant returned by an engine. Concrete decisions
// implement the unexported isDecision marker enabling exhaustive switches.
type Decision interface{ isDecision() }

// FinalAnswer terminates the session successfully with the answer text.
type FinalAnswer struct {
	Text string `json:"text"`
}

// isDecision implements the Decision interface for FinalAnswer.
func (FinalAnswer) isDecision() {}

// ToolRequests asks the orchestrator to execute one or more tool calls and
// fold their results into the next reasoning call.
type ToolRequests struct {
	Calls []ToolCall `json:"calls"`
}

// isDecision implements the Decision interface for ToolRequests.
func (ToolRequests) isDecision() {}

// NeedsInput suspends the session until the caller supplies more input.
type NeedsInput struct {
	Prompt string `json:"prompt,omitempty"`
}

// isDecision implements the Decision interface for NeedsInput.
func (NeedsInput) isDecision() {}

// Info contains metadata about an engine implementation.
type Info struct {
	Name          string `json:"name"`
	Provider      string `json:"provider"` // "openai", "anthropic", "scripted", ...
	SupportsTools bool   `json:"supports_tools"`
}

// Engine is the boundary interface isolating the orchestrator from any
// specific reasoning backend. Decide blocks until a decision is available or
// ctx is cancelled. Failures carry core.ErrEngineUnavailable (retryable) or
// core.ErrEngineRejected (terminal).
type Engine interface {
	Decide(ctx context.Context, req Request) (Decision, error)

	// Info returns information about the engine implementation.
	Info() Info
}
