package orchestrator

import (
	"github.com/flowgentic/agentloop/core"
	"github.com/flowgentic/agentloop/engine"
	"github.com/flowgentic/agentloop/tool"
)

// buildRequest assembles the engine request for a turn: the windowed memory
// snapshot in ordering-index order plus the current tool definitions.
func buildRequest(instructions string, memory core.MemoryStore, sessionID string, window core.Window, registry *tool.Registry) (engine.Request, error) {
	seq, err := memory.Query(sessionID, window)
	if err != nil {
		return engine.Request{}, err
	}

	var entries []core.MemoryEntry
	for e := range seq {
		entries = append(entries, e)
	}

	return engine.Request{
		Instructions: instructions,
		Window:       entries,
		Tools:        toolDefinitions(registry),
	}, nil
}

// toolDefinitions renders the registry's tools as engine-facing definitions.
func toolDefinitions(registry *tool.Registry) []engine.ToolDefinition {
	if registry == nil {
		return nil
	}
	tools := registry.Tools()
	if len(tools) == 0 {
		return nil
	}
	defs := make([]engine.ToolDefinition, len(tools))
	for i, t := range tools {
		defs[i] = engine.ToolDefinition{
			Name:        t.Name(),
			Description: t.Description(),
			Parameters:  t.InputSchema(),
		}
	}
	return defs
}
