// Package engine defines the reasoning engine adapter boundary: the Engine
// interface the orchestrator consults each turn, the normalized Request it
// sends (instructions, memory window, tool definitions) and the Decision
// variants an engine can return (FinalAnswer, ToolRequests, NeedsInput).
// Provider adapters live in the engine/openai and engine/anthropic
// subpackages; ScriptedEngine provides deterministic decisions for tests.
package engine
