package engine

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/flowgentic/agentloop/core"
)

// Message is a provider-neutral chat message rendered from the memory window.
// Provider adapters convert these into their SDK message shapes.
type Message struct {
	Role string // "user", "assistant" or "tool"
	Text string
}

// RenderWindow serializes a memory window into ordered chat messages. Inputs
// become user messages, answers and prompts become assistant messages, tool
// results become tool messages carrying the producing key, and recorded
// errors are surfaced as user-visible context.
func RenderWindow(entries []core.MemoryEntry) []Message {
	msgs := make([]Message, 0, len(entries))
	for _, e := range entries {
		switch {
		case e.Key == core.KeyInput:
			msgs = append(msgs, Message{Role: "user", Text: ValueText(e.Value)})
		case e.Key == core.KeyAnswer, e.Key == core.KeyPrompt:
			msgs = append(msgs, Message{Role: "assistant", Text: ValueText(e.Value)})
		case core.IsToolResultKey(e.Key):
			msgs = append(msgs, Message{
				Role: "tool",
				Text: fmt.Sprintf("Result of %s: %s", strings.TrimPrefix(e.Key, "tool:"), ValueText(e.Value)),
			})
		case e.Key == core.KeyError:
			msgs = append(msgs, Message{Role: "user", Text: fmt.Sprintf("Previous error: %s", ValueText(e.Value))})
		default:
			msgs = append(msgs, Message{Role: "user", Text: fmt.Sprintf("%s: %s", e.Key, ValueText(e.Value))})
		}
	}
	return msgs
}

// ValueText renders an opaque memory value as text: strings pass through,
// everything else is JSON encoded.
func ValueText(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}
