package tool

import (
	"fmt"
	"sort"
	"sync"

	"github.com/flowgentic/agentloop/core"
	"github.com/flowgentic/agentloop/internal/util"
)

// Registry is a thread-safe collection of tools keyed by exact name. It is
// the single lookup surface the orchestrator consults when the engine
// requests a tool call.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Tool
}

// NewRegistry creates an empty tool registry.
func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]Tool)}
}

// Register adds a tool. Registration fails on an empty name or a duplicate;
// there is no implicit replacement.
func (r *Registry) Register(t Tool) error {
	if t == nil {
		return fmt.Errorf("cannot register nil tool")
	}
	name := t.Name()
	if name == "" {
		return fmt.Errorf("cannot register tool with empty name")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[name]; exists {
		return fmt.Errorf("tool %q already registered", name)
	}
	r.tools[name] = t
	return nil
}

// Resolve returns the tool registered under name. Unknown names yield an
// UnknownTool error carrying the requested name.
func (r *Registry) Resolve(name string) (Tool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, exists := r.tools[name]
	if !exists {
		return nil, core.NewError(core.ErrUnknownTool, "tool %q is not registered", name)
	}
	return t, nil
}

// Validate resolves name and checks args against the tool's input schema
// without executing it. Violations surface as SchemaMismatch errors naming
// the offending field.
func (r *Registry) Validate(name string, args map[string]any) (Tool, error) {
	t, err := r.Resolve(name)
	if err != nil {
		return nil, err
	}
	if err := util.ValidateParameters(args, t.InputSchema()); err != nil {
		if verr, ok := err.(*util.ValidationError); ok {
			return nil, &core.Error{
				Kind:    core.ErrSchemaMismatch,
				Message: verr.Message,
				Field:   verr.Field,
			}
		}
		return nil, core.WrapError(core.ErrSchemaMismatch, err, "invalid arguments for tool %q", name)
	}
	return t, nil
}

// Tools returns all registered tools sorted by name.
func (r *Registry) Tools() []Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tools := make([]Tool, 0, len(r.tools))
	for _, t := range r.tools {
		tools = append(tools, t)
	}
	sort.Slice(tools, func(i, j int) bool { return tools[i].Name() < tools[j].Name() })
	return tools
}

// Names returns the registered tool names sorted alphabetically.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tools)
}
