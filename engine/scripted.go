package engine

import (
	"context"
	"sync"

	"github.com/flowgentic/agentloop/core"
)

// Step is one scripted engine response: either a Decision or an error.
type Step struct {
	Decision Decision
	Err      error
}

// ScriptedEngine is a deterministic in-memory Engine useful for tests and
// examples. It pops pre-programmed steps in order; once exhausted it returns
// the configured fallback (default FinalAnswer("ok")). Received requests are
// recorded for assertions. Safe for concurrent use.
type ScriptedEngine struct {
	mu       sync.Mutex
	steps    []Step
	fallback Decision
	requests []Request
}

// NewScriptedEngine constructs an engine that replays the given decisions in order.
func NewScriptedEngine(decisions ...Decision) *ScriptedEngine {
	steps := make([]Step, len(decisions))
	for i, d := range decisions {
		steps[i] = Step{Decision: d}
	}
	return &ScriptedEngine{steps: steps, fallback: FinalAnswer{Text: "ok"}}
}

// AddStep appends a scripted step (decision or error) to the replay queue.
func (s *ScriptedEngine) AddStep(step Step) *ScriptedEngine {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.steps = append(s.steps, step)
	return s
}

// AddError appends a scripted failure of the given kind.
func (s *ScriptedEngine) AddError(kind core.ErrorKind, msg string) *ScriptedEngine {
	return s.AddStep(Step{Err: core.NewError(kind, "%s", msg)})
}

// SetFallback overrides the decision returned once all steps are consumed.
func (s *ScriptedEngine) SetFallback(d Decision) *ScriptedEngine {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fallback = d
	return s
}

// Decide implements Engine; pops the next scripted step.
func (s *ScriptedEngine) Decide(ctx context.Context, req Request) (Decision, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, req)

	if len(s.steps) == 0 {
		return s.fallback, nil
	}
	step := s.steps[0]
	s.steps = s.steps[1:]
	if step.Err != nil {
		return nil, step.Err
	}
	return step.Decision, nil
}

// Requests returns a copy of every request received so far.
func (s *ScriptedEngine) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	reqs := make([]Request, len(s.requests))
	copy(reqs, s.requests)
	return reqs
}

// Info implements Engine.
func (s *ScriptedEngine) Info() Info {
	return Info{Name: "scripted", Provider: "scripted", SupportsTools: true}
}
