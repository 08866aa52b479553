package testutil

import (
	"sync"
	"time"

	"github.com/flowgentic/agentloop/core"
	"github.com/flowgentic/agentloop/tool"
)

// CallRecord captures the observable window of one tool execution.
type CallRecord struct {
	CallID string
	Args   map[string]any
	Start  time.Time
	End    time.Time
}

// Overlaps reports whether two call windows intersect in time.
func (r CallRecord) Overlaps(other CallRecord) bool {
	return r.Start.Before(other.End) && other.Start.Before(r.End)
}

// RecordingTool is an instrumented Tool that records the start and end time
// of every execution. Behavior is configurable: a fixed result, a fixed
// error, an artificial delay and the idempotency flag.
type RecordingTool struct {
	ToolName    string
	Desc        string
	Schema      map[string]any
	Result      any
	Err         error
	Delay       time.Duration
	IsIdem      bool
	CallTimeout time.Duration

	mu    sync.Mutex
	calls []CallRecord
}

// NewRecordingTool creates a recording tool with an open argument schema.
func NewRecordingTool(name string) *RecordingTool {
	return &RecordingTool{
		ToolName: name,
		Desc:     "recording test tool",
		Schema: map[string]any{
			"type":       "object",
			"properties": map[string]any{},
		},
		Result: "done",
	}
}

// Name returns the tool name.
func (t *RecordingTool) Name() string { return t.ToolName }

// Description returns the tool description.
func (t *RecordingTool) Description() string { return t.Desc }

// InputSchema returns the configured argument schema.
func (t *RecordingTool) InputSchema() map[string]any { return t.Schema }

// OutputSchema returns nil; results are unconstrained.
func (t *RecordingTool) OutputSchema() map[string]any { return nil }

// Idempotent reports the configured idempotency flag.
func (t *RecordingTool) Idempotent() bool { return t.IsIdem }

// Timeout returns the configured per-call deadline (zero means default).
func (t *RecordingTool) Timeout() time.Duration { return t.CallTimeout }

// Call records the execution window, honors the configured delay and returns
// the configured result or error. The delay respects context cancellation.
func (t *RecordingTool) Call(tctx *core.ToolContext, args map[string]any) (any, error) {
	record := CallRecord{CallID: tctx.CallID(), Args: args, Start: time.Now()}

	if t.Delay > 0 {
		select {
		case <-time.After(t.Delay):
		case <-tctx.Context().Done():
			record.End = time.Now()
			t.append(record)
			return nil, tctx.Context().Err()
		}
	}

	record.End = time.Now()
	t.append(record)

	if t.Err != nil {
		return nil, t.Err
	}
	return t.Result, nil
}

func (t *RecordingTool) append(r CallRecord) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.calls = append(t.calls, r)
}

// Calls returns a copy of the recorded executions in completion order.
func (t *RecordingTool) Calls() []CallRecord {
	t.mu.Lock()
	defer t.mu.Unlock()
	calls := make([]CallRecord, len(t.calls))
	copy(calls, t.calls)
	return calls
}

// CallCount returns the number of recorded executions.
func (t *RecordingTool) CallCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.calls)
}

var _ tool.Tool = (*RecordingTool)(nil)
