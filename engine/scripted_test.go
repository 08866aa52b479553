package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowgentic/agentloop/core"
)

func TestScriptedEngineReplaysDecisions(t *testing.T) {
	eng := NewScriptedEngine(
		ToolRequests{Calls: []ToolCall{{ID: "c1", Name: "search"}}},
		FinalAnswer{Text: "done"},
	)

	d, err := eng.Decide(context.Background(), Request{})
	require.NoError(t, err)
	tr, ok := d.(ToolRequests)
	require.True(t, ok)
	assert.Equal(t, "search", tr.Calls[0].Name)

	d, err = eng.Decide(context.Background(), Request{})
	require.NoError(t, err)
	fa, ok := d.(FinalAnswer)
	require.True(t, ok)
	assert.Equal(t, "done", fa.Text)
}

func TestScriptedEngineFallback(t *testing.T) {
	eng := NewScriptedEngine()

	d, err := eng.Decide(context.Background(), Request{})
	require.NoError(t, err)
	assert.Equal(t, FinalAnswer{Text: "ok"}, d)

	eng.SetFallback(NeedsInput{Prompt: "more?"})
	d, err = eng.Decide(context.Background(), Request{})
	require.NoError(t, err)
	assert.Equal(t, NeedsInput{Prompt: "more?"}, d)
}

func TestScriptedEngineErrors(t *testing.T) {
	eng := NewScriptedEngine()
	eng.AddError(core.ErrEngineUnavailable, "503")

	_, err := eng.Decide(context.Background(), Request{})
	require.Error(t, err)
	assert.Equal(t, core.ErrEngineUnavailable, core.KindOf(err))
}

func TestScriptedEngineRecordsRequests(t *testing.T) {
	eng := NewScriptedEngine(FinalAnswer{Text: "a"})

	req := Request{Instructions: "be brief", Window: []core.MemoryEntry{{Key: core.KeyInput, Value: "hi"}}}
	_, err := eng.Decide(context.Background(), req)
	require.NoError(t, err)

	reqs := eng.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "be brief", reqs[0].Instructions)
	require.Len(t, reqs[0].Window, 1)
}

func TestScriptedEngineHonorsCancellation(t *testing.T) {
	eng := NewScriptedEngine(FinalAnswer{Text: "never"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := eng.Decide(ctx, Request{})
	assert.ErrorIs(t, err, context.Canceled)
}
