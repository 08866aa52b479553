package tool

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowgentic/agentloop/core"
)

func testContext() *core.ToolContext {
	return core.NewToolContext(context.Background(), "s1", "t1", "call_1", nil, nil)
}

func TestFunctionToolCall(t *testing.T) {
	ft := NewFunctionTool("add", "adds numbers",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"a": map[string]any{"type": "number"},
				"b": map[string]any{"type": "number"},
			},
			"required": []string{"a", "b"},
		},
		func(tctx *core.ToolContext, args map[string]any) (any, error) {
			return args["a"].(float64) + args["b"].(float64), nil
		},
	)

	result, err := ft.Call(testContext(), map[string]any{"a": 1.0, "b": 2.0})
	require.NoError(t, err)
	assert.Equal(t, 3.0, result)
}

func TestFunctionToolValidatesBeforeCalling(t *testing.T) {
	called := false
	ft := NewFunctionTool("strict", "requires name",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"name": map[string]any{"type": "string"},
			},
			"required": []string{"name"},
		},
		func(tctx *core.ToolContext, args map[string]any) (any, error) {
			called = true
			return nil, nil
		},
	)

	_, err := ft.Call(testContext(), map[string]any{})
	require.Error(t, err)
	assert.False(t, called, "the function must not run on invalid arguments")

	var fe *core.Error
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, core.ErrSchemaMismatch, fe.Kind)
	assert.Equal(t, "name", fe.Field)
}

func TestFunctionToolWrapsPlainErrors(t *testing.T) {
	cause := errors.New("backend down")
	ft := NewFunctionTool("broken", "always fails", nil,
		func(tctx *core.ToolContext, args map[string]any) (any, error) {
			return nil, cause
		},
	)

	_, err := ft.Call(testContext(), map[string]any{})
	require.Error(t, err)
	assert.Equal(t, core.ErrToolFailure, core.KindOf(err))
	assert.ErrorIs(t, err, cause)
}

func TestFunctionToolPassesFrameworkErrorsThrough(t *testing.T) {
	ft := NewFunctionTool("timeout", "times out", nil,
		func(tctx *core.ToolContext, args map[string]any) (any, error) {
			return nil, core.NewError(core.ErrToolTimeout, "upstream deadline")
		},
	)

	_, err := ft.Call(testContext(), map[string]any{})
	require.Error(t, err)
	assert.Equal(t, core.ErrToolTimeout, core.KindOf(err))
}

func TestFunctionToolOptions(t *testing.T) {
	ft := NewFunctionTool("opt", "options", nil,
		func(tctx *core.ToolContext, args map[string]any) (any, error) { return nil, nil },
		func(o *Options) {
			o.Idempotent = true
			o.Timeout = 5 * time.Second
		},
	)

	assert.True(t, ft.Idempotent())
	assert.Equal(t, 5*time.Second, ft.Timeout())

	plain := NewFunctionTool("plain", "defaults", nil,
		func(tctx *core.ToolContext, args map[string]any) (any, error) { return nil, nil })
	assert.False(t, plain.Idempotent(), "tools are assumed non-idempotent by default")
	assert.Zero(t, plain.Timeout())
}

func TestNewFunctionToolFromStruct(t *testing.T) {
	type params struct {
		City string `json:"city" description:"City name"`
		Days int    `json:"days,omitempty"`
	}

	ft := NewFunctionToolFromStruct("forecast", "weather forecast", params{},
		func(tctx *core.ToolContext, args map[string]any) (any, error) { return "sunny", nil })

	schema := ft.InputSchema()
	props, ok := schema["properties"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, props, "city")
	assert.Contains(t, props, "days")
	assert.Equal(t, []string{"city"}, schema["required"])

	_, err := ft.Call(testContext(), map[string]any{"days": 3})
	require.Error(t, err, "city is required")

	result, err := ft.Call(testContext(), map[string]any{"city": "Berlin"})
	require.NoError(t, err)
	assert.Equal(t, "sunny", result)
}
