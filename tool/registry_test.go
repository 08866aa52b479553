package tool

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowgentic/agentloop/core"
)

func echoTool(name string) *FunctionTool {
	return NewFunctionTool(name, "echoes its input",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"text": map[string]any{"type": "string"},
			},
			"required": []string{"text"},
		},
		func(tctx *core.ToolContext, args map[string]any) (any, error) {
			return args["text"], nil
		},
	)
}

func TestRegistryRegister(t *testing.T) {
	r := NewRegistry()

	require.NoError(t, r.Register(echoTool("echo")))
	assert.Equal(t, 1, r.Len())
	assert.Equal(t, []string{"echo"}, r.Names())
}

func TestRegistryRegisterDuplicate(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(echoTool("echo")))

	err := r.Register(echoTool("echo"))
	assert.Error(t, err)
	assert.Equal(t, 1, r.Len())
}

func TestRegistryRegisterInvalid(t *testing.T) {
	r := NewRegistry()
	assert.Error(t, r.Register(nil))
	assert.Error(t, r.Register(echoTool("")))
}

func TestRegistryResolve(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(echoTool("echo")))

	got, err := r.Resolve("echo")
	require.NoError(t, err)
	assert.Equal(t, "echo", got.Name())
}

func TestRegistryResolveUnknown(t *testing.T) {
	r := NewRegistry()

	_, err := r.Resolve("nonexistent")
	require.Error(t, err)
	assert.Equal(t, core.ErrUnknownTool, core.KindOf(err))
	assert.Contains(t, err.Error(), "nonexistent")
}

func TestRegistryValidate(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(echoTool("echo")))

	_, err := r.Validate("echo", map[string]any{"text": "hi"})
	assert.NoError(t, err)
}

func TestRegistryValidateMissingRequiredField(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(echoTool("echo")))

	_, err := r.Validate("echo", map[string]any{})
	require.Error(t, err)

	var fe *core.Error
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, core.ErrSchemaMismatch, fe.Kind)
	assert.Equal(t, "text", fe.Field, "the violated field is named")
}

func TestRegistryValidateWrongType(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(echoTool("echo")))

	_, err := r.Validate("echo", map[string]any{"text": 42})
	require.Error(t, err)
	assert.Equal(t, core.ErrSchemaMismatch, core.KindOf(err))
}

func TestRegistryToolsSorted(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(echoTool("zeta")))
	require.NoError(t, r.Register(echoTool("alpha")))
	require.NoError(t, r.Register(echoTool("mid")))

	tools := r.Tools()
	require.Len(t, tools, 3)
	assert.Equal(t, "alpha", tools[0].Name())
	assert.Equal(t, "mid", tools[1].Name())
	assert.Equal(t, "zeta", tools[2].Name())
}
