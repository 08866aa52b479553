// Package anthropic provides a reasoning engine adapter backed by the
// Anthropic Messages API.
package anthropic

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/shared/constant"
	"github.com/flowgentic/agentloop/core"
	"github.com/flowgentic/agentloop/engine"
)

// Options configures the Anthropic engine adapter (model id, temperature,
// max tokens, API key). Extend via functional options to preserve stability.
type Options struct {
	Model       anthropic.Model
	Temperature float64
	MaxTokens   int64
	APIKey      string
}

// Engine wraps the Anthropic Messages API behind engine.Engine.
type Engine struct {
	client *anthropic.Client
	opts   Options
}

// New creates a new Anthropic engine using the official client.
func New(optFns ...func(o *Options)) *Engine {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}

	var clientOpts []option.RequestOption
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}
	client := anthropic.NewClient(clientOpts...)

	return &Engine{client: &client, opts: opts}
}

// NewFromClient creates a new Anthropic engine from an existing client.
func NewFromClient(client *anthropic.Client, optFns ...func(o *Options)) *Engine {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Engine{client: client, opts: opts}
}

func defaultOptions() Options {
	return Options{
		Model:       anthropic.ModelClaude3_5Sonnet20241022,
		Temperature: 0.7,
		MaxTokens:   4096,
	}
}

// Decide implements engine.Engine. Like the OpenAI adapter it never returns
// NeedsInput; tool_use blocks become ToolRequests, otherwise the text blocks
// form a FinalAnswer.
func (e *Engine) Decide(ctx context.Context, req engine.Request) (engine.Decision, error) {
	params := anthropic.MessageNewParams{
		Model:       e.opts.Model,
		Messages:    buildMessages(req.Window),
		MaxTokens:   e.opts.MaxTokens,
		Temperature: anthropic.Float(e.opts.Temperature),
	}
	if req.Instructions != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.Instructions}}
	}
	if len(req.Tools) > 0 {
		params.Tools = buildTools(req.Tools)
	}

	resp, err := e.client.Messages.New(ctx, params)
	if err != nil {
		return nil, mapError(err)
	}

	var calls []engine.ToolCall
	var text string
	for _, block := range resp.Content {
		switch block.Type {
		case "text":
			text += block.AsText().Text
		case "tool_use":
			toolBlock := block.AsToolUse()
			args := ""
			if toolBlock.Input != nil {
				if argsBytes, err := json.Marshal(toolBlock.Input); err == nil {
					args = string(argsBytes)
				}
			}
			calls = append(calls, engine.ToolCall{
				ID:        toolBlock.ID,
				Name:      toolBlock.Name,
				Arguments: args,
			})
		}
	}

	if len(calls) > 0 {
		return engine.ToolRequests{Calls: calls}, nil
	}
	return engine.FinalAnswer{Text: text}, nil
}

// buildMessages converts the serialized window to Anthropic message format.
func buildMessages(window []core.MemoryEntry) []anthropic.MessageParam {
	rendered := engine.RenderWindow(window)
	var messages []anthropic.MessageParam
	for _, m := range rendered {
		switch m.Role {
		case "assistant":
			messages = append(messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(m.Text)))
		default:
			messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Text)))
		}
	}
	return messages
}

// buildTools converts tool definitions to the Anthropic tool format.
func buildTools(defs []engine.ToolDefinition) []anthropic.ToolUnionParam {
	tools := make([]anthropic.ToolUnionParam, len(defs))
	for i, d := range defs {
		inputSchema := anthropic.ToolInputSchemaParam{
			Type: constant.Object("object"),
		}
		if d.Parameters != nil {
			if properties, exists := d.Parameters["properties"]; exists {
				inputSchema.Properties = properties
			}
			if required, exists := d.Parameters["required"]; exists {
				inputSchema.Required = requiredStrings(required)
			}
		}
		tools[i] = anthropic.ToolUnionParamOfTool(inputSchema, d.Name)
	}
	return tools
}

func requiredStrings(required any) []string {
	switch req := required.(type) {
	case []string:
		return req
	case []any:
		var out []string
		for _, r := range req {
			if s, ok := r.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// mapError classifies SDK errors into the framework taxonomy.
func mapError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	var apierr *anthropic.Error
	if errors.As(err, &apierr) {
		switch apierr.StatusCode {
		case 408, 429, 500, 502, 503, 529:
			return core.WrapError(core.ErrEngineUnavailable, err, "anthropic api error (status %d)", apierr.StatusCode)
		default:
			return core.WrapError(core.ErrEngineRejected, err, "anthropic rejected request (status %d)", apierr.StatusCode)
		}
	}
	return core.WrapError(core.ErrEngineUnavailable, err, "anthropic request failed")
}

// Info returns metadata describing this Anthropic engine implementation.
func (e *Engine) Info() engine.Info {
	return engine.Info{
		Name:          string(e.opts.Model),
		Provider:      "anthropic",
		SupportsTools: true,
	}
}

var _ engine.Engine = (*Engine)(nil)
