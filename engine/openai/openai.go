// Package openai provides a reasoning engine adapter backed by the OpenAI
// Chat Completions API (including function/tool calling). It serializes the
// normalized Request into the SDK's message format and maps the completion
// back into a Decision.
package openai

import (
	"context"
	"errors"

	"github.com/flowgentic/agentloop/core"
	"github.com/flowgentic/agentloop/engine"
	"github.com/openai/openai-go"
)

// Options configure the OpenAI engine adapter. Fields mirror a subset of
// Chat Completion parameters intentionally kept minimal.
type Options struct {
	Model               string
	Temperature         float64
	MaxCompletionTokens int64
}

// Engine wraps the OpenAI Chat Completions API behind engine.Engine.
type Engine struct {
	client *openai.Client
	opts   Options
}

// New creates a new OpenAI engine using the official client (API key from
// the environment).
func New(optFns ...func(o *Options)) *Engine {
	client := openai.NewClient()
	return NewFromClient(&client, optFns...)
}

// NewFromClient creates a new OpenAI engine from an existing client.
func NewFromClient(client *openai.Client, optFns ...func(o *Options)) *Engine {
	opts := Options{
		Model:               openai.ChatModelGPT4oMini,
		Temperature:         0.7,
		MaxCompletionTokens: 4096,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Engine{client: client, opts: opts}
}

// Decide implements engine.Engine. It never returns NeedsInput: providers
// have no native suspension signal, so the adapter yields either a final
// answer or tool requests.
func (e *Engine) Decide(ctx context.Context, req engine.Request) (engine.Decision, error) {
	params := openai.ChatCompletionNewParams{
		Messages:            buildMessages(req),
		Model:               e.opts.Model,
		Temperature:         openai.Float(e.opts.Temperature),
		MaxCompletionTokens: openai.Int(e.opts.MaxCompletionTokens),
	}
	if len(req.Tools) > 0 {
		params.Tools = buildTools(req.Tools)
	}

	resp, err := e.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, mapError(err)
	}
	if len(resp.Choices) == 0 {
		return nil, core.NewError(core.ErrEngineRejected, "openai returned no choices")
	}

	msg := resp.Choices[0].Message
	if len(msg.ToolCalls) > 0 {
		calls := make([]engine.ToolCall, 0, len(msg.ToolCalls))
		for _, tc := range msg.ToolCalls {
			calls = append(calls, engine.ToolCall{
				ID:        tc.ID,
				Name:      tc.Function.Name,
				Arguments: tc.Function.Arguments,
			})
		}
		return engine.ToolRequests{Calls: calls}, nil
	}

	return engine.FinalAnswer{Text: msg.Content}, nil
}

// buildMessages converts the serialized window into OpenAI chat messages.
// Tool results are rendered as user-role context because the window carries
// memory entries rather than the provider's tool-call transcript.
func buildMessages(req engine.Request) []openai.ChatCompletionMessageParamUnion {
	rendered := engine.RenderWindow(req.Window)
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(rendered)+1)
	if req.Instructions != "" {
		messages = append(messages, openai.SystemMessage(req.Instructions))
	}
	for _, m := range rendered {
		switch m.Role {
		case "assistant":
			messages = append(messages, openai.AssistantMessage(m.Text))
		default:
			messages = append(messages, openai.UserMessage(m.Text))
		}
	}
	return messages
}

// buildTools assembles the OpenAI tool definitions.
func buildTools(defs []engine.ToolDefinition) []openai.ChatCompletionToolParam {
	tools := make([]openai.ChatCompletionToolParam, len(defs))
	for i, d := range defs {
		tools[i] = openai.ChatCompletionToolParam{
			Type: "function",
			Function: openai.FunctionDefinitionParam{
				Name:        d.Name,
				Description: openai.String(d.Description),
				Parameters:  d.Parameters,
			},
		}
	}
	return tools
}

// mapError classifies SDK errors into the framework taxonomy: transient
// transport and 408/429/5xx failures are EngineUnavailable (retryable),
// other API rejections are EngineRejected. Caller cancellation passes
// through untouched.
func mapError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	var apierr *openai.Error
	if errors.As(err, &apierr) {
		switch apierr.StatusCode {
		case 408, 429, 500, 502, 503, 504:
			return core.WrapError(core.ErrEngineUnavailable, err, "openai api error (status %d)", apierr.StatusCode)
		default:
			return core.WrapError(core.ErrEngineRejected, err, "openai rejected request (status %d)", apierr.StatusCode)
		}
	}
	return core.WrapError(core.ErrEngineUnavailable, err, "openai request failed")
}

// Info returns metadata describing this OpenAI engine implementation.
func (e *Engine) Info() engine.Info {
	return engine.Info{
		Name:          e.opts.Model,
		Provider:      "openai",
		SupportsTools: true,
	}
}

var _ engine.Engine = (*Engine)(nil)
