// Package openai provides an implementation of model.Model using the OpenAI
// Chat Completions API (including streaming and function/tool calling). Any
// OpenAI compatible endpoint works, e.g. GitHub Models via BaseURL.
package openai

import (
	"context"
	"fmt"
	"strings"

	"github.com/hupe1980/teammesh/core"
	"github.com/hupe1980/teammesh/model"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// aggCall aggregates partial tool call streaming deltas (id, name, arguments)
// allowing reconstruction of complete function call parts when finish reason
// is emitted.
type aggCall struct{ id, name, args string }

// Options configure the OpenAI model adapter.
type Options struct {
	Model               string
	Temperature         float64
	MaxCompletionTokens int64
	// APIKey overrides the OPENAI_API_KEY environment variable.
	APIKey string
	// BaseURL points the client at an OpenAI compatible endpoint.
	BaseURL string
}

// Model wraps the OpenAI Chat Completions API behind the generic model.Model interface.
type Model struct {
	client *openai.Client
	opts   Options
}

// NewModel creates a new OpenAI model using the official client.
func NewModel(optFns ...func(o *Options)) *Model {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}

	var clientOpts []option.RequestOption
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}
	if opts.BaseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(opts.BaseURL))
	}

	client := openai.NewClient(clientOpts...)

	return &Model{client: &client, opts: opts}
}

// NewModelFromClient creates a new OpenAI model from an existing client.
func NewModelFromClient(client *openai.Client, optFns ...func(o *Options)) *Model {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Model{client: client, opts: opts}
}

func defaultOptions() Options {
	return Options{
		Model:               openai.ChatModelGPT4oMini,
		Temperature:         0.7,
		MaxCompletionTokens: 4096,
	}
}

// Generate implements unified streaming / non-streaming generation.
func (m *Model) Generate(ctx context.Context, req model.Request) (<-chan model.Response, <-chan error) {
	out := make(chan model.Response, 32)
	errCh := make(chan error, 1)
	go func() {
		defer close(out)
		defer close(errCh)
		toolResponses, order := collectToolResponses(req.Messages)
		messages := buildMessages(req, toolResponses, order)
		params := m.buildParams(req, messages)
		if req.Stream {
			m.handleStreaming(ctx, params, out, errCh)
			return
		}
		m.handleNonStreaming(ctx, params, out, errCh)
	}()
	return out, errCh
}

// collectToolResponses indexes tool (function) responses by id preserving first-seen order.
func collectToolResponses(msgs []core.Message) (map[string]string, []string) {
	responses := map[string]string{}
	order := []string{}
	for _, msg := range msgs {
		if msg.Role != core.RoleTool {
			continue
		}
		for _, fr := range msg.FunctionResponses() {
			if fr.ID == "" {
				continue
			}
			if _, exists := responses[fr.ID]; exists {
				continue
			}
			responses[fr.ID] = model.ToolResultText(fr)
			order = append(order, fr.ID)
		}
	}
	return responses, order
}

// buildMessages converts the conversation into OpenAI chat messages while
// attaching matching tool responses immediately after assistant tool calls.
func buildMessages(
	req model.Request,
	toolResponses map[string]string,
	order []string,
) []openai.ChatCompletionMessageParamUnion {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.Messages)+1)
	if req.Instructions != "" {
		messages = append(messages, openai.SystemMessage(req.Instructions))
	}
	for _, msg := range req.Messages {
		switch msg.Role {
		case core.RoleTool:
			continue
		case core.RoleSystem:
			messages = append(messages, openai.SystemMessage(msg.Text()))
		case core.RoleAssistant:
			toolCalls, callIDs := extractToolCalls(msg)
			if len(toolCalls) == 0 {
				messages = append(messages, openai.AssistantMessage(msg.Text()))
				continue
			}
			messages = append(
				messages,
				openai.ChatCompletionMessageParamUnion{OfAssistant: &openai.ChatCompletionAssistantMessageParam{
					Role:      "assistant",
					ToolCalls: toolCalls,
				}},
			)
			for _, id := range callIDs {
				if id == "" {
					continue
				}
				if resp, ok := toolResponses[id]; ok {
					messages = append(messages, openai.ToolMessage(resp, id))
					delete(toolResponses, id)
				}
			}
		default:
			if text := model.RenderText(msg); text != "" {
				messages = append(messages, openai.UserMessage(text))
			}
		}
	}
	for _, id := range order {
		if resp, ok := toolResponses[id]; ok {
			messages = append(messages, openai.ToolMessage(resp, id))
		}
	}
	return messages
}

// extractToolCalls extracts tool call parts and returns OpenAI formatted tool calls + ordered IDs.
func extractToolCalls(msg core.Message) ([]openai.ChatCompletionMessageToolCallParam, []string) {
	var toolCalls []openai.ChatCompletionMessageToolCallParam
	var callIDs []string
	for _, fc := range msg.FunctionCalls() {
		toolCalls = append(toolCalls, openai.ChatCompletionMessageToolCallParam{
			ID:   fc.ID,
			Type: "function",
			Function: openai.ChatCompletionMessageToolCallFunctionParam{
				Name:      fc.Name,
				Arguments: fc.Arguments,
			},
		})
		callIDs = append(callIDs, fc.ID)
	}
	return toolCalls, callIDs
}

// buildParams assembles the OpenAI request parameters including tool definitions.
func (m *Model) buildParams(
	req model.Request,
	messages []openai.ChatCompletionMessageParamUnion,
) openai.ChatCompletionNewParams {
	params := openai.ChatCompletionNewParams{
		Messages:            messages,
		Model:               m.opts.Model,
		Temperature:         openai.Float(m.opts.Temperature),
		MaxCompletionTokens: openai.Int(m.opts.MaxCompletionTokens),
	}
	if len(req.Tools) == 0 {
		return params
	}
	tools := make([]openai.ChatCompletionToolParam, len(req.Tools))
	for i, tdef := range req.Tools {
		tools[i] = openai.ChatCompletionToolParam{
			Type: "function",
			Function: openai.FunctionDefinitionParam{
				Name:        tdef.Function.Name,
				Description: openai.String(tdef.Function.Description),
				Parameters:  tdef.Function.Parameters,
			},
		}
	}
	params.Tools = tools
	return params
}

// handleStreaming processes streaming responses and forwards partial / final events.
func (m *Model) handleStreaming(
	ctx context.Context,
	params openai.ChatCompletionNewParams,
	out chan<- model.Response,
	errCh chan<- error,
) {
	stream := m.client.Chat.Completions.NewStreaming(ctx, params)
	var textBuilder strings.Builder
	toolAgg := map[int64]*aggCall{}
	var toolOrder []int64
	for stream.Next() {
		ck := stream.Current()
		for _, ch := range ck.Choices {
			if ch.Delta.Content != "" {
				textBuilder.WriteString(ch.Delta.Content)
				out <- model.Response{Partial: true, Message: model.AssistantMessage(core.TextPart{Text: ch.Delta.Content})}
			}
			for _, tc := range ch.Delta.ToolCalls {
				ac, ok := toolAgg[tc.Index]
				if !ok {
					ac = &aggCall{}
					toolAgg[tc.Index] = ac
					toolOrder = append(toolOrder, tc.Index)
				}
				if tc.ID != "" {
					ac.id = tc.ID
				}
				if tc.Function.Name != "" {
					ac.name = tc.Function.Name
				}
				ac.args += tc.Function.Arguments
			}
			if ch.FinishReason != "" {
				parts := make([]core.Part, 0, len(toolAgg)+1)
				if textBuilder.Len() > 0 {
					parts = append(parts, core.TextPart{Text: textBuilder.String()})
				}
				for _, idx := range toolOrder {
					ac := toolAgg[idx]
					parts = append(parts, core.FunctionCallPart{FunctionCall: core.FunctionCall{
						ID:        ac.id,
						Name:      ac.name,
						Arguments: ac.args,
					}})
				}
				out <- model.Response{
					ID:           ck.ID,
					Message:      model.AssistantMessage(parts...),
					FinishReason: ch.FinishReason,
				}
			}
		}
	}
	if err := stream.Err(); err != nil {
		errCh <- fmt.Errorf("openai streaming error: %w", err)
	}
}

// handleNonStreaming processes a normal (non-streaming) completion.
func (m *Model) handleNonStreaming(
	ctx context.Context,
	params openai.ChatCompletionNewParams,
	out chan<- model.Response,
	errCh chan<- error,
) {
	resp, err := m.client.Chat.Completions.New(ctx, params)
	if err != nil {
		errCh <- fmt.Errorf("openai api error: %w", err)
		return
	}
	if len(resp.Choices) == 0 {
		errCh <- fmt.Errorf("no choices returned")
		return
	}
	ch0 := resp.Choices[0]
	parts := make([]core.Part, 0, len(ch0.Message.ToolCalls)+1)
	if ch0.Message.Content != "" {
		parts = append(parts, core.TextPart{Text: ch0.Message.Content})
	}
	for _, tc := range ch0.Message.ToolCalls {
		parts = append(parts, core.FunctionCallPart{FunctionCall: core.FunctionCall{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: tc.Function.Arguments,
		}})
	}
	out <- model.Response{
		ID:           resp.ID,
		Message:      model.AssistantMessage(parts...),
		FinishReason: ch0.FinishReason,
		Usage: &model.TokenUsage{
			PromptTokens:     int(resp.Usage.PromptTokens),
			CompletionTokens: int(resp.Usage.CompletionTokens),
			TotalTokens:      int(resp.Usage.TotalTokens),
		},
	}
}

// Info returns metadata describing this OpenAI model implementation.
func (m *Model) Info() model.Info {
	return model.Info{
		Name:          m.opts.Model,
		Provider:      "openai",
		SupportsTools: true,
	}
}
