// Package anthropic provides a model wrapper for the Anthropic Claude API,
// called directly or through AWS Bedrock.
package anthropic

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/bedrock"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/shared/constant"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/hupe1980/teammesh/core"
	"github.com/hupe1980/teammesh/model"
)

// Options configures the Anthropic model adapter (temperature, model id,
// max tokens, credentials).
type Options struct {
	Model       anthropic.Model
	Temperature float64
	MaxTokens   int64
	APIKey      string

	// UseBedrock routes requests through AWS Bedrock using the default AWS
	// credential chain.
	UseBedrock bool
	AWSRegion  string
	AWSProfile string
}

// Model wraps the Anthropic Messages API behind the generic model.Model interface.
type Model struct {
	client *anthropic.Client
	opts   Options
}

// NewModel creates a new Anthropic model using the official client.
func NewModel(optFns ...func(o *Options)) *Model {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}

	var clientOpts []option.RequestOption

	if opts.UseBedrock {
		var loadOpts []func(*config.LoadOptions) error
		if opts.AWSRegion != "" {
			loadOpts = append(loadOpts, config.WithRegion(opts.AWSRegion))
		}
		if opts.AWSProfile != "" {
			loadOpts = append(loadOpts, config.WithSharedConfigProfile(opts.AWSProfile))
		}
		clientOpts = append(clientOpts, bedrock.WithLoadDefaultConfig(context.Background(), loadOpts...))
		opts.Model = BedrockModelID(opts.Model)
	} else if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}

	client := anthropic.NewClient(clientOpts...)

	return &Model{
		client: &client,
		opts:   opts,
	}
}

// NewModelFromClient creates a new Anthropic model from an existing client.
func NewModelFromClient(client *anthropic.Client, optFns ...func(o *Options)) *Model {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}

	return &Model{
		client: client,
		opts:   opts,
	}
}

func defaultOptions() Options {
	return Options{
		Model:       anthropic.ModelClaudeSonnet4_20250514,
		Temperature: 0.7,
		MaxTokens:   4096,
	}
}

// BedrockModelID converts an Anthropic model name to its Bedrock cross-region
// inference profile. Unknown names are returned unchanged.
func BedrockModelID(m anthropic.Model) anthropic.Model {
	profiles := map[anthropic.Model]string{
		anthropic.ModelClaudeSonnet4_20250514:   "us.anthropic.claude-sonnet-4-20250514-v1:0",
		anthropic.ModelClaudeSonnet4_5_20250929: "us.anthropic.claude-sonnet-4-5-20250929-v1:0",
		anthropic.ModelClaudeHaiku4_5_20251001:  "us.anthropic.claude-haiku-4-5-20251001-v1:0",
		anthropic.ModelClaude3_7Sonnet20250219:  "us.anthropic.claude-3-7-sonnet-20250219-v1:0",
		anthropic.ModelClaude3_5Haiku20241022:   "us.anthropic.claude-3-5-haiku-20241022-v1:0",
	}
	if id, ok := profiles[m]; ok {
		return anthropic.Model(id)
	}
	return m
}

// Generate implements unified streaming / non-streaming generation.
func (m *Model) Generate(ctx context.Context, req model.Request) (<-chan model.Response, <-chan error) {
	out := make(chan model.Response, 32)
	errCh := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errCh)

		params := anthropic.MessageNewParams{
			Model:       m.opts.Model,
			Messages:    buildMessages(req.Messages),
			MaxTokens:   m.opts.MaxTokens,
			Temperature: anthropic.Float(m.opts.Temperature),
		}

		if systemBlocks := systemBlocks(req); len(systemBlocks) > 0 {
			params.System = systemBlocks
		}

		if len(req.Tools) > 0 {
			params.Tools = buildTools(req.Tools)
		}

		if req.Stream {
			m.handleStreaming(ctx, params, out, errCh)
			return
		}

		resp, err := m.client.Messages.New(ctx, params)
		if err != nil {
			errCh <- fmt.Errorf("anthropic api error: %w", err)
			return
		}

		out <- toResponse(resp)
	}()

	return out, errCh
}

func (m *Model) handleStreaming(
	ctx context.Context,
	params anthropic.MessageNewParams,
	out chan<- model.Response,
	errCh chan<- error,
) {
	stream := m.client.Messages.NewStreaming(ctx, params)
	acc := anthropic.Message{}

	for stream.Next() {
		event := stream.Current()
		if err := acc.Accumulate(event); err != nil {
			errCh <- fmt.Errorf("anthropic streaming error: %w", err)
			return
		}
		if delta, ok := event.AsAny().(anthropic.ContentBlockDeltaEvent); ok {
			if text, ok := delta.Delta.AsAny().(anthropic.TextDelta); ok && text.Text != "" {
				out <- model.Response{Partial: true, Message: model.AssistantMessage(core.TextPart{Text: text.Text})}
			}
		}
	}

	if err := stream.Err(); err != nil {
		errCh <- fmt.Errorf("anthropic streaming error: %w", err)
		return
	}

	out <- toResponse(&acc)
}

func toResponse(resp *anthropic.Message) model.Response {
	var parts []core.Part

	for _, block := range resp.Content {
		switch block.Type {
		case "text":
			if text := block.AsText().Text; text != "" {
				parts = append(parts, core.TextPart{Text: text})
			}
		case "tool_use":
			toolBlock := block.AsToolUse()
			args := ""
			if len(toolBlock.Input) > 0 {
				args = string(toolBlock.Input)
			}
			parts = append(parts, core.FunctionCallPart{
				FunctionCall: core.FunctionCall{
					ID:        toolBlock.ID,
					Name:      toolBlock.Name,
					Arguments: args,
				},
			})
		}
	}

	finishReason := "stop"
	if resp.StopReason == anthropic.StopReasonToolUse {
		finishReason = "tool_calls"
	} else if resp.StopReason != "" {
		finishReason = string(resp.StopReason)
	}

	return model.Response{
		ID:           resp.ID,
		Message:      model.AssistantMessage(parts...),
		FinishReason: finishReason,
		Usage: &model.TokenUsage{
			PromptTokens:     int(resp.Usage.InputTokens),
			CompletionTokens: int(resp.Usage.OutputTokens),
			TotalTokens:      int(resp.Usage.InputTokens + resp.Usage.OutputTokens),
		},
	}
}

// buildMessages converts the conversation to Anthropic message format. Tool
// results are sent as a user turn directly after the assistant turn that
// requested them.
func buildMessages(msgs []core.Message) []anthropic.MessageParam {
	toolResults := make(map[string]core.FunctionResponse)
	for _, msg := range msgs {
		if msg.Role != core.RoleTool {
			continue
		}
		for _, fr := range msg.FunctionResponses() {
			if fr.ID != "" {
				toolResults[fr.ID] = fr
			}
		}
	}

	var messages []anthropic.MessageParam

	for _, msg := range msgs {
		switch msg.Role {
		case core.RoleSystem, core.RoleTool:
			continue
		case core.RoleAssistant:
			content, callIDs := buildAssistantContent(msg)
			if len(content) == 0 {
				continue
			}
			messages = append(messages, anthropic.NewAssistantMessage(content...))

			var results []anthropic.ContentBlockParamUnion
			for _, id := range callIDs {
				if fr, ok := toolResults[id]; ok {
					results = append(results, anthropic.NewToolResultBlock(id, model.ToolResultText(fr), fr.Error != ""))
					delete(toolResults, id)
				}
			}
			if len(results) > 0 {
				messages = append(messages, anthropic.NewUserMessage(results...))
			}
		default:
			if text := model.RenderText(msg); text != "" {
				messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(text)))
			}
		}
	}

	return messages
}

func systemBlocks(req model.Request) []anthropic.TextBlockParam {
	var blocks []anthropic.TextBlockParam

	if req.Instructions != "" {
		blocks = append(blocks, anthropic.TextBlockParam{Text: req.Instructions})
	}

	for _, msg := range req.Messages {
		if msg.Role == core.RoleSystem {
			if text := msg.Text(); text != "" {
				blocks = append(blocks, anthropic.TextBlockParam{Text: text})
			}
		}
	}

	return blocks
}

func buildAssistantContent(msg core.Message) ([]anthropic.ContentBlockParamUnion, []string) {
	var content []anthropic.ContentBlockParamUnion
	var callIDs []string

	for _, p := range msg.Parts {
		switch part := p.(type) {
		case core.TextPart:
			if part.Text != "" {
				content = append(content, anthropic.NewTextBlock(part.Text))
			}
		case core.FunctionCallPart:
			var input any = map[string]any{}
			if part.FunctionCall.Arguments != "" {
				if err := json.Unmarshal([]byte(part.FunctionCall.Arguments), &input); err != nil {
					input = part.FunctionCall.Arguments
				}
			}

			content = append(content, anthropic.NewToolUseBlock(
				part.FunctionCall.ID,
				input,
				part.FunctionCall.Name,
			))
			callIDs = append(callIDs, part.FunctionCall.ID)
		}
	}

	return content, callIDs
}

// buildTools converts tool definitions to Anthropic tool format.
func buildTools(tools []model.ToolDefinition) []anthropic.ToolUnionParam {
	anthropicTools := make([]anthropic.ToolUnionParam, len(tools))

	for i, tool := range tools {
		inputSchema := anthropic.ToolInputSchemaParam{
			Type: constant.Object("object"),
		}

		if params := tool.Function.Parameters; params != nil {
			if properties, exists := params["properties"]; exists {
				inputSchema.Properties = properties
			}
			switch req := params["required"].(type) {
			case []string:
				inputSchema.Required = req
			case []any:
				for _, r := range req {
					if s, ok := r.(string); ok {
						inputSchema.Required = append(inputSchema.Required, s)
					}
				}
			}
		}

		anthropicTools[i] = anthropic.ToolUnionParamOfTool(inputSchema, tool.Function.Name)
		if tool.Function.Description != "" && anthropicTools[i].OfTool != nil {
			anthropicTools[i].OfTool.Description = anthropic.String(tool.Function.Description)
		}
	}

	return anthropicTools
}

// Info returns metadata describing this Anthropic model implementation.
func (m *Model) Info() model.Info {
	return model.Info{
		Name:          string(m.opts.Model),
		Provider:      "anthropic",
		SupportsTools: true,
	}
}
