package anthropic

import (
	"testing"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/hupe1980/teammesh/core"
	"github.com/hupe1980/teammesh/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildMessages_ToolResultsFollowAssistant(t *testing.T) {
	call := model.AssistantMessage(core.FunctionCallPart{FunctionCall: core.FunctionCall{ID: "t1", Name: "scrape", Arguments: `{"url":"https://example.com"}`}})
	result := core.NewFunctionResponseMessage("scrape_agent", "t1", "scrape", "page text", nil)

	msgs := buildMessages([]core.Message{
		core.NewUserMessage("summarize"),
		core.NewActorMessage("search_agent", "found https://example.com"),
		call,
		result,
	})

	require.Len(t, msgs, 4)
	assert.Equal(t, anthropic.MessageParamRoleUser, msgs[0].Role)
	assert.Equal(t, anthropic.MessageParamRoleUser, msgs[1].Role)
	require.NotNil(t, msgs[1].Content[0].OfText)
	assert.Equal(t, "[search_agent]: found https://example.com", msgs[1].Content[0].OfText.Text)
	assert.Equal(t, anthropic.MessageParamRoleAssistant, msgs[2].Role)
	require.NotNil(t, msgs[2].Content[0].OfToolUse)
	assert.Equal(t, anthropic.MessageParamRoleUser, msgs[3].Role)
	require.NotNil(t, msgs[3].Content[0].OfToolResult)
	assert.Equal(t, "t1", msgs[3].Content[0].OfToolResult.ToolUseID)
}

func TestSystemBlocks(t *testing.T) {
	blocks := systemBlocks(model.Request{
		Instructions: "be brief",
		Messages:     []core.Message{core.NewMessage("", core.RoleSystem, "context")},
	})
	require.Len(t, blocks, 2)
	assert.Equal(t, "be brief", blocks[0].Text)
	assert.Equal(t, "context", blocks[1].Text)
}

func TestBuildTools(t *testing.T) {
	tools := buildTools([]model.ToolDefinition{{
		Type: "function",
		Function: model.FunctionDefinition{
			Name:        "write_artifact",
			Description: "save",
			Parameters: map[string]any{
				"type":       "object",
				"properties": map[string]any{"name": map[string]any{"type": "string"}},
				"required":   []any{"name"},
			},
		},
	}})
	require.Len(t, tools, 1)
	require.NotNil(t, tools[0].OfTool)
	assert.Equal(t, "write_artifact", tools[0].OfTool.Name)
	assert.Equal(t, []string{"name"}, tools[0].OfTool.InputSchema.Required)
}

func TestBedrockModelID(t *testing.T) {
	assert.Equal(t, anthropic.Model("us.anthropic.claude-sonnet-4-20250514-v1:0"), BedrockModelID(anthropic.ModelClaudeSonnet4_20250514))
	assert.Equal(t, anthropic.Model("custom"), BedrockModelID("custom"))
}
