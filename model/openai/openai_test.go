package openai

import (
	"testing"

	"github.com/hupe1980/teammesh/core"
	"github.com/hupe1980/teammesh/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildMessages_OrderAndLabels(t *testing.T) {
	call := model.AssistantMessage(core.FunctionCallPart{FunctionCall: core.FunctionCall{ID: "c1", Name: "search", Arguments: `{"q":"x"}`}})
	resp := core.NewFunctionResponseMessage("search_agent", "c1", "search", map[string]any{"hits": 2}, nil)

	req := model.Request{
		Instructions: "You are a researcher.",
		Messages: []core.Message{
			core.NewUserMessage("find vacuums"),
			core.NewActorMessage("chief_editor", "go"),
			call,
			resp,
		},
	}

	toolResponses, order := collectToolResponses(req.Messages)
	require.Equal(t, []string{"c1"}, order)
	assert.Equal(t, `{"hits":2}`, toolResponses["c1"])

	msgs := buildMessages(req, toolResponses, order)
	require.Len(t, msgs, 5)
	require.NotNil(t, msgs[0].OfSystem)
	require.NotNil(t, msgs[2].OfUser)
	assert.Equal(t, "[chief_editor]: go", msgs[2].OfUser.Content.OfString.Value)
	require.NotNil(t, msgs[3].OfAssistant)
	assert.Len(t, msgs[3].OfAssistant.ToolCalls, 1)
	require.NotNil(t, msgs[4].OfTool)
	assert.Equal(t, "c1", msgs[4].OfTool.ToolCallID)
}

func TestInfo(t *testing.T) {
	m := NewModel(func(o *Options) {
		o.Model = "gpt-4o"
		o.APIKey = "test"
		o.BaseURL = "https://models.inference.ai.azure.com"
	})
	assert.Equal(t, model.Info{Name: "gpt-4o", Provider: "openai", SupportsTools: true}, m.Info())
}
