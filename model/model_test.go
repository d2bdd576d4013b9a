package model

import (
	"context"
	"errors"
	"testing"

	"github.com/hupe1980/teammesh/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComplete_ReturnsFinalResponse(t *testing.T) {
	m := NewMockModel("mock", "mock")
	m.AddResponse("hello", "world")

	resp, err := Complete(context.Background(), m, Request{
		Messages: []core.Message{core.NewUserMessage("hello")},
		Stream:   true,
	})
	require.NoError(t, err)
	assert.False(t, resp.Partial)
	assert.Equal(t, "world", resp.Message.Text())
	assert.Equal(t, "stop", resp.FinishReason)
}

func TestComplete_PropagatesError(t *testing.T) {
	m := NewMockModel("mock", "mock")
	m.EnqueueError(errors.New("rate limited"))

	_, err := Complete(context.Background(), m, Request{Messages: []core.Message{core.NewUserMessage("x")}})
	assert.EqualError(t, err, "rate limited")
}

func TestComplete_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	m := NewMockModel("mock", "mock")
	m.EnqueueText("never seen")

	_, err := Complete(ctx, m, Request{Messages: []core.Message{core.NewUserMessage("x")}})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMockModel_QueueThenFallback(t *testing.T) {
	m := NewMockModel("mock", "mock")
	call := AssistantMessage(core.FunctionCallPart{FunctionCall: core.FunctionCall{ID: "c1", Name: "search"}})
	m.Enqueue(call)

	req := Request{Messages: []core.Message{core.NewUserMessage("topic")}}

	resp, err := Complete(context.Background(), m, req)
	require.NoError(t, err)
	assert.Equal(t, "tool_calls", resp.FinishReason)
	assert.Len(t, resp.Message.FunctionCalls(), 1)

	resp, err = Complete(context.Background(), m, req)
	require.NoError(t, err)
	assert.Equal(t, "Mock response to: topic", resp.Message.Text())
	assert.Len(t, m.Requests(), 2)
}

func TestRenderText(t *testing.T) {
	assert.Equal(t, "plain", RenderText(core.NewUserMessage("plain")))
	assert.Equal(t, "[search_agent]: 3 links", RenderText(core.NewActorMessage("search_agent", "3 links")))
	assert.Equal(t, "thinking", RenderText(core.NewMessage("writer", core.RoleAssistant, "thinking")))
}

func TestToolResultText(t *testing.T) {
	assert.Equal(t, "plain", ToolResultText(core.FunctionResponse{Response: "plain"}))
	assert.Equal(t, "error: boom", ToolResultText(core.FunctionResponse{Error: "boom"}))
	assert.Equal(t, `{"n":1}`, ToolResultText(core.FunctionResponse{Response: map[string]int{"n": 1}}))
	assert.Equal(t, "", ToolResultText(core.FunctionResponse{}))
}
