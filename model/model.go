package model

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/hupe1980/teammesh/core"
)

// ErrNoResponse is returned by Complete when a model closed its stream
// without emitting a final response.
var ErrNoResponse = errors.New("model returned no final response")

// ToolDefinition declaratively exposes a callable function to the model.
type ToolDefinition struct {
	Type     string             `json:"type"` // "function"
	Function FunctionDefinition `json:"function"`
}

// FunctionDefinition describes an individual function (tool) exposed to the model.
// Parameters is a JSON Schema object (draft agnostic, minimal subset expected).
type FunctionDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// Request captures the normalized model input.
type Request struct {
	Instructions string           `json:"instructions"` // System prompt
	Messages     []core.Message   `json:"messages"`     // Conversation, oldest first
	Tools        []ToolDefinition `json:"tools,omitempty"`
	Stream       bool             `json:"stream,omitempty"`
}

// TokenUsage captures token usage statistics for a response.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Response is a (partial or final) chunk emitted by a model. Message carries
// assistant role parts; the caller assigns the origin.
type Response struct {
	ID           string       `json:"id"`
	Partial      bool         `json:"partial"`
	Message      core.Message `json:"message"`
	FinishReason string       `json:"finish_reason"` // "stop", "length", "tool_calls", etc.
	Usage        *TokenUsage  `json:"usage,omitempty"`
}

// Info contains metadata about a model implementation.
type Info struct {
	Name          string `json:"name"`
	Provider      string `json:"provider"` // "openai", "anthropic", "mock", etc.
	SupportsTools bool   `json:"supports_tools"`
}

// Model is the minimal interface required by workers and supervisors to drive generation.
type Model interface {
	Generate(ctx context.Context, req Request) (<-chan Response, <-chan error)

	// Info returns information about the model implementation.
	Info() Info
}

// Complete drains a Generate call and returns its final (non-partial) response.
func Complete(ctx context.Context, m Model, req Request) (Response, error) {
	if err := ctx.Err(); err != nil {
		return Response{}, err
	}

	respCh, errCh := m.Generate(ctx, req)

	var (
		final Response
		got   bool
	)

	for respCh != nil || errCh != nil {
		select {
		case r, ok := <-respCh:
			if !ok {
				respCh = nil
				continue
			}
			if !r.Partial {
				final, got = r, true
			}
		case err, ok := <-errCh:
			if !ok {
				errCh = nil
				continue
			}
			if err != nil {
				return Response{}, err
			}
		case <-ctx.Done():
			return Response{}, ctx.Err()
		}
	}

	if !got {
		return Response{}, ErrNoResponse
	}

	return final, nil
}

// RenderText returns the text a provider should see for a conversation
// message. Messages written by other actors carry their origin label as a
// prefix so a model reading the shared log can tell who said what.
func RenderText(m core.Message) string {
	text := m.Text()
	if m.Role == core.RoleUser && m.Origin != "" && m.Origin != core.OriginUser {
		return fmt.Sprintf("[%s]: %s", m.Origin, text)
	}
	return text
}

// ToolResultText renders a function response as the text payload sent back
// to a provider.
func ToolResultText(fr core.FunctionResponse) string {
	if fr.Error != "" {
		return "error: " + fr.Error
	}
	switch v := fr.Response.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(b)
	}
}

// AssistantMessage builds an assistant message from provider parts.
func AssistantMessage(parts ...core.Part) core.Message {
	m := core.NewMessage("", core.RoleAssistant, "")
	m.Parts = parts
	return m
}

// MockModel is a lightweight in-memory Model useful for tests and examples.
//
// Queued messages (Enqueue / EnqueueError) are returned in order; once the
// queue is empty it falls back to canned responses keyed by the last
// message's text, and finally to an echo.
type MockModel struct {
	info      Info
	responses map[string]string

	mu       sync.Mutex
	queue    []mockStep
	requests []Request
}

type mockStep struct {
	msg core.Message
	err error
}

// NewMockModel constructs a MockModel with basic tool support enabled.
func NewMockModel(name, provider string) *MockModel {
	return &MockModel{
		info: Info{
			Name:          name,
			Provider:      provider,
			SupportsTools: true,
		},
		responses: make(map[string]string),
	}
}

// AddResponse registers a deterministic canned completion for an input prompt.
func (m *MockModel) AddResponse(prompt, response string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[prompt] = response
}

// Enqueue appends scripted assistant replies.
func (m *MockModel) Enqueue(msgs ...core.Message) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, msg := range msgs {
		m.queue = append(m.queue, mockStep{msg: msg})
	}
}

// EnqueueText appends scripted plain text replies.
func (m *MockModel) EnqueueText(texts ...string) {
	for _, t := range texts {
		m.Enqueue(AssistantMessage(core.TextPart{Text: t}))
	}
}

// EnqueueError makes the next Generate call fail with err.
func (m *MockModel) EnqueueError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = append(m.queue, mockStep{err: err})
}

// Requests returns a copy of every request received so far.
func (m *MockModel) Requests() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Request, len(m.requests))
	copy(out, m.requests)
	return out
}

func (m *MockModel) next(req Request) (core.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.requests = append(m.requests, req)

	if len(m.queue) > 0 {
		step := m.queue[0]
		m.queue = m.queue[1:]
		return step.msg, step.err
	}

	if len(req.Messages) == 0 {
		return core.Message{}, fmt.Errorf("no messages provided")
	}

	input := req.Messages[len(req.Messages)-1].Text()
	full := m.responses[input]
	if full == "" {
		full = fmt.Sprintf("Mock response to: %s", input)
	}

	return AssistantMessage(core.TextPart{Text: full}), nil
}

// Generate implements Model; emits optional streaming char chunks then final response.
func (m *MockModel) Generate(ctx context.Context, req Request) (<-chan Response, <-chan error) {
	respCh := make(chan Response, 16)
	errCh := make(chan error, 1)

	go func() {
		defer close(respCh)
		defer close(errCh)

		msg, err := m.next(req)
		if err != nil {
			errCh <- err
			return
		}

		if req.Stream {
			for _, r := range msg.Text() {
				select {
				case <-ctx.Done():
					errCh <- ctx.Err()
					return
				case respCh <- Response{Partial: true, Message: AssistantMessage(core.TextPart{Text: string(r)})}:
				}
			}
		}

		finish := "stop"
		if len(msg.FunctionCalls()) > 0 {
			finish = "tool_calls"
		}

		select {
		case <-ctx.Done():
			errCh <- ctx.Err()
		case respCh <- Response{Message: msg, FinishReason: finish}:
		}
	}()

	return respCh, errCh
}

// Info implements Model interface.
func (m *MockModel) Info() Info { return m.info }
