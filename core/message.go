package core

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Conversation roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
	RoleSystem    = "system"
)

// OriginUser labels messages supplied by the caller of a run.
const OriginUser = "user"

// Message is the unit of communication between actors. Once appended to a
// Log it must be treated as immutable. It captures:
//   - Correlation (ID, RunID, Origin)
//   - Conversational content (role-based Parts)
//   - High precision UTC timestamp
type Message struct {
	ID        string    `json:"id"`
	RunID     string    `json:"run_id,omitempty"`
	Origin    string    `json:"origin"`
	Role      string    `json:"role"`
	Parts     []Part    `json:"parts"`
	Timestamp time.Time `json:"timestamp"`
}

// NewMessage creates a message with a single text part.
func NewMessage(origin, role, text string) Message {
	return Message{
		ID:        NewID(),
		Origin:    origin,
		Role:      role,
		Parts:     []Part{TextPart{Text: text}},
		Timestamp: time.Now().UTC(),
	}
}

// NewUserMessage creates a user-authored text message.
func NewUserMessage(text string) Message {
	return NewMessage(OriginUser, RoleUser, text)
}

// NewActorMessage creates a text message attributed to a named actor. Actor
// output is presented to the next reader as a human turn labeled with the
// actor's name.
func NewActorMessage(origin, text string) Message {
	return NewMessage(origin, RoleUser, text)
}

// NewFailureMessage renders an actor failure as an ordinary conversation
// message so the next supervisor decision can react to it.
func NewFailureMessage(origin string, err error) Message {
	return NewActorMessage(origin, fmt.Sprintf("Agent %s failed with error: %v", origin, err))
}

// NewFunctionCallMessage represents an assistant requesting execution of tools.
func NewFunctionCallMessage(origin string, calls ...FunctionCall) Message {
	parts := make([]Part, 0, len(calls))
	for _, fc := range calls {
		parts = append(parts, FunctionCallPart{FunctionCall: fc})
	}
	m := NewMessage(origin, RoleAssistant, "")
	m.Parts = parts
	return m
}

// NewFunctionResponseMessage records the completion result (or error) of a tool invocation.
func NewFunctionResponseMessage(origin, id, functionName string, result any, err error) Message {
	fr := FunctionResponse{ID: id, Name: functionName, Response: result}
	if err != nil {
		fr.Error = err.Error()
	}
	m := NewMessage(origin, RoleTool, "")
	m.Parts = []Part{FunctionResponsePart{FunctionResponse: fr}}
	return m
}

// NewID generates a new unique identifier for messages and runs.
func NewID() string { return uuid.NewString() }

// Text returns the concatenated text parts of the message.
func (m Message) Text() string {
	var b strings.Builder
	for _, p := range m.Parts {
		if tp, ok := p.(TextPart); ok {
			b.WriteString(tp.Text)
		}
	}
	return b.String()
}

// IsZero reports whether m is the empty message returned for an empty log.
func (m Message) IsZero() bool { return m.ID == "" && len(m.Parts) == 0 }

// FunctionCalls returns any FunctionCall parts preserving their original order.
func (m Message) FunctionCalls() []FunctionCall {
	var calls []FunctionCall
	for _, p := range m.Parts {
		if fc, ok := p.(FunctionCallPart); ok {
			calls = append(calls, fc.FunctionCall)
		}
	}
	return calls
}

// FunctionResponses returns any FunctionResponse parts preserving their original order.
func (m Message) FunctionResponses() []FunctionResponse {
	var responses []FunctionResponse
	for _, p := range m.Parts {
		if fr, ok := p.(FunctionResponsePart); ok {
			responses = append(responses, fr.FunctionResponse)
		}
	}
	return responses
}

// Relabel returns a copy of m attributed to origin as a fresh text message.
// The original message is left untouched.
func (m Message) Relabel(origin string) Message {
	return NewActorMessage(origin, m.Text())
}
