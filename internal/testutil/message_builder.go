package testutil

import (
	"time"

	"github.com/hupe1980/teammesh/core"
)

// MessageBuilder provides a fluent helper for constructing messages in tests.
// Example:
//
//	msg := NewMessageBuilder().Origin("research_team").Text("found 4 urls").Build()
//
// Chain only the parts you need; sensible defaults are applied.
type MessageBuilder struct {
	id        string
	runID     string
	origin    string
	role      string
	texts     []string
	calls     []core.FunctionCall
	responses []core.FunctionResponse
	ts        time.Time
}

// NewMessageBuilder creates a builder for a user message.
func NewMessageBuilder() *MessageBuilder {
	return &MessageBuilder{origin: core.OriginUser, role: core.RoleUser}
}

// ID overrides the generated message ID (chainable).
func (b *MessageBuilder) ID(id string) *MessageBuilder { b.id = id; return b }

// Run sets the run ID (chainable).
func (b *MessageBuilder) Run(id string) *MessageBuilder { b.runID = id; return b }

// Origin sets the origin label (chainable).
func (b *MessageBuilder) Origin(o string) *MessageBuilder { b.origin = o; return b }

// Role sets the conversation role (chainable).
func (b *MessageBuilder) Role(r string) *MessageBuilder { b.role = r; return b }

// At fixes the timestamp (chainable).
func (b *MessageBuilder) At(ts time.Time) *MessageBuilder { b.ts = ts; return b }

// Text appends a text part (chainable).
func (b *MessageBuilder) Text(t string) *MessageBuilder {
	b.texts = append(b.texts, t)
	return b
}

// Call appends a function call part and switches the role to assistant (chainable).
func (b *MessageBuilder) Call(id, name, args string) *MessageBuilder {
	b.role = core.RoleAssistant
	b.calls = append(b.calls, core.FunctionCall{ID: id, Name: name, Arguments: args})
	return b
}

// Response appends a function response part and switches the role to tool (chainable).
func (b *MessageBuilder) Response(id, name string, result any) *MessageBuilder {
	b.role = core.RoleTool
	b.responses = append(b.responses, core.FunctionResponse{ID: id, Name: name, Response: result})
	return b
}

// Build assembles the message.
func (b *MessageBuilder) Build() core.Message {
	msg := core.Message{
		ID:        b.id,
		RunID:     b.runID,
		Origin:    b.origin,
		Role:      b.role,
		Timestamp: b.ts,
	}
	if msg.ID == "" {
		msg.ID = core.NewID()
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now().UTC()
	}

	for _, t := range b.texts {
		msg.Parts = append(msg.Parts, core.TextPart{Text: t})
	}
	for _, c := range b.calls {
		msg.Parts = append(msg.Parts, core.FunctionCallPart{FunctionCall: c})
	}
	for _, r := range b.responses {
		msg.Parts = append(msg.Parts, core.FunctionResponsePart{FunctionResponse: r})
	}

	return msg
}

// Log builds a conversation log seeded with query followed by entries.
func Log(query string, entries ...core.Message) *core.Log {
	log := core.NewLog(core.NewUserMessage(query))
	for _, m := range entries {
		log.Append(m)
	}
	return log
}
