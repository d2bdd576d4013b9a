package core

// Part represents a polymorphic segment of message content. Concrete part
// types implement the unexported isPart marker enabling a closed set.
type Part interface{ isPart() }

// TextPart is a plain text content segment.
type TextPart struct {
	Text     string         // Plain UTF-8 text
	Metadata map[string]any // Optional producer-provided metadata
}

// isPart implements the Part interface for TextPart.
func (TextPart) isPart() {}

// FunctionCall describes a tool/function invocation request.
type FunctionCall struct {
	ID        string `json:"id,omitempty"`        // Optional stable id (can be supplied later)
	Name      string `json:"name"`                // Tool / function name
	Arguments string `json:"arguments,omitempty"` // Serialized argument payload (e.g. JSON)
}

// FunctionCallPart wraps a FunctionCall as a content part.
type FunctionCallPart struct {
	FunctionCall FunctionCall
	Metadata     map[string]any
}

// isPart implements the Part interface for FunctionCallPart.
func (FunctionCallPart) isPart() {}

// FunctionResponse describes the outcome of a function call.
type FunctionResponse struct {
	ID       string `json:"id,omitempty"`       // Matches originating FunctionCall ID
	Name     string `json:"name"`               // Function name
	Response any    `json:"response,omitempty"` // Successful result (any shape)
	Error    string `json:"error,omitempty"`    // Populated on failure
}

// FunctionResponsePart wraps a FunctionResponse as a content part.
type FunctionResponsePart struct {
	FunctionResponse FunctionResponse
	Metadata         map[string]any
}

// isPart implements the Part interface for FunctionResponsePart.
func (FunctionResponsePart) isPart() {}
