// Package tool implements the function calling subsystem that lets model
// backed workers invoke structured capabilities (searches, scrapers, artifact
// writes) with schema validated arguments and consistent error handling.
package tool

import (
	"fmt"

	"github.com/hupe1980/teammesh/core"
	"github.com/hupe1980/teammesh/internal/util"
)

// Tool defines the interface for extending worker capabilities with external functions.
//
// Tools are attached to a model-backed worker and offered to the model as
// callable functions. Each call receives a ToolContext scoped to the current
// run, giving access to logging and the run's artifact store.
//
// Tool implementations should be safe for concurrent use: one tool value may
// be shared by workers of different teams in the same process.
type Tool interface {
	// Name returns the unique identifier for this tool (snake_case recommended).
	Name() string

	// Description returns a human-readable description provided to the model.
	Description() string

	// Parameters returns a JSON schema describing the expected input format.
	Parameters() map[string]any

	// Call executes the tool with arguments decoded from the model's request.
	Call(toolCtx *core.ToolContext, args map[string]any) (any, error)
}

// ValidationError represents parameter validation errors with detailed information.
type ValidationError = util.ValidationError

// ToolError represents errors that occur during tool execution.
type ToolError struct {
	Tool    string `json:"tool"`              // Name of the tool that failed
	Message string `json:"message"`           // Error message
	Code    string `json:"code"`              // Error code for categorization
	Details any    `json:"details,omitempty"` // Additional error details
}

func (e *ToolError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("tool error [%s] in %s: %s", e.Code, e.Tool, e.Message)
	}
	return fmt.Sprintf("tool error in %s: %s", e.Tool, e.Message)
}

// NewToolError creates a new ToolError with the specified details.
func NewToolError(tool, message, code string) *ToolError {
	return &ToolError{
		Tool:    tool,
		Message: message,
		Code:    code,
	}
}

// Error codes attached to ToolError.
const (
	CodeValidation   = "VALIDATION_ERROR"
	CodeExecution    = "EXECUTION_ERROR"
	CodeNotFound     = "NOT_FOUND"
	CodeUnknownTool  = "UNKNOWN_TOOL"
	CodeInvalidInput = "INVALID_INPUT"
)

// Index maps tools by name. A duplicate name is reported as an error.
func Index(tools []Tool) (map[string]Tool, error) {
	out := make(map[string]Tool, len(tools))
	for _, t := range tools {
		if t == nil {
			continue
		}
		if _, dup := out[t.Name()]; dup {
			return nil, fmt.Errorf("duplicate tool name %q", t.Name())
		}
		out[t.Name()] = t
	}
	return out, nil
}
