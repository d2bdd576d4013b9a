package tool

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hupe1980/teammesh/core"
	"github.com/hupe1980/teammesh/internal/util"
)

// FunctionFunc is the body of a FunctionTool. args have already been checked
// against the tool's parameter schema.
type FunctionFunc func(toolCtx *core.ToolContext, args map[string]any) (any, error)

// FunctionTool exposes a plain Go function to a worker's model. Arguments
// are validated against a minimal JSON schema before fn runs, and every
// failure reaches the worker as a *ToolError so it can be reported back to
// the model as a function response instead of aborting the actor.
//
// A FunctionTool holds no mutable state and may be shared by workers of
// different teams.
type FunctionTool struct {
	name        string
	description string
	parameters  map[string]any
	fn          FunctionFunc
}

// NewFunctionTool constructs a FunctionTool from an explicit schema.
//
//	lookup := NewFunctionTool(
//	  "lookup_source",
//	  "Fetch the abstract of a cited source",
//	  map[string]any{
//	    "type":       "object",
//	    "properties": map[string]any{"doi": map[string]any{"type": "string"}},
//	    "required":   []string{"doi"},
//	  },
//	  func(tc *core.ToolContext, args map[string]any) (any, error) {
//	    return abstracts[args["doi"].(string)], nil
//	  },
//	)
func NewFunctionTool(name, description string, parameters map[string]any, fn FunctionFunc) *FunctionTool {
	return &FunctionTool{
		name:        name,
		description: description,
		parameters:  parameters,
		fn:          fn,
	}
}

// NewFunctionToolFromStruct derives the parameter schema from the json and
// description tags of structType.
func NewFunctionToolFromStruct(name, description string, structType any, fn FunctionFunc) *FunctionTool {
	return NewFunctionTool(name, description, util.CreateSchema(structType), fn)
}

// NewTypedFunctionTool is NewFunctionToolFromStruct with the arguments
// decoded into a T before fn runs.
//
//	type draftArgs struct {
//	  Section string `json:"section" description:"Section to draft"`
//	}
//
//	draft := NewTypedFunctionTool("draft_section", "Draft one section",
//	  func(tc *core.ToolContext, a draftArgs) (any, error) { ... })
func NewTypedFunctionTool[T any](
	name, description string,
	fn func(toolCtx *core.ToolContext, args T) (any, error),
) *FunctionTool {
	var zero T
	return NewFunctionToolFromStruct(name, description, zero, func(toolCtx *core.ToolContext, raw map[string]any) (any, error) {
		var args T
		b, err := json.Marshal(raw)
		if err == nil {
			err = json.Unmarshal(b, &args)
		}
		if err != nil {
			return nil, &ToolError{
				Tool:    name,
				Message: fmt.Sprintf("decode arguments: %v", err),
				Code:    CodeInvalidInput,
				Details: err,
			}
		}
		return fn(toolCtx, args)
	})
}

// Name returns the name the model calls the tool by.
func (t *FunctionTool) Name() string { return t.name }

// Description returns the text offered to the model.
func (t *FunctionTool) Description() string { return t.description }

// Parameters returns the JSON schema of the accepted arguments.
func (t *FunctionTool) Parameters() map[string]any { return t.parameters }

// Call validates args and invokes the function.
//
//	*ToolError returned by fn  -> forwarded unchanged
//	schema mismatch            -> CodeValidation
//	any other error            -> CodeExecution
func (t *FunctionTool) Call(toolCtx *core.ToolContext, args map[string]any) (any, error) {
	start := time.Now()
	toolCtx.LogDebug("tool.call.start", "tool", t.name, "actor", toolCtx.AgentName())

	if err := util.ValidateParameters(args, t.parameters); err != nil {
		toolCtx.LogWarn("tool.call.invalid", "tool", t.name, "error", err.Error())
		return nil, &ToolError{
			Tool:    t.name,
			Message: fmt.Sprintf("parameter validation failed: %v", err),
			Code:    CodeValidation,
			Details: err,
		}
	}

	result, err := t.fn(toolCtx, args)
	if err != nil {
		toolCtx.LogError("tool.call.failed", "tool", t.name, "error", err.Error())
		var toolErr *ToolError
		if errors.As(err, &toolErr) {
			return nil, toolErr
		}
		return nil, &ToolError{
			Tool:    t.name,
			Message: err.Error(),
			Code:    CodeExecution,
		}
	}

	toolCtx.LogDebug("tool.call.done",
		"tool", t.name,
		"artifacts.written", len(toolCtx.Written()),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return result, nil
}
