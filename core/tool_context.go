package core

import (
	"context"
	"fmt"

	"github.com/hupe1980/teammesh/logging"
)

// ToolContext provides a constrained, auditable surface for tool / function
// implementations invoked by a worker. It records the artifacts a call wrote
// so the worker can report them alongside the tool response.
type ToolContext struct {
	runCtx         *RunContext
	functionCallID string
	written        map[string]int

	*runLogger
}

// NewToolContext constructs a tool context bound to a parent RunContext
// and unique functionCallID.
func NewToolContext(runCtx *RunContext, functionCallID string) *ToolContext {
	return &ToolContext{
		runCtx:         runCtx,
		functionCallID: functionCallID,
		written:        map[string]int{},
		runLogger:      runCtx.runLogger.with("tool.call_id", functionCallID),
	}
}

// Context returns the context associated with the tool invocation.
func (tc *ToolContext) Context() context.Context { return tc.runCtx.Context }

// RunID returns the run ID associated with the tool invocation.
func (tc *ToolContext) RunID() string { return tc.runCtx.RunID }

// Logger returns the logger associated with the tool invocation.
func (tc *ToolContext) Logger() logging.Logger { return tc.runLogger.Logger() }

// FunctionCallID returns the function call ID associated with the tool invocation.
func (tc *ToolContext) FunctionCallID() string { return tc.functionCallID }

// AgentName returns the name of the actor executing the tool.
func (tc *ToolContext) AgentName() string { return tc.runCtx.Agent.Name }

// SaveArtifact persists artifact bytes and records the size written.
func (tc *ToolContext) SaveArtifact(id string, data []byte) error {
	if err := tc.runCtx.SaveArtifact(id, data); err != nil {
		return err
	}
	tc.written[id] = len(data)
	tc.LogDebug("tool.artifact.saved", "agent", tc.AgentName(), "artifact", id, "bytes", len(data))
	return nil
}

// LoadArtifact retrieves a persisted artifact by id.
func (tc *ToolContext) LoadArtifact(id string) ([]byte, error) {
	return tc.runCtx.GetArtifact(id)
}

// ListArtifacts returns artifact IDs stored for the run.
func (tc *ToolContext) ListArtifacts() ([]string, error) {
	return tc.runCtx.ListArtifacts()
}

// Written returns a copy of artifact id -> byte count saved through this context.
func (tc *ToolContext) Written() map[string]int {
	out := make(map[string]int, len(tc.written))
	for k, v := range tc.written {
		out[k] = v
	}
	return out
}

// Validate performs a structural sanity check of the context.
func (tc *ToolContext) Validate() error {
	if tc.runCtx == nil || tc.runCtx.RunID == "" || tc.functionCallID == "" {
		return fmt.Errorf("invalid ToolContext")
	}
	return nil
}
