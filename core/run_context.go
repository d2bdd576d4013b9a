package core

import (
	"context"
	"fmt"

	"github.com/hupe1980/teammesh/logging"
)

// RunContext carries execution state & helpers for one orchestration run or
// one actor invocation within it. It aggregates:
//   - The ambient cancellation Context
//   - Identifiers (RunID, Path inside the orchestrator tree, Agent info)
//   - The step budget bounding the current actor's internal iterations
//   - The artifact store shared by the whole run tree
//
// A RunContext is owned by a single goroutine; derive new scopes with Child
// or Nested instead of mutating a shared one.
type RunContext struct {
	Context       context.Context
	RunID         string
	Path          string
	Depth         int
	Agent         AgentInfo
	Steps         *Budget
	ArtifactStore ArtifactStore

	*runLogger
}

// NewRunContext constructs a root RunContext for an orchestrator named path.
func NewRunContext(
	ctx context.Context,
	runID, path string,
	artifactStore ArtifactStore,
	logger logging.Logger,
) *RunContext {
	if runID == "" {
		runID = NewID()
	}
	return &RunContext{
		Context:       ctx,
		RunID:         runID,
		Path:          path,
		Agent:         AgentInfo{Name: path, Type: string(KindOrchestrator)},
		Steps:         NewBudget(0),
		ArtifactStore: artifactStore,
		runLogger:     newRunLogger(logger, "run.id", runID, "run.path", path),
	}
}

// Done returns a channel closed when the underlying context is cancelled.
func (rc *RunContext) Done() <-chan struct{} { return rc.Context.Done() }

// Err returns the cancellation error (if any) from the underlying context.
func (rc *RunContext) Err() error { return rc.Context.Err() }

// Child derives the scope for one actor invocation with a fresh step budget.
func (rc *RunContext) Child(agent AgentInfo, maxSteps int) *RunContext {
	child := *rc
	child.Agent = agent
	child.Steps = NewBudget(maxSteps)
	return &child
}

// Nested derives the scope for an inner orchestrator named name. The run id
// and artifact store are shared; path and depth grow.
func (rc *RunContext) Nested(name string) *RunContext {
	child := *rc
	child.Path = rc.Path + "/" + name
	child.Depth = rc.Depth + 1
	child.runLogger = newRunLogger(rc.Logger(), "run.id", rc.RunID, "run.path", child.Path)
	child.Agent = AgentInfo{Name: name, Type: string(KindOrchestrator)}
	child.Steps = NewBudget(0)
	return &child
}

// WithContext returns a shallow copy bound to ctx.
func (rc *RunContext) WithContext(ctx context.Context) *RunContext {
	child := *rc
	child.Context = ctx
	return &child
}

// Step consumes one unit of the step budget, returning an error wrapping
// ErrStepLimit once the actor has used all of its steps.
func (rc *RunContext) Step() error {
	if err := rc.Steps.Consume(); err != nil {
		return fmt.Errorf("%s: %w (%d steps)", rc.Agent.Name, ErrStepLimit, rc.Steps.Max())
	}
	return nil
}

// SaveArtifact stores bytes in the ArtifactStore under the run id.
func (rc *RunContext) SaveArtifact(id string, data []byte) error {
	if rc.ArtifactStore == nil {
		return fmt.Errorf("artifact store not configured")
	}
	return rc.ArtifactStore.Save(rc.RunID, id, data)
}

// GetArtifact retrieves previously saved artifact bytes.
func (rc *RunContext) GetArtifact(id string) ([]byte, error) {
	if rc.ArtifactStore == nil {
		return nil, fmt.Errorf("artifact store not configured")
	}
	return rc.ArtifactStore.Get(rc.RunID, id)
}

// ListArtifacts returns artifact IDs stored for the run.
func (rc *RunContext) ListArtifacts() ([]string, error) {
	if rc.ArtifactStore == nil {
		return []string{}, nil
	}
	return rc.ArtifactStore.List(rc.RunID)
}
