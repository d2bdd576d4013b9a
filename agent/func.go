package agent

import "github.com/hupe1980/teammesh/core"

// WorkFunc produces a worker's answer from the conversation it was handed.
type WorkFunc func(runCtx *core.RunContext, history []core.Message) (string, error)

// FuncWorker adapts a plain Go function into a worker. The returned text is
// appended to the state as a message attributed to the worker.
type FuncWorker struct {
	BaseActor
	fn WorkFunc
}

// NewFuncWorker creates a worker backed by fn.
func NewFuncWorker(name, description string, fn WorkFunc) *FuncWorker {
	return &FuncWorker{BaseActor: NewBaseActor(name, description), fn: fn}
}

// Run implements core.Actor.
func (w *FuncWorker) Run(runCtx *core.RunContext, state *core.State) (*core.State, error) {
	if err := runCtx.Err(); err != nil {
		return nil, err
	}
	if err := runCtx.Step(); err != nil {
		return nil, err
	}

	text, err := w.fn(runCtx, state.Log.Messages())
	if err != nil {
		return nil, err
	}

	state.Log.Append(core.NewActorMessage(w.Name(), text))

	return state, nil
}
