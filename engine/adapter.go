package engine

import (
	"fmt"

	"github.com/hupe1980/teammesh/core"
	"github.com/hupe1980/teammesh/observe"
)

// AdapterOptions configures a SubOrchestrator.
type AdapterOptions struct {
	// Name is the actor name seen by the outer supervisor. Defaults to the
	// engine name.
	Name string
	// Description is shown to the outer supervisor. Defaults to the engine
	// description.
	Description string
	// RunBudget is the inner run budget. Defaults to the engine's own.
	RunBudget int
	// Observer replaces the engine observer for runs started through this
	// adapter.
	Observer observe.Observer
}

// SubOrchestrator exposes a complete Engine as one actor.
//
// On entry the inner run is seeded with the latest outer message only. The
// inner engine then runs to termination with its own run budget, and its
// final message becomes the adapter's single output; the outer wrapper
// labels it with the adapter name. Inner cancellation is reported as an
// error so the outer wrapper records it like any other failure.
type SubOrchestrator struct {
	engine      *Engine
	name        string
	description string
	runBudget   int
}

var _ core.Actor = (*SubOrchestrator)(nil)

// AsActor wraps the engine so it can be registered in an outer engine.
func (e *Engine) AsActor(optFns ...func(o *AdapterOptions)) *SubOrchestrator {
	opts := AdapterOptions{
		Name:        e.name,
		Description: e.description,
		RunBudget:   e.config.RunBudget,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	inner := e
	if opts.Observer != nil {
		cp := *e
		cp.observer = opts.Observer
		inner = &cp
	}

	return &SubOrchestrator{
		engine:      inner,
		name:        opts.Name,
		description: opts.Description,
		runBudget:   opts.RunBudget,
	}
}

// Name implements core.Actor.
func (s *SubOrchestrator) Name() string { return s.name }

// Description implements core.Actor.
func (s *SubOrchestrator) Description() string { return s.description }

// Kind implements core.Actor.
func (s *SubOrchestrator) Kind() core.Kind { return core.KindOrchestrator }

// Engine returns the wrapped engine.
func (s *SubOrchestrator) Engine() *Engine { return s.engine }

// Graph returns the run graph of the wrapped engine.
func (s *SubOrchestrator) Graph() *Graph { return s.engine.Graph() }

// Run implements core.Actor.
func (s *SubOrchestrator) Run(runCtx *core.RunContext, state *core.State) (*core.State, error) {
	if err := runCtx.Err(); err != nil {
		return nil, err
	}

	latest, ok := state.Latest()
	if !ok {
		return nil, fmt.Errorf("%s: no message to hand over", s.name)
	}

	res, err := s.engine.run(runCtx.Nested(s.name), core.SeedState(latest), s.runBudget)
	if err != nil {
		return nil, err
	}

	out, _ := res.Latest()
	state.Log.Append(out)

	return state, nil
}
