package testutil

import (
	"context"
	"errors"
	"sync"

	"github.com/hupe1980/teammesh/core"
)

// ScriptedDecider is a decision engine returning canned answers in order.
// Once the script is used up it keeps answering with Fallback (default
// core.Terminal). Every history it receives is recorded.
type ScriptedDecider struct {
	Fallback string

	mu        sync.Mutex
	script    []string
	errs      map[int]error
	histories [][]core.Message
}

// NewScriptedDecider creates a decider answering with answers in order.
func NewScriptedDecider(answers ...string) *ScriptedDecider {
	return &ScriptedDecider{Fallback: core.Terminal, script: answers}
}

// Always creates a decider that gives the same answer forever.
func Always(answer string) *ScriptedDecider {
	return &ScriptedDecider{Fallback: answer}
}

// FailOn makes the n-th call (1-based) fail with err instead of answering;
// failed calls do not consume the script.
func (d *ScriptedDecider) FailOn(n int, err error) *ScriptedDecider {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.errs == nil {
		d.errs = map[int]error{}
	}
	d.errs[n] = err
	return d
}

// Decide implements supervisor.DecisionEngine.
func (d *ScriptedDecider) Decide(ctx context.Context, history []core.Message) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.histories = append(d.histories, history)
	if err, ok := d.errs[len(d.histories)]; ok {
		return "", err
	}

	if len(d.script) == 0 {
		return d.Fallback, nil
	}

	answer := d.script[0]
	d.script = d.script[1:]
	return answer, nil
}

// Calls returns how often Decide was called.
func (d *ScriptedDecider) Calls() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.histories)
}

// Histories returns the histories passed to each call.
func (d *ScriptedDecider) Histories() [][]core.Message {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([][]core.Message, len(d.histories))
	copy(out, d.histories)
	return out
}

// StubActor is a configurable worker for routing tests.
type StubActor struct {
	ActorName string
	Desc      string
	// Reply returns the text to append. Defaults to "<name> done".
	Reply func(runCtx *core.RunContext, state *core.State) (string, error)
	// Scratch appends these messages before the reply to exercise forking.
	Scratch []string
	// Silent skips appending anything.
	Silent bool

	mu     sync.Mutex
	calls  int
	inputs []core.Message
}

var _ core.Actor = (*StubActor)(nil)

// NewEchoActor returns an actor replying "<name> done".
func NewEchoActor(name string) *StubActor {
	return &StubActor{ActorName: name}
}

// NewReplyActor returns an actor replying text.
func NewReplyActor(name, text string) *StubActor {
	return &StubActor{ActorName: name, Reply: func(*core.RunContext, *core.State) (string, error) {
		return text, nil
	}}
}

// NewFailingActor returns an actor that always fails with err.
func NewFailingActor(name string, err error) *StubActor {
	if err == nil {
		err = errors.New("boom")
	}
	return &StubActor{ActorName: name, Reply: func(*core.RunContext, *core.State) (string, error) {
		return "", err
	}}
}

// NewPanickingActor returns an actor that always panics with v.
func NewPanickingActor(name string, v any) *StubActor {
	return &StubActor{ActorName: name, Reply: func(*core.RunContext, *core.State) (string, error) {
		panic(v)
	}}
}

// NewLoopingActor returns an actor that consumes steps until the step budget
// stops it.
func NewLoopingActor(name string) *StubActor {
	return &StubActor{ActorName: name, Reply: func(runCtx *core.RunContext, _ *core.State) (string, error) {
		for {
			if err := runCtx.Step(); err != nil {
				return "", err
			}
		}
	}}
}

// Name implements core.Actor.
func (a *StubActor) Name() string { return a.ActorName }

// Description implements core.Actor.
func (a *StubActor) Description() string {
	if a.Desc == "" {
		return "Stub " + a.ActorName
	}
	return a.Desc
}

// Kind implements core.Actor.
func (a *StubActor) Kind() core.Kind { return core.KindWorker }

// Run implements core.Actor.
func (a *StubActor) Run(runCtx *core.RunContext, state *core.State) (*core.State, error) {
	latest, _ := state.Latest()

	a.mu.Lock()
	a.calls++
	a.inputs = append(a.inputs, latest)
	a.mu.Unlock()

	if a.Silent {
		return state, nil
	}

	for _, s := range a.Scratch {
		state.Log.Append(core.NewActorMessage(a.ActorName, s))
	}

	text := a.ActorName + " done"
	if a.Reply != nil {
		var err error
		if text, err = a.Reply(runCtx, state); err != nil {
			return nil, err
		}
	}

	state.Log.Append(core.NewActorMessage(a.ActorName, text))
	return state, nil
}

// Calls returns how often the actor ran.
func (a *StubActor) Calls() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.calls
}

// Inputs returns the latest message the actor saw on each call.
func (a *StubActor) Inputs() []core.Message {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]core.Message, len(a.inputs))
	copy(out, a.inputs)
	return out
}
