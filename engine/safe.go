package engine

import (
	"fmt"
	"runtime/debug"
	"time"

	"github.com/hupe1980/teammesh/core"
)

// StepOutcome describes one pass through the safe execution wrapper.
type StepOutcome struct {
	// Message is the labeled message appended to the shared log.
	Message core.Message
	// Failure is set when the actor failed or panicked. It has already been
	// rendered into Message.
	Failure *core.ActorFailure
	// Duration is the wall time of the actor invocation.
	Duration time.Duration
}

// RunSafe invokes actor on a fork of state with a child RunContext bounded
// by stepBudget, then appends exactly one message labeled with the actor's
// name to state:
//   - on success, the text of the actor's latest message
//   - on failure or panic, "Agent <name> failed with error: <cause>"
//   - when the actor produced no message, an empty message
//
// Scratch messages the actor appended to its fork never reach state. RunSafe
// never fails; callers inspect the outcome for diagnostics only.
func RunSafe(runCtx *core.RunContext, actor core.Actor, state *core.State, stepBudget int) StepOutcome {
	name := actor.Name()
	child := runCtx.Child(core.InfoOf(actor), stepBudget)
	fork := state.Fork()
	before := fork.Log.Len()

	start := time.Now()
	out, err := invoke(child, actor, fork)
	dur := time.Since(start)

	var (
		msg     core.Message
		failure *core.ActorFailure
	)

	switch {
	case err != nil:
		failure = core.NewActorFailure(name, err)
		msg = core.NewFailureMessage(name, err)
		runCtx.LogError("actor.failed", "actor", name, "path", runCtx.Path, "error", err.Error())
	case out == nil || out.Log == nil || out.Log.Len() <= before:
		msg = core.NewActorMessage(name, "")
		runCtx.LogWarn("actor.empty.result", "actor", name, "path", runCtx.Path)
	default:
		latest, _ := out.Log.Latest()
		msg = latest.Relabel(name)
		runCtx.LogDebug("actor.result", "actor", name, "path", runCtx.Path, "length", len(msg.Text()))
	}

	msg.RunID = runCtx.RunID
	state.Log.Append(msg)

	return StepOutcome{Message: msg, Failure: failure, Duration: dur}
}

// invoke runs the actor, converting a panic into an error.
func invoke(runCtx *core.RunContext, actor core.Actor, state *core.State) (out *core.State, err error) {
	defer func() {
		if r := recover(); r != nil {
			runCtx.LogError("actor.panic", "actor", actor.Name(), "stack", string(debug.Stack()))
			out, err = nil, fmt.Errorf("panic: %v", r)
		}
	}()

	return actor.Run(runCtx, state)
}
