package engine

import (
	"time"

	"github.com/hupe1980/teammesh/core"
	"github.com/hupe1980/teammesh/supervisor"
)

// Termination explains why a run ended.
type Termination string

const (
	// TerminatedBySupervisor means the supervisor chose the terminal marker.
	TerminatedBySupervisor Termination = "supervisor"
	// TerminatedByBudget means the run budget was spent.
	TerminatedByBudget Termination = "budget"
	// TerminatedUnparseable means a supervisor answer named no vocabulary
	// token and the run was forced to end.
	TerminatedUnparseable Termination = "unparseable"
	// TerminatedUnavailable means the decision engine kept failing and the
	// run was forced to end.
	TerminatedUnavailable Termination = "unavailable"
	// TerminatedCancelled means the context was cancelled.
	TerminatedCancelled Termination = "cancelled"
)

// Result is the outcome of one run.
type Result struct {
	// State is the final orchestration state. State.Next is core.Terminal
	// unless the run was cancelled.
	State *core.State
	// Trace is the node sequence of the run, e.g.
	// [supervisor A supervisor END].
	Trace []string
	// Decisions holds every supervisor decision in order.
	Decisions []supervisor.Decision
	// Reason tells how the run ended.
	Reason Termination
	// Steps counts dispatched actors.
	Steps int
	// Duration is the wall time of the run.
	Duration time.Duration
}

// Latest returns the last message of the final conversation log.
func (r *Result) Latest() (core.Message, bool) {
	if r == nil {
		return core.Message{}, false
	}
	return r.State.Latest()
}

// Messages returns the final conversation log.
func (r *Result) Messages() []core.Message {
	if r == nil || r.State == nil || r.State.Log == nil {
		return nil
	}
	return r.State.Log.Messages()
}

func terminationOf(d supervisor.Decision) Termination {
	switch d.Reason {
	case supervisor.ReasonUnparseable:
		return TerminatedUnparseable
	case supervisor.ReasonUnavailable:
		return TerminatedUnavailable
	default:
		return TerminatedBySupervisor
	}
}
