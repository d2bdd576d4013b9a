package core

// Kind tags the closed set of actor variants.
type Kind string

const (
	// KindWorker performs a task and produces one result message.
	KindWorker Kind = "worker"
	// KindOrchestrator is a complete nested orchestration exposed as one actor.
	KindOrchestrator Kind = "orchestrator"
)

// Actor is a named unit of work dispatched by the routing engine.
//
// Run receives a forked State (a private copy of the conversation log) and
// returns the state it produced; the latest message of the returned state is
// the actor's output. Actors never set State.Next and may fail freely: the
// engine's safe execution wrapper is the only caller and converts any error
// into a labeled failure message.
//
// Implementations must respect RunContext cancellation and consume one step
// from RunContext.Steps per internal iteration that may loop.
type Actor interface {
	Name() string
	Description() string
	Kind() Kind
	Run(runCtx *RunContext, state *State) (*State, error)
}

// AgentInfo carries identifying details about an actor used in contexts & logs.
// Name is the external identifier; Type categorizes the variant.
type AgentInfo struct{ Name, Type string }

// InfoOf builds the AgentInfo for an actor.
func InfoOf(a Actor) AgentInfo { return AgentInfo{Name: a.Name(), Type: string(a.Kind())} }
