// Package supervisor implements the routing decision of an orchestrator.
//
// A Supervisor asks a DecisionEngine (usually a language model through
// ModelDecider) which member should act next, extracts the first member name
// or the terminal marker from the raw answer and records it in State.Next.
// Unparseable answers and an unavailable decision engine both resolve to
// core.Terminal, so a run always reaches a well-defined end.
package supervisor
