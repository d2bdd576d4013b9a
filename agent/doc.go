// Package agent contains the worker implementations dispatched by a
// supervisor-driven team.
//
// A worker receives a private fork of the team conversation, does its job and
// leaves its answer as the latest message of the state it returns. The
// package focuses on three concerns:
//
//  1. Identity plumbing shared by all workers (BaseActor)
//  2. Plain Go workers (FuncWorker) for deterministic steps and tests
//  3. Model-centric tool-calling workers (ModelWorker)
//
// Execution Model:
//   - Run receives a *core.RunContext scoped to one invocation with its own step budget
//   - ModelWorker consumes one step per model call and stops with core.ErrStepLimit
//   - Tool calls of a single model turn run in parallel through ToolExecutor
//
// Workers never set the routing field of the state and may return errors
// freely; the engine turns every failure into a labeled message.
package agent
