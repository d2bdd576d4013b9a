// Package core provides the foundational domain types, interfaces and execution
// contexts used by teammesh. It defines the core abstractions for:
//
//   - Messages (immutable records exchanged between actors)
//   - The conversation Log (append-only, causally ordered message history)
//   - State (the log plus the supervisor's routing field)
//   - Actors (workers and nested orchestrators dispatched by name)
//   - Budgets (bounded transition / step counters)
//   - RunContext / ToolContext (scoped execution & tool sandboxing)
//
// The package intentionally keeps implementation concerns (routing, concrete
// workers, model providers) out of scope, exposing small interfaces so the
// engine, agent and model packages can depend on it without cycles.
package core
