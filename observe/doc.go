// Package observe defines the observability sink of an orchestration run.
//
// The engine reports run start and end, every supervisor decision and every
// actor step to an Observer. Observers are strictly passive: the engine
// recovers their panics and never lets them influence routing. Start hooks
// return a context so implementations such as OTel can nest spans of inner
// orchestrators under the step that invoked them.
//
// Implementations:
//   - NoOp discards everything
//   - Recorder keeps an in-memory structured trace
//   - OTel emits OpenTelemetry spans
//   - Multi fans out to several observers
package observe
