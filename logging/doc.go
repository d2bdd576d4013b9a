// Package logging provides a minimal logging interface and adapters for teammesh.
//
// The Logger interface defines the structured logging methods (Debug, Info,
// Warn, Error) that the engine, supervisors and workers use for
// observability. This package includes:
//
//   - Logger interface for dependency injection
//   - SlogAdapter wrapping Go's structured logging
//   - StructuredLogger with run/actor scoping and routing helpers
//   - NoOpLogger for silent operation (testing, minimal setups)
//
// Usage:
//
//	logger := logging.NewSlogLogger(logging.LogLevelInfo, "json", false)
//	board, _ := engine.New("chief_editor", decider, actors, func(o *engine.Options) {
//		o.Logger = logger
//	})
package logging
