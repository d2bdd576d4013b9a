// Package logging provides a tiny abstraction over slog so downstream code can
// depend on a minimal interface (Logger) while allowing users to plug any
// structured logger. It also offers a richer StructuredLogger with contextual
// helpers (run, orchestrator path, component) and domain specific logging
// helpers for routing decisions, actor steps and model calls.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strings"
	"time"
)

// LogLevel is a thin enum for user friendly level configuration decoupled from slog.
type LogLevel int

const (
	// LogLevelDebug is the debug logging level.
	LogLevelDebug LogLevel = iota
	// LogLevelInfo is the informational logging level.
	LogLevelInfo
	// LogLevelWarn is the warning logging level.
	LogLevelWarn
	// LogLevelError is the error logging level.
	LogLevelError
)

// String returns the string representation of the log level.
func (l LogLevel) String() string {
	switch l {
	case LogLevelDebug:
		return "DEBUG"
	case LogLevelInfo:
		return "INFO"
	case LogLevelWarn:
		return "WARN"
	case LogLevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel converts a case-insensitive level name ("debug", "info",
// "warn"/"warning", "error") into a LogLevel.
func ParseLevel(s string) (LogLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LogLevelDebug, nil
	case "", "info":
		return LogLevelInfo, nil
	case "warn", "warning":
		return LogLevelWarn, nil
	case "error":
		return LogLevelError, nil
	default:
		return LogLevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

// Logger defines the minimal logging interface for teammesh.
// This allows users to provide their own logger implementation or use the built-in adapters.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// SlogAdapter wraps *slog.Logger to implement the Logger interface.
type SlogAdapter struct {
	*slog.Logger
}

// Debug logs a debug message.
func (s *SlogAdapter) Debug(msg string, args ...any) { s.Logger.Debug(msg, args...) }

// Info logs an informational message.
func (s *SlogAdapter) Info(msg string, args ...any) { s.Logger.Info(msg, args...) }

// Warn logs a warning message.
func (s *SlogAdapter) Warn(msg string, args ...any) { s.Logger.Warn(msg, args...) }

// Error logs an error message.
func (s *SlogAdapter) Error(msg string, args ...any) { s.Logger.Error(msg, args...) }

// NewSlogAdapter creates a Logger from *slog.Logger.
func NewSlogAdapter(logger *slog.Logger) Logger {
	return &SlogAdapter{Logger: logger}
}

// NewDefaultSlogLogger creates a Logger using slog.Default().
func NewDefaultSlogLogger() Logger {
	return NewSlogAdapter(slog.Default())
}

// StructuredLogger wraps slog.Logger adding contextual cloning helpers and
// routing specific convenience methods. With* methods return copies.
type StructuredLogger struct {
	logger    *slog.Logger
	level     LogLevel
	context   map[string]any
	component string
	runID     string
	path      string
}

// LoggerConfig configures construction of a StructuredLogger.
type LoggerConfig struct {
	Level       LogLevel
	Format      string // json or text
	Output      io.Writer
	AddSource   bool
	Component   string
	CustomAttrs map[string]any
}

// DefaultLoggerConfig returns a baseline text info level configuration
// writing to stderr so command output on stdout stays clean.
func DefaultLoggerConfig() *LoggerConfig {
	return &LoggerConfig{Level: LogLevelInfo, Format: "text", Output: os.Stderr, CustomAttrs: map[string]any{}}
}

// NewLogger builds a StructuredLogger from a config (or defaults if nil).
func NewLogger(cfg *LoggerConfig) *StructuredLogger {
	if cfg == nil {
		cfg = DefaultLoggerConfig()
	}
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	opts := &slog.HandlerOptions{Level: slogLevel(cfg.Level), AddSource: cfg.AddSource}
	var handler slog.Handler
	if strings.EqualFold(cfg.Format, "json") {
		handler = slog.NewJSONHandler(out, opts)
	} else {
		handler = slog.NewTextHandler(out, opts)
	}
	l := &StructuredLogger{logger: slog.New(handler), level: cfg.Level, context: map[string]any{}, component: cfg.Component}
	for k, v := range cfg.CustomAttrs {
		l.context[k] = v
	}
	return l
}

func slogLevel(l LogLevel) slog.Level {
	switch l {
	case LogLevelDebug:
		return slog.LevelDebug
	case LogLevelInfo:
		return slog.LevelInfo
	case LogLevelWarn:
		return slog.LevelWarn
	case LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (l *StructuredLogger) clone() *StructuredLogger {
	nl := *l
	nl.context = make(map[string]any, len(l.context))
	for k, v := range l.context {
		nl.context[k] = v
	}
	return &nl
}

// WithContext adds a key/value attribute that will be attached to every log entry.
func (l *StructuredLogger) WithContext(key string, value any) *StructuredLogger {
	nl := l.clone()
	nl.context[key] = value
	return nl
}

// WithComponent sets the logical component (engine, supervisor, worker, etc.).
func (l *StructuredLogger) WithComponent(c string) *StructuredLogger {
	nl := l.clone()
	nl.component = c
	return nl
}

// WithRun attaches the run identifier and orchestrator path.
func (l *StructuredLogger) WithRun(runID, path string) *StructuredLogger {
	nl := l.clone()
	nl.runID = runID
	nl.path = path
	return nl
}

func (l *StructuredLogger) buildAttrs() []slog.Attr {
	attrs := make([]slog.Attr, 0, len(l.context)+3)
	if l.component != "" {
		attrs = append(attrs, slog.String("component", l.component))
	}
	if l.runID != "" {
		attrs = append(attrs, slog.String("run_id", l.runID))
	}
	if l.path != "" {
		attrs = append(attrs, slog.String("path", l.path))
	}
	for k, v := range l.context {
		attrs = append(attrs, slog.Any(k, v))
	}
	return attrs
}

func (l *StructuredLogger) log(level slog.Level, allowed bool, msg string, args ...any) {
	if !allowed {
		return
	}
	r := slog.NewRecord(time.Now(), level, msg, 0)
	r.AddAttrs(l.buildAttrs()...)
	r.Add(args...)
	_ = l.logger.Handler().Handle(context.Background(), r)
}

// Debug logs at debug level. args are alternating key/value pairs.
func (l *StructuredLogger) Debug(msg string, args ...any) {
	l.log(slog.LevelDebug, l.level <= LogLevelDebug, msg, args...)
}

// Info logs at info level.
func (l *StructuredLogger) Info(msg string, args ...any) {
	l.log(slog.LevelInfo, l.level <= LogLevelInfo, msg, args...)
}

// Warn logs at warn level.
func (l *StructuredLogger) Warn(msg string, args ...any) {
	l.log(slog.LevelWarn, l.level <= LogLevelWarn, msg, args...)
}

// Error logs at error level.
func (l *StructuredLogger) Error(msg string, args ...any) {
	l.log(slog.LevelError, l.level <= LogLevelError, msg, args...)
}

// ErrorWithStack logs an error plus a runtime stack snapshot.
func (l *StructuredLogger) ErrorWithStack(err error, msg string, args ...any) {
	if l.level > LogLevelError {
		return
	}
	stack := make([]byte, 4096)
	n := runtime.Stack(stack, false)
	args = append(args,
		"error", err.Error(),
		"error_type", fmt.Sprintf("%T", err),
		"stack_trace", string(stack[:n]),
	)
	l.log(slog.LevelError, true, msg, args...)
}

// LogDecision records one supervisor routing decision.
func (l *StructuredLogger) LogDecision(supervisor, next, raw, reason string, attempts int) {
	level := slog.LevelInfo
	if reason != "routed" && reason != "terminal" {
		level = slog.LevelWarn
	}
	l.log(level, l.level <= levelOf(level), "supervisor.decision",
		"supervisor", supervisor,
		"next", next,
		"reason", reason,
		"attempts", attempts,
		"raw", raw,
	)
}

// LogStep records the outcome of one actor invocation.
func (l *StructuredLogger) LogStep(actor string, step int, dur time.Duration, err error) {
	if err != nil {
		l.log(slog.LevelWarn, l.level <= LogLevelWarn, "actor.step.failed",
			"actor", actor, "step", step, "duration", dur, "error", err.Error())
		return
	}
	l.log(slog.LevelInfo, l.level <= LogLevelInfo, "actor.step.completed",
		"actor", actor, "step", step, "duration", dur)
}

// LogRun records aggregate orchestration run metrics.
func (l *StructuredLogger) LogRun(orchestrator, termination string, steps int, dur time.Duration, err error) {
	args := []any{"orchestrator", orchestrator, "termination", termination, "steps", steps, "duration", dur}
	if err != nil {
		args = append(args, "error", err.Error())
		l.log(slog.LevelError, l.level <= LogLevelError, "run.failed", args...)
		return
	}
	l.log(slog.LevelInfo, l.level <= LogLevelInfo, "run.completed", args...)
}

// LogModelCall records model call latency, token usage and success.
func (l *StructuredLogger) LogModelCall(model string, tokens int, dur time.Duration, err error) {
	args := []any{"model", model, "token_count", tokens, "duration", dur}
	if err != nil {
		args = append(args, "error", err.Error())
		l.log(slog.LevelError, l.level <= LogLevelError, "model.call.failed", args...)
		return
	}
	l.log(slog.LevelDebug, l.level <= LogLevelDebug, "model.call.completed", args...)
}

// LogToolCall records execution details for a tool invocation.
func (l *StructuredLogger) LogToolCall(tool string, dur time.Duration, err error) {
	args := []any{"tool_name", tool, "duration", dur}
	if err != nil {
		args = append(args, "error", err.Error())
		l.log(slog.LevelError, l.level <= LogLevelError, "tool.call.failed", args...)
		return
	}
	l.log(slog.LevelDebug, l.level <= LogLevelDebug, "tool.call.completed", args...)
}

// StartTimer returns a closure that logs the elapsed duration when invoked.
func (l *StructuredLogger) StartTimer(op string) func() {
	start := time.Now()
	return func() { l.Debug("operation.completed", "operation", op, "duration", time.Since(start)) }
}

func levelOf(level slog.Level) LogLevel {
	switch {
	case level <= slog.LevelDebug:
		return LogLevelDebug
	case level <= slog.LevelInfo:
		return LogLevelInfo
	case level <= slog.LevelWarn:
		return LogLevelWarn
	default:
		return LogLevelError
	}
}

// NoOpLogger discards all log messages. Useful for testing or when logging is disabled.
type NoOpLogger struct{}

// Debug logs a debug message.
func (NoOpLogger) Debug(string, ...any) {}

// Info logs an informational message.
func (NoOpLogger) Info(string, ...any) {}

// Warn logs a warning message.
func (NoOpLogger) Warn(string, ...any) {}

// Error logs an error message.
func (NoOpLogger) Error(string, ...any) {}

// NewSlogLogger creates a new StructuredLogger with the specified configuration.
func NewSlogLogger(level LogLevel, format string, addSource bool) *StructuredLogger {
	cfg := DefaultLoggerConfig()
	cfg.Level = level
	if format != "" {
		cfg.Format = format
	}
	cfg.AddSource = addSource
	return NewLogger(cfg)
}
