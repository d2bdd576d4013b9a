package core

import "github.com/hupe1980/teammesh/logging"

// runLogger is embedded by RunContext and ToolContext. Every record it
// emits is prefixed with the scope of the run it belongs to (run id and
// orchestrator path, plus the function call id inside a tool), so log
// lines from nested teams can be correlated without each call site
// repeating them.
type runLogger struct {
	base  logging.Logger
	scope []any
}

// newRunLogger scopes base to kv. A nil base logs nothing.
func newRunLogger(base logging.Logger, kv ...any) *runLogger {
	if base == nil {
		base = logging.NoOpLogger{}
	}
	return &runLogger{base: base, scope: kv}
}

// with returns a logger whose scope extends l's by kv.
func (l *runLogger) with(kv ...any) *runLogger {
	scope := make([]any, 0, len(l.scope)+len(kv))
	scope = append(scope, l.scope...)
	scope = append(scope, kv...)
	return &runLogger{base: l.base, scope: scope}
}

func (l *runLogger) scoped(args []any) []any {
	if len(l.scope) == 0 {
		return args
	}
	out := make([]any, 0, len(l.scope)+len(args))
	out = append(out, l.scope...)
	return append(out, args...)
}

// Logger returns the unscoped logger the run was started with.
func (l *runLogger) Logger() logging.Logger { return l.base }

func (l *runLogger) LogDebug(msg string, args ...any) { l.base.Debug(msg, l.scoped(args)...) }

func (l *runLogger) LogInfo(msg string, args ...any) { l.base.Info(msg, l.scoped(args)...) }

func (l *runLogger) LogWarn(msg string, args ...any) { l.base.Warn(msg, l.scoped(args)...) }

func (l *runLogger) LogError(msg string, args ...any) { l.base.Error(msg, l.scoped(args)...) }
