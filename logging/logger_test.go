package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBufferLogger(level LogLevel) (*StructuredLogger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	l := NewLogger(&LoggerConfig{Level: level, Format: "json", Output: buf})
	return l, buf
}

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		out = append(out, entry)
	}
	return out
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    LogLevel
		wantErr bool
	}{
		{"debug", LogLevelDebug, false},
		{"INFO", LogLevelInfo, false},
		{"", LogLevelInfo, false},
		{"Warning", LogLevelWarn, false},
		{"error", LogLevelError, false},
		{"verbose", LogLevelInfo, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStructuredLogger_KeyValueArgs(t *testing.T) {
	l, buf := newBufferLogger(LogLevelDebug)
	l.WithComponent("engine").WithRun("run-1", "board").Info("engine.run.start", "query_len", 12)

	entries := decodeLines(t, buf)
	require.Len(t, entries, 1)
	e := entries[0]
	assert.Equal(t, "engine.run.start", e["msg"])
	assert.Equal(t, "engine", e["component"])
	assert.Equal(t, "run-1", e["run_id"])
	assert.Equal(t, "board", e["path"])
	assert.EqualValues(t, 12, e["query_len"])
}

func TestStructuredLogger_LevelFilter(t *testing.T) {
	l, buf := newBufferLogger(LogLevelWarn)
	l.Debug("hidden")
	l.Info("hidden")
	l.Warn("shown")
	assert.Len(t, decodeLines(t, buf), 1)
}

func TestStructuredLogger_WithContextDoesNotMutateParent(t *testing.T) {
	l, buf := newBufferLogger(LogLevelInfo)
	_ = l.WithContext("actor", "search_agent")
	l.Info("plain")

	entries := decodeLines(t, buf)
	require.Len(t, entries, 1)
	_, ok := entries[0]["actor"]
	assert.False(t, ok)
}

func TestStructuredLogger_LogDecision(t *testing.T) {
	l, buf := newBufferLogger(LogLevelInfo)
	l.LogDecision("chief_editor", "research_team", "research_team", "routed", 1)
	l.LogDecision("chief_editor", "END", "banana", "unparseable", 1)

	entries := decodeLines(t, buf)
	require.Len(t, entries, 2)
	assert.Equal(t, "INFO", entries[0]["level"])
	assert.Equal(t, "research_team", entries[0]["next"])
	assert.Equal(t, "WARN", entries[1]["level"])
	assert.Equal(t, "unparseable", entries[1]["reason"])
}

func TestStructuredLogger_LogStepAndRun(t *testing.T) {
	l, buf := newBufferLogger(LogLevelInfo)
	l.LogStep("scrape_agent", 2, time.Millisecond, errors.New("timeout"))
	l.LogRun("board", "supervisor", 4, time.Second, nil)

	entries := decodeLines(t, buf)
	require.Len(t, entries, 2)
	assert.Equal(t, "actor.step.failed", entries[0]["msg"])
	assert.Equal(t, "timeout", entries[0]["error"])
	assert.Equal(t, "run.completed", entries[1]["msg"])
	assert.EqualValues(t, 4, entries[1]["steps"])
}

func TestNoOpLogger(t *testing.T) {
	var l Logger = NoOpLogger{}
	assert.NotPanics(t, func() {
		l.Debug("x", "k", 1)
		l.Error("y")
	})
}
