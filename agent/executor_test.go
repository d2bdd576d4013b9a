package agent

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hupe1980/teammesh/core"
	"github.com/hupe1980/teammesh/tool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type teMockTool struct {
	name     string
	delay    time.Duration
	result   any
	err      error
	panicMsg any
	calls    *int32
}

func (mt *teMockTool) Name() string               { return mt.name }
func (mt *teMockTool) Description() string        { return "mock tool" }
func (mt *teMockTool) Parameters() map[string]any { return map[string]any{} }
func (mt *teMockTool) Call(tc *core.ToolContext, _ map[string]any) (any, error) {
	if mt.calls != nil {
		atomic.AddInt32(mt.calls, 1)
	}
	if mt.delay > 0 {
		select {
		case <-time.After(mt.delay):
		case <-tc.Context().Done():
			return nil, tc.Context().Err()
		}
	}
	if mt.panicMsg != nil {
		panic(mt.panicMsg)
	}
	return mt.result, mt.err
}

func TestToolExecutor_PreservesOrder(t *testing.T) {
	tools := map[string]tool.Tool{
		"slow": &teMockTool{name: "slow", delay: 30 * time.Millisecond, result: "slow"},
		"fast": &teMockTool{name: "fast", result: "fast"},
	}
	exec := NewToolExecutor(ToolExecutorConfig{})

	out := exec.Execute(newTestRunContext(1), "w", tools, []core.FunctionCall{
		{ID: "1", Name: "slow"},
		{ID: "2", Name: "fast"},
	})

	require.Len(t, out, 2)
	assert.Equal(t, "1", out[0].FunctionResponses()[0].ID)
	assert.Equal(t, "2", out[1].FunctionResponses()[0].ID)
	assert.Equal(t, core.RoleTool, out[0].Role)
}

func TestToolExecutor_ErrorIsolationAndPanic(t *testing.T) {
	var calls int32
	tools := map[string]tool.Tool{
		"ok":   &teMockTool{name: "ok", result: 1, calls: &calls},
		"bad":  &teMockTool{name: "bad", err: errors.New("nope"), calls: &calls},
		"boom":  &teMockTool{name: "boom", panicMsg: "kaboom", calls: &calls},
	}
	exec := NewToolExecutor(ToolExecutorConfig{MaxParallel: 2})

	out := exec.Execute(newTestRunContext(1), "w", tools, []core.FunctionCall{
		{ID: "a", Name: "ok"},
		{ID: "b", Name: "bad"},
		{ID: "c", Name: "boom"},
	})

	require.Len(t, out, 3)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
	assert.Empty(t, out[0].FunctionResponses()[0].Error)
	assert.Equal(t, "nope", out[1].FunctionResponses()[0].Error)
	assert.Contains(t, out[2].FunctionResponses()[0].Error, "kaboom")
}

func TestToolExecutor_Timeout(t *testing.T) {
	tools := map[string]tool.Tool{
		"slow": &teMockTool{name: "slow", delay: time.Second},
	}
	exec := NewToolExecutor(ToolExecutorConfig{Timeout: 10 * time.Millisecond})

	out := exec.Execute(newTestRunContext(1), "w", tools, []core.FunctionCall{{ID: "1", Name: "slow"}})
	require.Len(t, out, 1)
	assert.Contains(t, out[0].FunctionResponses()[0].Error, "deadline exceeded")
}

func TestToolExecutor_InvalidArguments(t *testing.T) {
	tools := map[string]tool.Tool{"ok": &teMockTool{name: "ok"}}
	exec := NewToolExecutor(ToolExecutorConfig{})

	out := exec.Execute(newTestRunContext(1), "w", tools, []core.FunctionCall{{ID: "1", Name: "ok", Arguments: "{not json"}})
	require.Len(t, out, 1)
	assert.Contains(t, out[0].FunctionResponses()[0].Error, "INVALID_INPUT")
}
