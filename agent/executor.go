package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/hupe1980/teammesh/core"
	"github.com/hupe1980/teammesh/tool"
)

// ToolExecutorConfig configures the parallel tool executor.
type ToolExecutorConfig struct {
	MaxParallel int           // <1 means one goroutine per call
	Timeout     time.Duration // per call; 0 disables
}

// ToolExecutor runs the tool calls of one model turn. It never panics and
// returns exactly one tool response message per call, in call order.
type ToolExecutor struct {
	cfg ToolExecutorConfig
}

// NewToolExecutor constructs an executor with the given config.
func NewToolExecutor(cfg ToolExecutorConfig) *ToolExecutor {
	return &ToolExecutor{cfg: cfg}
}

// Execute runs calls against tools and returns their response messages
// attributed to origin.
func (e *ToolExecutor) Execute(
	runCtx *core.RunContext,
	origin string,
	tools map[string]tool.Tool,
	calls []core.FunctionCall,
) []core.Message {
	n := len(calls)
	if n == 0 {
		return nil
	}

	if n == 1 {
		return []core.Message{e.executeSingle(runCtx, origin, tools, calls[0])}
	}

	maxPar := e.cfg.MaxParallel
	if maxPar <= 0 || maxPar > n {
		maxPar = n
	}

	results := make([]core.Message, n)
	sem := make(chan struct{}, maxPar)

	var wg sync.WaitGroup

	batchStart := time.Now()

	for i := range calls {
		wg.Add(1)
		sem <- struct{}{}
		go func(idx int, fc core.FunctionCall) {
			defer wg.Done()
			defer func() { <-sem }()
			results[idx] = e.executeSingle(runCtx, origin, tools, fc)
		}(i, calls[i])
	}

	wg.Wait()

	runCtx.LogDebug(
		"agent.tools.batch.complete",
		"agent", origin,
		"count", n,
		"parallelism", maxPar,
		"duration_ms", time.Since(batchStart).Milliseconds(),
	)

	return results
}

func (e *ToolExecutor) executeSingle(
	runCtx *core.RunContext,
	origin string,
	tools map[string]tool.Tool,
	fc core.FunctionCall,
) core.Message {
	if err := runCtx.Err(); err != nil {
		return core.NewFunctionResponseMessage(origin, fc.ID, fc.Name, nil, err)
	}

	callCtx := runCtx
	if e.cfg.Timeout > 0 {
		ctx, cancel := context.WithTimeout(runCtx.Context, e.cfg.Timeout)
		defer cancel()
		callCtx = runCtx.WithContext(ctx)
	}

	toolCtx := core.NewToolContext(callCtx, fc.ID)

	start := time.Now()

	var (
		result any
		err    error
	)

	func() {
		defer func() {
			if r := recover(); r != nil {
				err = panicError(r)
				runCtx.LogError("agent.tool.panic", "agent", origin, "tool", fc.Name, "recover", r)
			}
		}()
		result, err = executeTool(tools, toolCtx, fc.Name, fc.Arguments)
	}()

	runCtx.LogInfo(
		"agent.tool.executed",
		"agent", origin,
		"tool", fc.Name,
		"duration_ms", time.Since(start).Milliseconds(),
		"error", err != nil,
	)

	return core.NewFunctionResponseMessage(origin, fc.ID, fc.Name, result, err)
}

// panicError converts a recovered panic value to an error.
func panicError(r any) error { return &panicErr{val: r, stack: debug.Stack()} }

type panicErr struct {
	val   any
	stack []byte
}

func (p *panicErr) Error() string { return fmt.Sprintf("panic recovered: %v", p.val) }

func executeTool(tools map[string]tool.Tool, toolCtx *core.ToolContext, name, args string) (any, error) {
	impl, ok := tools[name]
	if !ok {
		return nil, tool.NewToolError(name, fmt.Sprintf("tool %s not found", name), tool.CodeUnknownTool)
	}

	argMap := map[string]any{}
	if args != "" {
		if err := json.Unmarshal([]byte(args), &argMap); err != nil {
			return nil, tool.NewToolError(name, fmt.Sprintf("failed to unmarshal args: %v", err), tool.CodeInvalidInput)
		}
	}

	return impl.Call(toolCtx, argMap)
}
