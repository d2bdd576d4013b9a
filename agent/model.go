package agent

import (
	"fmt"
	"sort"
	"time"

	"github.com/hupe1980/teammesh/core"
	"github.com/hupe1980/teammesh/model"
	"github.com/hupe1980/teammesh/tool"
)

// ModelWorkerOptions configures a ModelWorker instance.
//
// Use functional options with NewModelWorker to override defaults.
type ModelWorkerOptions struct {
	Description        string
	Instruction        Instruction
	Tools              []tool.Tool
	EnableStreaming    bool
	ToolTimeout        time.Duration
	MaxParallelTools   int
	MaxHistoryMessages int
}

// ModelWorker answers with a language model, calling its tools until the
// model produces a turn without tool calls.
//
// Every model call consumes one step of the invocation's step budget, so a
// model that keeps requesting tools ends with core.ErrStepLimit instead of
// looping forever.
type ModelWorker struct {
	BaseActor
	llm                model.Model
	instruction        Instruction
	tools              map[string]tool.Tool
	toolOrder          []string
	enableStreaming    bool
	maxHistoryMessages int
	executor           *ToolExecutor
}

// NewModelWorker creates a model backed worker.
//
// Defaults:
//   - a generic instruction naming the worker
//   - no tools
//   - 15 second tool timeout
//   - the last 20 conversation messages are sent to the model
func NewModelWorker(name string, llm model.Model, optFns ...func(o *ModelWorkerOptions)) (*ModelWorker, error) {
	opts := ModelWorkerOptions{
		Instruction:        NewInstructionFromText(fmt.Sprintf("You are %s, a helpful AI assistant.", name)),
		ToolTimeout:        15 * time.Second,
		MaxHistoryMessages: 20,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if llm == nil {
		return nil, fmt.Errorf("agent %s: model is required", name)
	}

	tools, err := tool.Index(opts.Tools)
	if err != nil {
		return nil, fmt.Errorf("agent %s: %w", name, err)
	}

	order := make([]string, 0, len(tools))
	for n := range tools {
		order = append(order, n)
	}
	sort.Strings(order)

	return &ModelWorker{
		BaseActor:          NewBaseActor(name, opts.Description),
		llm:                llm,
		instruction:        opts.Instruction,
		tools:              tools,
		toolOrder:          order,
		enableStreaming:    opts.EnableStreaming,
		maxHistoryMessages: opts.MaxHistoryMessages,
		executor: NewToolExecutor(ToolExecutorConfig{
			MaxParallel: opts.MaxParallelTools,
			Timeout:     opts.ToolTimeout,
		}),
	}, nil
}

// Model returns the language model backing the worker.
func (w *ModelWorker) Model() model.Model { return w.llm }

// ListTools returns the sorted names of the registered tools.
func (w *ModelWorker) ListTools() []string {
	out := make([]string, len(w.toolOrder))
	copy(out, w.toolOrder)
	return out
}

// HasTool checks if a tool is registered with the worker.
func (w *ModelWorker) HasTool(name string) bool {
	_, ok := w.tools[name]
	return ok
}

// Run implements core.Actor.
func (w *ModelWorker) Run(runCtx *core.RunContext, state *core.State) (*core.State, error) {
	runCtx.LogDebug("agent.run.start", "agent", w.Name(), "run", runCtx.RunID, "history", state.Log.Len())

	instructions, err := w.instruction.Resolve(runCtx)
	if err != nil {
		return nil, fmt.Errorf("resolve instruction: %w", err)
	}

	// Messages produced during this invocation are always sent; the history
	// window only bounds what came before.
	history := w.window(state.Log.Messages())

	for {
		if err := runCtx.Err(); err != nil {
			return nil, err
		}

		if err := runCtx.Step(); err != nil {
			return nil, err
		}

		req := model.Request{
			Instructions: instructions,
			Messages:     history,
			Tools:        w.toolDefinitions(),
			Stream:       w.enableStreaming,
		}

		start := time.Now()

		resp, err := model.Complete(runCtx.Context, w.llm, req)
		if err != nil {
			runCtx.LogError("agent.model.error", "agent", w.Name(), "model", w.llm.Info().Name, "error", err.Error())
			return nil, fmt.Errorf("model call: %w", err)
		}

		runCtx.LogDebug(
			"agent.model.completed",
			"agent", w.Name(),
			"model", w.llm.Info().Name,
			"finish_reason", resp.FinishReason,
			"duration_ms", time.Since(start).Milliseconds(),
		)

		reply := resp.Message
		reply.Parts = withCallIDs(reply.Parts)
		reply.ID = core.NewID()
		reply.Origin = w.Name()
		reply.RunID = runCtx.RunID
		if reply.Role == "" {
			reply.Role = core.RoleAssistant
		}

		state.Log.Append(reply)
		history = append(history, reply)

		calls := reply.FunctionCalls()
		if len(calls) == 0 {
			runCtx.LogDebug("agent.run.complete", "agent", w.Name(), "steps", runCtx.Steps.Used())
			return state, nil
		}

		for _, msg := range w.executor.Execute(runCtx, w.Name(), w.tools, calls) {
			msg.RunID = runCtx.RunID
			state.Log.Append(msg)
			history = append(history, msg)
		}
	}
}

// withCallIDs assigns ids to function calls the provider left anonymous so
// tool responses can be correlated.
func withCallIDs(parts []core.Part) []core.Part {
	out := make([]core.Part, len(parts))
	for i, p := range parts {
		if fc, ok := p.(core.FunctionCallPart); ok && fc.FunctionCall.ID == "" {
			fc.FunctionCall.ID = core.NewID()
			p = fc
		}
		out[i] = p
	}
	return out
}

func (w *ModelWorker) window(msgs []core.Message) []core.Message {
	if w.maxHistoryMessages <= 0 || len(msgs) <= w.maxHistoryMessages {
		return msgs
	}

	n := w.maxHistoryMessages
	if n == 1 {
		return msgs[len(msgs)-1:]
	}

	// Keep the originating request so the model never loses the task.
	out := make([]core.Message, 0, n)
	out = append(out, msgs[0])
	out = append(out, msgs[len(msgs)-n+1:]...)

	return out
}

func (w *ModelWorker) toolDefinitions() []model.ToolDefinition {
	if len(w.tools) == 0 {
		return nil
	}

	defs := make([]model.ToolDefinition, 0, len(w.tools))
	for _, name := range w.toolOrder {
		t := w.tools[name]
		defs = append(defs, model.ToolDefinition{
			Type: "function",
			Function: model.FunctionDefinition{
				Name:        t.Name(),
				Description: t.Description(),
				Parameters:  t.Parameters(),
			},
		})
	}

	return defs
}
