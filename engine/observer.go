package engine

import (
	"context"
	"fmt"

	"github.com/hupe1980/teammesh/observe"
	"github.com/hupe1980/teammesh/supervisor"
)

// The engine calls its observer only through these guards. A panicking
// observer is logged and otherwise ignored so routing never depends on it.

func (e *Engine) guard(hook string) {
	if r := recover(); r != nil {
		e.logger.Error("observer.panic", "orchestrator", e.name, "hook", hook, "panic", fmt.Sprint(r))
	}
}

func (e *Engine) runStarted(ctx context.Context, info observe.RunInfo) (out context.Context) {
	out = ctx
	defer e.guard("run_started")
	if next := e.observer.RunStarted(ctx, info); next != nil {
		out = next
	}
	return out
}

func (e *Engine) decided(ctx context.Context, info observe.RunInfo, d supervisor.Decision) {
	defer e.guard("decided")
	e.observer.Decided(ctx, info, d)
}

func (e *Engine) stepStarted(ctx context.Context, step observe.StepInfo) (out context.Context) {
	out = ctx
	defer e.guard("step_started")
	if next := e.observer.StepStarted(ctx, step); next != nil {
		out = next
	}
	return out
}

func (e *Engine) stepFinished(ctx context.Context, step observe.StepInfo, res observe.StepResult) {
	defer e.guard("step_finished")
	e.observer.StepFinished(ctx, step, res)
}

func (e *Engine) runFinished(ctx context.Context, info observe.RunInfo, sum observe.RunSummary) {
	defer e.guard("run_finished")
	e.observer.RunFinished(ctx, info, sum)
}
