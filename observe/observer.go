package observe

import (
	"context"
	"time"

	"github.com/hupe1980/teammesh/core"
	"github.com/hupe1980/teammesh/supervisor"
)

// RunInfo identifies one orchestrator run.
type RunInfo struct {
	RunID        string
	Orchestrator string
	Path         string
	Depth        int
}

// StepInfo identifies one actor invocation inside a run.
type StepInfo struct {
	Run   RunInfo
	Actor string
	Kind  core.Kind
	Step  int
}

// StepResult describes the message an actor invocation appended.
type StepResult struct {
	Output   core.Message
	Err      error
	Duration time.Duration
}

// RunSummary describes how a run ended.
type RunSummary struct {
	Termination string
	Steps       int
	Trace       []string
	Err         error
	Duration    time.Duration
}

// Observer receives orchestration events. Implementations must be safe for
// use by concurrent runs.
type Observer interface {
	RunStarted(ctx context.Context, run RunInfo) context.Context
	Decided(ctx context.Context, run RunInfo, d supervisor.Decision)
	StepStarted(ctx context.Context, step StepInfo) context.Context
	StepFinished(ctx context.Context, step StepInfo, res StepResult)
	RunFinished(ctx context.Context, run RunInfo, sum RunSummary)
}

// NoOp is an Observer that ignores every event.
type NoOp struct{}

var _ Observer = NoOp{}

func (NoOp) RunStarted(ctx context.Context, _ RunInfo) context.Context { return ctx }

func (NoOp) Decided(context.Context, RunInfo, supervisor.Decision) {}

func (NoOp) StepStarted(ctx context.Context, _ StepInfo) context.Context { return ctx }

func (NoOp) StepFinished(context.Context, StepInfo, StepResult) {}

func (NoOp) RunFinished(context.Context, RunInfo, RunSummary) {}

// Multi fans every event out to all observers in order.
type Multi []Observer

var _ Observer = Multi(nil)

// RunStarted implements Observer.
func (m Multi) RunStarted(ctx context.Context, run RunInfo) context.Context {
	for _, o := range m {
		ctx = o.RunStarted(ctx, run)
	}
	return ctx
}

// Decided implements Observer.
func (m Multi) Decided(ctx context.Context, run RunInfo, d supervisor.Decision) {
	for _, o := range m {
		o.Decided(ctx, run, d)
	}
}

// StepStarted implements Observer.
func (m Multi) StepStarted(ctx context.Context, step StepInfo) context.Context {
	for _, o := range m {
		ctx = o.StepStarted(ctx, step)
	}
	return ctx
}

// StepFinished implements Observer.
func (m Multi) StepFinished(ctx context.Context, step StepInfo, res StepResult) {
	for _, o := range m {
		o.StepFinished(ctx, step, res)
	}
}

// RunFinished implements Observer.
func (m Multi) RunFinished(ctx context.Context, run RunInfo, sum RunSummary) {
	for _, o := range m {
		o.RunFinished(ctx, run, sum)
	}
}
