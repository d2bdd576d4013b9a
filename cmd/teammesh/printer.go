package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"

	"github.com/hupe1980/teammesh/core"
	"github.com/hupe1980/teammesh/observe"
	"github.com/hupe1980/teammesh/supervisor"
)

const previewLen = 160

// printer renders run progress as an indented, colored transcript.
type printer struct {
	observe.NoOp

	mu      sync.Mutex
	out     io.Writer
	verbose bool

	team     *color.Color
	agent    *color.Color
	decision *color.Color
	failure  *color.Color
	dim      *color.Color
}

var _ observe.Observer = (*printer)(nil)

func newPrinter(out io.Writer, verbose bool) *printer {
	return &printer{
		out:      out,
		verbose:  verbose,
		team:     color.New(color.FgMagenta, color.Bold),
		agent:    color.New(color.FgCyan, color.Bold),
		decision: color.New(color.FgYellow),
		failure:  color.New(color.FgRed),
		dim:      color.New(color.Faint),
	}
}

func (p *printer) RunStarted(ctx context.Context, run observe.RunInfo) context.Context {
	p.mu.Lock()
	defer p.mu.Unlock()

	fmt.Fprintf(p.out, "%s%s %s\n", indent(run.Depth), p.team.Sprint("▶"), p.team.Sprint(run.Orchestrator))
	return ctx
}

func (p *printer) Decided(_ context.Context, run observe.RunInfo, d supervisor.Decision) {
	p.mu.Lock()
	defer p.mu.Unlock()

	line := fmt.Sprintf("%s→ %s", indent(run.Depth+1), d.Next)
	if d.Forced() {
		line += fmt.Sprintf(" (%s)", d.Reason)
	}
	if p.verbose && d.Raw != "" && d.Raw != d.Next {
		line += fmt.Sprintf(" %q", preview(d.Raw))
	}
	fmt.Fprintln(p.out, p.decision.Sprint(line))
}

func (p *printer) StepFinished(_ context.Context, step observe.StepInfo, res observe.StepResult) {
	if step.Kind == core.KindOrchestrator {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	pad := indent(step.Run.Depth + 1)
	if res.Err != nil {
		fmt.Fprintf(p.out, "%s%s %s\n", pad, p.failure.Sprintf("✗ %s", step.Actor), p.failure.Sprint(res.Err))
		return
	}

	fmt.Fprintf(p.out, "%s%s %s\n", pad, p.agent.Sprint(step.Actor), p.dim.Sprint(preview(res.Output.Text())))
}

func (p *printer) RunFinished(_ context.Context, run observe.RunInfo, sum observe.RunSummary) {
	p.mu.Lock()
	defer p.mu.Unlock()

	fmt.Fprintln(p.out, p.dim.Sprintf("%s■ %s finished (%s, %d steps, %s)",
		indent(run.Depth), run.Orchestrator, sum.Termination, sum.Steps, sum.Duration.Round(time.Millisecond)))
}

func indent(depth int) string {
	return strings.Repeat("  ", depth)
}

func preview(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if r := []rune(s); len(r) > previewLen {
		return string(r[:previewLen]) + "…"
	}
	return s
}
