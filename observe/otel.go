package observe

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/hupe1980/teammesh/supervisor"
)

// TracerName is the instrumentation scope used by NewOTel when no tracer is
// supplied.
const TracerName = "github.com/hupe1980/teammesh"

// OTel emits one span per run and one child span per actor step. Decisions
// are recorded as span events on the run span.
type OTel struct {
	tracer trace.Tracer
}

var _ Observer = (*OTel)(nil)

// OTelOptions configures an OTel observer.
type OTelOptions struct {
	// Tracer overrides the tracer obtained from the global provider.
	Tracer trace.Tracer
}

// NewOTel creates an OpenTelemetry observer.
func NewOTel(optFns ...func(o *OTelOptions)) *OTel {
	opts := OTelOptions{}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Tracer == nil {
		opts.Tracer = otel.Tracer(TracerName)
	}

	return &OTel{tracer: opts.Tracer}
}

func runAttributes(run RunInfo) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("teammesh.run_id", run.RunID),
		attribute.String("teammesh.orchestrator", run.Orchestrator),
		attribute.String("teammesh.path", run.Path),
		attribute.Int("teammesh.depth", run.Depth),
	}
}

// RunStarted implements Observer.
func (o *OTel) RunStarted(ctx context.Context, run RunInfo) context.Context {
	ctx, _ = o.tracer.Start(ctx, "orchestrator "+run.Orchestrator,
		trace.WithAttributes(runAttributes(run)...),
	)
	return ctx
}

// Decided implements Observer.
func (o *OTel) Decided(ctx context.Context, _ RunInfo, d supervisor.Decision) {
	span := trace.SpanFromContext(ctx)
	span.AddEvent("supervisor.decision", trace.WithAttributes(
		attribute.String("teammesh.next", d.Next),
		attribute.String("teammesh.reason", string(d.Reason)),
		attribute.Int("teammesh.attempts", d.Attempts),
	))
}

// StepStarted implements Observer.
func (o *OTel) StepStarted(ctx context.Context, step StepInfo) context.Context {
	ctx, _ = o.tracer.Start(ctx, "actor "+step.Actor,
		trace.WithAttributes(
			attribute.String("teammesh.actor", step.Actor),
			attribute.String("teammesh.kind", string(step.Kind)),
			attribute.Int("teammesh.step", step.Step),
			attribute.String("teammesh.path", step.Run.Path),
		),
	)
	return ctx
}

// StepFinished implements Observer.
func (o *OTel) StepFinished(ctx context.Context, _ StepInfo, res StepResult) {
	span := trace.SpanFromContext(ctx)
	span.SetAttributes(
		attribute.Int("teammesh.output_length", len(res.Output.Text())),
		attribute.Int64("teammesh.duration_ms", res.Duration.Milliseconds()),
	)
	if res.Err != nil {
		span.RecordError(res.Err)
		span.SetStatus(codes.Error, res.Err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// RunFinished implements Observer.
func (o *OTel) RunFinished(ctx context.Context, _ RunInfo, sum RunSummary) {
	span := trace.SpanFromContext(ctx)
	span.SetAttributes(
		attribute.String("teammesh.termination", sum.Termination),
		attribute.Int("teammesh.steps", sum.Steps),
		attribute.StringSlice("teammesh.trace", sum.Trace),
	)
	if sum.Err != nil {
		span.RecordError(sum.Err)
		span.SetStatus(codes.Error, sum.Err.Error())
	}
	span.End()
}
