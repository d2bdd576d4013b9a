package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	teammesh "github.com/hupe1980/teammesh"
	"github.com/hupe1980/teammesh/config"
	"github.com/hupe1980/teammesh/observe"
	"github.com/hupe1980/teammesh/topology"
)

const tracingShutdownTimeout = 5 * time.Second

func newMesh(cfg *config.Config, team *topology.Team, obs observe.Observer, tp trace.TracerProvider) (*teammesh.Mesh, error) {
	return teammesh.New(team, func(o *teammesh.Options) {
		o.Config = cfg
		o.Observer = obs
		o.TracerProvider = tp
	})
}

// startTracing installs an exporting tracer provider when tracing is
// enabled. Spans go to the configured collector, or to w as JSON. The
// returned stop function flushes pending spans and must be called before
// exit.
func startTracing(ctx context.Context, cfg *config.Config, w io.Writer) (trace.TracerProvider, func(), error) {
	if !cfg.Tracing.Enabled {
		return nil, func() {}, nil
	}

	tp, err := observe.NewTracerProvider(ctx, func(o *observe.TracerProviderOptions) {
		o.ServiceName = cfg.Tracing.Project
		o.Endpoint = cfg.Tracing.Endpoint
		o.Writer = w
	})
	if err != nil {
		return nil, nil, err
	}
	otel.SetTracerProvider(tp)

	stop := func() {
		ctx, cancel := context.WithTimeout(context.Background(), tracingShutdownTimeout)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			fmt.Fprintf(w, "tracing: flush spans: %v\n", err)
		}
	}
	return tp, stop, nil
}
