package observe

import (
	"context"
	"fmt"
	"io"
	"os"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// TracerProviderOptions configures NewTracerProvider.
type TracerProviderOptions struct {
	// ServiceName is recorded as the service.name resource attribute.
	ServiceName string

	// Endpoint is an OTLP/HTTP collector URL such as
	// http://localhost:4318. When empty, spans are written to Writer.
	Endpoint string

	// Writer receives spans as JSON when no Endpoint is set. Defaults to
	// os.Stderr.
	Writer io.Writer
}

// NewTracerProvider creates an SDK tracer provider that batches spans to an
// OTLP collector or a writer. Callers must Shutdown the provider to flush
// spans still queued when the process exits.
func NewTracerProvider(ctx context.Context, optFns ...func(o *TracerProviderOptions)) (*sdktrace.TracerProvider, error) {
	opts := TracerProviderOptions{
		ServiceName: "teammesh",
		Writer:      os.Stderr,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	var (
		exporter sdktrace.SpanExporter
		err      error
	)
	if opts.Endpoint != "" {
		exporter, err = otlptracehttp.New(ctx, otlptracehttp.WithEndpointURL(opts.Endpoint))
	} else {
		exporter, err = stdouttrace.New(stdouttrace.WithWriter(opts.Writer))
	}
	if err != nil {
		return nil, fmt.Errorf("observe: span exporter: %w", err)
	}

	res := resource.NewSchemaless(attribute.String("service.name", opts.ServiceName))

	return sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	), nil
}
