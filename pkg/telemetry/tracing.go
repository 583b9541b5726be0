package telemetry

import (
	"context"
	"fmt"
	"io"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.4.0"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/odvcencio/lattice/pkg/ui/runtime"

// Span attribute keys for render passes.
var (
	AttrPass        = attribute.Key("lattice.pass")
	AttrWidth       = attribute.Key("lattice.width")
	AttrHeight      = attribute.Key("lattice.height")
	AttrRowsWritten = attribute.Key("lattice.rows.written")
	AttrRowsSkipped = attribute.Key("lattice.rows.skipped")
	AttrAppeared    = attribute.Key("lattice.lifecycle.appeared")
	AttrDisappeared = attribute.Key("lattice.lifecycle.disappeared")
)

// TracerProvider holds the OpenTelemetry tracer provider
type TracerProvider struct {
	provider *sdktrace.TracerProvider
}

// NewTracerProvider exports spans as JSON lines to w and installs the
// provider globally.
func NewTracerProvider(serviceName, version string, w io.Writer) (*TracerProvider, error) {
	exporter, err := stdouttrace.New(stdouttrace.WithWriter(w))
	if err != nil {
		return nil, fmt.Errorf("failed to create trace exporter: %w", err)
	}
	return NewTracerProviderWithExporter(serviceName, version, exporter)
}

// NewTracerProviderWithExporter builds a provider around any span exporter.
func NewTracerProviderWithExporter(serviceName, version string, exporter sdktrace.SpanExporter) (*TracerProvider, error) {
	res, err := resource.New(
		context.Background(),
		resource.WithAttributes(
			semconv.ServiceNameKey.String(serviceName),
			semconv.ServiceVersionKey.String(version),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)
	otel.SetTracerProvider(provider)
	return &TracerProvider{provider: provider}, nil
}

// Shutdown flushes and stops the provider.
func (tp *TracerProvider) Shutdown(ctx context.Context) error {
	return tp.provider.Shutdown(ctx)
}

// Tracer returns the render loop tracer from the global provider.
func Tracer() trace.Tracer {
	return otel.Tracer(tracerName)
}

// StartPass starts the span wrapping one render pass.
func StartPass(ctx context.Context, tracer trace.Tracer, pass uint64, w, h int) (context.Context, trace.Span) {
	if tracer == nil {
		tracer = Tracer()
	}
	return tracer.Start(ctx, "render.pass", trace.WithAttributes(
		AttrPass.Int64(int64(pass)),
		AttrWidth.Int(w),
		AttrHeight.Int(h),
	))
}

// EndPass annotates and ends a pass span.
func EndPass(span trace.Span, s PassSample, err error) {
	span.SetAttributes(
		AttrRowsWritten.Int(s.Written),
		AttrRowsSkipped.Int(s.Skipped),
		AttrAppeared.Int(s.Appeared),
		AttrDisappeared.Int(s.Disappeared),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
