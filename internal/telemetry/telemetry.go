package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// serviceName identifies this binary in exported telemetry. The module ships
// exactly one service, so the name is fixed here rather than configured.
const serviceName = "chronicle"

// Provider owns the OTLP export pipeline for one run and flushes it on
// Shutdown.
type Provider struct {
	flush []func(context.Context) error
}

// Init wires OTLP gRPC trace and metric exporters into the global OTel
// providers. The collector endpoint comes from OTEL_EXPORTER_OTLP_ENDPOINT,
// which the SDK reads on its own.
func Init(ctx context.Context, version string) (*Provider, error) {
	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(version),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("creating otel resource: %w", err)
	}

	traceExporter, err := otlptracegrpc.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("creating trace exporter: %w", err)
	}
	metricExporter, err := otlpmetricgrpc.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(traceExporter),
		sdktrace.WithResource(res),
	)
	// The periodic reader never ticks during a short install; the export
	// happens when Shutdown flushes it.
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExporter)),
		sdkmetric.WithResource(res),
	)

	otel.SetTracerProvider(tp)
	otel.SetMeterProvider(mp)
	// W3C Trace Context, so installs launched from a traced pipeline join
	// the caller's trace.
	otel.SetTextMapPropagator(propagation.TraceContext{})

	return &Provider{flush: []func(context.Context) error{tp.Shutdown, mp.Shutdown}}, nil
}

// Shutdown flushes and stops the providers. A one-shot install exits right
// after enabling, so skipping the flush would lose every batched span and
// the final metric collection.
func (p *Provider) Shutdown(ctx context.Context) error {
	if p == nil {
		return nil
	}
	var first error
	for _, stop := range p.flush {
		if err := stop(ctx); err != nil && first == nil {
			first = fmt.Errorf("flushing telemetry: %w", err)
		}
	}
	return first
}

// NoopTracer returns a tracer that records nothing, for runs with telemetry
// disabled.
func NoopTracer() trace.Tracer {
	return noop.NewTracerProvider().Tracer("noop")
}
