package observability

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.28.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"sales-dashboard/internal/config"
)

// Tracing owns the process tracer provider. Shutdown flushes pending spans.
type Tracing struct {
	provider trace.TracerProvider
	shutdown func(context.Context) error
}

// NewTracing installs a global tracer provider. When tracing is disabled or
// the exporter is "none" a no-op provider is installed.
func NewTracing(cfg config.TracingConfig, logger *slog.Logger) (*Tracing, error) {
	return newTracing(cfg, os.Stdout, logger)
}

func newTracing(cfg config.TracingConfig, out io.Writer, logger *slog.Logger) (*Tracing, error) {
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	if !cfg.Enabled || cfg.Exporter == "none" {
		provider := noop.NewTracerProvider()
		otel.SetTracerProvider(provider)
		return &Tracing{
			provider: provider,
			shutdown: func(context.Context) error { return nil },
		}, nil
	}

	var exporter sdktrace.SpanExporter
	switch cfg.Exporter {
	case "stdout":
		exp, err := stdouttrace.New(stdouttrace.WithWriter(out))
		if err != nil {
			return nil, fmt.Errorf("create trace exporter: %w", err)
		}
		exporter = exp
	default:
		return nil, fmt.Errorf("unsupported trace exporter: %s", cfg.Exporter)
	}

	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(cfg.ServiceName),
	)

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SampleRatio))),
	)
	otel.SetTracerProvider(tp)

	logger.Info("tracing initialized",
		"exporter", cfg.Exporter,
		"sample_ratio", cfg.SampleRatio)

	return &Tracing{provider: tp, shutdown: tp.Shutdown}, nil
}

func (t *Tracing) Tracer(name string) trace.Tracer {
	return t.provider.Tracer(name)
}

func (t *Tracing) Shutdown(ctx context.Context) error {
	return t.shutdown(ctx)
}

// TraceID returns the active trace id of ctx, or "" outside a sampled span.
func TraceID(ctx context.Context) string {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.HasTraceID() {
		return ""
	}
	return sc.TraceID().String()
}
