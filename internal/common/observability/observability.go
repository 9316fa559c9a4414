// internal/common/observability/observability.go
package observability

import (
	"context"
	"time"

	"application-intake/internal/common/logger"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// Observability owns the meter and tracer providers for one service.
type Observability struct {
	meterProvider  *metric.MeterProvider
	tracerProvider *sdktrace.TracerProvider
	tracer         trace.Tracer
	stepCounter    otelmetric.Int64Counter
	stepDuration   otelmetric.Float64Histogram
	logger         logger.Logger
}

// New registers a Prometheus-backed meter provider and an in-process tracer
// provider. Failures degrade to no-op instruments.
func New(serviceName string, log logger.Logger) *Observability {
	o := &Observability{logger: log}

	o.tracerProvider = sdktrace.NewTracerProvider()
	otel.SetTracerProvider(o.tracerProvider)
	o.tracer = o.tracerProvider.Tracer(serviceName)

	exporter, err := prometheus.New()
	if err != nil {
		log.Warn("failed to create prometheus exporter", map[string]interface{}{"error": err})
		return o
	}

	o.meterProvider = metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(o.meterProvider)
	meter := o.meterProvider.Meter(serviceName)

	o.stepCounter, _ = meter.Int64Counter(
		"submission.steps",
		otelmetric.WithDescription("Number of submission steps executed"),
	)
	o.stepDuration, _ = meter.Float64Histogram(
		"submission.step.duration",
		otelmetric.WithDescription("Submission step duration"),
		otelmetric.WithUnit("ms"),
	)
	return o
}

// StartSpan starts a span named after a submission step.
func (o *Observability) StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if o == nil || o.tracer == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return o.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

// EndSpan records err on span, if any, and ends it.
func EndSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// RecordStep counts a finished step and its duration.
func (o *Observability) RecordStep(ctx context.Context, step string, started time.Time, err error) {
	if o == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	attrs := otelmetric.WithAttributes(
		attribute.String("step", step),
		attribute.String("status", status),
	)
	if o.stepCounter != nil {
		o.stepCounter.Add(ctx, 1, attrs)
	}
	if o.stepDuration != nil {
		o.stepDuration.Record(ctx, float64(time.Since(started).Milliseconds()), attrs)
	}
}

func (o *Observability) Shutdown(ctx context.Context) {
	if o.meterProvider != nil {
		if err := o.meterProvider.Shutdown(ctx); err != nil {
			o.logger.Warn("meter provider shutdown failed", map[string]interface{}{"error": err})
		}
	}
	if o.tracerProvider != nil {
		if err := o.tracerProvider.Shutdown(ctx); err != nil {
			o.logger.Warn("tracer provider shutdown failed", map[string]interface{}{"error": err})
		}
	}
}
