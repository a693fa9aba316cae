package observability

import (
	"context"
	"errors"
	"fmt"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/trace"

	"surprise-service/internal/common/config"
)

// Observability bundles the otel meter and tracer used by the dispatcher.
// All methods are safe on a nil receiver.
type Observability struct {
	meterProvider  *metric.MeterProvider
	tracerShutdown func(context.Context) error
	tracer         trace.Tracer

	commandCounter   otelmetric.Int64Counter
	providerDuration otelmetric.Float64Histogram
}

// New wires the otel Prometheus exporter into reg and, when a Jaeger
// endpoint is configured, a batching span exporter.
func New(cfg config.ObservabilityConfig, reg prom.Registerer) (*Observability, error) {
	opts := []otelprom.Option{}
	if reg != nil {
		opts = append(opts, otelprom.WithRegisterer(reg))
	}
	exporter, err := otelprom.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	meter := provider.Meter(cfg.ServiceName)

	commandCounter, err := meter.Int64Counter(
		"commands.processed",
		otelmetric.WithDescription("Number of slash commands processed"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create command counter: %w", err)
	}

	providerDuration, err := meter.Float64Histogram(
		"provider.duration",
		otelmetric.WithDescription("Provider call duration"),
		otelmetric.WithUnit("ms"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create provider histogram: %w", err)
	}

	o := &Observability{
		meterProvider:    provider,
		commandCounter:   commandCounter,
		providerDuration: providerDuration,
	}

	if cfg.JaegerEndpoint != "" {
		tp, err := newTracerProvider(cfg)
		if err != nil {
			_ = provider.Shutdown(context.Background())
			return nil, err
		}
		otel.SetTracerProvider(tp)
		o.tracerShutdown = tp.Shutdown
		o.tracer = tp.Tracer(cfg.ServiceName)
	} else {
		o.tracer = otel.Tracer(cfg.ServiceName)
	}

	return o, nil
}

// StartSpan starts a span named name. Without a tracer the span from ctx
// (a no-op when absent) is returned.
func (o *Observability) StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if o == nil || o.tracer == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return o.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func (o *Observability) RecordCommand(ctx context.Context, provider, status string) {
	if o == nil || o.commandCounter == nil {
		return
	}
	o.commandCounter.Add(ctx, 1, otelmetric.WithAttributes(
		attribute.String("provider", provider),
		attribute.String("status", status),
	))
}

func (o *Observability) RecordProviderDuration(ctx context.Context, provider string, duration time.Duration) {
	if o == nil || o.providerDuration == nil {
		return
	}
	o.providerDuration.Record(ctx, float64(duration.Milliseconds()), otelmetric.WithAttributes(
		attribute.String("provider", provider),
	))
}

// Shutdown flushes pending spans and stops the meter provider.
func (o *Observability) Shutdown(ctx context.Context) error {
	if o == nil {
		return nil
	}
	var errs []error
	if o.tracerShutdown != nil {
		errs = append(errs, o.tracerShutdown(ctx))
	}
	if o.meterProvider != nil {
		errs = append(errs, o.meterProvider.Shutdown(ctx))
	}
	return errors.Join(errs...)
}
