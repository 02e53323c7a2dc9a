package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/kbukum/meetingmind/logger"
)

// InitMeter installs the global meter provider with a periodic OTLP/HTTP
// reader. Shut it down on exit to flush the last interval.
func InitMeter(ctx context.Context, cfg Config) (*sdkmetric.MeterProvider, error) {
	var opts []otlpmetrichttp.Option
	opts = append(opts, otlpmetrichttp.WithEndpoint(cfg.Endpoint))
	if cfg.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}
	exp, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("otlp metric exporter: %w", err)
	}
	res, err := newResource(cfg)
	if err != nil {
		return nil, fmt.Errorf("otel resource: %w", err)
	}

	reader := sdkmetric.NewPeriodicReader(exp, sdkmetric.WithInterval(cfg.MetricInterval))
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader), sdkmetric.WithResource(res))
	otel.SetMeterProvider(mp)

	logger.Info("OTLP metrics enabled", logger.Fields(
		"endpoint", cfg.Endpoint,
		"interval", cfg.MetricInterval.String(),
	))
	return mp, nil
}

// Meter returns a meter from the global provider. Instruments created
// before InitMeter forward to the real provider once it is installed.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// Metrics exports provider call counts, latencies and errors as OTel
// instruments. It satisfies provider.Recorder.
type Metrics struct {
	calls    metric.Int64Counter
	latency  metric.Float64Histogram
	failures metric.Int64Counter
}

// NewMetrics registers the instruments on meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}
	var err error
	if m.calls, err = meter.Int64Counter("meetingmind.provider.calls",
		metric.WithDescription("Provider calls by outcome")); err != nil {
		return nil, fmt.Errorf("provider.calls: %w", err)
	}
	if m.latency, err = meter.Float64Histogram("meetingmind.provider.duration",
		metric.WithDescription("Provider call latency"),
		metric.WithUnit("s")); err != nil {
		return nil, fmt.Errorf("provider.duration: %w", err)
	}
	if m.failures, err = meter.Int64Counter("meetingmind.provider.errors",
		metric.WithDescription("Failed provider calls")); err != nil {
		return nil, fmt.Errorf("provider.errors: %w", err)
	}
	return m, nil
}

// RecordOperation counts one call and records its latency.
func (m *Metrics) RecordOperation(ctx context.Context, service, operation, status string, duration time.Duration) {
	attrs := attribute.NewSet(
		attribute.String("provider", service),
		attribute.String("operation", operation),
	)
	m.calls.Add(ctx, 1, metric.WithAttributeSet(attrs), metric.WithAttributes(attribute.String("status", status)))
	m.latency.Record(ctx, duration.Seconds(), metric.WithAttributeSet(attrs))
}

// RecordError counts a failed call.
func (m *Metrics) RecordError(ctx context.Context, errType, component string) {
	m.failures.Add(ctx, 1, metric.WithAttributes(
		attribute.String("provider", component),
		attribute.String("operation", errType),
	))
}
