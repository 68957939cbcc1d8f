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

	"github.com/kbukum/aggregator/logger"
)

// InstrumentationName names the tracer and meter used by the engine.
const InstrumentationName = "github.com/kbukum/aggregator"

// InitMeter initializes the OpenTelemetry meter provider.
// Returns a MeterProvider that should be shut down on application exit.
func InitMeter(ctx context.Context, cfg Config, serviceName, serviceVersion string) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(cfg.Endpoint),
	}
	if cfg.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	res, err := newResource(serviceName, serviceVersion)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	readerOpts := []sdkmetric.PeriodicReaderOption{}
	if cfg.MetricInterval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(cfg.MetricInterval))
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)

	otel.SetMeterProvider(mp)

	logger.Get("observability").Info("meter initialized", logger.Fields(
		"endpoint", cfg.Endpoint,
		"interval", cfg.MetricInterval.String(),
	))

	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// Metrics holds the instruments recorded for aggregation runs.
type Metrics struct {
	runsTotal   metric.Int64Counter
	runDuration metric.Float64Histogram
	runsActive  metric.Int64UpDownCounter
	recordsIn   metric.Int64Counter
	recordsOut  metric.Int64Counter
	errorTotal  metric.Int64Counter
}

// NewMetrics creates metric instruments on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	runsTotal, err := meter.Int64Counter("aggregate.runs",
		metric.WithDescription("Completed aggregation runs by status"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating aggregate.runs counter: %w", err)
	}

	runDuration, err := meter.Float64Histogram("aggregate.run.duration",
		metric.WithDescription("Duration of aggregation runs in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating aggregate.run.duration histogram: %w", err)
	}

	runsActive, err := meter.Int64UpDownCounter("aggregate.runs.active",
		metric.WithDescription("Aggregation runs in progress"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating aggregate.runs.active gauge: %w", err)
	}

	recordsIn, err := meter.Int64Counter("aggregate.records.in",
		metric.WithDescription("Records pushed into pipelines"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating aggregate.records.in counter: %w", err)
	}

	recordsOut, err := meter.Int64Counter("aggregate.records.out",
		metric.WithDescription("Records drained from pipeline results"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating aggregate.records.out counter: %w", err)
	}

	errorTotal, err := meter.Int64Counter("aggregate.errors",
		metric.WithDescription("Failed runs by error code"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating aggregate.errors counter: %w", err)
	}

	return &Metrics{
		runsTotal:   runsTotal,
		runDuration: runDuration,
		runsActive:  runsActive,
		recordsIn:   recordsIn,
		recordsOut:  recordsOut,
		errorTotal:  errorTotal,
	}, nil
}

// RecordRunStart increments the active run count.
func (m *Metrics) RecordRunStart(ctx context.Context) {
	m.runsActive.Add(ctx, 1)
}

// RecordRunEnd decrements active runs and records the completed run.
func (m *Metrics) RecordRunEnd(ctx context.Context, status string, in, out int64, duration time.Duration) {
	attrs := metric.WithAttributes(attribute.String("status", status))
	m.runsActive.Add(ctx, -1)
	m.runsTotal.Add(ctx, 1, attrs)
	m.runDuration.Record(ctx, duration.Seconds(), attrs)
	m.recordsIn.Add(ctx, in)
	m.recordsOut.Add(ctx, out)
}

// RecordError records a failed run by error code and the phase it failed in.
func (m *Metrics) RecordError(ctx context.Context, code, phase string) {
	m.errorTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("code", code),
		attribute.String("phase", phase),
	))
}
