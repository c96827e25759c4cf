// Package telemetry optionally exports run metrics to an OTEL
// collector. Export failures never affect report generation.
package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/mbellini/effwatch/internal/domain"
)

const (
	serviceName    = "effwatch"
	serviceVersion = "0.3.0"
)

// RunMetrics describes one completed report run.
type RunMetrics struct {
	Period         domain.Period
	EventsFetched  int
	EventsDropped  int
	ActiveDuration time.Duration
	TotalDuration  time.Duration
	RunDuration    time.Duration
}

// Exporter pushes run metrics over OTLP/gRPC.
type Exporter interface {
	ExportRun(ctx context.Context, m RunMetrics) error
	Close(ctx context.Context) error
}

type otlpExporter struct {
	provider      *sdkmetric.MeterProvider
	runsTotal     metric.Int64Counter
	eventsTotal   metric.Int64Counter
	droppedTotal  metric.Int64Counter
	activeSeconds metric.Float64Counter
	runDuration   metric.Float64Histogram
}

// NewExporter creates an OTLP metrics exporter.
func NewExporter(ctx context.Context, cfg Config) (Exporter, error) {
	if !cfg.Enabled || cfg.Endpoint == "" {
		return nil, fmt.Errorf("telemetry exporter is disabled or endpoint not configured")
	}

	opts := []otlpmetricgrpc.Option{
		otlpmetricgrpc.WithEndpoint(cfg.Endpoint),
	}
	if cfg.Insecure {
		opts = append(opts, otlpmetricgrpc.WithDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())))
		opts = append(opts, otlpmetricgrpc.WithInsecure())
	}

	exp, err := otlpmetricgrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating OTLP exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(serviceVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exp)),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(provider)

	meter := provider.Meter(serviceName)

	runsTotal, err := meter.Int64Counter(
		"effwatch_runs_total",
		metric.WithDescription("Total report runs"),
		metric.WithUnit("{run}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating runs counter: %w", err)
	}

	eventsTotal, err := meter.Int64Counter(
		"effwatch_events_fetched_total",
		metric.WithDescription("Raw events fetched from the tracking daemon"),
		metric.WithUnit("{event}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating events counter: %w", err)
	}

	droppedTotal, err := meter.Int64Counter(
		"effwatch_events_dropped_total",
		metric.WithDescription("Malformed raw events dropped during normalization"),
		metric.WithUnit("{event}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating dropped counter: %w", err)
	}

	activeSeconds, err := meter.Float64Counter(
		"effwatch_active_seconds",
		metric.WithDescription("Active (non-AFK) time measured per run"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating active counter: %w", err)
	}

	runDuration, err := meter.Float64Histogram(
		"effwatch_run_duration_seconds",
		metric.WithDescription("Wall-clock report run duration"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating duration histogram: %w", err)
	}

	return &otlpExporter{
		provider:      provider,
		runsTotal:     runsTotal,
		eventsTotal:   eventsTotal,
		droppedTotal:  droppedTotal,
		activeSeconds: activeSeconds,
		runDuration:   runDuration,
	}, nil
}

func (e *otlpExporter) ExportRun(ctx context.Context, m RunMetrics) error {
	opt := metric.WithAttributes(
		attribute.String("period_type", string(m.Period.Type)),
	)

	e.runsTotal.Add(ctx, 1, opt)
	e.eventsTotal.Add(ctx, int64(m.EventsFetched), opt)
	e.droppedTotal.Add(ctx, int64(m.EventsDropped), opt)
	e.activeSeconds.Add(ctx, m.ActiveDuration.Seconds(), opt)
	e.runDuration.Record(ctx, m.RunDuration.Seconds(), opt)
	return nil
}

func (e *otlpExporter) Close(ctx context.Context) error {
	return e.provider.Shutdown(ctx)
}

// NoOpExporter is used when telemetry is disabled.
type NoOpExporter struct{}

func NewNoOpExporter() *NoOpExporter { return &NoOpExporter{} }

func (NoOpExporter) ExportRun(context.Context, RunMetrics) error { return nil }
func (NoOpExporter) Close(context.Context) error                 { return nil }
