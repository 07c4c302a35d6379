// Package telemetry provides OpenTelemetry instrumentation for the console
// sync core.
package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// ConsoleMetricsMeterName is the name used for the console metrics meter
const ConsoleMetricsMeterName = "github.com/metagrid-io/catalog-console/console"

// ConsoleMetrics holds the OpenTelemetry instruments for the sync core
type ConsoleMetrics struct {
	fetchDuration metric.Float64Histogram
	pollAttempts  metric.Int64Counter
	triggerTotal  metric.Int64Counter
}

// NewConsoleMetrics creates a new ConsoleMetrics instance with the given meter
// provider. If provider is nil, it returns nil (no-op metrics).
func NewConsoleMetrics(provider metric.MeterProvider) (*ConsoleMetrics, error) {
	if provider == nil {
		return nil, nil
	}

	meter := provider.Meter(ConsoleMetricsMeterName)

	fetchDuration, err := meter.Float64Histogram(
		"catcon_fetch_duration_seconds",
		metric.WithDescription("Duration of paged collection fetches in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30),
	)
	if err != nil {
		return nil, err
	}

	pollAttempts, err := meter.Int64Counter(
		"catcon_run_poll_attempts_total",
		metric.WithDescription("Number of run-completion poll attempts"),
		metric.WithUnit("{attempt}"),
	)
	if err != nil {
		return nil, err
	}

	triggerTotal, err := meter.Int64Counter(
		"catcon_run_triggers_total",
		metric.WithDescription("Number of collection-run triggers by outcome"),
		metric.WithUnit("{trigger}"),
	)
	if err != nil {
		return nil, err
	}

	return &ConsoleMetrics{
		fetchDuration: fetchDuration,
		pollAttempts:  pollAttempts,
		triggerTotal:  triggerTotal,
	}, nil
}

// RecordFetchDuration records the duration of one paged fetch for a collection
func (m *ConsoleMetrics) RecordFetchDuration(ctx context.Context, collection string, duration time.Duration, success bool) {
	if m == nil || m.fetchDuration == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("collection", collection),
		attribute.Bool("success", success),
	}

	m.fetchDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordPollAttempt records one run-completion poll attempt for a resource
func (m *ConsoleMetrics) RecordPollAttempt(ctx context.Context, resourceID string) {
	if m == nil || m.pollAttempts == nil {
		return
	}

	m.pollAttempts.Add(ctx, 1, metric.WithAttributes(
		attribute.String("resource", resourceID),
	))
}

// RecordTrigger records one trigger call and its outcome
func (m *ConsoleMetrics) RecordTrigger(ctx context.Context, resourceID, outcome string) {
	if m == nil || m.triggerTotal == nil {
		return
	}

	m.triggerTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("resource", resourceID),
		attribute.String("outcome", outcome),
	))
}
