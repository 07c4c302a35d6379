package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestNewConsoleMetrics_NilProvider(t *testing.T) {
	t.Parallel()

	m, err := NewConsoleMetrics(nil)
	require.NoError(t, err)
	assert.Nil(t, m)
}

func TestConsoleMetrics_NilSafe(t *testing.T) {
	t.Parallel()

	var m *ConsoleMetrics
	ctx := context.Background()

	require.NotPanics(t, func() {
		m.RecordFetchDuration(ctx, "endpoints", time.Second, true)
		m.RecordPollAttempt(ctx, "ep-1")
		m.RecordTrigger(ctx, "ep-1", "accepted")
	})
}

func TestConsoleMetrics_RecordsInstruments(t *testing.T) {
	t.Parallel()

	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	m, err := NewConsoleMetrics(provider)
	require.NoError(t, err)
	require.NotNil(t, m)

	ctx := context.Background()
	m.RecordFetchDuration(ctx, "endpoints", 250*time.Millisecond, true)
	m.RecordPollAttempt(ctx, "ep-1")
	m.RecordPollAttempt(ctx, "ep-1")
	m.RecordTrigger(ctx, "ep-1", "accepted")

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))
	require.Len(t, rm.ScopeMetrics, 1)

	scope := rm.ScopeMetrics[0]
	assert.Equal(t, ConsoleMetricsMeterName, scope.Scope.Name)

	byName := make(map[string]metricdata.Metrics, len(scope.Metrics))
	for _, metric := range scope.Metrics {
		byName[metric.Name] = metric
	}

	histogram, ok := byName["catcon_fetch_duration_seconds"].Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Len(t, histogram.DataPoints, 1)
	assert.Equal(t, uint64(1), histogram.DataPoints[0].Count)
	assert.InDelta(t, 0.25, histogram.DataPoints[0].Sum, 0.001)

	polls, ok := byName["catcon_run_poll_attempts_total"].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, polls.DataPoints, 1)
	assert.Equal(t, int64(2), polls.DataPoints[0].Value)

	triggers, ok := byName["catcon_run_triggers_total"].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, triggers.DataPoints, 1)
	assert.Equal(t, int64(1), triggers.DataPoints[0].Value)
}
