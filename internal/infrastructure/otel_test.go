package infrastructure

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"keibacli/internal/config"
	"keibacli/internal/shared/testutil"
)

func newProviders(t *testing.T) *OTelProviders {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	providers, err := InitializeOTel(nil, logger)
	require.NoError(t, err)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = providers.Shutdown(ctx)
	})
	return providers
}

func TestInitializeOTel(t *testing.T) {
	providers := newProviders(t)

	assert.NotNil(t, providers.TracerProvider)
	assert.NotNil(t, providers.Tracer)
	assert.NotNil(t, providers.MeterProvider)
	assert.NotNil(t, providers.Meter)
	assert.NotNil(t, providers.Registry)
}

func TestInitializeOTel_UnknownExporter(t *testing.T) {
	cfg := OTelConfigFrom(config.Default().Telemetry)
	cfg.TraceExporter = "jaeger"

	_, err := InitializeOTel(cfg, nil)
	assert.ErrorContains(t, err, "unsupported trace exporter")
}

func TestSpanHelpers(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	defer tp.Shutdown(context.Background())

	assert.NotPanics(t, func() {
		AddSpanEvent(context.Background(), "no span")
		RecordError(context.Background(), assert.AnError)
	})

	ctx, span := tp.Tracer("keiba-test").Start(context.Background(), "batch")
	AddSpanEvent(ctx, "rows dropped", attribute.Int("dropped.outlier", 2))
	RecordError(ctx, assert.AnError)
	span.End()

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	events := ended[0].Events()
	require.Len(t, events, 2)
	assert.Equal(t, "rows dropped", events[0].Name)
	assert.Equal(t, []attribute.KeyValue{attribute.Int("dropped.outlier", 2)}, events[0].Attributes)
	assert.Equal(t, "exception", events[1].Name)
	assert.Equal(t, codes.Error, ended[0].Status().Code)
}

func TestPipelineMetrics(t *testing.T) {
	providers := newProviders(t)
	metrics, err := CreatePipelineMetrics(providers.Meter)
	require.NoError(t, err)

	ctx := context.Background()
	metrics.RecordBatch(ctx, BatchSucceeded, 120*time.Millisecond)
	metrics.RecordBatch(ctx, BatchRejected, 80*time.Millisecond)
	metrics.RecordStep(ctx, "clean", 10*time.Millisecond, true)
	metrics.RecordRows(ctx, 10, 7, map[string]int{"outlier": 2, "position_sentinel": 1, "missing_essential": 0})
	metrics.RecordViolations(ctx, map[string]int{"duplicate_horse_number": 1})
	metrics.RecordNeutralScores(ctx, 4)

	count, err := promtestutil.GatherAndCount(providers.Registry, "keiba_batches_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	count, err = promtestutil.GatherAndCount(providers.Registry, "keiba_rows_dropped_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count, "zero counts are not recorded")

	path := filepath.Join(t.TempDir(), "keiba.prom")
	require.NoError(t, providers.WriteMetrics(path))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "keiba_rows_in_total 10")
	assert.Contains(t, string(content), `keiba_rows_dropped_total{reason="outlier"} 2`)
	assert.Contains(t, string(content), "keiba_neutral_scores_total 4")
}

func TestPipelineMetrics_Nil(t *testing.T) {
	var metrics *PipelineMetrics
	ctx := context.Background()

	assert.NotPanics(t, func() {
		metrics.RecordBatch(ctx, BatchFailed, time.Second)
		metrics.RecordStep(ctx, "derive", time.Second, false)
		metrics.RecordRows(ctx, 1, 1, nil)
		metrics.RecordViolations(ctx, nil)
		metrics.RecordNeutralScores(ctx, 1)
	})
}

func TestRuntimeMetrics(t *testing.T) {
	providers := newProviders(t)
	rm, err := NewRuntimeMetrics(providers.Meter)
	require.NoError(t, err)

	start := time.Now().Add(-time.Second)
	stats := rm.Collect(context.Background(), start)

	assert.Positive(t, stats.GoRoutines)
	assert.Positive(t, stats.HeapInUse)
	assert.GreaterOrEqual(t, stats.ProcessUptime, time.Second)

	count, err := promtestutil.GatherAndCount(providers.Registry, "keiba_goroutines")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
