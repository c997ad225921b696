package infrastructure

import (
	"context"
	"runtime"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// RuntimeMetrics samples Go runtime resource usage
type RuntimeMetrics struct {
	goRoutines    metric.Int64Gauge
	heapInUse     metric.Int64Gauge
	heapAllocated metric.Int64Gauge
	gcCount       metric.Int64Gauge
	processUptime metric.Float64Gauge
}

// RuntimeStats is one runtime sample
type RuntimeStats struct {
	GoRoutines    int64
	HeapInUse     int64
	HeapAllocated int64
	GCCount       uint32
	ProcessUptime time.Duration
}

// NewRuntimeMetrics creates the runtime gauges on meter
func NewRuntimeMetrics(meter metric.Meter) (*RuntimeMetrics, error) {
	goRoutines, err := meter.Int64Gauge(
		"keiba_goroutines",
		metric.WithDescription("Number of active goroutines"),
	)
	if err != nil {
		return nil, err
	}

	heapInUse, err := meter.Int64Gauge(
		"keiba_heap_inuse_bytes",
		metric.WithDescription("Heap memory in use in bytes"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, err
	}

	heapAllocated, err := meter.Int64Gauge(
		"keiba_heap_allocated_bytes",
		metric.WithDescription("Cumulative heap allocation in bytes"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, err
	}

	gcCount, err := meter.Int64Gauge(
		"keiba_gc_count",
		metric.WithDescription("Number of completed garbage collections"),
	)
	if err != nil {
		return nil, err
	}

	processUptime, err := meter.Float64Gauge(
		"keiba_process_uptime_seconds",
		metric.WithDescription("Process uptime in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return &RuntimeMetrics{
		goRoutines:    goRoutines,
		heapInUse:     heapInUse,
		heapAllocated: heapAllocated,
		gcCount:       gcCount,
		processUptime: processUptime,
	}, nil
}

// Collect samples the runtime and records the gauges
func (rm *RuntimeMetrics) Collect(ctx context.Context, startTime time.Time) RuntimeStats {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	stats := RuntimeStats{
		GoRoutines:    int64(runtime.NumGoroutine()),
		HeapInUse:     int64(memStats.HeapInuse),
		HeapAllocated: int64(memStats.TotalAlloc),
		GCCount:       memStats.NumGC,
		ProcessUptime: time.Since(startTime),
	}

	rm.goRoutines.Record(ctx, stats.GoRoutines)
	rm.heapInUse.Record(ctx, stats.HeapInUse)
	rm.heapAllocated.Record(ctx, stats.HeapAllocated)
	rm.gcCount.Record(ctx, int64(stats.GCCount))
	rm.processUptime.Record(ctx, stats.ProcessUptime.Seconds())
	return stats
}
