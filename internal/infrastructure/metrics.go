package infrastructure

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Batch outcomes recorded on keiba_batches_total
const (
	BatchSucceeded = "success"
	BatchFailed    = "failure"
	BatchRejected  = "rejected"
)

// PipelineMetrics holds the instruments of the batch pipeline. A nil
// *PipelineMetrics records nothing.
type PipelineMetrics struct {
	BatchesTotal     metric.Int64Counter
	BatchDuration    metric.Float64Histogram
	StepDuration     metric.Float64Histogram
	RowsInTotal      metric.Int64Counter
	RowsOutTotal     metric.Int64Counter
	RowsDroppedTotal metric.Int64Counter
	ViolationsTotal  metric.Int64Counter
	NeutralScores    metric.Int64Counter
}

// CreatePipelineMetrics registers the pipeline instruments on meter
func CreatePipelineMetrics(meter metric.Meter) (*PipelineMetrics, error) {
	batchesTotal, err := meter.Int64Counter(
		"keiba_batches_total",
		metric.WithDescription("Total number of batches processed, by outcome"),
	)
	if err != nil {
		return nil, err
	}

	batchDuration, err := meter.Float64Histogram(
		"keiba_batch_duration_seconds",
		metric.WithDescription("Batch processing duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	stepDuration, err := meter.Float64Histogram(
		"keiba_step_duration_seconds",
		metric.WithDescription("Pipeline step duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	rowsIn, err := meter.Int64Counter(
		"keiba_rows_in_total",
		metric.WithDescription("Total number of rows read into the cleaner"),
	)
	if err != nil {
		return nil, err
	}

	rowsOut, err := meter.Int64Counter(
		"keiba_rows_out_total",
		metric.WithDescription("Total number of rows that survived cleaning"),
	)
	if err != nil {
		return nil, err
	}

	rowsDropped, err := meter.Int64Counter(
		"keiba_rows_dropped_total",
		metric.WithDescription("Total number of rows removed by the cleaner, by reason"),
	)
	if err != nil {
		return nil, err
	}

	violations, err := meter.Int64Counter(
		"keiba_violations_total",
		metric.WithDescription("Total number of structural violations found, by kind"),
	)
	if err != nil {
		return nil, err
	}

	neutral, err := meter.Int64Counter(
		"keiba_neutral_scores_total",
		metric.WithDescription("Total number of deviation scores that fell back to 50"),
	)
	if err != nil {
		return nil, err
	}

	return &PipelineMetrics{
		BatchesTotal:     batchesTotal,
		BatchDuration:    batchDuration,
		StepDuration:     stepDuration,
		RowsInTotal:      rowsIn,
		RowsOutTotal:     rowsOut,
		RowsDroppedTotal: rowsDropped,
		ViolationsTotal:  violations,
		NeutralScores:    neutral,
	}, nil
}

// RecordBatch records one finished batch
func (m *PipelineMetrics) RecordBatch(ctx context.Context, status string, duration time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("status", status))
	m.BatchesTotal.Add(ctx, 1, attrs)
	m.BatchDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordStep records one pipeline step execution
func (m *PipelineMetrics) RecordStep(ctx context.Context, step string, duration time.Duration, success bool) {
	if m == nil {
		return
	}
	status := BatchSucceeded
	if !success {
		status = BatchFailed
	}
	m.StepDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("step", step),
		attribute.String("status", status),
	))
}

// RecordRows records cleaner throughput. dropped is keyed by drop reason.
func (m *PipelineMetrics) RecordRows(ctx context.Context, in, out int, dropped map[string]int) {
	if m == nil {
		return
	}
	m.RowsInTotal.Add(ctx, int64(in))
	m.RowsOutTotal.Add(ctx, int64(out))
	for reason, n := range dropped {
		if n == 0 {
			continue
		}
		m.RowsDroppedTotal.Add(ctx, int64(n), metric.WithAttributes(attribute.String("reason", reason)))
	}
}

// RecordViolations records structural violations keyed by kind
func (m *PipelineMetrics) RecordViolations(ctx context.Context, byKind map[string]int) {
	if m == nil {
		return
	}
	for kind, n := range byKind {
		m.ViolationsTotal.Add(ctx, int64(n), metric.WithAttributes(attribute.String("kind", kind)))
	}
}

// RecordNeutralScores records deviation scores that fell back to 50
func (m *PipelineMetrics) RecordNeutralScores(ctx context.Context, n int) {
	if m == nil || n == 0 {
		return
	}
	m.NeutralScores.Add(ctx, int64(n))
}
