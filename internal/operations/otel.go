package operations

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"keibacli/internal/infrastructure"
)

const (
	TracerName = "keibacli.operations"
)

// OperationTracer provides spans and metrics for batch execution. A nil
// *OperationTracer is valid and records nothing.
type OperationTracer struct {
	tracer  trace.Tracer
	metrics *infrastructure.PipelineMetrics
}

// NewOperationTracer creates a tracer on the given providers
func NewOperationTracer(providers *infrastructure.OTelProviders) (*OperationTracer, error) {
	metrics, err := infrastructure.CreatePipelineMetrics(providers.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create pipeline metrics: %w", err)
	}
	return &OperationTracer{
		tracer:  providers.TracerProvider.Tracer(TracerName),
		metrics: metrics,
	}, nil
}

// TraceBatch starts the span covering one batch
func (t *OperationTracer) TraceBatch(ctx context.Context, state *BatchState) (context.Context, trace.Span) {
	if t == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return t.tracer.Start(ctx, "batch.execute",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("batch.id", state.ID),
			attribute.String("batch.label", state.Label),
			attribute.Bool("batch.strict", state.Strict),
		),
	)
}

// TraceStep starts the span covering one step
func (t *OperationTracer) TraceStep(ctx context.Context, batchID, stepID string) (context.Context, trace.Span) {
	if t == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return t.tracer.Start(ctx, "batch.step."+stepID,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("batch.id", batchID),
			attribute.String("step.id", stepID),
		),
	)
}

// EndStep closes a step span and records its duration
func (t *OperationTracer) EndStep(ctx context.Context, span trace.Span, stepID string, duration time.Duration, err error) {
	if t == nil {
		return
	}
	if err != nil {
		infrastructure.RecordError(ctx, err)
	}
	span.End()
	t.metrics.RecordStep(ctx, stepID, duration, err == nil)
}

// EndBatch closes the batch span and records the batch's counts
func (t *OperationTracer) EndBatch(ctx context.Context, span trace.Span, res *BatchResult) {
	if t == nil {
		return
	}

	span.SetAttributes(
		attribute.String("batch.status", string(res.Status)),
		attribute.Int("batch.rows_in", res.CleanStats.RowsIn),
		attribute.Int("batch.rows_out", res.CleanStats.RowsOut),
		attribute.Int("batch.violations", len(res.Validation.Violations)),
	)
	if res.Error != "" {
		span.SetStatus(codes.Error, res.Error)
	}
	span.End()

	status := infrastructure.BatchFailed
	switch res.Status {
	case BatchStatusCompleted:
		status = infrastructure.BatchSucceeded
	case BatchStatusRejected:
		status = infrastructure.BatchRejected
	}
	t.metrics.RecordBatch(ctx, status, res.Duration)

	if step, ok := res.Steps[StepIDClean]; ok && step.GetStatus() == StepStatusCompleted {
		dropped := make(map[string]int, len(res.CleanStats.Dropped))
		for reason, n := range res.CleanStats.Dropped {
			dropped[string(reason)] += n
		}
		t.metrics.RecordRows(ctx, res.CleanStats.RowsIn, res.CleanStats.RowsOut, dropped)
	}

	byKind := make(map[string]int)
	for _, v := range res.Validation.Violations {
		byKind[string(v.Kind)]++
	}
	t.metrics.RecordViolations(ctx, byKind)
	t.metrics.RecordNeutralScores(ctx, res.DeriveStats.Neutral)
}
