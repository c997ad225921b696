package operations

import (
	"context"
	"log/slog"
	"time"

	"keibacli/internal/infrastructure"
)

// logBatchStart logs the start of a batch
func (m *Manager) logBatchStart(ctx context.Context, state *BatchState) {
	m.logger.InfoContext(ctx, "batch_start",
		slog.String("batch_id", state.ID),
		slog.String("label", state.Label),
		slog.Bool("strict", state.Strict))
}

// logBatchComplete logs the outcome of a batch
func (m *Manager) logBatchComplete(ctx context.Context, res *BatchResult) {
	m.logger.InfoContext(ctx, "batch_complete",
		slog.String("batch_id", res.ID),
		slog.String("status", string(res.Status)),
		slog.Int("rows_in", res.CleanStats.RowsIn),
		slog.Int("rows_out", res.CleanStats.RowsOut),
		slog.Int("violations", len(res.Validation.Violations)),
		slog.Duration("duration", res.Duration))
}

// logBatchError logs a batch error
func (m *Manager) logBatchError(ctx context.Context, batchID string, err error) {
	infrastructure.WithError(m.logger, err).ErrorContext(ctx, "batch_error",
		slog.String("batch_id", batchID))
}

// logStepStart logs the start of a step
func (m *Manager) logStepStart(ctx context.Context, batchID, stepID string) {
	m.logger.DebugContext(ctx, "step_start",
		slog.String("batch_id", batchID),
		slog.String("step", stepID))
}

// logStepComplete logs the completion of a step
func (m *Manager) logStepComplete(ctx context.Context, batchID, stepID string, duration time.Duration) {
	m.logger.DebugContext(ctx, "step_complete",
		slog.String("batch_id", batchID),
		slog.String("step", stepID),
		slog.Duration("duration", duration))
}

// logStepError logs a step error
func (m *Manager) logStepError(ctx context.Context, batchID, stepID string, err error) {
	infrastructure.WithError(m.logger, err).ErrorContext(ctx, "step_error",
		slog.String("batch_id", batchID),
		slog.String("step", stepID))
}
