package operations

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"

	"keibacli/internal/features"
	"keibacli/internal/infrastructure"
	"keibacli/internal/validation"
)

// LoadStep reads the batch's raw record table from its source
type LoadStep struct {
	BaseStep
}

// NewLoadStep creates the load step
func NewLoadStep() *LoadStep {
	return &LoadStep{BaseStep: NewBaseStep(StepIDLoad, StepNameLoad, nil)}
}

// Validate requires a source
func (s *LoadStep) Validate(state *BatchState) error {
	if state == nil || state.Source == nil {
		return NewValidationError(s.ID(), "batch has no source")
	}
	return nil
}

// Execute loads the raw table
func (s *LoadStep) Execute(ctx context.Context, state *BatchState) error {
	table, err := state.Source.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load records: %w", err)
	}
	if table == nil {
		return fmt.Errorf("source returned no table")
	}
	state.Raw = table
	state.GetStep(s.ID()).SetMetadata("rows", table.Len())
	return nil
}

// CleanStep runs the validator/cleaner over the raw table
type CleanStep struct {
	BaseStep
	validator *validation.Validator
}

// NewCleanStep creates the clean step
func NewCleanStep(v *validation.Validator) *CleanStep {
	return &CleanStep{
		BaseStep:  NewBaseStep(StepIDClean, StepNameClean, []string{StepIDLoad}),
		validator: v,
	}
}

// Validate requires a loaded table
func (s *CleanStep) Validate(state *BatchState) error {
	if state == nil || state.Raw == nil {
		return NewValidationError(s.ID(), "no raw table loaded")
	}
	return nil
}

// Execute cleans the raw table
func (s *CleanStep) Execute(ctx context.Context, state *BatchState) error {
	cleaned, stats, err := s.validator.CleanWithStats(state.Raw)
	if err != nil {
		return err
	}
	state.Cleaned = cleaned
	state.CleanStats = stats

	st := state.GetStep(s.ID())
	st.SetMetadata("rows_in", stats.RowsIn)
	st.SetMetadata("rows_out", stats.RowsOut)
	st.SetMetadata("rows_dropped", stats.TotalDropped())

	if stats.TotalDropped() > 0 {
		attrs := make([]attribute.KeyValue, 0, len(stats.Dropped))
		for reason, n := range stats.Dropped {
			attrs = append(attrs, attribute.Int("dropped."+string(reason), n))
		}
		infrastructure.AddSpanEvent(ctx, "rows dropped", attrs...)
	}
	return nil
}

// ValidateStep checks the cleaned table's race structure
type ValidateStep struct {
	BaseStep
	validator *validation.Validator
	logger    *slog.Logger
}

// NewValidateStep creates the structural validation step
func NewValidateStep(v *validation.Validator, logger *slog.Logger) *ValidateStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &ValidateStep{
		BaseStep:  NewBaseStep(StepIDValidate, StepNameValidate, []string{StepIDClean}),
		validator: v,
		logger:    logger,
	}
}

// Validate requires a cleaned table
func (s *ValidateStep) Validate(state *BatchState) error {
	if state == nil || state.Cleaned == nil {
		return NewValidationError(s.ID(), "no cleaned table")
	}
	return nil
}

// Execute records the validation result. In strict mode an invalid result
// rejects the batch.
func (s *ValidateStep) Execute(ctx context.Context, state *BatchState) error {
	result := s.validator.ValidateRaceData(state.Cleaned)
	state.Validation = result
	state.GetStep(s.ID()).SetMetadata("violations", len(result.Violations))

	if result.Valid {
		return nil
	}
	infrastructure.AddSpanEvent(ctx, "structural violations",
		attribute.Int("violations", len(result.Violations)),
		attribute.Bool("strict", state.Strict))
	if state.Strict {
		return NewRejectedError(s.ID(), len(result.Violations), result.String())
	}
	s.logger.WarnContext(ctx, "continuing with structural violations",
		slog.String("batch_id", state.ID),
		slog.Int("violations", len(result.Violations)))
	return nil
}

// QualityStep describes the loaded input
type QualityStep struct {
	BaseStep
	validator *validation.Validator
}

// NewQualityStep creates the quality report step
func NewQualityStep(v *validation.Validator) *QualityStep {
	return &QualityStep{
		BaseStep:  NewBaseStep(StepIDQuality, StepNameQuality, []string{StepIDLoad}),
		validator: v,
	}
}

// Validate requires a loaded table
func (s *QualityStep) Validate(state *BatchState) error {
	if state == nil || state.Raw == nil {
		return NewValidationError(s.ID(), "no raw table loaded")
	}
	return nil
}

// Execute builds the quality report
func (s *QualityStep) Execute(ctx context.Context, state *BatchState) error {
	report := s.validator.QualityReport(state.Raw)
	state.Quality = &report
	state.GetStep(s.ID()).SetMetadata("duplicate_rows", report.DuplicateRows)
	return nil
}

// DeriveStep runs the feature engineer over the cleaned table
type DeriveStep struct {
	BaseStep
	engineer *features.Engineer
}

// NewDeriveStep creates the feature engineering step
func NewDeriveStep(e *features.Engineer) *DeriveStep {
	return &DeriveStep{
		BaseStep: NewBaseStep(StepIDDerive, StepNameDerive, []string{StepIDClean, StepIDValidate}),
		engineer: e,
	}
}

// Validate requires a cleaned table
func (s *DeriveStep) Validate(state *BatchState) error {
	if state == nil || state.Cleaned == nil {
		return NewValidationError(s.ID(), "no cleaned table")
	}
	return nil
}

// Execute derives the feature table
func (s *DeriveStep) Execute(ctx context.Context, state *BatchState) error {
	out, stats, err := s.engineer.DeriveWithStats(state.Cleaned)
	if err != nil {
		return err
	}
	state.Features = out
	state.DeriveStats = stats

	st := state.GetStep(s.ID())
	st.SetMetadata("features_added", len(stats.Added))
	st.SetMetadata("features_scored", len(stats.Scored))
	st.SetMetadata("neutral_scores", stats.Neutral)
	return nil
}

// NewPipelineRegistry registers the standard steps: load, clean, quality,
// validate and derive. A batch rejected by validate still carries its quality
// report.
func NewPipelineRegistry(v *validation.Validator, e *features.Engineer, logger *slog.Logger) (*Registry, error) {
	registry := NewRegistry()
	for _, step := range []Step{
		NewLoadStep(),
		NewCleanStep(v),
		NewQualityStep(v),
		NewValidateStep(v, logger),
		NewDeriveStep(e),
	} {
		if err := registry.Register(step); err != nil {
			return nil, err
		}
	}
	return registry, nil
}
