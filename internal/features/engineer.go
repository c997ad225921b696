package features

import (
	"log/slog"
	"slices"

	apperrors "keibacli/internal/errors"
	"keibacli/pkg/contracts/domain"
)

// rule derives one output column from the cells of a row. It runs only when
// every required column is present in the table.
type rule struct {
	output   string
	requires []string
	compute  func(r domain.Row) domain.Value
}

// stage is one derivation step. Rules see the table as it was when the stage
// started, so a stage never consumes its own outputs.
type stage struct {
	name  string
	rules func() []rule
}

// Config controls the feature engineer
type Config struct {
	// GroupColumn selects race-wise scoring when present in the table
	GroupColumn string
	// Catalogue lists the columns eligible for deviation scoring
	Catalogue []string
}

// DefaultConfig returns the standard engineer configuration
func DefaultConfig() Config {
	return Config{
		GroupColumn: ColRaceID,
		Catalogue:   DefaultCatalogue(),
	}
}

// DeriveStats summarises one Derive call
type DeriveStats struct {
	Added   []string
	Skipped []string
	Scored  []string
	Neutral int
	Grouped bool
}

// Engineer derives model features from a cleaned race record table
type Engineer struct {
	config Config
	logger *slog.Logger
	stages []stage
}

// NewEngineer creates a feature engineer
func NewEngineer(config Config, logger *slog.Logger) *Engineer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engineer{
		config: config,
		logger: logger,
		stages: []stage{
			{name: "temporal/months", rules: monthRules},
			{name: "temporal/combinations", rules: temporalCombinationRules},
			{name: "performance/positions", rules: positionRules},
			{name: "performance/composites", rules: performanceRules},
			{name: "physical", rules: physicalRules},
			{name: "race_condition", rules: raceConditionRules},
			{name: "interaction", rules: interactionRules},
		},
	}
}

// Derive returns a copy of table with derived features added and catalogue
// columns converted to deviation scores. A missing source column skips the
// features that need it. The only error is a shape error.
func (e *Engineer) Derive(table *domain.Table) (*domain.Table, error) {
	out, _, err := e.DeriveWithStats(table)
	return out, err
}

// DeriveWithStats is Derive plus a record of what was added and skipped
func (e *Engineer) DeriveWithStats(table *domain.Table) (*domain.Table, DeriveStats, error) {
	var stats DeriveStats
	if err := table.Validate(); err != nil {
		return nil, stats, apperrors.NewShapeError("cannot derive features", err)
	}

	out := table.Clone()
	for _, st := range e.stages {
		added, skipped := applyRules(out, st.rules())
		stats.Added = append(stats.Added, added...)
		stats.Skipped = append(stats.Skipped, skipped...)
		e.logger.Debug("feature stage applied",
			slog.String("stage", st.name),
			slog.Int("added", len(added)),
			slog.Int("skipped", len(skipped)))
	}

	summary := DeviationScore(out, e.config.Catalogue, e.config.GroupColumn)
	stats.Scored = summary.Columns
	stats.Neutral = summary.Neutral
	stats.Grouped = summary.Grouped

	e.logger.Info("features derived",
		slog.Int("rows", out.Len()),
		slog.Int("columns", out.NumColumns()),
		slog.Int("features_added", len(stats.Added)),
		slog.Int("features_scored", len(stats.Scored)),
		slog.Bool("grouped", stats.Grouped))
	return out, stats, nil
}

// applyRules evaluates the rules whose inputs exist, all against the same
// snapshot of the table, then writes the results.
func applyRules(table *domain.Table, rules []rule) (added, skipped []string) {
	available := table.Columns()

	type result struct {
		column string
		values []domain.Value
	}
	snapshot := make([]domain.Row, table.Len())
	for i := range snapshot {
		snapshot[i] = table.Row(i)
	}

	var results []result
	for _, r := range rules {
		if !table.HasAll(r.requires...) {
			skipped = append(skipped, r.output)
			continue
		}
		values := make([]domain.Value, len(snapshot))
		for i, row := range snapshot {
			values[i] = r.compute(row)
		}
		results = append(results, result{column: r.output, values: values})
	}

	for _, res := range results {
		if !slices.Contains(available, res.column) {
			added = append(added, res.column)
		}
		table.SetColumn(res.column, res.values)
	}
	return added, skipped
}
