package validation

import (
	"log/slog"
	"math"
	"strings"

	"keibacli/internal/dataprocessing"
	apperrors "keibacli/internal/errors"
	"keibacli/pkg/contracts/domain"
)

// DropReason labels why the cleaner removed a row
type DropReason string

const (
	DropInvalidPosition DropReason = "invalid_position"
	DropSentinel        DropReason = "position_sentinel"
	DropEssential       DropReason = "missing_essential"
	DropOutlier         DropReason = "outlier"
)

// CleanStats summarises one Clean call
type CleanStats struct {
	RowsIn  int                `json:"rows_in"`
	RowsOut int                `json:"rows_out"`
	Dropped map[DropReason]int `json:"dropped"`
}

// TotalDropped returns the number of rows removed by all stages
func (s CleanStats) TotalDropped() int {
	return s.RowsIn - s.RowsOut
}

// Validator cleans raw race records, checks their structure and reports on
// their quality. It holds no mutable state and is safe for concurrent use.
type Validator struct {
	rules  Rules
	logger *slog.Logger
}

// NewValidator creates a validator for the given rules
func NewValidator(rules Rules, logger *slog.Logger) *Validator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Validator{
		rules:  rules,
		logger: logger,
	}
}

// Rules returns the rules the validator was built with
func (v *Validator) Rules() Rules {
	return v.rules
}

// Clean returns a cleaned copy of table. The input is never modified.
// The only error is a shape error; bad cell values degrade to missing.
func (v *Validator) Clean(table *domain.Table) (*domain.Table, error) {
	out, _, err := v.CleanWithStats(table)
	return out, err
}

// CleanWithStats is Clean plus per-reason drop counts
func (v *Validator) CleanWithStats(table *domain.Table) (*domain.Table, CleanStats, error) {
	stats := CleanStats{Dropped: make(map[DropReason]int)}
	if err := table.Validate(); err != nil {
		return nil, stats, apperrors.NewShapeError("cannot clean table", err)
	}
	stats.RowsIn = table.Len()

	out := v.normalizePositions(table, &stats)
	out = v.coerceTypes(out)
	out = v.handleMissing(out, &stats)
	out = v.filterOutliers(out, &stats)

	stats.RowsOut = out.Len()
	v.logger.Info("race data cleaned",
		slog.Int("rows_in", stats.RowsIn),
		slog.Int("rows_out", stats.RowsOut),
		slog.Int("rows_dropped", stats.TotalDropped()))
	return out, stats, nil
}

// normalizePositions coerces the finishing position to an integer, dropping
// rows where that fails, then drops rows whose raw position is a sentinel.
func (v *Validator) normalizePositions(table *domain.Table, stats *CleanStats) *domain.Table {
	out := table.Clone()

	if col := v.rules.PositionColumn; col != "" && out.Has(col) {
		before := out.Len()
		out = out.Filter(func(r domain.Row) bool {
			_, ok := parsePosition(r[col])
			return ok
		})
		for i := 0; i < out.Len(); i++ {
			pos, _ := parsePosition(out.Get(i, col))
			out.Set(i, col, domain.Int(pos))
		}
		v.recordDrop(stats, DropInvalidPosition, before-out.Len(), col)
	}

	if col := v.rules.RawPositionColumn; col != "" && out.Has(col) {
		before := out.Len()
		out = out.Filter(func(r domain.Row) bool {
			raw, ok := r[col].Text()
			if !ok {
				return true
			}
			return !v.rules.isSentinel(strings.TrimSpace(dataprocessing.NarrowWidth(raw)))
		})
		v.recordDrop(stats, DropSentinel, before-out.Len(), col)
	}

	return out
}

// parsePosition reads a finishing position as an integer. Values that do not
// fit in an int64 are rejected.
func parsePosition(v domain.Value) (int64, bool) {
	f, ok := dataprocessing.ParseNumber(v)
	if !ok {
		return 0, false
	}
	f = math.Trunc(f)
	if f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}

// coerceTypes applies the numeric and text allow-lists to columns that exist
func (v *Validator) coerceTypes(table *domain.Table) *domain.Table {
	out := table.Clone()
	for _, col := range v.rules.NumericColumns {
		if out.Has(col) {
			out.SetColumn(col, mapValues(out.Column(col), dataprocessing.ToNumeric))
		}
	}
	for _, col := range v.rules.TextColumns {
		if out.Has(col) {
			out.SetColumn(col, mapValues(out.Column(col), dataprocessing.ToText))
		}
	}
	return out
}

// handleMissing fills rank columns, unifies blank text into missing and
// drops rows lacking an essential identifier.
func (v *Validator) handleMissing(table *domain.Table, stats *CleanStats) *domain.Table {
	out := table.Clone()

	for _, col := range v.rules.RankColumns {
		if out.Has(col) {
			out.SetColumn(col, mapValues(out.Column(col), v.fillRank))
		}
	}

	for _, col := range out.Columns() {
		out.SetColumn(col, mapValues(out.Column(col), func(c domain.Value) domain.Value {
			if dataprocessing.IsBlank(c) {
				return domain.Missing()
			}
			return c
		}))
	}

	var essential []string
	for _, col := range v.rules.EssentialColumns {
		if out.Has(col) {
			essential = append(essential, col)
		}
	}
	if len(essential) == 0 {
		return out
	}

	before := out.Len()
	out = out.Filter(func(r domain.Row) bool {
		for _, col := range essential {
			if r[col].IsMissing() {
				return false
			}
		}
		return true
	})
	v.recordDrop(stats, DropEssential, before-out.Len(), strings.Join(essential, ","))
	return out
}

// fillRank maps a rank cell: 0 means the rank does not apply and becomes
// missing, a missing rank becomes the fill value. Both substitutions are
// decided from the original cell, so a filled value is never reinterpreted.
func (v *Validator) fillRank(c domain.Value) domain.Value {
	if dataprocessing.IsBlank(c) {
		return domain.Int(int64(v.rules.RankFill))
	}
	f, ok := dataprocessing.ParseNumber(c)
	if !ok || f == 0 {
		return domain.Missing()
	}
	return domain.Number(f)
}

// filterOutliers keeps rows whose bounded columns lie inside their physical
// ranges. A bounded cell that is missing fails the check.
func (v *Validator) filterOutliers(table *domain.Table, stats *CleanStats) *domain.Table {
	out := table
	for _, b := range v.rules.Bounds {
		if !out.Has(b.Column) {
			continue
		}
		before := out.Len()
		out = out.Filter(func(r domain.Row) bool {
			f, ok := dataprocessing.ParseNumber(r[b.Column])
			return ok && b.Contains(f)
		})
		v.recordDrop(stats, DropOutlier, before-out.Len(), b.String())
	}
	if out == table {
		return table.Clone()
	}
	return out
}

func (v *Validator) recordDrop(stats *CleanStats, reason DropReason, n int, detail string) {
	if n == 0 {
		return
	}
	stats.Dropped[reason] += n
	v.logger.Debug("rows dropped",
		slog.String("reason", string(reason)),
		slog.String("detail", detail),
		slog.Int("count", n))
}

func mapValues(values []domain.Value, fn func(domain.Value) domain.Value) []domain.Value {
	for i, c := range values {
		values[i] = fn(c)
	}
	return values
}
