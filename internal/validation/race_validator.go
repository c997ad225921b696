package validation

import (
	"fmt"
	"log/slog"
	"math"

	"keibacli/internal/dataprocessing"
	"keibacli/pkg/contracts/domain"
)

// ValidateRaceData checks structural invariants: required columns present,
// horse numbers unique within each race, and the declared field size equal to
// the largest horse number. The result is advisory; it never alters the table.
func (v *Validator) ValidateRaceData(table *domain.Table) domain.ValidationResult {
	var violations []domain.Violation

	if table == nil {
		table = domain.NewTable()
	}

	for _, col := range v.rules.RequiredColumns {
		if !table.Has(col) {
			violations = append(violations, domain.Violation{
				Kind:    domain.ViolationMissingColumn,
				Column:  col,
				Message: fmt.Sprintf("required column %q is missing", col),
			})
		}
	}

	for _, race := range v.raceContexts(table) {
		violations = append(violations, v.checkRace(table, race)...)
	}

	result := domain.ValidationResult{
		Valid:      len(violations) == 0,
		Violations: violations,
	}
	if result.Valid {
		v.logger.Info("race data validated", slog.Int("rows", table.Len()))
		return result
	}
	for _, violation := range violations {
		v.logger.Warn("race data violation",
			slog.String("kind", string(violation.Kind)),
			slog.String("race_id", violation.RaceID),
			slog.String("message", violation.Message))
	}
	return result
}

type raceContext struct {
	id   string
	rows []int
}

// raceContexts groups row indices by race. Without a group column the whole
// table is one race; rows with a missing race id form their own context.
func (v *Validator) raceContexts(table *domain.Table) []raceContext {
	col := v.rules.GroupColumn
	if col == "" || !table.Has(col) {
		all := make([]int, table.Len())
		for i := range all {
			all[i] = i
		}
		return []raceContext{{rows: all}}
	}

	keys, groups := table.GroupBy(col)
	contexts := make([]raceContext, 0, len(keys)+1)
	for _, k := range keys {
		contexts = append(contexts, raceContext{id: k, rows: groups[k]})
	}
	var orphans []int
	for i := 0; i < table.Len(); i++ {
		if table.Get(i, col).IsMissing() {
			orphans = append(orphans, i)
		}
	}
	if len(orphans) > 0 {
		contexts = append(contexts, raceContext{rows: orphans})
	}
	return contexts
}

func (v *Validator) checkRace(table *domain.Table, race raceContext) []domain.Violation {
	numberCol := v.rules.HorseNumberColumn
	if numberCol == "" || !table.Has(numberCol) {
		return nil
	}

	var violations []domain.Violation
	seen := make(map[string]bool, len(race.rows))
	reported := make(map[string]bool)
	maxNumber := math.Inf(-1)

	for _, i := range race.rows {
		cell := table.Get(i, numberCol)
		if cell.IsMissing() {
			continue
		}
		key := cell.String()
		if f, ok := dataprocessing.ParseNumber(cell); ok {
			key = domain.Number(f).String()
			maxNumber = math.Max(maxNumber, f)
		}
		if seen[key] && !reported[key] {
			reported[key] = true
			violations = append(violations, domain.Violation{
				Kind:    domain.ViolationDuplicateHorseNumber,
				RaceID:  race.id,
				Column:  numberCol,
				Message: fmt.Sprintf("race %s: horse number %s appears more than once", raceLabel(race.id), key),
			})
		}
		seen[key] = true
	}

	sizeCol := v.rules.FieldSizeColumn
	if sizeCol == "" || !table.Has(sizeCol) || len(race.rows) == 0 || math.IsInf(maxNumber, -1) {
		return violations
	}
	declared, ok := dataprocessing.ParseNumber(table.Get(race.rows[0], sizeCol))
	if !ok {
		return violations
	}
	if declared != maxNumber {
		violations = append(violations, domain.Violation{
			Kind:   domain.ViolationFieldSizeMismatch,
			RaceID: race.id,
			Column: sizeCol,
			Message: fmt.Sprintf("race %s: declared field size %s but highest horse number is %s",
				raceLabel(race.id), domain.Number(declared), domain.Number(maxNumber)),
		})
	}
	return violations
}

func raceLabel(id string) string {
	if id == "" {
		return "(no race id)"
	}
	return id
}
