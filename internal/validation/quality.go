package validation

import (
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"keibacli/pkg/contracts/domain"
)

// Inferred column types reported by QualityReport
const (
	TypeEmpty   = "empty"
	TypeInteger = "integer"
	TypeFloat   = "float"
	TypeText    = "text"
	TypeMixed   = "mixed"
)

// QualityReport describes a table: row and column counts, missing cells per
// column, inferred column types and fully duplicated rows. It is for
// observability only.
func (v *Validator) QualityReport(table *domain.Table) domain.QualityReport {
	if table == nil {
		table = domain.NewTable()
	}

	columns := table.Columns()
	report := domain.QualityReport{
		TotalRows:    table.Len(),
		TotalColumns: len(columns),
		Columns:      columns,
		Missing:      make(map[string]domain.MissingSummary, len(columns)),
		DataTypes:    make(map[string]string, len(columns)),
	}

	for _, col := range columns {
		values := table.Column(col)
		missing := 0
		for _, c := range values {
			if c.IsMissing() {
				missing++
			}
		}
		report.Missing[col] = domain.MissingSummary{
			Count:       missing,
			RatePercent: missingRate(missing, report.TotalRows),
		}
		report.DataTypes[col] = inferType(values)
	}

	report.DuplicateRows = countDuplicates(table, columns)

	v.logger.Info("quality report generated",
		slog.Int("rows", report.TotalRows),
		slog.Int("columns", report.TotalColumns),
		slog.Int("duplicate_rows", report.DuplicateRows))
	return report
}

// missingRate is count/total as a percentage rounded half away from zero to
// two places. An empty table has a rate of 0.
func missingRate(count, total int) float64 {
	if total == 0 {
		return 0
	}
	return decimal.NewFromInt(int64(count)).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(int64(total))).
		Round(2).
		InexactFloat64()
}

func inferType(values []domain.Value) string {
	seen := make(map[domain.Kind]bool)
	for _, c := range values {
		if !c.IsMissing() {
			seen[c.Kind()] = true
		}
	}
	switch {
	case len(seen) == 0:
		return TypeEmpty
	case seen[domain.KindText] && len(seen) > 1:
		return TypeMixed
	case seen[domain.KindText]:
		return TypeText
	case seen[domain.KindFloat]:
		return TypeFloat
	default:
		return TypeInteger
	}
}

// countDuplicates counts rows equal, cell for cell, to an earlier row
func countDuplicates(table *domain.Table, columns []string) int {
	seen := make(map[string]bool, table.Len())
	dups := 0
	var b strings.Builder
	for i := 0; i < table.Len(); i++ {
		b.Reset()
		for _, col := range columns {
			c := table.Get(i, col)
			b.WriteByte(byte('0' + c.Kind()))
			b.WriteString(c.String())
			b.WriteByte(0x1f)
		}
		key := b.String()
		if seen[key] {
			dups++
			continue
		}
		seen[key] = true
	}
	return dups
}
