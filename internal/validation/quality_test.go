package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"keibacli/pkg/contracts/domain"
)

func TestQualityReport(t *testing.T) {
	table := domain.NewTable("horse_name", "age", "odds", "note", "mixed")
	table.AppendRow(domain.Row{"horse_name": domain.Text("A"), "age": domain.Int(3), "odds": domain.Float(2.5), "mixed": domain.Int(1)})
	table.AppendRow(domain.Row{"horse_name": domain.Text("B"), "age": domain.Int(4), "mixed": domain.Text("x")})
	table.AppendRow(domain.Row{"horse_name": domain.Text("A"), "age": domain.Int(3), "odds": domain.Float(2.5), "mixed": domain.Int(1)})

	v, _ := newTestValidator(t)
	report := v.QualityReport(table)

	assert.Equal(t, 3, report.TotalRows)
	assert.Equal(t, 5, report.TotalColumns)
	assert.Equal(t, []string{"horse_name", "age", "odds", "note", "mixed"}, report.Columns)

	assert.Equal(t, domain.MissingSummary{Count: 0, RatePercent: 0}, report.Missing["horse_name"])
	assert.Equal(t, domain.MissingSummary{Count: 1, RatePercent: 33.33}, report.Missing["odds"])
	assert.Equal(t, domain.MissingSummary{Count: 3, RatePercent: 100}, report.Missing["note"])

	assert.Equal(t, map[string]string{
		"horse_name": TypeText,
		"age":        TypeInteger,
		"odds":       TypeFloat,
		"note":       TypeEmpty,
		"mixed":      TypeMixed,
	}, report.DataTypes)

	assert.Equal(t, 1, report.DuplicateRows)
}

func TestQualityReport_Rounding(t *testing.T) {
	table := domain.NewTable("x")
	table.AppendRow(domain.Row{})
	table.AppendRow(domain.Row{})
	table.AppendRow(domain.Row{"x": domain.Int(1)})

	v, _ := newTestValidator(t)
	report := v.QualityReport(table)
	assert.Equal(t, 66.67, report.Missing["x"].RatePercent)
	assert.Equal(t, 1, report.DuplicateRows)
}

func TestQualityReport_Empty(t *testing.T) {
	v, _ := newTestValidator(t)

	report := v.QualityReport(domain.NewTable("horse_name"))
	assert.Equal(t, 0, report.TotalRows)
	assert.Equal(t, 0.0, report.Missing["horse_name"].RatePercent)
	assert.Equal(t, TypeEmpty, report.DataTypes["horse_name"])

	report = v.QualityReport(nil)
	require.NotNil(t, report.Missing)
	assert.Equal(t, 0, report.TotalColumns)
}

func TestQualityReport_KindSensitiveDuplicates(t *testing.T) {
	table := domain.NewTable("v")
	table.AppendRow(domain.Row{"v": domain.Int(1)})
	table.AppendRow(domain.Row{"v": domain.Text("1")})

	v, _ := newTestValidator(t)
	assert.Equal(t, 0, v.QualityReport(table).DuplicateRows)
}
