package features

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"keibacli/pkg/contracts/domain"
)

// eval runs the rule named output from rules against row
func eval(t *testing.T, rules []rule, output string, row domain.Row) domain.Value {
	t.Helper()
	for _, r := range rules {
		if r.output == output {
			return r.compute(row)
		}
	}
	require.Failf(t, "rule not found", "no rule produces %s", output)
	return domain.Missing()
}

func TestCombine(t *testing.T) {
	tests := []struct {
		name  string
		parts []domain.Value
		want  domain.Value
	}{
		{"text", []domain.Value{domain.Text("東京"), domain.Int(2400)}, domain.Text("東京_2400")},
		{"float", []domain.Value{domain.Text("G1"), domain.Float(1.5)}, domain.Text("G1_1.5")},
		{"missing part", []domain.Value{domain.Text("東京"), domain.Missing()}, domain.Missing()},
		{"blank part", []domain.Value{domain.Text(" "), domain.Text("G2")}, domain.Missing()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, combine(tt.parts...))
		})
	}
}

func TestArithmeticAndRatio(t *testing.T) {
	assert.Equal(t, domain.Int(7), arithmetic(domain.Text("5"), domain.Int(2), func(x, y float64) float64 { return x + y }))
	assert.True(t, arithmetic(domain.Text("abc"), domain.Int(2), subtract).IsMissing())
	assert.True(t, arithmetic(domain.Int(2), domain.Missing(), subtract).IsMissing())

	assert.Equal(t, domain.Float(12.5), ratio(domain.Int(60), domain.Int(480), 100))
	assert.True(t, ratio(domain.Int(60), domain.Int(0), 100).IsMissing())
}

func TestTemporalRules(t *testing.T) {
	row := domain.Row{
		ColRaceDate:      domain.Text("2024-05-26"),
		"last_race_date": domain.Text("not a date"),
	}
	assert.Equal(t, domain.Int(5), eval(t, monthRules(), ColRaceMonth, row))
	assert.True(t, eval(t, monthRules(), "last_race_month", row).IsMissing())

	row = domain.Row{
		ColRaceMonth: domain.Int(5),
		ColGender:    domain.Text("牝"),
		ColAge:       domain.Int(3),
	}
	combos := temporalCombinationRules()
	assert.Equal(t, domain.Text("5_牝"), eval(t, combos, FeatMonthGender, row))
	assert.Equal(t, domain.Int(8), eval(t, combos, FeatMonthAge, row))
}

func TestPerformanceRules(t *testing.T) {
	row := domain.Row{
		ColLastRacePosition:            domain.Text("２"),
		"second_last_position":         domain.Text("中止"),
		"last_race_corner3":            domain.Int(5),
		"last_race_final_furlong_rank": domain.Int(2),
		ColLastRacePopularity:          domain.Int(6),
		ColLastRaceFieldSize:           domain.Int(16),
	}
	assert.Equal(t, domain.Int(2), eval(t, positionRules(), ColLastRacePosition, row))
	assert.True(t, eval(t, positionRules(), "second_last_position", row).IsMissing())

	row[ColLastRacePosition] = domain.Int(2)
	perf := performanceRules()
	assert.Equal(t, domain.Int(6), eval(t, perf, "last_race_corner3"+cornerUphillSuffix, row))
	assert.Equal(t, domain.Float(0.25), eval(t, perf, FeatPopularityGap, row))

	row[ColLastRaceFieldSize] = domain.Int(0)
	assert.True(t, eval(t, perf, FeatPopularityGap, row).IsMissing())
}

func TestPhysicalRules(t *testing.T) {
	row := domain.Row{
		ColWeightCarried:     domain.Int(60),
		ColHorseWeight:       domain.Int(480),
		ColFieldSize:         domain.Int(14),
		ColLastRaceFieldSize: domain.Int(18),
		ColDistance:          domain.Int(2400),
		ColLastRaceDistance:  domain.Int(2000),
	}
	rules := physicalRules()
	assert.Equal(t, domain.Float(12.5), eval(t, rules, FeatWeightBurdenRatio, row))
	assert.Equal(t, domain.Int(-4), eval(t, rules, FeatFieldSizeChange, row))
	assert.Equal(t, domain.Int(400), eval(t, rules, FeatDistanceChange, row))
}

func TestRaceConditionRules(t *testing.T) {
	row := domain.Row{
		ColTrackName:         domain.Text("東京"),
		ColDistance:          domain.Int(2400),
		ColLastRaceCorner3:   domain.Int(3),
		ColLastRaceCorner4:   domain.Missing(),
		ColLastRaceFinalRank: domain.Int(1),
		ColClassName:         domain.Text("G1"),
		ColLastRaceClass:     domain.Text("G2"),
		ColLastRaceTrack:     domain.Text("中山"),
	}
	rules := raceConditionRules()
	assert.Equal(t, domain.Text("東京_2400"), eval(t, rules, FeatTrackDistance, row))
	assert.Equal(t, domain.Text("東京_3"), eval(t, rules, FeatTrackLastCorner3, row))
	assert.True(t, eval(t, rules, FeatTrackLastCorner4, row).IsMissing())
	assert.Equal(t, domain.Text("東京_1"), eval(t, rules, FeatTrackLastUphill, row))
	assert.Equal(t, domain.Text("G1_G2"), eval(t, rules, FeatClassProgression, row))
	assert.Equal(t, domain.Text("東京_中山"), eval(t, interactionRules(), FeatTrackLastTrack, row))
}

func TestApplyRules_Snapshot(t *testing.T) {
	table := domain.NewTable("a")
	table.AppendRow(domain.Row{"a": domain.Int(1)})

	rules := []rule{
		{output: "b", requires: []string{"a"}, compute: func(r domain.Row) domain.Value {
			return arithmetic(r["a"], domain.Int(1), func(x, y float64) float64 { return x + y })
		}},
		// b is not visible within the stage that creates it
		{output: "c", requires: []string{"b"}, compute: func(r domain.Row) domain.Value { return r["b"] }},
		{output: "a", requires: []string{"a"}, compute: func(r domain.Row) domain.Value { return domain.Int(10) }},
	}

	added, skipped := applyRules(table, rules)

	assert.Equal(t, []string{"b"}, added)
	assert.Equal(t, []string{"c"}, skipped)
	assert.Equal(t, domain.Int(2), table.Get(0, "b"))
	assert.Equal(t, domain.Int(10), table.Get(0, "a"))
}
