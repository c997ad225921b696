package features

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"keibacli/pkg/contracts/domain"
)

func scores(t *testing.T, table *domain.Table, column string) []float64 {
	t.Helper()
	out := make([]float64, table.Len())
	for i, v := range table.Column(column) {
		f, ok := v.Float()
		require.True(t, ok, "row %d of %s is not numeric: %v", i, column, v)
		require.False(t, math.IsNaN(f) || math.IsInf(f, 0))
		out[i] = f
	}
	return out
}

func meanStd(xs []float64) (float64, float64) {
	g := sampleStats(xs)
	return g.mean, g.std
}

func TestDeviationScore_Grouped(t *testing.T) {
	table := domain.NewTable("race_id", "speed_index_last")
	add := func(race domain.Value, v domain.Value) {
		table.AppendRow(domain.Row{"race_id": race, "speed_index_last": v})
	}
	add(domain.Text("R1"), domain.Int(1))
	add(domain.Text("R1"), domain.Int(2))
	add(domain.Text("R1"), domain.Float(3))
	add(domain.Text("R1"), domain.Text("4"))
	add(domain.Text("R1"), domain.Text("外"))
	add(domain.Text("R2"), domain.Int(5))
	add(domain.Text("R2"), domain.Int(5))
	add(domain.Text("R2"), domain.Int(5))
	add(domain.Text("R3"), domain.Int(7))
	add(domain.Missing(), domain.Int(9))

	summary := DeviationScore(table, DefaultCatalogue(), "race_id")
	assert.True(t, summary.Grouped)
	assert.Equal(t, []string{"speed_index_last"}, summary.Columns)
	assert.Equal(t, 6, summary.Neutral)

	got := scores(t, table, "speed_index_last")

	mean, std := meanStd(got[:4])
	assert.InDelta(t, 50, mean, 1e-9)
	assert.InDelta(t, 10, std, 1e-9)
	assert.InDelta(t, 38.3810, got[0], 1e-4)
	assert.Less(t, got[0], got[1])

	for i := 4; i < len(got); i++ {
		assert.Equal(t, 50.0, got[i], "row %d", i)
	}
}

func TestDeviationScore_Global(t *testing.T) {
	table := domain.NewTable("age", "horse_name")
	for _, age := range []int64{1, 2, 3} {
		table.AppendRow(domain.Row{"age": domain.Int(age), "horse_name": domain.Text("x")})
	}

	summary := DeviationScore(table, DefaultCatalogue(), "race_id")
	assert.False(t, summary.Grouped)
	assert.Equal(t, 1, summary.Neutral)
	assert.Equal(t, []float64{40, 50, 60}, scores(t, table, "age"))
	assert.Equal(t, domain.Text("x"), table.Get(0, "horse_name"))
}

func TestDeviationScore_PairWithMissing(t *testing.T) {
	table := domain.NewTable("race_id", "age")
	for _, age := range []domain.Value{domain.Int(3), domain.Int(5), domain.Missing()} {
		table.AppendRow(domain.Row{"race_id": domain.Text("R1"), "age": age})
	}

	DeviationScore(table, DefaultCatalogue(), "race_id")
	got := scores(t, table, "age")
	assert.InDelta(t, 42.9289, got[0], 1e-4)
	assert.InDelta(t, 57.0711, got[1], 1e-4)
	assert.Equal(t, 50.0, got[2])
}

func TestDeviationScore_Degenerate(t *testing.T) {
	tests := []struct {
		name   string
		values []domain.Value
	}{
		{"zero variance", []domain.Value{domain.Int(5), domain.Int(5), domain.Int(5)}},
		{"rounding residue", []domain.Value{domain.Float(0.1), domain.Float(0.1), domain.Float(0.1)}},
		{"singleton", []domain.Value{domain.Int(5)}},
		{"all missing", []domain.Value{domain.Missing(), domain.Missing()}},
		{"one valid", []domain.Value{domain.Int(3), domain.Text("消")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table := domain.NewTable("horse_weight")
			for _, v := range tt.values {
				table.AppendRow(domain.Row{"horse_weight": v})
			}
			DeviationScore(table, DefaultCatalogue(), "")
			for _, s := range scores(t, table, "horse_weight") {
				assert.Equal(t, 50.0, s)
			}
		})
	}
}

func TestDeviationScore_NoCatalogueColumns(t *testing.T) {
	table := domain.NewTable("horse_name")
	table.AppendRow(domain.Row{"horse_name": domain.Text("A")})

	summary := DeviationScore(table, DefaultCatalogue(), "race_id")
	assert.Empty(t, summary.Columns)
	assert.Equal(t, []string{"horse_name"}, table.Columns())
}

func TestSampleStats(t *testing.T) {
	g := sampleStats([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	assert.Equal(t, 8, g.n)
	assert.InDelta(t, 5, g.mean, 1e-12)
	assert.InDelta(t, 2.13809, g.std, 1e-5)

	single := sampleStats([]float64{7})
	assert.Equal(t, 7.0, single.mean)
	assert.False(t, single.defined())
	assert.False(t, sampleStats([]float64{3, 3, 3}).defined())
	assert.False(t, sampleStats([]float64{1}).defined())
	assert.False(t, sampleStats(nil).defined())
	assert.True(t, sampleStats([]float64{1, 2}).defined())
}

func TestDefaultCatalogue(t *testing.T) {
	cat := DefaultCatalogue()
	assert.Len(t, cat, 30)
	assert.Equal(t, []string{"age", "horse_weight", "weight_burden_ratio", "last_race_corner3"}, cat[:4])
	assert.Contains(t, cat, "third_last_time_difference")
	assert.Contains(t, cat, "speed_index_third")
	assert.NotContains(t, cat, "distance")
}
