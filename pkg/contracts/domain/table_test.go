package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValue(t *testing.T) {
	tests := []struct {
		name     string
		value    Value
		kind     Kind
		rendered string
	}{
		{"missing", Missing(), KindMissing, ""},
		{"int", Int(12), KindInt, "12"},
		{"float", Float(0.25), KindFloat, "0.25"},
		{"integral number collapses to int", Number(1600), KindInt, "1600"},
		{"fractional number stays float", Number(55.5), KindFloat, "55.5"},
		{"NaN is missing", Float(math.NaN()), KindMissing, ""},
		{"Inf is missing", Number(math.Inf(1)), KindMissing, ""},
		{"text", Text("東京"), KindText, "東京"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.kind, tt.value.Kind())
			assert.Equal(t, tt.rendered, tt.value.String())
			assert.Equal(t, tt.kind == KindInt || tt.kind == KindFloat, tt.value.IsNumeric())
		})
	}

	t.Run("numeric accessors", func(t *testing.T) {
		f, ok := Int(3).Float()
		assert.True(t, ok)
		assert.Equal(t, 3.0, f)

		_, ok = Text("3").Float()
		assert.False(t, ok)

		i, ok := Float(4.0).Int()
		assert.True(t, ok)
		assert.Equal(t, int64(4), i)

		_, ok = Float(4.5).Int()
		assert.False(t, ok)
	})

	t.Run("equality is kind sensitive", func(t *testing.T) {
		assert.True(t, Int(1).Equal(Int(1)))
		assert.False(t, Int(1).Equal(Float(1)))
		assert.False(t, Int(1).Equal(Text("1")))
		assert.True(t, Missing().Equal(Value{}))
	})
}

func TestTable(t *testing.T) {
	newTable := func() *Table {
		tbl := NewTable("race_id", "horse_number")
		tbl.AppendRow(Row{"race_id": Text("R1"), "horse_number": Int(1)})
		tbl.AppendRow(Row{"race_id": Text("R2"), "horse_number": Int(1)})
		tbl.AppendRow(Row{"race_id": Text("R1"), "horse_number": Int(2)})
		tbl.AppendRow(Row{"horse_number": Int(9)})
		return tbl
	}

	t.Run("has all", func(t *testing.T) {
		tbl := newTable()
		assert.True(t, tbl.HasAll("race_id", "horse_number"))
		assert.True(t, tbl.HasAll())
		assert.False(t, tbl.HasAll("race_id", "distance"))
	})

	t.Run("clone is independent", func(t *testing.T) {
		tbl := newTable()
		clone := tbl.Clone()
		clone.Set(0, "horse_number", Int(99))
		clone.Set(0, "extra", Text("x"))

		assert.Equal(t, Int(1), tbl.Get(0, "horse_number"))
		assert.False(t, tbl.Has("extra"))
		assert.True(t, clone.Has("extra"))
	})

	t.Run("setting missing removes the cell", func(t *testing.T) {
		tbl := newTable()
		tbl.Set(0, "race_id", Missing())
		_, present := tbl.Row(0)["race_id"]
		assert.False(t, present)
		assert.True(t, tbl.Has("race_id"))
	})

	t.Run("group by skips missing keys", func(t *testing.T) {
		keys, groups := newTable().GroupBy("race_id")
		assert.Equal(t, []string{"R1", "R2"}, keys)
		assert.Equal(t, []int{0, 2}, groups["R1"])
		assert.Equal(t, []int{1}, groups["R2"])
	})

	t.Run("split by keeps orphan rows", func(t *testing.T) {
		parts := newTable().SplitBy("race_id")
		require.Len(t, parts, 3)
		assert.Equal(t, 2, parts[0].Len())
		assert.Equal(t, 1, parts[1].Len())
		assert.Equal(t, 1, parts[2].Len())
		assert.Equal(t, Int(9), parts[2].Get(0, "horse_number"))
	})

	t.Run("filter copies rows", func(t *testing.T) {
		tbl := newTable()
		out := tbl.Filter(func(r Row) bool { return !r["race_id"].IsMissing() })
		assert.Equal(t, 3, out.Len())
		out.Set(0, "horse_number", Int(5))
		assert.Equal(t, Int(1), tbl.Get(0, "horse_number"))
	})

	t.Run("validate", func(t *testing.T) {
		require.NoError(t, newTable().Validate())

		var nilTable *Table
		assert.Error(t, nilTable.Validate())

		bad := NewTable("a")
		bad.AppendRow(Row{"a": Int(1), "b": Int(2)})
		err := bad.Validate()
		require.Error(t, err)
		var shapeErr *ShapeError
		assert.ErrorAs(t, err, &shapeErr)
		assert.Contains(t, err.Error(), `"b"`)

		blank := NewTable(" ")
		assert.Error(t, blank.Validate())
	})
}

func TestValidationResult(t *testing.T) {
	r := ValidationResult{
		Valid: false,
		Violations: []Violation{
			{Kind: ViolationDuplicateHorseNumber, RaceID: "R1", Message: "dup"},
			{Kind: ViolationMissingColumn, Column: "horse_name", Message: "missing"},
		},
	}
	assert.Equal(t, []string{"dup", "missing"}, r.Messages())
	assert.True(t, r.Has(ViolationDuplicateHorseNumber))
	assert.False(t, r.Has(ViolationFieldSizeMismatch))
	assert.Equal(t, "dup\nmissing", r.String())
	assert.Equal(t, "valid", ValidationResult{Valid: true}.String())
}
