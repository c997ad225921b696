package validation

import (
	"fmt"
	"slices"
)

// Column names the cleaning stages know about
const (
	ColFinishingPosition    = "finishing_position"
	ColRawFinishingPosition = "raw_finishing_position"
	ColRaceID               = "race_id"
	ColHorseNumber          = "horse_number"
	ColHorseName            = "horse_name"
	ColFieldSize            = "field_size"
	ColHorseWeight          = "horse_weight"
	ColOdds                 = "odds"
	ColDistance             = "distance"
	ColTrackName            = "track_name"
)

// DefaultRankFill is the worst-case rank substituted for a missing corner or
// final-furlong rank. Fields rarely exceed 18 runners.
const DefaultRankFill = 18

// Bound is an inclusive physical range for a numeric column
type Bound struct {
	Column string  `yaml:"column" validate:"required"`
	Min    float64 `yaml:"min"`
	Max    float64 `yaml:"max" validate:"gtefield=Min"`
}

// Contains reports whether v lies inside the bound, edges included
func (b Bound) Contains(v float64) bool {
	return v >= b.Min && v <= b.Max
}

// String renders the bound for logs
func (b Bound) String() string {
	return fmt.Sprintf("%s[%g,%g]", b.Column, b.Min, b.Max)
}

// Rules is the static configuration of the cleaner and the structural
// validator. The zero value does nothing; start from DefaultRules.
type Rules struct {
	PositionColumn    string
	RawPositionColumn string
	PositionSentinels []string

	NumericColumns []string
	TextColumns    []string

	RankColumns      []string
	RankFill         int
	EssentialColumns []string

	Bounds []Bound

	RequiredColumns   []string
	GroupColumn       string
	HorseNumberColumn string
	FieldSizeColumn   string
}

// DefaultRules returns the standard horse-race cleaning rules
func DefaultRules() Rules {
	return Rules{
		PositionColumn:    ColFinishingPosition,
		RawPositionColumn: ColRawFinishingPosition,
		// 外: excluded, 消: scratched
		PositionSentinels: []string{"外", "消", "DQ", "DNS"},
		NumericColumns: []string{
			"age", ColHorseWeight, "weight_carried", ColDistance,
			ColFieldSize, "popularity", ColOdds,
			"last_race_distance", "last_race_field_size",
			"second_last_distance", "second_last_field_size",
			"third_last_distance", "third_last_field_size",
		},
		TextColumns: []string{
			ColHorseName, "jockey_name", "trainer_name",
			ColTrackName, "race_class", "track_condition",
			"weather", "gender",
		},
		RankColumns:      rankColumns(),
		RankFill:         DefaultRankFill,
		EssentialColumns: []string{ColHorseName, ColTrackName, ColDistance},
		Bounds: []Bound{
			{Column: ColHorseWeight, Min: 300, Max: 700},
			{Column: ColOdds, Min: 1.0, Max: 999.9},
			{Column: ColDistance, Min: 800, Max: 4000},
		},
		RequiredColumns:   []string{ColHorseNumber, ColHorseName},
		GroupColumn:       ColRaceID,
		HorseNumberColumn: ColHorseNumber,
		FieldSizeColumn:   ColFieldSize,
	}
}

func rankColumns() []string {
	var cols []string
	for _, race := range []string{"last_race", "second_last", "third_last"} {
		for _, rank := range []string{"corner2", "corner3", "corner4", "final_furlong_rank"} {
			cols = append(cols, race+"_"+rank)
		}
	}
	return cols
}

// isSentinel reports whether a normalised raw position is a non-finish marker
func (r Rules) isSentinel(s string) bool {
	return slices.Contains(r.PositionSentinels, s)
}
