package features

// Source columns read by the derivation stages
const (
	ColRaceDate           = "race_date"
	ColRaceMonth          = "race_month"
	ColGender             = "gender"
	ColAge                = "age"
	ColTrackName          = "track_name"
	ColDistance           = "distance"
	ColFieldSize          = "field_size"
	ColHorseWeight        = "horse_weight"
	ColWeightCarried      = "weight_carried"
	ColClassName          = "class_name"
	ColLastRaceClass      = "last_race_class"
	ColLastRaceTrack      = "last_race_track"
	ColLastRacePosition   = "last_race_position"
	ColLastRacePopularity = "last_race_popularity"
	ColLastRaceFieldSize  = "last_race_field_size"
	ColLastRaceDistance   = "last_race_distance"
	ColLastRaceCorner3    = "last_race_corner3"
	ColLastRaceCorner4    = "last_race_corner4"
	ColLastRaceFinalRank  = "last_race_final_furlong_rank"
	ColRaceID             = "race_id"
)

// Derived feature columns
const (
	FeatMonthGender       = "month_gender_combination"
	FeatMonthAge          = "month_age_combination"
	FeatPopularityGap     = "popularity_performance_gap"
	FeatWeightBurdenRatio = "weight_burden_ratio"
	FeatFieldSizeChange   = "field_size_change"
	FeatDistanceChange    = "distance_change"
	FeatTrackDistance     = "track_distance_combination"
	FeatTrackLastCorner3  = "track_last_corner3"
	FeatTrackLastCorner4  = "track_last_corner4"
	FeatTrackLastUphill   = "track_last_uphill"
	FeatClassProgression  = "class_progression"
	FeatTrackLastTrack    = "track_last_track_combination"
)

const (
	cornerUphillSuffix = "_uphill_combined"
	// mid-race position counts for less than the final furlong
	cornerWeight = 0.8

	neutralScore    = 50.0
	deviationSpread = 10.0
)

// pastRaces are the column prefixes of the three previous races
var pastRaces = []string{"last_race", "second_last", "third_last"}

// dateColumns maps each date column to the month column extracted from it
var dateColumns = [][2]string{
	{ColRaceDate, ColRaceMonth},
	{"last_race_date", "last_race_month"},
	{"second_last_race_date", "second_last_race_month"},
	{"third_last_race_date", "third_last_race_month"},
}

// positionColumns hold past finishing positions as raw text
var positionColumns = []string{ColLastRacePosition, "second_last_position", "third_last_position"}

// DefaultCatalogue returns the numeric features eligible for deviation
// scoring. Only columns present in a table are scored.
func DefaultCatalogue() []string {
	cat := []string{ColAge, ColHorseWeight, FeatWeightBurdenRatio}
	for _, race := range pastRaces {
		for _, suffix := range []string{"corner3", "corner4", "final_furlong_rank", "time_difference", "horse_weight"} {
			cat = append(cat, race+"_"+suffix)
		}
	}
	for _, ordinal := range []string{"last", "second", "third"} {
		for _, index := range []string{"leading", "pace", "uphill", "speed"} {
			cat = append(cat, index+"_index_"+ordinal)
		}
	}
	return cat
}
