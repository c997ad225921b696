package features

import "keibacli/pkg/contracts/domain"

// combination builds a rule joining the cells of the given columns
func combination(output string, columns ...string) rule {
	return rule{
		output:   output,
		requires: columns,
		compute: func(r domain.Row) domain.Value {
			parts := make([]domain.Value, len(columns))
			for i, c := range columns {
				parts[i] = r[c]
			}
			return combine(parts...)
		},
	}
}

func raceConditionRules() []rule {
	return []rule{
		combination(FeatTrackDistance, ColTrackName, ColDistance),
		combination(FeatTrackLastCorner3, ColTrackName, ColLastRaceCorner3),
		combination(FeatTrackLastCorner4, ColTrackName, ColLastRaceCorner4),
		combination(FeatTrackLastUphill, ColTrackName, ColLastRaceFinalRank),
		combination(FeatClassProgression, ColClassName, ColLastRaceClass),
	}
}

// interactionRules capture a change of racecourse since the last run
func interactionRules() []rule {
	return []rule{
		combination(FeatTrackLastTrack, ColTrackName, ColLastRaceTrack),
	}
}
