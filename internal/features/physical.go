package features

import "keibacli/pkg/contracts/domain"

func physicalRules() []rule {
	return []rule{
		{
			output:   FeatWeightBurdenRatio,
			requires: []string{ColWeightCarried, ColHorseWeight},
			compute: func(r domain.Row) domain.Value {
				return ratio(r[ColWeightCarried], r[ColHorseWeight], 100)
			},
		},
		{
			output:   FeatFieldSizeChange,
			requires: []string{ColFieldSize, ColLastRaceFieldSize},
			compute: func(r domain.Row) domain.Value {
				return arithmetic(r[ColFieldSize], r[ColLastRaceFieldSize], subtract)
			},
		},
		{
			output:   FeatDistanceChange,
			requires: []string{ColDistance, ColLastRaceDistance},
			compute: func(r domain.Row) domain.Value {
				return arithmetic(r[ColDistance], r[ColLastRaceDistance], subtract)
			},
		},
	}
}

func subtract(x, y float64) float64 {
	return x - y
}
