package features

import (
	"keibacli/internal/dataprocessing"
	"keibacli/pkg/contracts/domain"
)

// positionRules convert past finishing positions to numbers. Full-width
// digits are folded first; withdrawal tokens become missing.
func positionRules() []rule {
	rules := make([]rule, 0, len(positionColumns))
	for _, col := range positionColumns {
		rules = append(rules, rule{
			output:   col,
			requires: []string{col},
			compute: func(r domain.Row) domain.Value {
				return dataprocessing.ToNumeric(r[col])
			},
		})
	}
	return rules
}

func performanceRules() []rule {
	rules := make([]rule, 0, len(pastRaces)+1)
	for _, race := range pastRaces {
		corner := race + "_corner3"
		uphill := race + "_final_furlong_rank"
		rules = append(rules, rule{
			output:   corner + cornerUphillSuffix,
			requires: []string{corner, uphill},
			compute: func(r domain.Row) domain.Value {
				return arithmetic(r[corner], r[uphill], func(c, u float64) float64 {
					return cornerWeight*c + u
				})
			},
		})
	}

	// positive when the horse finished better than its betting rank
	rules = append(rules, rule{
		output:   FeatPopularityGap,
		requires: []string{ColLastRacePopularity, ColLastRacePosition, ColLastRaceFieldSize},
		compute: func(r domain.Row) domain.Value {
			gap := arithmetic(r[ColLastRacePopularity], r[ColLastRacePosition], func(pop, pos float64) float64 {
				return pop - pos
			})
			return ratio(gap, r[ColLastRaceFieldSize], 1)
		},
	})
	return rules
}
