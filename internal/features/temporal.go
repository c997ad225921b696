package features

import (
	"keibacli/internal/dataprocessing"
	"keibacli/pkg/contracts/domain"
)

// monthRules extract the month of each race date. Unparseable dates give a
// missing month.
func monthRules() []rule {
	rules := make([]rule, 0, len(dateColumns))
	for _, pair := range dateColumns {
		date, month := pair[0], pair[1]
		rules = append(rules, rule{
			output:   month,
			requires: []string{date},
			compute: func(r domain.Row) domain.Value {
				return dataprocessing.ExtractMonth(r[date])
			},
		})
	}
	return rules
}

func temporalCombinationRules() []rule {
	return []rule{
		{
			output:   FeatMonthGender,
			requires: []string{ColRaceMonth, ColGender},
			compute: func(r domain.Row) domain.Value {
				return combine(r[ColRaceMonth], r[ColGender])
			},
		},
		{
			output:   FeatMonthAge,
			requires: []string{ColRaceMonth, ColAge},
			compute: func(r domain.Row) domain.Value {
				return arithmetic(r[ColRaceMonth], r[ColAge], func(month, age float64) float64 {
					return month + age
				})
			},
		},
	}
}
