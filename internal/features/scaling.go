package features

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/stat"

	"keibacli/internal/dataprocessing"
	"keibacli/pkg/contracts/domain"
)

// degenerateStd treats a spread this small, relative to the mean, as zero
// variance. Identical inputs can leave a rounding residue in the mean.
const degenerateStd = 1e-9

// ScaleSummary reports what DeviationScore did
type ScaleSummary struct {
	Columns []string
	// Neutral counts cells that ended at exactly 50
	Neutral int
	Grouped bool
}

// groupStats holds the sample statistics of one race group for one column
type groupStats struct {
	n    int
	mean float64
	std  float64
}

// defined reports whether a value can be scored against the group
func (g groupStats) defined() bool {
	if g.n < 2 || math.IsNaN(g.std) {
		return false
	}
	return g.std > degenerateStd*math.Max(1, math.Abs(g.mean))
}

// DeviationScore rewrites each catalogue column present in table as
// (value - mean) / std * 10 + 50, with mean and sample standard deviation
// taken per group when groupColumn exists, otherwise over the whole table.
// Any score that cannot be computed is exactly 50: missing or non-numeric
// cells, rows without a group key, singleton groups and zero-variance groups.
//
// Statistics come from a first pass over an unmodified copy of the column;
// the second pass only writes.
func DeviationScore(table *domain.Table, catalogue []string, groupColumn string) ScaleSummary {
	summary := ScaleSummary{
		Grouped: groupColumn != "" && table.Has(groupColumn),
	}
	for _, col := range catalogue {
		if table.Has(col) && !slices.Contains(summary.Columns, col) {
			summary.Columns = append(summary.Columns, col)
		}
	}
	if len(summary.Columns) == 0 {
		return summary
	}

	keys, member := groupKeys(table, groupColumn, summary.Grouped)

	for _, col := range summary.Columns {
		values := table.Column(col)
		nums := make([]float64, len(values))
		valid := make([]bool, len(values))

		samples := make(map[string][]float64)
		for i, v := range values {
			nums[i], valid[i] = dataprocessing.ParseNumber(v)
			if valid[i] && member[i] {
				samples[keys[i]] = append(samples[keys[i]], nums[i])
			}
		}

		stats := make(map[string]groupStats, len(samples))
		for k, xs := range samples {
			stats[k] = sampleStats(xs)
		}

		scored := make([]domain.Value, len(values))
		for i := range values {
			score := neutralScore
			if valid[i] && member[i] {
				if g := stats[keys[i]]; g.defined() {
					score = (nums[i]-g.mean)/g.std*deviationSpread + neutralScore
				}
			}
			if math.IsNaN(score) || math.IsInf(score, 0) {
				score = neutralScore
			}
			if score == neutralScore {
				summary.Neutral++
			}
			scored[i] = domain.Float(score)
		}
		table.SetColumn(col, scored)
	}
	return summary
}

// groupKeys returns each row's group key and whether the row belongs to a
// group. Ungrouped tables put every row in one group.
func groupKeys(table *domain.Table, groupColumn string, grouped bool) ([]string, []bool) {
	keys := make([]string, table.Len())
	member := make([]bool, table.Len())
	for i := range keys {
		if !grouped {
			member[i] = true
			continue
		}
		v := table.Get(i, groupColumn)
		if v.IsMissing() {
			continue
		}
		keys[i] = v.String()
		member[i] = true
	}
	return keys, member
}

// sampleStats computes the mean and the n-1 standard deviation of xs.
// A single sample has no spread.
func sampleStats(xs []float64) groupStats {
	g := groupStats{n: len(xs)}
	switch g.n {
	case 0:
		return g
	case 1:
		g.mean, g.std = xs[0], math.NaN()
		return g
	}
	g.mean, g.std = stat.MeanStdDev(xs, nil)
	return g
}
