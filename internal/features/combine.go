package features

import (
	"math"
	"strings"

	"keibacli/internal/dataprocessing"
	"keibacli/pkg/contracts/domain"
)

// combine joins the text renderings of the cells with "_". A missing part
// makes the whole combination missing.
func combine(parts ...domain.Value) domain.Value {
	rendered := make([]string, len(parts))
	for i, p := range parts {
		if dataprocessing.IsBlank(p) {
			return domain.Missing()
		}
		rendered[i] = p.String()
	}
	return domain.Text(strings.Join(rendered, "_"))
}

// arithmetic applies fn to two numeric cells. Either operand failing to
// parse gives a missing result, as does a non-finite result.
func arithmetic(a, b domain.Value, fn func(x, y float64) float64) domain.Value {
	x, ok := dataprocessing.ParseNumber(a)
	if !ok {
		return domain.Missing()
	}
	y, ok := dataprocessing.ParseNumber(b)
	if !ok {
		return domain.Missing()
	}
	return domain.Number(fn(x, y))
}

// ratio returns a/b*scale, or missing when b is zero
func ratio(a, b domain.Value, scale float64) domain.Value {
	return arithmetic(a, b, func(x, y float64) float64 {
		if y == 0 {
			return math.NaN()
		}
		return x / y * scale
	})
}
