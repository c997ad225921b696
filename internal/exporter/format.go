package exporter

import (
	"strconv"

	"keibacli/pkg/contracts/domain"
)

// formatValue renders a cell for CSV output. Floats keep full precision so
// that deviation scores survive a round trip.
func formatValue(v domain.Value) string {
	switch v.Kind() {
	case domain.KindInt:
		i, _ := v.Int()
		return formatInt(i)
	case domain.KindFloat:
		f, _ := v.Float()
		return formatFloat(f)
	case domain.KindText:
		s, _ := v.Text()
		return s
	default:
		return ""
	}
}

// formatFloat formats a float64 in the shortest form that parses back exactly
func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// formatInt formats an int64 value for CSV output
func formatInt(i int64) string {
	return strconv.FormatInt(i, 10)
}

// cellValue converts a cell for a spreadsheet: numbers stay numeric and
// Missing becomes an empty cell
func cellValue(v domain.Value) interface{} {
	switch v.Kind() {
	case domain.KindInt:
		i, _ := v.Int()
		return i
	case domain.KindFloat:
		f, _ := v.Float()
		return f
	case domain.KindText:
		s, _ := v.Text()
		return s
	default:
		return nil
	}
}
