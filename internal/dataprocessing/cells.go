package dataprocessing

import (
	"math"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/width"

	"keibacli/pkg/contracts/domain"
)

// dateLayouts are tried in order when a date cell is text
var dateLayouts = []string{
	"2006-01-02",
	"2006-1-2",
	"2006/01/02",
	"2006/1/2",
	"2006.01.02",
	"2006年1月2日",
	"20060102",
	"2006-01-02 15:04:05",
	"2006-1-2 15:04:05",
	"2006-01-02T15:04:05",
	"2006/01/02 15:04:05",
	time.RFC3339,
}

// NarrowWidth folds full-width ASCII variants (U+FF01..U+FF5E) and the
// ideographic space to their half-width forms.
func NarrowWidth(s string) string {
	return width.Narrow.String(s)
}

// ParseNumber is the single numeric coercion primitive used by every stage.
// Numeric cells pass through; text is trimmed, width folded and stripped of
// thousands separators before parsing. Anything else fails.
func ParseNumber(v domain.Value) (float64, bool) {
	if v.IsNumeric() {
		return v.Float()
	}
	if s, ok := v.Text(); ok {
		return parseNumericText(s)
	}
	return 0, false
}

func parseNumericText(s string) (float64, bool) {
	s = strings.TrimSpace(NarrowWidth(s))
	if s == "" {
		return 0, false
	}
	s = strings.ReplaceAll(s, ",", "")
	if isHexLiteral(s) {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// isHexLiteral reports a 0x prefix, optionally signed. ParseFloat would
// read it as a hexadecimal float.
func isHexLiteral(s string) bool {
	s = strings.TrimLeft(s, "+-")
	return len(s) > 1 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X')
}

// ToNumeric coerces a cell to a number, or to missing when it cannot be parsed
func ToNumeric(v domain.Value) domain.Value {
	f, ok := ParseNumber(v)
	if !ok {
		return domain.Missing()
	}
	return domain.Number(f)
}

// ToText coerces a cell to text. Missing stays missing.
func ToText(v domain.Value) domain.Value {
	if v.IsMissing() {
		return v
	}
	return domain.Text(v.String())
}

// IsBlank reports whether a cell is missing or holds only whitespace
func IsBlank(v domain.Value) bool {
	if v.IsMissing() {
		return true
	}
	s, ok := v.Text()
	return ok && strings.TrimSpace(s) == ""
}

// ParseDate parses a date cell. Integer cells are read as yyyymmdd.
func ParseDate(v domain.Value) (time.Time, bool) {
	var s string
	switch v.Kind() {
	case domain.KindText:
		s, _ = v.Text()
		s = strings.TrimSpace(NarrowWidth(s))
	case domain.KindInt:
		s = v.String()
	default:
		return time.Time{}, false
	}
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ExtractMonth returns the month of a date cell as an integer, or missing
// when the date cannot be parsed.
func ExtractMonth(v domain.Value) domain.Value {
	t, ok := ParseDate(v)
	if !ok {
		return domain.Missing()
	}
	return domain.Int(int64(t.Month()))
}
