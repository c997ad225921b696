package domain

import (
	"math"
	"strconv"
)

// Kind identifies the dynamic type held by a Value
type Kind uint8

const (
	KindMissing Kind = iota
	KindInt
	KindFloat
	KindText
)

// String returns the lowercase name of the kind
func (k Kind) String() string {
	switch k {
	case KindInt:
		return "integer"
	case KindFloat:
		return "float"
	case KindText:
		return "text"
	default:
		return "missing"
	}
}

// maxExactInt is the largest magnitude a float64 holds without losing integer precision
const maxExactInt = 1 << 53

// Value is a single cell of a record table. The zero Value is missing.
type Value struct {
	kind Kind
	i    int64
	f    float64
	s    string
}

// Missing returns the missing value
func Missing() Value {
	return Value{}
}

// Int returns an integer cell
func Int(v int64) Value {
	return Value{kind: KindInt, i: v}
}

// Float returns a float cell. NaN and infinities collapse to missing.
func Float(v float64) Value {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Value{}
	}
	return Value{kind: KindFloat, f: v}
}

// Number returns an Int cell when v is integral, a Float cell otherwise.
func Number(v float64) Value {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Value{}
	}
	if v == math.Trunc(v) && math.Abs(v) < maxExactInt {
		return Int(int64(v))
	}
	return Value{kind: KindFloat, f: v}
}

// Text returns a text cell
func Text(s string) Value {
	return Value{kind: KindText, s: s}
}

// Kind returns the dynamic type of the cell
func (v Value) Kind() Kind {
	return v.kind
}

// IsMissing reports whether the cell holds no value
func (v Value) IsMissing() bool {
	return v.kind == KindMissing
}

// IsNumeric reports whether the cell holds an Int or a Float
func (v Value) IsNumeric() bool {
	return v.kind == KindInt || v.kind == KindFloat
}

// Float returns the numeric content of an Int or Float cell
func (v Value) Float() (float64, bool) {
	switch v.kind {
	case KindInt:
		return float64(v.i), true
	case KindFloat:
		return v.f, true
	default:
		return 0, false
	}
}

// Int returns the content of an Int cell, or of a Float cell holding an integral value
func (v Value) Int() (int64, bool) {
	switch v.kind {
	case KindInt:
		return v.i, true
	case KindFloat:
		if v.f == math.Trunc(v.f) && math.Abs(v.f) < maxExactInt {
			return int64(v.f), true
		}
	}
	return 0, false
}

// Text returns the content of a Text cell
func (v Value) Text() (string, bool) {
	if v.kind != KindText {
		return "", false
	}
	return v.s, true
}

// String renders the cell for export and for string combination features.
// Missing renders as the empty string.
func (v Value) String() string {
	switch v.kind {
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'f', -1, 64)
	case KindText:
		return v.s
	default:
		return ""
	}
}

// Equal reports whether two cells hold the same kind and content
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindInt:
		return v.i == o.i
	case KindFloat:
		return v.f == o.f
	case KindText:
		return v.s == o.s
	default:
		return true
	}
}
