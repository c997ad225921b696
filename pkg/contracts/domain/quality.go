package domain

import "strings"

// QualityReport is a descriptive summary of a record table. It is meant for
// dashboards and logs, never for control flow.
type QualityReport struct {
	TotalRows     int                       `json:"total_rows"`
	TotalColumns  int                       `json:"total_columns"`
	Columns       []string                  `json:"columns"`
	Missing       map[string]MissingSummary `json:"missing_value_summary"`
	DataTypes     map[string]string         `json:"data_type_summary"`
	DuplicateRows int                       `json:"duplicate_rows"`
}

// MissingSummary holds the missing-cell statistics of one column
type MissingSummary struct {
	Count       int     `json:"count"`
	RatePercent float64 `json:"rate_percent"`
}

// ViolationKind classifies a structural defect
type ViolationKind string

const (
	ViolationMissingColumn        ViolationKind = "missing_column"
	ViolationDuplicateHorseNumber ViolationKind = "duplicate_horse_number"
	ViolationFieldSizeMismatch    ViolationKind = "field_size_mismatch"
)

// Violation is one human-readable structural defect
type Violation struct {
	Kind    ViolationKind `json:"kind"`
	RaceID  string        `json:"race_id,omitempty"`
	Column  string        `json:"column,omitempty"`
	Message string        `json:"message"`
}

// ValidationResult is the advisory outcome of structural validation.
// Callers decide whether to reject the batch or merely warn.
type ValidationResult struct {
	Valid      bool        `json:"valid"`
	Violations []Violation `json:"violations,omitempty"`
}

// Messages returns the violation descriptions in order
func (r ValidationResult) Messages() []string {
	out := make([]string, len(r.Violations))
	for i, v := range r.Violations {
		out[i] = v.Message
	}
	return out
}

// Has reports whether a violation of the given kind was recorded
func (r ValidationResult) Has(kind ViolationKind) bool {
	for _, v := range r.Violations {
		if v.Kind == kind {
			return true
		}
	}
	return false
}

// String joins the violation messages, one per line
func (r ValidationResult) String() string {
	if r.Valid {
		return "valid"
	}
	return strings.Join(r.Messages(), "\n")
}
