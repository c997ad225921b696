package operations

import (
	"time"

	"keibacli/internal/dataprocessing"
	"keibacli/internal/features"
	"keibacli/internal/validation"
	"keibacli/pkg/contracts/domain"
)

// Step identifiers
const (
	StepIDLoad     = "load"
	StepIDClean    = "clean"
	StepIDValidate = "validate"
	StepIDQuality  = "quality"
	StepIDDerive   = "derive"
)

// Step names
const (
	StepNameLoad     = "Load Records"
	StepNameClean    = "Clean Records"
	StepNameValidate = "Structural Validation"
	StepNameQuality  = "Quality Report"
	StepNameDerive   = "Feature Engineering"
)

// BatchRequest describes one independent unit of work: a source whose
// records are cleaned, validated and turned into features together
type BatchRequest struct {
	ID     string
	Label  string
	Source dataprocessing.Source
}

// BatchResult is the outcome of one batch. Tables are nil for steps that
// did not run.
type BatchResult struct {
	ID       string                `json:"id"`
	Label    string                `json:"label"`
	Status   BatchStatus           `json:"status"`
	Duration time.Duration         `json:"duration"`
	Steps    map[string]*StepState `json:"steps"`
	Error    string                `json:"error,omitempty"`

	Raw      *domain.Table `json:"-"`
	Cleaned  *domain.Table `json:"-"`
	Features *domain.Table `json:"-"`

	CleanStats  validation.CleanStats   `json:"-"`
	Validation  domain.ValidationResult `json:"validation"`
	Quality     *domain.QualityReport   `json:"quality,omitempty"`
	DeriveStats features.DeriveStats    `json:"-"`
}

// Succeeded reports whether every step completed
func (r *BatchResult) Succeeded() bool {
	return r != nil && r.Status == BatchStatusCompleted
}
