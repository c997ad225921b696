package operations

import (
	"sync"
	"time"

	"keibacli/internal/dataprocessing"
	"keibacli/internal/features"
	"keibacli/internal/validation"
	"keibacli/pkg/contracts/domain"
)

// BatchStatus represents the overall batch status
type BatchStatus string

const (
	BatchStatusPending   BatchStatus = "pending"
	BatchStatusRunning   BatchStatus = "running"
	BatchStatusCompleted BatchStatus = "completed"
	BatchStatusFailed    BatchStatus = "failed"
	BatchStatusRejected  BatchStatus = "rejected"
	BatchStatusCancelled BatchStatus = "cancelled"
)

// BatchState carries one batch through its steps. Each step reads what the
// previous steps stored and stores its own output.
type BatchState struct {
	mu sync.RWMutex

	ID        string
	Label     string
	Status    BatchStatus
	StartTime time.Time
	EndTime   *time.Time
	Steps     map[string]*StepState
	Error     error

	// Strict is copied from the manager config for the validate step
	Strict bool

	Source   dataprocessing.Source
	Raw      *domain.Table
	Cleaned  *domain.Table
	Features *domain.Table

	CleanStats  validation.CleanStats
	Validation  domain.ValidationResult
	Quality     *domain.QualityReport
	DeriveStats features.DeriveStats
}

// NewBatchState creates a pending batch state
func NewBatchState(id string, source dataprocessing.Source) *BatchState {
	return &BatchState{
		ID:        id,
		Status:    BatchStatusPending,
		StartTime: time.Now(),
		Steps:     make(map[string]*StepState),
		Source:    source,
	}
}

// Start marks the batch as running
func (b *BatchState) Start() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Status = BatchStatusRunning
	b.StartTime = time.Now()
}

// Complete marks the batch as completed
func (b *BatchState) Complete() {
	b.finish(BatchStatusCompleted, nil)
}

// Fail marks the batch as failed
func (b *BatchState) Fail(err error) {
	b.finish(BatchStatusFailed, err)
}

// Reject marks the batch as rejected by strict validation
func (b *BatchState) Reject(err error) {
	b.finish(BatchStatusRejected, err)
}

// Cancel marks the batch as cancelled
func (b *BatchState) Cancel(err error) {
	b.finish(BatchStatusCancelled, err)
}

func (b *BatchState) finish(status BatchStatus, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	now := time.Now()
	b.EndTime = &now
	b.Status = status
	b.Error = err
}

// GetStatus returns the current batch status
func (b *BatchState) GetStatus() BatchStatus {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.Status
}

// GetStep returns the state of a specific Step
func (b *BatchState) GetStep(stepID string) *StepState {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.Steps[stepID]
}

// SetStep registers the state of a specific Step
func (b *BatchState) SetStep(step *StepState) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Steps[step.ID] = step
}

// Duration returns the time from start to finish, or to now while running
func (b *BatchState) Duration() time.Duration {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.EndTime != nil {
		return b.EndTime.Sub(b.StartTime)
	}
	return time.Since(b.StartTime)
}

// Result snapshots the state as a BatchResult
func (b *BatchState) Result() *BatchResult {
	b.mu.RLock()
	defer b.mu.RUnlock()

	res := &BatchResult{
		ID:          b.ID,
		Label:       b.Label,
		Status:      b.Status,
		Steps:       make(map[string]*StepState, len(b.Steps)),
		Raw:         b.Raw,
		Cleaned:     b.Cleaned,
		Features:    b.Features,
		CleanStats:  b.CleanStats,
		Validation:  b.Validation,
		Quality:     b.Quality,
		DeriveStats: b.DeriveStats,
	}
	for id, st := range b.Steps {
		res.Steps[id] = st
	}
	if b.EndTime != nil {
		res.Duration = b.EndTime.Sub(b.StartTime)
	}
	if b.Error != nil {
		res.Error = b.Error.Error()
	}
	return res
}
