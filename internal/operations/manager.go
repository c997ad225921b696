package operations

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"keibacli/internal/infrastructure"
)

// Manager runs batches through the registered steps
type Manager struct {
	registry *Registry
	config   *Config
	logger   *slog.Logger
	tracer   *OperationTracer
}

// NewManager creates a batch manager. A nil config uses NewConfig.
func NewManager(registry *Registry, config *Config, logger *slog.Logger) *Manager {
	if registry == nil {
		registry = NewRegistry()
	}
	if config == nil {
		config = NewConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		registry: registry,
		config:   config,
		logger:   logger,
	}
}

// SetTracer attaches OpenTelemetry instrumentation
func (m *Manager) SetTracer(tracer *OperationTracer) {
	m.tracer = tracer
}

// GetRegistry returns the step registry
func (m *Manager) GetRegistry() *Registry {
	return m.registry
}

// Execute runs one batch through every step in dependency order. Steps run
// sequentially; cancellation and the batch timeout are checked before each
// step. The returned result is never nil.
func (m *Manager) Execute(ctx context.Context, req BatchRequest) (*BatchResult, error) {
	if req.ID == "" {
		req.ID = infrastructure.GenerateTraceID()
	}
	ctx = infrastructure.WithTraceID(ctx, req.ID)

	state := NewBatchState(req.ID, req.Source)
	state.Label = req.Label
	state.Strict = m.config.Strict

	steps, err := m.registry.GetDependencyOrder()
	if err != nil {
		state.Fail(err)
		m.logBatchError(ctx, state.ID, err)
		return state.Result(), err
	}
	for _, step := range steps {
		state.SetStep(NewStepState(step.ID(), step.Name()))
	}

	if m.config.BatchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.config.BatchTimeout)
		defer cancel()
	}

	ctx, span := m.tracer.TraceBatch(ctx, state)
	state.Start()
	m.logBatchStart(ctx, state)

	runErr := m.runSteps(ctx, state, steps)

	switch {
	case runErr == nil:
		state.Complete()
	case GetErrorType(runErr) == ErrorTypeRejected:
		state.Reject(runErr)
	case GetErrorType(runErr) == ErrorTypeCancellation, GetErrorType(runErr) == ErrorTypeTimeout:
		state.Cancel(runErr)
	default:
		state.Fail(runErr)
	}

	res := state.Result()
	m.tracer.EndBatch(ctx, span, res)
	if runErr != nil {
		m.logBatchError(ctx, state.ID, runErr)
	}
	m.logBatchComplete(ctx, res)
	return res, runErr
}

// runSteps executes steps in order and stops at the first failure, marking
// the remaining steps skipped
func (m *Manager) runSteps(ctx context.Context, state *BatchState, steps []Step) error {
	for i, step := range steps {
		st := state.GetStep(step.ID())

		if err := m.interruption(ctx, step.ID()); err != nil {
			skipRemaining(state, steps[i:], "batch interrupted")
			return err
		}
		if err := step.Validate(state); err != nil {
			st.Fail(err)
			skipRemaining(state, steps[i+1:], fmt.Sprintf("step %s failed", step.ID()))
			return err
		}

		stepCtx, span := m.tracer.TraceStep(ctx, state.ID, step.ID())
		st.Start()
		m.logStepStart(stepCtx, state.ID, step.ID())
		start := time.Now()

		err := step.Execute(stepCtx, state)
		m.tracer.EndStep(stepCtx, span, step.ID(), time.Since(start), err)

		if err != nil {
			err = m.classify(ctx, step.ID(), err)
			st.Fail(err)
			m.logStepError(ctx, state.ID, step.ID(), err)
			skipRemaining(state, steps[i+1:], fmt.Sprintf("step %s failed", step.ID()))
			return err
		}
		st.Complete()
		m.logStepComplete(ctx, state.ID, step.ID(), st.Duration())
	}
	return nil
}

// interruption returns an error when ctx is done
func (m *Manager) interruption(ctx context.Context, stepID string) error {
	switch {
	case ctx.Err() == nil:
		return nil
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		err := NewTimeoutError(stepID, m.config.BatchTimeout.String())
		err.Cause = ctx.Err()
		return err
	default:
		err := NewCancellationError(stepID)
		err.Cause = ctx.Err()
		return err
	}
}

// classify wraps a step error, keeping orchestration errors as they are
func (m *Manager) classify(ctx context.Context, stepID string, err error) error {
	var opErr *OperationError
	if errors.As(err, &opErr) {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		if interrupted := m.interruption(ctx, stepID); interrupted != nil {
			return interrupted
		}
	}
	return NewExecutionError(stepID, err)
}

func skipRemaining(state *BatchState, steps []Step, reason string) {
	for _, step := range steps {
		if st := state.GetStep(step.ID()); st != nil && st.GetStatus() == StepStatusPending {
			st.Skip(reason)
		}
	}
}

// RunBatches executes independent batches concurrently, at most
// MaxConcurrency at a time. Results keep the order of reqs. Unless
// ContinueOnError is set, the first failure cancels the batches still
// running or waiting.
func (m *Manager) RunBatches(ctx context.Context, reqs []BatchRequest) ([]*BatchResult, error) {
	results := make([]*BatchResult, len(reqs))

	var g *errgroup.Group
	runCtx := ctx
	if m.config.ContinueOnError {
		g = &errgroup.Group{}
	} else {
		g, runCtx = errgroup.WithContext(ctx)
	}
	limit := m.config.MaxConcurrency
	if limit < 1 {
		limit = 1
	}
	g.SetLimit(limit)

	var mu sync.Mutex
	failures := &ErrorList{}

	m.logger.InfoContext(ctx, "batches starting",
		slog.Int("batches", len(reqs)),
		slog.Int("max_concurrency", limit))

	for i, req := range reqs {
		g.Go(func() error {
			res, err := m.Execute(runCtx, req)
			results[i] = res
			if err == nil {
				return nil
			}
			name := req.Label
			if name == "" {
				name = res.ID
			}
			mu.Lock()
			failures.Add(fmt.Errorf("batch %s: %w", name, err))
			mu.Unlock()
			if m.config.ContinueOnError {
				return nil
			}
			return err
		})
	}
	_ = g.Wait()

	if failures.HasErrors() {
		return results, failures
	}
	return results, nil
}
