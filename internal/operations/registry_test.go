package operations

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStep struct {
	BaseStep
}

func newFakeStep(id string, deps ...string) *fakeStep {
	return &fakeStep{BaseStep: NewBaseStep(id, id, deps)}
}

func (s *fakeStep) Execute(ctx context.Context, state *BatchState) error { return nil }

func ids(steps []Step) []string {
	out := make([]string, len(steps))
	for i, s := range steps {
		out[i] = s.ID()
	}
	return out
}

func TestRegistry_Register(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(newFakeStep("load")))

	assert.Error(t, r.Register(nil))
	assert.Error(t, r.Register(newFakeStep("")))
	assert.ErrorContains(t, r.Register(newFakeStep("load")), "already registered")
	assert.Equal(t, 1, r.Count())

	step, err := r.Get("load")
	require.NoError(t, err)
	assert.Equal(t, "load", step.ID())

	_, err = r.Get("derive")
	assert.Error(t, err)
}

func TestRegistry_GetDependencyOrder(t *testing.T) {
	tests := []struct {
		name    string
		steps   []Step
		want    []string
		wantErr string
	}{
		{
			name:  "registration order kept when independent",
			steps: []Step{newFakeStep("b"), newFakeStep("a")},
			want:  []string{"b", "a"},
		},
		{
			name:  "dependencies first",
			steps: []Step{newFakeStep("derive", "clean"), newFakeStep("clean", "load"), newFakeStep("load")},
			want:  []string{"load", "clean", "derive"},
		},
		{
			name:    "unknown dependency",
			steps:   []Step{newFakeStep("clean", "load")},
			wantErr: "unregistered step load",
		},
		{
			name:    "cycle",
			steps:   []Step{newFakeStep("a", "b"), newFakeStep("b", "a")},
			wantErr: "circular dependency",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRegistry()
			for _, s := range tt.steps {
				require.NoError(t, r.Register(s))
			}
			got, err := r.GetDependencyOrder()
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestNewPipelineRegistry_Order(t *testing.T) {
	m, _ := newTestManager(t, nil)

	steps, err := m.GetRegistry().GetDependencyOrder()
	require.NoError(t, err)
	assert.Equal(t, []string{StepIDLoad, StepIDClean, StepIDQuality, StepIDValidate, StepIDDerive}, ids(steps))
}

func TestStepState(t *testing.T) {
	st := NewStepState("clean", StepNameClean)
	assert.Equal(t, StepStatusPending, st.GetStatus())
	assert.Zero(t, st.Duration())

	st.Start()
	assert.Equal(t, StepStatusActive, st.GetStatus())
	st.Fail(assert.AnError)
	assert.Equal(t, StepStatusFailed, st.GetStatus())
	assert.Equal(t, assert.AnError.Error(), st.Message)
	assert.NotNil(t, st.EndTime)

	skipped := NewStepState("derive", StepNameDerive)
	skipped.Skip("step clean failed")
	assert.Equal(t, StepStatusSkipped, skipped.GetStatus())
	assert.Equal(t, "step clean failed", skipped.Message)
}

func TestOperationError(t *testing.T) {
	err := NewExecutionError("load", assert.AnError)
	assert.ErrorIs(t, err, assert.AnError)
	assert.Contains(t, err.Error(), "[execution] load")
	assert.Equal(t, ErrorTypeExecution, GetErrorType(err))
	assert.Equal(t, ErrorTypeExecution, GetErrorType(assert.AnError))
	assert.Equal(t, ErrorType(""), GetErrorType(nil))

	rej := NewRejectedError("validate", 2, "race R1: duplicate horse_number 3")
	assert.Equal(t, "[rejected] validate: 2 structural violation(s): race R1: duplicate horse_number 3", rej.Error())
}
