package operations

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"keibacli/internal/dataprocessing"
	"keibacli/internal/features"
	"keibacli/internal/shared/testutil"
	"keibacli/internal/validation"
	"keibacli/pkg/contracts/domain"
)

// sourceFunc adapts a function to dataprocessing.Source
type sourceFunc func(ctx context.Context) (*domain.Table, error)

func (f sourceFunc) Load(ctx context.Context) (*domain.Table, error) { return f(ctx) }

func newTestManager(t *testing.T, cfg *Config) (*Manager, *testutil.BufferedSlogHandler) {
	t.Helper()
	logger, logs := testutil.NewTestLogger(t)
	registry, err := NewPipelineRegistry(
		validation.NewValidator(validation.DefaultRules(), logger),
		features.NewEngineer(features.DefaultConfig(), logger),
		logger,
	)
	require.NoError(t, err)
	return NewManager(registry, cfg, logger), logs
}

func raceCardSource() dataprocessing.Source {
	return dataprocessing.TableSource{Table: testutil.RaceCard()}
}

// duplicateCard gives Bravo the same horse number as Alpha in race R1
func duplicateCard() *domain.Table {
	card := testutil.RaceCard()
	card.Set(1, "horse_number", domain.Text("1"))
	return card
}

func stepStatuses(res *BatchResult) map[string]StepStatus {
	out := make(map[string]StepStatus, len(res.Steps))
	for id, st := range res.Steps {
		out[id] = st.GetStatus()
	}
	return out
}

func TestExecute_Success(t *testing.T) {
	m, logs := newTestManager(t, nil)

	res, err := m.Execute(context.Background(), BatchRequest{Label: "card", Source: raceCardSource()})
	require.NoError(t, err)

	assert.True(t, res.Succeeded())
	assert.NotEmpty(t, res.ID)
	assert.Equal(t, "card", res.Label)
	for id, status := range stepStatuses(res) {
		assert.Equal(t, StepStatusCompleted, status, id)
	}

	assert.Equal(t, 7, res.Raw.Len())
	assert.Equal(t, 7, res.CleanStats.RowsIn)
	assert.Equal(t, 7, res.Cleaned.Len())
	assert.True(t, res.Validation.Valid)
	require.NotNil(t, res.Quality)
	assert.Equal(t, 7, res.Quality.TotalRows)
	require.NotNil(t, res.Features)
	assert.True(t, res.Features.Has("weight_burden_ratio"))
	assert.NotEmpty(t, res.DeriveStats.Scored)

	assert.Equal(t, 7, res.Steps[StepIDClean].Metadata["rows_out"])
	testutil.AssertLogContains(t, logs, slog.LevelInfo, "batch_complete")
	testutil.AssertNoErrors(t, logs)
}

func TestExecute_GeneratesDistinctIDs(t *testing.T) {
	m, _ := newTestManager(t, nil)

	a, err := m.Execute(context.Background(), BatchRequest{Source: raceCardSource()})
	require.NoError(t, err)
	b, err := m.Execute(context.Background(), BatchRequest{Source: raceCardSource()})
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)

	c, err := m.Execute(context.Background(), BatchRequest{ID: "fixed", Source: raceCardSource()})
	require.NoError(t, err)
	assert.Equal(t, "fixed", c.ID)
}

func TestExecute_StructuralViolations(t *testing.T) {
	tests := []struct {
		name       string
		strict     bool
		wantStatus BatchStatus
		wantDerive StepStatus
	}{
		{name: "lenient continues", strict: false, wantStatus: BatchStatusCompleted, wantDerive: StepStatusCompleted},
		{name: "strict rejects", strict: true, wantStatus: BatchStatusRejected, wantDerive: StepStatusSkipped},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig()
			cfg.Strict = tt.strict
			m, logs := newTestManager(t, cfg)

			res, err := m.Execute(context.Background(), BatchRequest{
				Source: dataprocessing.TableSource{Table: duplicateCard()},
			})

			assert.Equal(t, tt.wantStatus, res.Status)
			assert.False(t, res.Validation.Valid)
			assert.True(t, res.Validation.Has(domain.ViolationDuplicateHorseNumber))
			assert.Equal(t, tt.wantDerive, res.Steps[StepIDDerive].GetStatus())

			if tt.strict {
				require.Error(t, err)
				assert.Equal(t, ErrorTypeRejected, GetErrorType(err))
				assert.Nil(t, res.Features)
				assert.NotNil(t, res.Quality)
				assert.Equal(t, StepStatusFailed, res.Steps[StepIDValidate].GetStatus())
			} else {
				require.NoError(t, err)
				assert.NotNil(t, res.Features)
				testutil.AssertLogContains(t, logs, slog.LevelWarn, "continuing with structural violations")
			}
		})
	}
}

func TestExecute_Cancelled(t *testing.T) {
	m, _ := newTestManager(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := m.Execute(ctx, BatchRequest{Source: raceCardSource()})
	require.Error(t, err)

	assert.Equal(t, ErrorTypeCancellation, GetErrorType(err))
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, BatchStatusCancelled, res.Status)
	for id, status := range stepStatuses(res) {
		assert.Equal(t, StepStatusSkipped, status, id)
	}
}

func TestExecute_Timeout(t *testing.T) {
	cfg := NewConfig()
	cfg.BatchTimeout = 20 * time.Millisecond
	m, _ := newTestManager(t, cfg)

	slow := sourceFunc(func(ctx context.Context) (*domain.Table, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})

	res, err := m.Execute(context.Background(), BatchRequest{Source: slow})
	require.Error(t, err)

	assert.Equal(t, ErrorTypeTimeout, GetErrorType(err))
	assert.Equal(t, BatchStatusCancelled, res.Status)
	assert.Equal(t, StepStatusFailed, res.Steps[StepIDLoad].GetStatus())
	assert.Equal(t, StepStatusSkipped, res.Steps[StepIDClean].GetStatus())
}

func TestExecute_LoadFailure(t *testing.T) {
	m, logs := newTestManager(t, nil)

	res, err := m.Execute(context.Background(), BatchRequest{
		Source: dataprocessing.NewFileSource("does-not-exist.xlsx", nil),
	})
	require.Error(t, err)

	assert.Equal(t, ErrorTypeExecution, GetErrorType(err))
	assert.Equal(t, BatchStatusFailed, res.Status)
	assert.NotEmpty(t, res.Error)
	assert.Equal(t, StepStatusFailed, res.Steps[StepIDLoad].GetStatus())
	assert.Equal(t, StepStatusSkipped, res.Steps[StepIDDerive].GetStatus())
	testutil.AssertLogContains(t, logs, slog.LevelError, "step_error")
}

func TestExecute_NoSource(t *testing.T) {
	m, _ := newTestManager(t, nil)

	res, err := m.Execute(context.Background(), BatchRequest{})
	require.Error(t, err)
	assert.Equal(t, ErrorTypeValidation, GetErrorType(err))
	assert.Equal(t, BatchStatusFailed, res.Status)
}

func TestExecute_ShapeError(t *testing.T) {
	m, _ := newTestManager(t, nil)
	bad := domain.NewTable("horse_name")
	bad.AppendRow(domain.Row{"horse_name": domain.Text("Alpha"), "stray": domain.Text("x")})

	res, err := m.Execute(context.Background(), BatchRequest{Source: dataprocessing.TableSource{Table: bad}})
	require.Error(t, err)
	assert.Equal(t, StepStatusFailed, res.Steps[StepIDClean].GetStatus())
	assert.Equal(t, StepStatusCompleted, res.Steps[StepIDLoad].GetStatus())
}

func TestRunBatches(t *testing.T) {
	cfg := NewConfig()
	cfg.MaxConcurrency = 2
	m, _ := newTestManager(t, cfg)

	var active, peak atomic.Int32
	tracked := func(fail bool) dataprocessing.Source {
		return sourceFunc(func(ctx context.Context) (*domain.Table, error) {
			n := active.Add(1)
			defer active.Add(-1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(20 * time.Millisecond)
			if fail {
				return nil, errors.New("unreadable workbook")
			}
			return testutil.RaceCard(), nil
		})
	}

	reqs := []BatchRequest{
		{Label: "a", Source: tracked(false)},
		{Label: "b", Source: tracked(true)},
		{Label: "c", Source: tracked(false)},
		{Label: "d", Source: tracked(false)},
	}
	results, err := m.RunBatches(context.Background(), reqs)

	require.Error(t, err)
	var list *ErrorList
	require.ErrorAs(t, err, &list)
	assert.Len(t, list.Errors, 1)
	assert.Contains(t, err.Error(), "batch b")

	require.Len(t, results, 4)
	for i, res := range results {
		require.NotNil(t, res)
		assert.Equal(t, reqs[i].Label, res.Label)
	}
	assert.True(t, results[0].Succeeded())
	assert.Equal(t, BatchStatusFailed, results[1].Status)
	assert.True(t, results[3].Succeeded())
	assert.LessOrEqual(t, peak.Load(), int32(2))
}

func TestRunBatches_StopOnError(t *testing.T) {
	cfg := NewConfig()
	cfg.MaxConcurrency = 1
	cfg.ContinueOnError = false
	m, _ := newTestManager(t, cfg)

	failing := sourceFunc(func(ctx context.Context) (*domain.Table, error) {
		return nil, errors.New("boom")
	})
	reqs := []BatchRequest{
		{Label: "first", Source: failing},
		{Label: "second", Source: raceCardSource()},
	}

	results, err := m.RunBatches(context.Background(), reqs)
	require.Error(t, err)
	assert.Equal(t, BatchStatusFailed, results[0].Status)
	assert.Equal(t, BatchStatusCancelled, results[1].Status)
}

func TestRunBatches_AllSucceed(t *testing.T) {
	m, _ := newTestManager(t, nil)

	var reqs []BatchRequest
	for _, race := range testutil.RaceCard().SplitBy("race_id") {
		reqs = append(reqs, BatchRequest{Source: dataprocessing.TableSource{Table: race}})
	}
	require.Len(t, reqs, 2)

	results, err := m.RunBatches(context.Background(), reqs)
	require.NoError(t, err)
	assert.Equal(t, 4, results[0].Features.Len())
	assert.Equal(t, 3, results[1].Features.Len())
}
