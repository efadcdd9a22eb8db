package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewPipelineRejectsEmptyStepID(t *testing.T) {
	t.Parallel()

	_, err := NewPipeline([]PlanEntry[int]{Serial(serialStep(""))})
	var inv *InvariantViolation
	require.ErrorAs(t, err, &inv)
	require.Equal(t, ErrCodeEmptyStepID, inv.Code)
}

func TestNewPipelineRejectsDuplicateStepID(t *testing.T) {
	t.Parallel()

	_, err := NewPipeline([]PlanEntry[int]{Serial(serialStep("a")), Serial(serialStep("a"))})
	var inv *InvariantViolation
	require.ErrorAs(t, err, &inv)
	require.Equal(t, ErrCodeDuplicateStep, inv.Code)
}

func TestNewPipelineRejectsEmptyDescription(t *testing.T) {
	t.Parallel()

	step := testStep{BaseStep: BaseStep{StepID: "a", StepDesc: ""}}
	_, err := NewPipeline([]PlanEntry[int]{Serial(step)})
	var inv *InvariantViolation
	require.ErrorAs(t, err, &inv)
	require.Equal(t, ErrCodeEmptyDesc, inv.Code)
}

func TestPlanStringRendersOneLevelPerPosition(t *testing.T) {
	t.Parallel()

	plan := Plan[int]{
		Serial(serialStep("a")),
		Parallel(serialStep("b"), serialStep("c")),
	}

	require.Equal(t, "Level 0 (1 steps): a\nLevel 1 (2 steps): b, c\n", plan.String())
}

func TestPipelineRunEmptyPlanReturnsContextUnchanged(t *testing.T) {
	t.Parallel()

	p, err := NewPipeline[int](nil)
	require.NoError(t, err)

	in := NewContext(0, nil)
	out, err := p.Run(context.Background(), in)
	require.NoError(t, err)
	require.Same(t, in, out)
}

// Scenario: a critical step fails under the default fail-fast policy. Run
// terminates at that position, returns a non-nil error, and the returned
// context carries exactly one accumulated error describing the failure.
func TestPipelineRunFailFastStopsAtCriticalFailure(t *testing.T) {
	t.Parallel()

	wantErr := errors.New("boom")
	observed := 0

	steps := []PlanEntry[int]{
		Serial(testStep{
			BaseStep: BaseStep{StepID: "first", StepDesc: "first"},
			run: func(ctx *Context[int]) (*Context[int], error) {
				ctx.Results["first"] = true
				return ctx, nil
			},
		}),
		Serial(testStep{
			BaseStep: BaseStep{StepID: "second", StepDesc: "second"},
			run: func(ctx *Context[int]) (*Context[int], error) { return nil, wantErr },
		}),
		Serial(testStep{
			BaseStep: BaseStep{StepID: "third", StepDesc: "third"},
			run: func(ctx *Context[int]) (*Context[int], error) {
				ctx.Results["third"] = true
				return ctx, nil
			},
		}),
	}

	p, err := NewPipeline(steps, WithObserver[int](func(_, _ int, _ string, _ float64) { observed++ }))
	require.NoError(t, err)

	out, runErr := p.Run(context.Background(), NewContext(0, nil))
	require.Error(t, runErr)
	require.True(t, out.Results["first"].(bool))
	require.Nil(t, out.Results["third"])
	require.Len(t, out.Errors, 1)
	require.Equal(t, 1, observed) // only "first" completed and notified
}

// Scenario: FailFast disabled accumulates every critical failure into
// Errors and keeps walking the remaining plan positions.
func TestPipelineRunFailSlowAccumulatesAndContinues(t *testing.T) {
	t.Parallel()

	steps := []PlanEntry[int]{
		Serial(testStep{
			BaseStep: BaseStep{StepID: "first", StepDesc: "first"},
			run:      func(ctx *Context[int]) (*Context[int], error) { return nil, errors.New("one") },
		}),
		Serial(testStep{
			BaseStep: BaseStep{StepID: "second", StepDesc: "second"},
			run: func(ctx *Context[int]) (*Context[int], error) {
				ctx.Results["second"] = true
				return ctx, nil
			},
		}),
		Serial(testStep{
			BaseStep: BaseStep{StepID: "third", StepDesc: "third"},
			run:      func(ctx *Context[int]) (*Context[int], error) { return nil, errors.New("three") },
		}),
	}

	cfg := DefaultConfig()
	cfg.FailFast = false
	p, err := NewPipeline(steps, WithConfig[int](cfg))
	require.NoError(t, err)

	out, runErr := p.Run(context.Background(), NewContext(0, nil))
	require.NoError(t, runErr)
	require.True(t, out.Results["second"].(bool))
	require.Len(t, out.Errors, 2)
}

// Scenario: a non-critical step failure never reaches Run as an error; it
// is swallowed by the TaskExecutor and the pipeline proceeds normally,
// still recording exactly one error and still notifying the observer for
// that position.
func TestPipelineRunNonCriticalFailureIsSwallowedAndCounted(t *testing.T) {
	t.Parallel()

	observed := 0
	steps := []PlanEntry[int]{
		Serial(testStep{
			BaseStep: BaseStep{StepID: "optional", StepDesc: "optional", NonCritical: true},
			run:      func(ctx *Context[int]) (*Context[int], error) { return nil, errors.New("meh") },
		}),
		Serial(testStep{
			BaseStep: BaseStep{StepID: "next", StepDesc: "next"},
			run: func(ctx *Context[int]) (*Context[int], error) {
				ctx.Results["next"] = true
				return ctx, nil
			},
		}),
	}

	p, err := NewPipeline(steps, WithObserver[int](func(_, _ int, _ string, _ float64) { observed++ }))
	require.NoError(t, err)

	out, runErr := p.Run(context.Background(), NewContext(0, nil))
	require.NoError(t, runErr)
	require.True(t, out.Results["next"].(bool))
	require.Len(t, out.Errors, 1)
	require.Equal(t, 2, observed)
}

// Scenario: an OR parallel group with one failing branch still succeeds
// overall, merges the successful branch's results, and surfaces the
// failed branch's error alongside.
func TestPipelineRunORParallelGroupPartialSuccess(t *testing.T) {
	t.Parallel()

	steps := []PlanEntry[int]{
		Parallel(
			testStep{
				BaseStep: BaseStep{StepID: "ok", StepDesc: "ok"},
				run: func(ctx *Context[int]) (*Context[int], error) {
					ctx.Results["ok"] = true
					return ctx, nil
				},
			},
			testStep{
				BaseStep: BaseStep{StepID: "bad", StepDesc: "bad"},
				run:      func(ctx *Context[int]) (*Context[int], error) { return nil, errors.New("bad") },
			},
		),
	}

	cfg := DefaultConfig()
	cfg.Parallel.Operator = OperatorOR
	p, err := NewPipeline(steps, WithConfig[int](cfg))
	require.NoError(t, err)

	out, runErr := p.Run(context.Background(), NewContext(0, nil))
	require.NoError(t, runErr)
	require.True(t, out.Results["ok"].(bool))
	require.Len(t, out.Errors, 1)
}

func TestPipelineRunAutoCompletesProgressAfterEachPosition(t *testing.T) {
	t.Parallel()

	steps := []PlanEntry[int]{Serial(serialStep("a")), Serial(serialStep("b"))}

	var lastOverall float64
	p, err := NewPipeline(steps, WithObserver[int](func(_, _ int, _ string, overall float64) {
		lastOverall = overall
	}))
	require.NoError(t, err)

	_, err = p.Run(context.Background(), NewContext(0, nil))
	require.NoError(t, err)
	require.InDelta(t, 100.0, lastOverall, 0.0001)
	require.False(t, p.IsRunning())
}

func TestPipelineStatusReflectsCurrentStepWhileRunning(t *testing.T) {
	t.Parallel()

	started := make(chan struct{})
	release := make(chan struct{})

	steps := []PlanEntry[int]{
		Serial(testStep{
			BaseStep: BaseStep{StepID: "blocking", StepDesc: "blocking"},
			run: func(ctx *Context[int]) (*Context[int], error) {
				close(started)
				<-release
				return ctx, nil
			},
		}),
	}

	p, err := NewPipeline[int](steps)
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		_, _ = p.Run(context.Background(), NewContext(0, nil))
		close(done)
	}()

	<-started
	status := p.Status()
	require.True(t, status.IsRunning)
	require.NotNil(t, status.CurrentStep)
	require.Equal(t, "blocking", *status.CurrentStep)

	close(release)
	<-done
	require.False(t, p.IsRunning())
}
