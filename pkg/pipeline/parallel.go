package pipeline

import (
	"context"
	"time"
)

// LogicOperator selects how a parallel group's per-step outcomes combine
// into a group success/failure verdict.
type LogicOperator int

const (
	// OperatorAND requires every step in the group to succeed.
	OperatorAND LogicOperator = iota
	// OperatorOR requires at least one step in the group to succeed.
	OperatorOR
)

// ParallelConfig configures a single parallel group's execution.
type ParallelConfig struct {
	Operator LogicOperator
	// MaxWorkers bounds concurrent workers; zero means unbounded.
	MaxWorkers int
	// Timeout bounds the group's join; zero means unbounded.
	Timeout time.Duration
}

type workerOutcome[C any] struct {
	ctx *Context[C]
	err *StepFailure
}

// parallelExecutor runs a group of steps concurrently on isolated context
// copies and joins them with an AND/OR policy, grounded on
// parallel_executor.py's ThreadPoolExecutor + as_completed(timeout=...).
type parallelExecutor[C any] struct {
	tasks *taskExecutor[C]
}

func newParallelExecutor[C any](tasks *taskExecutor[C]) *parallelExecutor[C] {
	return &parallelExecutor[C]{tasks: tasks}
}

// execute runs steps against isolated clones of in and merges the
// successful outcomes back into a clone of in. On group failure it returns
// (nil, *ParallelGroupFailure) so the caller decides rollback/propagation,
// mirroring taskExecutor's critical-failure contract.
func (e *parallelExecutor[C]) execute(goCtx context.Context, steps []Step[C], in *Context[C], cfg ParallelConfig, planIndex int) (*Context[C], error) {
	if len(steps) == 0 {
		return in, nil
	}

	original := in.Clone()

	copies := make([]*Context[C], len(steps))
	for i, step := range steps {
		c := original.Clone()
		c.currentStepID = step.ID()
		copies[i] = c
	}

	maxWorkers := cfg.MaxWorkers
	if maxWorkers <= 0 {
		maxWorkers = len(steps)
	}
	sem := make(chan struct{}, maxWorkers)
	resultsCh := make(chan workerOutcome[C], len(steps))

	for i, step := range steps {
		go func(step Step[C], stepCtx *Context[C]) {
			sem <- struct{}{}
			defer func() { <-sem }()

			res, err := e.tasks.execute(goCtx, step, stepCtx)
			var failure *StepFailure
			if err != nil {
				if sf, ok := err.(*StepFailure); ok {
					failure = sf
				} else {
					failure = &StepFailure{StepID: step.ID(), Err: err}
				}
			}
			resultsCh <- workerOutcome[C]{ctx: res, err: failure}
		}(step, copies[i])
	}

	joinCtx := goCtx
	var cancelJoin context.CancelFunc
	if cfg.Timeout > 0 {
		joinCtx, cancelJoin = context.WithTimeout(goCtx, cfg.Timeout)
		defer cancelJoin()
	}

	outcomes := make([]workerOutcome[C], 0, len(steps))
	timedOut := false

collectLoop:
	for i := 0; i < len(steps); i++ {
		select {
		case o := <-resultsCh:
			outcomes = append(outcomes, o)
		case <-joinCtx.Done():
			timedOut = true
			break collectLoop
		}
	}

	if timedOut {
		var failures []*StepFailure
		for _, o := range outcomes {
			if o.err != nil {
				failures = append(failures, o.err)
			}
		}
		return nil, &ParallelGroupFailure{PlanIndex: planIndex, Timeout: true, Failures: failures}
	}

	var oks []*Context[C]
	var failures []*StepFailure
	for _, o := range outcomes {
		if o.err != nil {
			failures = append(failures, o.err)
			continue
		}
		oks = append(oks, o.ctx)
	}

	succeeded := false
	switch cfg.Operator {
	case OperatorOR:
		succeeded = len(oks) > 0
	default: // OperatorAND
		succeeded = len(failures) == 0
	}

	if !succeeded {
		return nil, &ParallelGroupFailure{PlanIndex: planIndex, Failures: failures}
	}

	merged := mergeContexts(original, oks)
	for _, f := range failures {
		merged.Errors = append(merged.Errors, f)
	}
	return merged, nil
}
