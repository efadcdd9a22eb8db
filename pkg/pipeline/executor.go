package pipeline

import "context"

// taskExecutor runs a single step against an isolated working copy of its
// input context. Grounded on task_executor.py's catch/route/re-raise flow:
// a non-critical failure is swallowed and rolled back to a pristine clone
// of the input (discarding any half-written mutations the step made before
// failing); a critical failure is returned as an error with no context, so
// the caller (Pipeline, or ParallelExecutor on behalf of a branch) decides
// how the failure is recorded and whether it propagates.
type taskExecutor[C any] struct{}

func newTaskExecutor[C any]() *taskExecutor[C] { return &taskExecutor[C]{} }

// execute runs step against a clone of in, returning the step's resulting
// context on success. On a non-critical Run error it returns a clone of the
// pristine input with the failure appended to Errors and a nil error. On a
// critical Run error it returns (nil, *StepFailure).
func (e *taskExecutor[C]) execute(goCtx context.Context, step Step[C], in *Context[C]) (*Context[C], error) {
	working := in.Clone()
	working.currentStepID = step.ID()

	result, runErr := step.Run(goCtx, working)
	if runErr != nil {
		failure := &StepFailure{StepID: step.ID(), Err: runErr}
		if step.Critical() {
			return nil, failure
		}

		rolledBack := in.Clone()
		rolledBack.Errors = append(rolledBack.Errors, failure)
		return rolledBack, nil
	}

	if result == nil {
		result = working
	}
	return result, nil
}
