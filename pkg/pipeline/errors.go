package pipeline

import (
	"fmt"
	"strings"
)

// ErrorCode tags construction-time programmer errors that InvariantViolation
// carries. These never occur from user step failures; they indicate a
// malformed plan.
type ErrorCode string

const (
	ErrCodeDuplicateStep ErrorCode = "DUPLICATE_STEP_ID"
	ErrCodeEmptyStepID   ErrorCode = "EMPTY_STEP_ID"
	ErrCodeEmptyDesc     ErrorCode = "EMPTY_DESCRIPTION"
)

// StepFailure is raised by the TaskExecutor when a step's Run returns an
// error. It carries the originating step id and the underlying error.
type StepFailure struct {
	StepID string
	Err    error
}

func (e *StepFailure) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("step %q failed: %v", e.StepID, e.Err)
}

func (e *StepFailure) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ParallelGroupFailure is raised by the ParallelExecutor when the
// configured AND/OR success policy is not met, or when the group deadline
// elapses before all workers join.
type ParallelGroupFailure struct {
	PlanIndex int
	Timeout   bool
	Failures  []*StepFailure
}

func (e *ParallelGroupFailure) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Timeout {
		return fmt.Sprintf("parallel group at position %d timed out before all steps completed", e.PlanIndex)
	}
	ids := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		ids = append(ids, f.StepID)
	}
	return fmt.Sprintf("parallel group at position %d failed: %s", e.PlanIndex, strings.Join(ids, ", "))
}

// Unwrap exposes the first underlying failure, allowing errors.As to reach
// into a single representative StepFailure.
func (e *ParallelGroupFailure) Unwrap() error {
	if e == nil || len(e.Failures) == 0 {
		return nil
	}
	return e.Failures[0]
}

// InvariantViolation represents a programmer error detected while
// constructing a Pipeline: a malformed plan that can never be fixed by
// retrying at runtime.
type InvariantViolation struct {
	Code    ErrorCode
	Message string
}

func newInvariantViolation(code ErrorCode, message string) *InvariantViolation {
	return &InvariantViolation{Code: code, Message: message}
}

func (e *InvariantViolation) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}
