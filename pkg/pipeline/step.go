package pipeline

import (
	"context"
	"time"
)

// Step is a single unit of work executed by a Pipeline. Implementations are
// supplied by the consumer; the core never inspects anything beyond the
// methods below.
//
// Timeout and Retries are declared but never read by TaskExecutor or
// ParallelExecutor: no timeout is applied to Run and a failed Run is not
// retried.
type Step[C any] interface {
	// ID returns the step's stable identity. Must be non-empty and unique
	// within a single Pipeline's plan.
	ID() string

	// Description returns a human-readable summary of the step. Must be
	// non-empty.
	Description() string

	// Run performs the step's work against ctx, returning the (possibly
	// same, possibly different) context. Run is invoked at most once per
	// pipeline position. It may call ctx.UpdateStepProgress any number of
	// times and may return an error.
	Run(goCtx context.Context, ctx *Context[C]) (*Context[C], error)

	// Critical controls whether a Run error is propagated (true) or
	// captured into ctx.Errors and swallowed (false).
	Critical() bool

	// Timeout is declared but unenforced by the current executors.
	Timeout() time.Duration

	// Retries is declared but unenforced by the current executors.
	Retries() int
}

// BaseStep provides the common default overrides (Critical() == true,
// Timeout()/Retries() unset) plus ID and Description from its fields, so
// concrete step types only need to implement Run. Embed it by value.
type BaseStep struct {
	StepID      string
	StepDesc    string
	NonCritical bool
	StepTimeout time.Duration
	StepRetries int
}

func (b BaseStep) ID() string { return b.StepID }

func (b BaseStep) Description() string { return b.StepDesc }

func (b BaseStep) Critical() bool { return !b.NonCritical }

func (b BaseStep) Timeout() time.Duration { return b.StepTimeout }

func (b BaseStep) Retries() int { return b.StepRetries }
