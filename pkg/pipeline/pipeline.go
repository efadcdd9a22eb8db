package pipeline

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
)

// PlanEntry is one position in a Plan: either a single serial Step or an
// ordered group of Steps to run in parallel. Exactly one of Serial/Parallel
// is set; nested parallel groups are structurally impossible since Parallel
// holds Step[C] values, not PlanEntry[C] values.
type PlanEntry[C any] struct {
	Serial   Step[C]
	Parallel []Step[C]
}

// IsParallel reports whether this entry is a parallel group.
func (e PlanEntry[C]) IsParallel() bool {
	return e.Serial == nil
}

// names returns the step ids contributed by this entry, in position order.
func (e PlanEntry[C]) names() []string {
	if !e.IsParallel() {
		return []string{e.Serial.ID()}
	}
	ids := make([]string, len(e.Parallel))
	for i, s := range e.Parallel {
		ids[i] = s.ID()
	}
	return ids
}

// Serial constructs a serial PlanEntry.
func Serial[C any](step Step[C]) PlanEntry[C] {
	return PlanEntry[C]{Serial: step}
}

// Parallel constructs a parallel-group PlanEntry.
func Parallel[C any](steps ...Step[C]) PlanEntry[C] {
	return PlanEntry[C]{Parallel: steps}
}

// Plan is an ordered sequence of positions, each a serial step or a
// parallel group, as passed to NewPipeline.
type Plan[C any] []PlanEntry[C]

// String renders a human-readable level-by-level summary, one line per
// plan position, serial positions shown as a single-step level.
func (p Plan[C]) String() string {
	var b strings.Builder
	for i, entry := range p {
		ids := entry.names()
		fmt.Fprintf(&b, "Level %d (%d steps): %s\n", i, len(ids), strings.Join(ids, ", "))
	}
	return b.String()
}

// Config configures a Pipeline's execution policy.
type Config struct {
	// FailFast controls whether Run terminates and propagates at the first
	// position whose executor reports a failure (true, the default) or
	// accumulates the failure into ctx.Errors and continues (false). It
	// does not affect per-step critical routing: non-critical failures are
	// always swallowed by the TaskExecutor regardless of FailFast.
	FailFast bool
	Parallel ParallelConfig
}

// DefaultConfig returns the spec's default policy: fail-fast, AND-joined
// parallel groups, unbounded workers and timeout.
func DefaultConfig() Config {
	return Config{
		FailFast: true,
		Parallel: ParallelConfig{Operator: OperatorAND},
	}
}

// Observer is notified once after each successfully-processed plan
// position (never after a fail-fast termination at that position). It is
// called on the pipeline's controlling goroutine and must not block long.
type Observer func(planIndex, planLen int, name string, overallPercent float64)

// Status is a point-in-time snapshot safe to read from any goroutine while
// a Pipeline is running.
type Status struct {
	Overall     float64
	CurrentStep *string
	IsRunning   bool
	StepDetails map[string]StepDetail
}

// Pipeline is the top-level orchestrator: it walks a Plan, dispatching
// serial steps to a taskExecutor and parallel groups to a parallelExecutor,
// drives the ProgressTracker, invokes the caller's Observer, and enforces
// the fail-fast/fail-slow policy.
type Pipeline[C any] struct {
	plan     Plan[C]
	names    []string
	config   Config
	observer Observer
	tracker  *ProgressTracker
	tasks    *taskExecutor[C]
	parallel *parallelExecutor[C]

	running      atomic.Bool
	currentIndex atomic.Int64
}

// Option configures a Pipeline at construction time.
type Option[C any] func(*Pipeline[C])

// WithConfig overrides the default Config.
func WithConfig[C any](cfg Config) Option[C] {
	return func(p *Pipeline[C]) { p.config = cfg }
}

// WithObserver registers a progress observer.
func WithObserver[C any](obs Observer) Option[C] {
	return func(p *Pipeline[C]) { p.observer = obs }
}

// NewPipeline validates the plan and constructs a Pipeline. Validation
// failures are InvariantViolations: programmer errors detected once, up
// front, rather than surfaced mid-run.
func NewPipeline[C any](plan Plan[C], opts ...Option[C]) (*Pipeline[C], error) {
	if err := validatePlan(plan); err != nil {
		return nil, err
	}

	names := make([]string, len(plan))
	for i, entry := range plan {
		if entry.IsParallel() {
			names[i] = fmt.Sprintf("parallel_group_%d", i)
		} else {
			names[i] = entry.Serial.ID()
		}
	}

	tasks := newTaskExecutor[C]()
	p := &Pipeline[C]{
		plan:     plan,
		names:    names,
		config:   DefaultConfig(),
		tracker:  newProgressTracker(plan),
		tasks:    tasks,
		parallel: newParallelExecutor(tasks),
	}
	p.currentIndex.Store(-1)

	for _, opt := range opts {
		opt(p)
	}

	return p, nil
}

func validatePlan[C any](plan []PlanEntry[C]) error {
	seen := make(map[string]struct{})
	checkStep := func(s Step[C]) error {
		id := s.ID()
		if strings.TrimSpace(id) == "" {
			return newInvariantViolation(ErrCodeEmptyStepID, "step id must not be empty")
		}
		if strings.TrimSpace(s.Description()) == "" {
			return newInvariantViolation(ErrCodeEmptyDesc, fmt.Sprintf("step %q: description must not be empty", id))
		}
		if _, dup := seen[id]; dup {
			return newInvariantViolation(ErrCodeDuplicateStep, fmt.Sprintf("duplicate step id %q", id))
		}
		seen[id] = struct{}{}
		return nil
	}

	for _, entry := range plan {
		if entry.IsParallel() {
			for _, s := range entry.Parallel {
				if err := checkStep(s); err != nil {
					return err
				}
			}
			continue
		}
		if err := checkStep(entry.Serial); err != nil {
			return err
		}
	}
	return nil
}

// Run executes the plan against ctx and returns the final context. On an
// empty plan it returns ctx unchanged without invoking the observer. It may
// return a non-nil error if FailFast is true and a critical step or
// parallel group fails; the returned context always carries a matching
// entry appended to Errors in that case.
func (p *Pipeline[C]) Run(goCtx context.Context, ctx *Context[C]) (*Context[C], error) {
	if len(p.plan) == 0 {
		return ctx, nil
	}

	p.running.Store(true)
	defer p.running.Store(false)
	defer p.currentIndex.Store(-1)

	ctx.tracker = p.tracker
	current := ctx

	for i, entry := range p.plan {
		p.currentIndex.Store(int64(i))

		var next *Context[C]
		var err error

		if entry.IsParallel() {
			next, err = p.parallel.execute(goCtx, entry.Parallel, current, p.config.Parallel, i)
		} else {
			next, err = p.tasks.execute(goCtx, entry.Serial, current)
		}

		if err != nil {
			failed := current.Clone()
			failed.Errors = append(failed.Errors, err)
			current = failed

			if p.config.FailFast {
				return current, err
			}
			continue
		}

		current = next
		p.completePosition(entry)

		if p.observer != nil {
			p.observer(i, len(p.plan), p.names[i], p.tracker.Overall())
		}
	}

	return current, nil
}

func (p *Pipeline[C]) completePosition(entry PlanEntry[C]) {
	if entry.IsParallel() {
		for _, s := range entry.Parallel {
			p.tracker.updateStepProgress(s.ID(), 100)
		}
		return
	}
	p.tracker.updateStepProgress(entry.Serial.ID(), 100)
}

// Status returns a snapshot safe to read from any goroutine while Run is
// executing.
func (p *Pipeline[C]) Status() Status {
	running := p.running.Load()
	idx := p.currentIndex.Load()

	var current *string
	if running && idx >= 0 && int(idx) < len(p.names) {
		name := p.names[idx]
		current = &name
	}

	return Status{
		Overall:     p.tracker.Overall(),
		CurrentStep: current,
		IsRunning:   running,
		StepDetails: p.tracker.Details(),
	}
}

// Plan returns the pipeline's plan, for callers that want a summary via
// Plan.String() before or after a run.
func (p *Pipeline[C]) Plan() Plan[C] { return p.plan }

// IsRunning is a convenience wrapper around Status().IsRunning.
func (p *Pipeline[C]) IsRunning() bool { return p.running.Load() }

// CurrentStep is a convenience wrapper around Status().CurrentStep.
func (p *Pipeline[C]) CurrentStep() *string { return p.Status().CurrentStep }
