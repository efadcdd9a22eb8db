package pipeline

import "context"

// testStep is a minimal configurable Step[int] used across this package's
// tests. run, when set, is invoked in place of the default no-op success.
type testStep struct {
	BaseStep
	run func(ctx *Context[int]) (*Context[int], error)
}

func (s testStep) Run(_ context.Context, ctx *Context[int]) (*Context[int], error) {
	if s.run != nil {
		return s.run(ctx)
	}
	return ctx, nil
}

func serialStep(id string) Step[int] {
	return testStep{BaseStep: BaseStep{StepID: id, StepDesc: id}}
}
