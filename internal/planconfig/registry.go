package planconfig

import (
	"fmt"

	"dario.cat/mergo"

	"github.com/kestrelrun/taskpipe/pkg/pipeline"
)

// Factory builds a concrete Step[C] from a StepSpec's identity fields and
// its merged settings map.
type Factory[C any] func(id, description string, critical bool, settings map[string]any) (pipeline.Step[C], error)

// Registry maps plan step "type" names to Factory constructors, and holds
// each type's default settings so a plan file only needs to override what
// differs from the common case.
type Registry[C any] struct {
	factories map[string]Factory[C]
	defaults  map[string]map[string]any
}

// NewRegistry returns an empty Registry.
func NewRegistry[C any]() *Registry[C] {
	return &Registry[C]{
		factories: make(map[string]Factory[C]),
		defaults:  make(map[string]map[string]any),
	}
}

// Register associates a step type name with its Factory and optional
// default settings, overlaid by a plan step's own Settings via mergo before
// the Factory is invoked.
func (r *Registry[C]) Register(typeName string, defaults map[string]any, factory Factory[C]) {
	r.factories[typeName] = factory
	r.defaults[typeName] = defaults
}

func (r *Registry[C]) build(spec StepSpec) (pipeline.Step[C], error) {
	factory, ok := r.factories[spec.Type]
	if !ok {
		return nil, fmt.Errorf("step %q: unknown step type %q", spec.ID, spec.Type)
	}

	settings := make(map[string]any, len(r.defaults[spec.Type]))
	for k, v := range r.defaults[spec.Type] {
		settings[k] = v
	}
	if err := mergo.Map(&settings, spec.Settings, mergo.WithOverride); err != nil {
		return nil, fmt.Errorf("step %q: merge settings: %w", spec.ID, err)
	}

	return factory(spec.ID, spec.Description, spec.critical(), settings)
}

// Build translates a validated PlanSpec into a pipeline.PlanEntry sequence
// and the corresponding pipeline.Config, resolving every step through the
// registry.
func (r *Registry[C]) Build(spec *PlanSpec) ([]pipeline.PlanEntry[C], pipeline.Config, error) {
	entries := make([]pipeline.PlanEntry[C], 0, len(spec.Plan))

	for i, pos := range spec.Plan {
		if pos.Step != nil {
			step, err := r.build(*pos.Step)
			if err != nil {
				return nil, pipeline.Config{}, fmt.Errorf("position %d: %w", i, err)
			}
			entries = append(entries, pipeline.Serial[C](step))
			continue
		}

		steps := make([]pipeline.Step[C], 0, len(pos.Group))
		for j, s := range pos.Group {
			step, err := r.build(s)
			if err != nil {
				return nil, pipeline.Config{}, fmt.Errorf("position %d, group step %d: %w", i, j, err)
			}
			steps = append(steps, step)
		}
		entries = append(entries, pipeline.Parallel[C](steps...))
	}

	cfg := pipeline.DefaultConfig()
	cfg.FailFast = spec.failFast()
	if spec.Parallel.Operator == "or" {
		cfg.Parallel.Operator = pipeline.OperatorOR
	}
	cfg.Parallel.MaxWorkers = spec.Parallel.MaxWorkers
	cfg.Parallel.Timeout = spec.Parallel.Timeout

	return entries, cfg, nil
}
