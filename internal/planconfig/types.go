// Package planconfig loads a declarative YAML plan file and translates it
// into a pipeline.PlanEntry sequence plus a pipeline.Config, the way
// internal/config/parser.go loads a Streamy config into its domain types.
package planconfig

import "time"

// StepSpec is one step's declarative definition. Type selects which
// registered factory builds the concrete pipeline.Step[C]; Settings carries
// that factory's type-specific fields as a raw map, merged over its
// registered defaults before being decoded.
type StepSpec struct {
	ID          string         `yaml:"id" validate:"required,step_id"`
	Description string         `yaml:"description" validate:"required"`
	Type        string         `yaml:"type" validate:"required"`
	Critical    *bool          `yaml:"critical,omitempty"`
	Settings    map[string]any `yaml:"settings,omitempty"`
}

func (s StepSpec) critical() bool {
	if s.Critical == nil {
		return true
	}
	return *s.Critical
}

// PositionSpec is one plan position: either a single Step or a Group of
// Steps meant to run concurrently. Exactly one of Step/Group must be set.
type PositionSpec struct {
	Step  *StepSpec  `yaml:"step,omitempty"`
	Group []StepSpec `yaml:"group,omitempty"`
}

// ParallelSpec configures every parallel group in the plan uniformly,
// mirroring pipeline.ParallelConfig.
type ParallelSpec struct {
	Operator   string        `yaml:"operator,omitempty" validate:"omitempty,oneof=and or"`
	MaxWorkers int           `yaml:"max_workers,omitempty" validate:"omitempty,min=1"`
	Timeout    time.Duration `yaml:"timeout,omitempty"`
}

// PlanSpec is the root document decoded from a plan file.
type PlanSpec struct {
	FailFast *bool          `yaml:"fail_fast,omitempty"`
	Parallel ParallelSpec   `yaml:"parallel,omitempty"`
	Plan     []PositionSpec `yaml:"plan" validate:"required,dive"`
}

func (p PlanSpec) failFast() bool {
	if p.FailFast == nil {
		return true
	}
	return *p.FailFast
}
