package planconfig

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads and validates a plan file from disk, the YAML-unmarshal-then-
// validate flow from internal/config/parser.go, generalized to this
// package's PlanSpec.
func Load(path string) (*PlanSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read plan file %s: %w", path, err)
	}

	var spec PlanSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("parse plan file %s: %w", path, err)
	}

	if err := Validate(&spec); err != nil {
		return nil, err
	}

	return &spec, nil
}

// Validate runs struct-tag validation plus the structural checks the
// validator library can't express: every position is exactly one of a
// single step or a non-empty group.
func Validate(spec *PlanSpec) error {
	if err := validatorInstance().Struct(spec); err != nil {
		return fmt.Errorf("invalid plan: %w", err)
	}

	for i, pos := range spec.Plan {
		hasStep := pos.Step != nil
		hasGroup := len(pos.Group) > 0
		if hasStep == hasGroup {
			return fmt.Errorf("plan position %d: exactly one of step or group must be set", i)
		}
		if hasStep {
			if err := validatorInstance().Struct(pos.Step); err != nil {
				return fmt.Errorf("plan position %d: %w", i, err)
			}
			continue
		}
		for j, s := range pos.Group {
			if err := validatorInstance().Struct(s); err != nil {
				return fmt.Errorf("plan position %d, group step %d: %w", i, j, err)
			}
		}
	}

	return nil
}
