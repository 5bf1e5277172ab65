// Package config loads the interpreter's tunable resource limits: stack
// capacity, max call depth, and an optional cooperative step budget.
// Defaults leave a prototype running to completion or error; a host opts
// into tighter limits by setting an environment variable or a config file
// field.
package config

import (
	"os"

	"github.com/caarlos0/env/v6"
	"gopkg.in/yaml.v3"
)

// Limits are the tunable ceilings a State enforces. Zero means unlimited
// for every field; a host that wants a ceiling must ask for one
// explicitly.
type Limits struct {
	// StackCapacity caps the total number of value-stack slots a state may
	// allocate across all active frames. 0 means unlimited.
	StackCapacity int `env:"VEX_STACK_CAPACITY" yaml:"stack_capacity"`
	// MaxCallDepth caps the number of nested Call invocations (recursion
	// is otherwise bound only by the host call stack; this is an
	// additional, opt-in ceiling beneath that). 0 means unlimited.
	MaxCallDepth int `env:"VEX_MAX_CALL_DEPTH" yaml:"max_call_depth"`
	// StepBudget caps the number of instructions a single Call may execute
	// before it's aborted with a Panic error. 0 means unlimited.
	StepBudget int `env:"VEX_STEP_BUDGET" yaml:"step_budget"`
}

// Default returns the zero-valued (unlimited) Limits.
func Default() Limits {
	return Limits{}
}

// Load reads Limits from the process environment using the `env` struct
// tags above (github.com/caarlos0/env), starting from Default. A host that
// wants bespoke limits without touching the environment can call
// LoadFile instead, or build a Limits value directly — Load exists for
// the common case of a containerized/CI embedder passing VEX_* variables.
func Load() (Limits, error) {
	l := Default()
	if err := env.Parse(&l); err != nil {
		return Limits{}, err
	}
	return l, nil
}

// LoadFile reads Limits from a YAML file at path (gopkg.in/yaml.v3, using
// the `yaml` struct tags above), then overlays any VEX_* environment variables on top of
// the file's values, so a deployment can ship a baseline config file and
// still override individual knobs at runtime without editing it.
func LoadFile(path string) (Limits, error) {
	l := Default()

	b, err := os.ReadFile(path)
	if err != nil {
		return Limits{}, err
	}
	if err := yaml.Unmarshal(b, &l); err != nil {
		return Limits{}, err
	}
	if err := env.Parse(&l); err != nil {
		return Limits{}, err
	}
	return l, nil
}
