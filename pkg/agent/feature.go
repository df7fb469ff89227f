package agent

import (
	"github.com/aretw0/arbor/pkg/environment"
	"github.com/aretw0/arbor/pkg/pipeline"
)

// FeatureSetup is handed to a feature's Install. It exposes the pipeline
// for listener registration and lets the feature wrap or replace the
// agent's environment (used by test mocking).
type FeatureSetup struct {
	Pipeline *pipeline.Pipeline

	env environment.Environment
}

// Environment returns the environment the run will use.
func (s *FeatureSetup) Environment() environment.Environment {
	return s.env
}

// SetEnvironment replaces the environment the run will use.
func (s *FeatureSetup) SetEnvironment(env environment.Environment) {
	s.env = env
}

// Feature is a cross-cutting concern installed once per agent before any
// run begins. It declares its configuration type and registers pipeline
// listeners without touching the interpreter.
type Feature[C any] interface {
	DefaultConfig() C
	Install(config C, setup *FeatureSetup)
}

// InstallFeature installs a feature on the agent, applying the configure
// functions over the feature's default configuration first.
func InstallFeature[C any](a *Agent, f Feature[C], configure ...func(*C)) {
	config := f.DefaultConfig()
	for _, fn := range configure {
		fn(&config)
	}

	setup := &FeatureSetup{Pipeline: a.pipeline, env: a.env}
	f.Install(config, setup)
	a.env = setup.env
}
