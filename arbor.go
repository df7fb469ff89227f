package arbor

import (
	"context"

	"github.com/aretw0/arbor/pkg/agent"
	"github.com/aretw0/arbor/pkg/executor"
	"github.com/aretw0/arbor/pkg/tool"
)

// Version is the library version reported by the CLI.
var Version = "0.1.0"

// Re-exported core types so simple consumers only import the root package.
type (
	Agent    = agent.Agent
	Config   = agent.Config
	Context  = agent.Context
	Strategy = agent.Strategy
	RunMode  = agent.RunMode
)

const (
	RunModeSequential = agent.RunModeSequential
	RunModeParallel   = agent.RunModeParallel
	RunModeSingle     = agent.RunModeSingle
)

// New creates an agent running the standard tool-loop strategy: the model
// is asked, requested tools are executed, results are reported back, and
// the first plain text answer becomes the output.
func New(exec executor.PromptExecutor, mode RunMode, opts ...agent.Option) (*Agent, error) {
	strategy, err := agent.SingleRunStrategy("single_run", mode)
	if err != nil {
		return nil, err
	}
	return agent.New(strategy, exec, opts...)
}

// Run executes the agent and returns its output as a string. Strategies
// with a different output type should use agent.Run directly.
func Run(ctx context.Context, a *Agent, input any) (string, error) {
	return agent.Run[string](ctx, a, input)
}

// NewRegistry creates a tool registry from the given tools.
func NewRegistry(tools ...tool.Tool) (*tool.Registry, error) {
	return tool.NewRegistry(tools...)
}
