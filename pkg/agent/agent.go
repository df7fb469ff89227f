// Package agent implements the graph execution runtime: the typed node and
// edge model, the subgraph interpreter, the per-run execution context with
// fork/merge semantics, the tool-call loop and the run driver.
package agent

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/aretw0/arbor/internal/logging"
	"github.com/aretw0/arbor/pkg/environment"
	"github.com/aretw0/arbor/pkg/executor"
	"github.com/aretw0/arbor/pkg/llm"
	"github.com/aretw0/arbor/pkg/pipeline"
	"github.com/aretw0/arbor/pkg/prompt"
	"github.com/aretw0/arbor/pkg/tool"
)

// Agent binds a strategy to an executor, a tool registry and a pipeline.
// One agent serves many runs; each run gets a fresh context and a fresh
// conversation seeded from configuration.
type Agent struct {
	id       string
	strategy *Strategy
	config   Config
	executor executor.PromptExecutor
	registry *tool.Registry
	env      environment.Environment
	pipeline *pipeline.Pipeline
	logger   *slog.Logger
}

// Option configures the Agent.
type Option func(*Agent)

// WithAgentID sets a stable agent identity (default: random).
func WithAgentID(id string) Option {
	return func(a *Agent) { a.id = id }
}

// WithConfig sets the run configuration.
func WithConfig(config Config) Option {
	return func(a *Agent) { a.config = config }
}

// WithRegistry sets the tool registry visible to the model.
func WithRegistry(registry *tool.Registry) Option {
	return func(a *Agent) { a.registry = registry }
}

// WithEnvironment overrides the default registry-backed environment.
func WithEnvironment(env environment.Environment) Option {
	return func(a *Agent) { a.env = env }
}

// WithLogger sets a structured logger for the agent.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Agent) { a.logger = logger }
}

// New creates an agent executing the given strategy.
func New(strategy *Strategy, exec executor.PromptExecutor, opts ...Option) (*Agent, error) {
	a := &Agent{
		id:       uuid.NewString(),
		strategy: strategy,
		config:   DefaultConfig(),
		executor: exec,
		pipeline: pipeline.New(),
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.config = a.config.withDefaults()

	if a.registry == nil {
		registry, err := tool.NewRegistry()
		if err != nil {
			return nil, err
		}
		a.registry = registry
	}
	if a.env == nil {
		a.env = environment.NewDirect(a.registry, environment.WithLogger(a.logger))
	}
	return a, nil
}

// ID returns the agent's identity.
func (a *Agent) ID() string { return a.id }

// Pipeline returns the agent's event pipeline. Listeners must be installed
// before the first run.
func (a *Agent) Pipeline() *pipeline.Pipeline { return a.pipeline }

// Registry returns the agent's tool registry.
func (a *Agent) Registry() *tool.Registry { return a.registry }

// Run executes the strategy against the input and returns its finish
// output. The run either returns an output or raises one terminal error;
// partial conversation progress stays in the discarded context.
func (a *Agent) Run(ctx context.Context, input any) (any, error) {
	a.pipeline.Freeze()

	runID := uuid.NewString()
	seed := prompt.New()
	if a.config.SystemPrompt != "" {
		seed = seed.Append(prompt.NewSystem(a.config.SystemPrompt))
	}

	run := &Context{
		env:      a.env,
		agentID:  a.id,
		runID:    runID,
		input:    input,
		config:   a.config,
		strategy: a.strategy.Name(),
		events:   a.pipeline,
		llm: llm.New(a.executor, seed, a.registry.Descriptors(), a.config.Model,
			llm.WithEvents(a.pipeline, a.id, runID)),
		state:      NewStateMachine(),
		storage:    NewStorage(),
		iterations: &iterationCounter{},
	}

	if err := run.state.Start(); err != nil {
		return nil, err
	}
	a.logger.Debug("run starting", "agent_id", a.id, "run_id", runID, "strategy", a.strategy.Name())

	a.pipeline.OnAgentEvent(&pipeline.AgentEvent{
		Kind:      pipeline.AgentStarting,
		AgentID:   a.id,
		RunID:     runID,
		Strategy:  a.strategy.Name(),
		Input:     input,
		Timestamp: time.Now(),
	})
	defer a.pipeline.OnAgentEvent(&pipeline.AgentEvent{
		Kind:      pipeline.AgentClosing,
		AgentID:   a.id,
		RunID:     runID,
		Strategy:  a.strategy.Name(),
		Timestamp: time.Now(),
	})

	a.pipeline.OnStrategyEvent(&pipeline.StrategyEvent{
		Kind:      pipeline.StrategyStarting,
		AgentID:   a.id,
		RunID:     runID,
		Strategy:  a.strategy.Name(),
		Input:     input,
		Timestamp: time.Now(),
	})

	output, err := a.strategy.graph.walk(ctx, run, input)
	if err != nil {
		_ = run.state.Fail(err)
		a.logger.Warn("run failed", "agent_id", a.id, "run_id", runID, "err", err)
		a.pipeline.OnAgentEvent(&pipeline.AgentEvent{
			Kind:      pipeline.AgentExecutionFailed,
			AgentID:   a.id,
			RunID:     runID,
			Strategy:  a.strategy.Name(),
			Input:     input,
			Error:     err.Error(),
			Timestamp: time.Now(),
		})
		return nil, err
	}

	if err := run.state.Finish(); err != nil {
		return nil, err
	}
	a.logger.Debug("run completed", "agent_id", a.id, "run_id", runID)

	a.pipeline.OnStrategyEvent(&pipeline.StrategyEvent{
		Kind:      pipeline.StrategyCompleted,
		AgentID:   a.id,
		RunID:     runID,
		Strategy:  a.strategy.Name(),
		Input:     input,
		Output:    output,
		Timestamp: time.Now(),
	})
	a.pipeline.OnAgentEvent(&pipeline.AgentEvent{
		Kind:      pipeline.AgentCompleted,
		AgentID:   a.id,
		RunID:     runID,
		Strategy:  a.strategy.Name(),
		Input:     input,
		Output:    output,
		Timestamp: time.Now(),
	})
	return output, nil
}

// Run executes the agent and casts the output to the strategy's declared
// output type.
func Run[Out any](ctx context.Context, a *Agent, input any) (Out, error) {
	output, err := a.Run(ctx, input)
	if err != nil {
		var zero Out
		return zero, err
	}
	return cast[Out](FinishNodeName, output)
}
