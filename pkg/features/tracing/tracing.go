// Package tracing logs every pipeline event through a structured logger.
package tracing

import (
	"log/slog"

	"github.com/aretw0/arbor/internal/logging"
	"github.com/aretw0/arbor/pkg/agent"
	"github.com/aretw0/arbor/pkg/pipeline"
)

// Config configures the tracing feature.
type Config struct {
	Logger *slog.Logger
}

// Feature traces agent, strategy, node, subgraph, LLM, tool and streaming
// events as structured log lines.
type Feature struct{}

var _ agent.Feature[Config] = Feature{}

func (Feature) DefaultConfig() Config {
	return Config{Logger: logging.New(slog.LevelInfo)}
}

func (Feature) Install(config Config, setup *agent.FeatureSetup) {
	logger := config.Logger
	if logger == nil {
		logger = logging.NewNop()
	}

	setup.Pipeline.InterceptAgentEvents(func(ev *pipeline.AgentEvent) {
		logger.Info(string(ev.Kind),
			"agent_id", ev.AgentID, "run_id", ev.RunID, "strategy", ev.Strategy, "err", ev.Error)
	})
	setup.Pipeline.InterceptStrategyEvents(func(ev *pipeline.StrategyEvent) {
		logger.Info(string(ev.Kind), "run_id", ev.RunID, "strategy", ev.Strategy)
	})
	setup.Pipeline.InterceptNodeEvents(func(ev *pipeline.NodeEvent) {
		logger.Debug(string(ev.Kind), "run_id", ev.RunID, "node", ev.Node, "err", ev.Error)
	})
	setup.Pipeline.InterceptSubgraphEvents(func(ev *pipeline.SubgraphEvent) {
		logger.Debug(string(ev.Kind), "run_id", ev.RunID, "subgraph", ev.Subgraph, "err", ev.Error)
	})
	setup.Pipeline.InterceptLLMCallEvents(func(ev *pipeline.LLMCallEvent) {
		logger.Debug(string(ev.Kind), "run_id", ev.RunID, "model", ev.Model, "duration", ev.Duration)
	})
	setup.Pipeline.InterceptToolCallEvents(func(ev *pipeline.ToolCallEvent) {
		logger.Debug(string(ev.Kind), "run_id", ev.RunID, "tool", ev.Tool, "call_id", ev.CallID, "err", ev.Error)
	})
	setup.Pipeline.InterceptStreamingEvents(func(ev *pipeline.StreamingEvent) {
		logger.Debug(string(ev.Kind), "run_id", ev.RunID, "model", ev.Model, "err", ev.Error)
	})
}
