// Package prom exposes pipeline activity as Prometheus metrics.
package prom

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/aretw0/arbor/pkg/agent"
	"github.com/aretw0/arbor/pkg/pipeline"
)

// Config configures the metrics feature.
type Config struct {
	Registerer prometheus.Registerer
	Namespace  string
}

// Feature records node executions, model calls and tool calls, with
// duration histograms for each.
type Feature struct{}

var _ agent.Feature[Config] = Feature{}

func (Feature) DefaultConfig() Config {
	return Config{
		Registerer: prometheus.DefaultRegisterer,
		Namespace:  "arbor",
	}
}

func (Feature) Install(config Config, setup *agent.FeatureSetup) {
	nodeExecutions := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "node_executions_total",
			Help:      "Total node executions by node and outcome",
		},
		[]string{"node", "outcome"},
	)
	nodeDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: config.Namespace,
			Name:      "node_duration_seconds",
			Help:      "Duration of node executions",
		},
		[]string{"node"},
	)
	llmCalls := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "llm_calls_total",
			Help:      "Total model calls by model",
		},
		[]string{"model"},
	)
	llmDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: config.Namespace,
			Name:      "llm_call_duration_seconds",
			Help:      "Duration of model calls",
		},
		[]string{"model"},
	)
	toolCalls := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "tool_calls_total",
			Help:      "Total tool calls by tool and outcome",
		},
		[]string{"tool", "outcome"},
	)
	toolDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: config.Namespace,
			Name:      "tool_call_duration_seconds",
			Help:      "Duration of tool executions",
		},
		[]string{"tool"},
	)
	config.Registerer.MustRegister(
		nodeExecutions, nodeDuration, llmCalls, llmDuration, toolCalls, toolDuration,
	)

	setup.Pipeline.InterceptNodeEvents(func(ev *pipeline.NodeEvent) {
		switch ev.Kind {
		case pipeline.NodeExecutionCompleted:
			nodeExecutions.WithLabelValues(ev.Node, "completed").Inc()
			nodeDuration.WithLabelValues(ev.Node).Observe(ev.Duration.Seconds())
		case pipeline.NodeExecutionFailed:
			nodeExecutions.WithLabelValues(ev.Node, "failed").Inc()
			nodeDuration.WithLabelValues(ev.Node).Observe(ev.Duration.Seconds())
		}
	})
	setup.Pipeline.InterceptLLMCallEvents(func(ev *pipeline.LLMCallEvent) {
		if ev.Kind == pipeline.LLMCallCompleted {
			llmCalls.WithLabelValues(ev.Model).Inc()
			llmDuration.WithLabelValues(ev.Model).Observe(ev.Duration.Seconds())
		}
	})
	setup.Pipeline.InterceptToolCallEvents(func(ev *pipeline.ToolCallEvent) {
		switch ev.Kind {
		case pipeline.ToolCallCompleted:
			toolCalls.WithLabelValues(ev.Tool, "completed").Inc()
			toolDuration.WithLabelValues(ev.Tool).Observe(ev.Duration.Seconds())
		case pipeline.ToolCallFailed:
			toolCalls.WithLabelValues(ev.Tool, "failed").Inc()
			toolDuration.WithLabelValues(ev.Tool).Observe(ev.Duration.Seconds())
		case pipeline.ToolCallValidationFailed:
			toolCalls.WithLabelValues(ev.Tool, "validation_failed").Inc()
		}
	})
}
