package pipeline

import (
	"time"

	"github.com/aretw0/arbor/pkg/executor"
	"github.com/aretw0/arbor/pkg/prompt"
	"github.com/aretw0/arbor/pkg/tool"
)

// EventKind names every lifecycle event the pipeline can raise.
type EventKind string

const (
	AgentStarting        EventKind = "agent_starting"
	AgentCompleted       EventKind = "agent_completed"
	AgentExecutionFailed EventKind = "agent_execution_failed"
	AgentClosing         EventKind = "agent_closing"

	StrategyStarting  EventKind = "strategy_starting"
	StrategyCompleted EventKind = "strategy_completed"

	NodeExecutionStarting  EventKind = "node_execution_starting"
	NodeExecutionCompleted EventKind = "node_execution_completed"
	NodeExecutionFailed    EventKind = "node_execution_failed"

	SubgraphExecutionStarting  EventKind = "subgraph_execution_starting"
	SubgraphExecutionCompleted EventKind = "subgraph_execution_completed"
	SubgraphExecutionFailed    EventKind = "subgraph_execution_failed"

	LLMCallStarting  EventKind = "llm_call_starting"
	LLMCallCompleted EventKind = "llm_call_completed"

	ToolCallStarting         EventKind = "tool_call_starting"
	ToolCallValidationFailed EventKind = "tool_call_validation_failed"
	ToolCallFailed           EventKind = "tool_call_failed"
	ToolCallCompleted        EventKind = "tool_call_completed"

	StreamingStarting      EventKind = "streaming_starting"
	StreamingFrameReceived EventKind = "streaming_frame_received"
	StreamingFailed        EventKind = "streaming_failed"
	StreamingCompleted     EventKind = "streaming_completed"
)

// AgentEvent is the snapshot delivered for agent lifecycle events.
type AgentEvent struct {
	Kind      EventKind `json:"kind"`
	AgentID   string    `json:"agent_id"`
	RunID     string    `json:"run_id"`
	Strategy  string    `json:"strategy"`
	Input     any       `json:"input,omitempty"`
	Output    any       `json:"output,omitempty"`
	Error     string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// StrategyEvent is the snapshot delivered for strategy lifecycle events.
type StrategyEvent struct {
	Kind      EventKind `json:"kind"`
	AgentID   string    `json:"agent_id"`
	RunID     string    `json:"run_id"`
	Strategy  string    `json:"strategy"`
	Input     any       `json:"input,omitempty"`
	Output    any       `json:"output,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NodeEvent is the snapshot delivered for node execution events.
type NodeEvent struct {
	Kind      EventKind     `json:"kind"`
	AgentID   string        `json:"agent_id"`
	RunID     string        `json:"run_id"`
	Node      string        `json:"node"`
	Input     any           `json:"input,omitempty"`
	Output    any           `json:"output,omitempty"`
	Error     string        `json:"error,omitempty"`
	Duration  time.Duration `json:"duration,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
}

// SubgraphEvent is the snapshot delivered for subgraph execution events.
type SubgraphEvent struct {
	Kind      EventKind `json:"kind"`
	AgentID   string    `json:"agent_id"`
	RunID     string    `json:"run_id"`
	Subgraph  string    `json:"subgraph"`
	Input     any       `json:"input,omitempty"`
	Output    any       `json:"output,omitempty"`
	Error     string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// LLMCallEvent is the snapshot delivered around one model call.
type LLMCallEvent struct {
	Kind      EventKind        `json:"kind"`
	AgentID   string           `json:"agent_id"`
	RunID     string           `json:"run_id"`
	Model     string           `json:"model"`
	Tools     []string         `json:"tools,omitempty"`
	Responses []prompt.Message `json:"responses,omitempty"`
	Duration  time.Duration    `json:"duration,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
}

// ToolCallEvent is the snapshot delivered around one tool invocation.
type ToolCallEvent struct {
	Kind      EventKind            `json:"kind"`
	AgentID   string               `json:"agent_id"`
	RunID     string               `json:"run_id"`
	Tool      string               `json:"tool"`
	CallID    string               `json:"call_id"`
	Args      map[string]any       `json:"args,omitempty"`
	Result    *tool.ReceivedResult `json:"result,omitempty"`
	Error     string               `json:"error,omitempty"`
	Duration  time.Duration        `json:"duration,omitempty"`
	Timestamp time.Time            `json:"timestamp"`
}

// StreamingEvent is the snapshot delivered for streaming lifecycle events.
type StreamingEvent struct {
	Kind      EventKind       `json:"kind"`
	AgentID   string          `json:"agent_id"`
	RunID     string          `json:"run_id"`
	Model     string          `json:"model"`
	Frame     *executor.Frame `json:"frame,omitempty"`
	Error     string          `json:"error,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}
