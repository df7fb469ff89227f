// Package pipeline is the interception bus of the runtime: typed lifecycle
// events delivered synchronously to listeners installed before a run begins.
// Features attach observability and testing concerns here without touching
// the interpreter.
package pipeline

// Pipeline holds, per event kind, an ordered list of listeners.
// Listeners run synchronously in registration order; the pipeline does not
// recover listener panics. Registration follows a construct-then-freeze
// discipline: Freeze is called once when the run starts, after which any
// further registration panics.
type Pipeline struct {
	frozen bool

	agent     []func(*AgentEvent)
	strategy  []func(*StrategyEvent)
	node      []func(*NodeEvent)
	subgraph  []func(*SubgraphEvent)
	llmCall   []func(*LLMCallEvent)
	toolCall  []func(*ToolCallEvent)
	streaming []func(*StreamingEvent)
}

// New creates an empty pipeline.
func New() *Pipeline {
	return &Pipeline{}
}

// Freeze seals the pipeline against further registration.
func (p *Pipeline) Freeze() {
	p.frozen = true
}

func (p *Pipeline) checkMutable() {
	if p.frozen {
		panic("pipeline: listener registration after the run has started")
	}
}

// InterceptAgentEvents registers a listener for agent lifecycle events.
func (p *Pipeline) InterceptAgentEvents(fn func(*AgentEvent)) {
	p.checkMutable()
	p.agent = append(p.agent, fn)
}

// InterceptStrategyEvents registers a listener for strategy events.
func (p *Pipeline) InterceptStrategyEvents(fn func(*StrategyEvent)) {
	p.checkMutable()
	p.strategy = append(p.strategy, fn)
}

// InterceptNodeEvents registers a listener for node execution events.
func (p *Pipeline) InterceptNodeEvents(fn func(*NodeEvent)) {
	p.checkMutable()
	p.node = append(p.node, fn)
}

// InterceptSubgraphEvents registers a listener for subgraph execution events.
func (p *Pipeline) InterceptSubgraphEvents(fn func(*SubgraphEvent)) {
	p.checkMutable()
	p.subgraph = append(p.subgraph, fn)
}

// InterceptLLMCallEvents registers a listener for model call events.
func (p *Pipeline) InterceptLLMCallEvents(fn func(*LLMCallEvent)) {
	p.checkMutable()
	p.llmCall = append(p.llmCall, fn)
}

// InterceptToolCallEvents registers a listener for tool invocation events.
func (p *Pipeline) InterceptToolCallEvents(fn func(*ToolCallEvent)) {
	p.checkMutable()
	p.toolCall = append(p.toolCall, fn)
}

// InterceptStreamingEvents registers a listener for streaming events.
func (p *Pipeline) InterceptStreamingEvents(fn func(*StreamingEvent)) {
	p.checkMutable()
	p.streaming = append(p.streaming, fn)
}

// OnAgentEvent delivers an agent event to every listener in order.
func (p *Pipeline) OnAgentEvent(ev *AgentEvent) {
	for _, fn := range p.agent {
		fn(ev)
	}
}

// OnStrategyEvent delivers a strategy event to every listener in order.
func (p *Pipeline) OnStrategyEvent(ev *StrategyEvent) {
	for _, fn := range p.strategy {
		fn(ev)
	}
}

// OnNodeEvent delivers a node event to every listener in order.
func (p *Pipeline) OnNodeEvent(ev *NodeEvent) {
	for _, fn := range p.node {
		fn(ev)
	}
}

// OnSubgraphEvent delivers a subgraph event to every listener in order.
func (p *Pipeline) OnSubgraphEvent(ev *SubgraphEvent) {
	for _, fn := range p.subgraph {
		fn(ev)
	}
}

// OnLLMCallEvent delivers a model call event to every listener in order.
func (p *Pipeline) OnLLMCallEvent(ev *LLMCallEvent) {
	for _, fn := range p.llmCall {
		fn(ev)
	}
}

// OnToolCallEvent delivers a tool call event to every listener in order.
func (p *Pipeline) OnToolCallEvent(ev *ToolCallEvent) {
	for _, fn := range p.toolCall {
		fn(ev)
	}
}

// OnStreamingEvent delivers a streaming event to every listener in order.
func (p *Pipeline) OnStreamingEvent(ev *StreamingEvent) {
	for _, fn := range p.streaming {
		fn(ev)
	}
}
