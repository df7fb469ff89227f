package agent

import (
	"sync"

	"github.com/aretw0/arbor/pkg/environment"
	"github.com/aretw0/arbor/pkg/llm"
	"github.com/aretw0/arbor/pkg/pipeline"
)

// Context is the per-run bundle passed to every node body. Contexts form a
// parent/child chain when subgraphs open nested scopes; a forked branch
// owns full clones of the mutable fields and holds only a non-owning
// back-reference to its parent.
type Context struct {
	env      environment.Environment
	agentID  string
	runID    string
	input    any
	config   Config
	strategy string
	events   *pipeline.Pipeline
	parent   *Context

	// mu guards the swappable mutable fields (Replace).
	mu      sync.Mutex
	llm     *llm.Context
	state   *StateMachine
	storage *Storage

	iterations *iterationCounter
}

// iterationCounter is shared along a scope chain but cloned on fork.
type iterationCounter struct {
	mu    sync.Mutex
	count int
}

func (c *iterationCounter) next() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.count++
	return c.count
}

func (c *iterationCounter) clone() *iterationCounter {
	c.mu.Lock()
	defer c.mu.Unlock()
	return &iterationCounter{count: c.count}
}

// Environment returns the tool execution capability.
func (c *Context) Environment() environment.Environment { return c.env }

// AgentID returns the identity of the agent owning this run.
func (c *Context) AgentID() string { return c.agentID }

// RunID returns the identifier of this run.
func (c *Context) RunID() string { return c.runID }

// Input returns the run's original input.
func (c *Context) Input() any { return c.input }

// Config returns the run configuration.
func (c *Context) Config() Config { return c.config }

// StrategyName returns the name of the strategy being executed.
func (c *Context) StrategyName() string { return c.strategy }

// Pipeline returns the event pipeline for this run.
func (c *Context) Pipeline() *pipeline.Pipeline { return c.events }

// Parent returns the enclosing scope, if any.
func (c *Context) Parent() *Context { return c.parent }

// Root walks the parent chain to the run's outermost context.
func (c *Context) Root() *Context {
	root := c
	for root.parent != nil {
		root = root.parent
	}
	return root
}

// LLM returns the conversation handle.
func (c *Context) LLM() *llm.Context {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.llm
}

// State returns the run's state machine.
func (c *Context) State() *StateMachine {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Storage returns the run's key/value side channel.
func (c *Context) Storage() *Storage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.storage
}

// NextIteration advances the run's iteration counter, failing once the
// configured ceiling is exceeded.
func (c *Context) NextIteration() error {
	if n := c.iterations.next(); n > c.config.MaxIterations {
		return &IterationLimitError{Limit: c.config.MaxIterations}
	}
	return nil
}

// Fork produces an independent deep copy for a parallel branch: the
// conversation, state machine and storage are cloned so the branch can
// mutate without racing the original.
func (c *Context) Fork() *Context {
	c.mu.Lock()
	defer c.mu.Unlock()

	return &Context{
		env:        c.env,
		agentID:    c.agentID,
		runID:      c.runID,
		input:      c.input,
		config:     c.config,
		strategy:   c.strategy,
		events:     c.events,
		parent:     c,
		llm:        c.llm.Clone(),
		state:      c.state.Clone(),
		storage:    c.storage.Clone(),
		iterations: c.iterations.clone(),
	}
}

// Replace atomically adopts the other context's mutable state (conversation,
// state machine, storage), used when one branch's outcome becomes
// authoritative for this context.
func (c *Context) Replace(other *Context) {
	other.mu.Lock()
	llmCtx, state, storage := other.llm, other.state, other.storage
	other.mu.Unlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.llm = llmCtx
	c.state = state
	c.storage = storage
}

// childScope opens a nested scope for a subgraph. The child shares the
// mutable fields and can always reach its root.
func (c *Context) childScope() *Context {
	c.mu.Lock()
	defer c.mu.Unlock()

	return &Context{
		env:        c.env,
		agentID:    c.agentID,
		runID:      c.runID,
		input:      c.input,
		config:     c.config,
		strategy:   c.strategy,
		events:     c.events,
		parent:     c,
		llm:        c.llm,
		state:      c.state,
		storage:    c.storage,
		iterations: c.iterations,
	}
}
