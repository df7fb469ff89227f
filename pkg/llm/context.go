// Package llm holds the mutable conversation state shared by every branch
// of a run: the prompt log, the tool list visible to the model, the active
// model identifier and the executor capability. State only changes through
// an exclusive write session; read sessions may run concurrently.
package llm

import (
	"sync"

	"github.com/aretw0/arbor/pkg/executor"
	"github.com/aretw0/arbor/pkg/pipeline"
	"github.com/aretw0/arbor/pkg/prompt"
	"github.com/aretw0/arbor/pkg/tool"
)

// Context is the conversation handle. One reader-writer lock per instance;
// sessions must not be nested by the same call path (the lock is not
// reentrant).
type Context struct {
	mu     sync.RWMutex
	prompt prompt.Prompt
	tools  []tool.Descriptor
	model  string

	executor executor.PromptExecutor

	// Event wiring, set once at run construction.
	events  *pipeline.Pipeline
	agentID string
	runID   string
}

// Option configures the Context.
type Option func(*Context)

// WithEvents wires the context's model calls to a pipeline.
func WithEvents(p *pipeline.Pipeline, agentID, runID string) Option {
	return func(c *Context) {
		c.events = p
		c.agentID = agentID
		c.runID = runID
	}
}

// New creates a conversation context seeded with the given state.
func New(exec executor.PromptExecutor, p prompt.Prompt, tools []tool.Descriptor, model string, opts ...Option) *Context {
	c := &Context{
		prompt:   p.Clone(),
		tools:    append([]tool.Descriptor(nil), tools...),
		model:    model,
		executor: exec,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Clone returns an independent deep copy sharing only the executor and
// event wiring. Used when a branch forks.
func (c *Context) Clone() *Context {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return &Context{
		prompt:   c.prompt.Clone(),
		tools:    append([]tool.Descriptor(nil), c.tools...),
		model:    c.model,
		executor: c.executor,
		events:   c.events,
		agentID:  c.agentID,
		runID:    c.runID,
	}
}

// Prompt returns a copy of the current prompt log.
func (c *Context) Prompt() prompt.Prompt {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.prompt.Clone()
}

// Tools returns a copy of the tool list currently visible to the model.
func (c *Context) Tools() []tool.Descriptor {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]tool.Descriptor(nil), c.tools...)
}

// Model returns the active model identifier.
func (c *Context) Model() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.model
}

// Executor returns the executor capability.
func (c *Context) Executor() executor.PromptExecutor {
	return c.executor
}
