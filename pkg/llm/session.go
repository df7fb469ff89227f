package llm

import (
	"context"
	"iter"
	"time"

	"github.com/aretw0/arbor/pkg/executor"
	"github.com/aretw0/arbor/pkg/pipeline"
	"github.com/aretw0/arbor/pkg/prompt"
	"github.com/aretw0/arbor/pkg/tool"
)

// ReadSession is a read-only view of the conversation state, valid only for
// the duration of the ReadSession block.
type ReadSession struct {
	Prompt prompt.Prompt
	Tools  []tool.Descriptor
	Model  string

	owner *Context
}

// WriteSession is a mutable view seeded from current state. When the block
// returns nil, the view's prompt, tools and model are committed back onto
// the shared context; a failed block discards its view.
type WriteSession struct {
	Prompt prompt.Prompt
	Tools  []tool.Descriptor
	Model  string

	owner *Context
}

// ReadSession acquires a shared lock, runs the block against a read-only
// view and releases the lock. Concurrent read sessions are allowed.
func (c *Context) ReadSession(ctx context.Context, block func(s ReadSession) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	return block(ReadSession{
		Prompt: c.prompt.Clone(),
		Tools:  append([]tool.Descriptor(nil), c.tools...),
		Model:  c.model,
		owner:  c,
	})
}

// WriteSession acquires the exclusive lock, waiting for all readers and
// other writers, runs the block against a mutable view and commits the
// resulting state on success. This is the only way conversation state
// changes.
func (c *Context) WriteSession(ctx context.Context, block func(s *WriteSession) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	session := &WriteSession{
		Prompt: c.prompt.Clone(),
		Tools:  append([]tool.Descriptor(nil), c.tools...),
		Model:  c.model,
		owner:  c,
	}
	if err := block(session); err != nil {
		return err
	}

	c.prompt = session.Prompt
	c.tools = session.Tools
	c.model = session.Model
	return nil
}

// Execute runs the viewed prompt against the model without recording the
// responses.
func (s ReadSession) Execute(ctx context.Context) ([]prompt.Message, error) {
	return s.owner.call(ctx, s.Prompt, s.Model, s.Tools)
}

// Moderate classifies the viewed prompt.
func (s ReadSession) Moderate(ctx context.Context) (executor.ModerationResult, error) {
	return s.owner.executor.Moderate(ctx, s.Prompt, s.Model)
}

// AppendMessage adds messages to the session's prompt view.
func (s *WriteSession) AppendMessage(messages ...prompt.Message) {
	s.Prompt = s.Prompt.Append(messages...)
}

// SetModel switches the active model for subsequent calls.
func (s *WriteSession) SetModel(model string) {
	s.Model = model
}

// SetTools replaces the tool list visible to the model.
func (s *WriteSession) SetTools(tools []tool.Descriptor) {
	s.Tools = append([]tool.Descriptor(nil), tools...)
}

// RequestLLM sends the session prompt with the session tool list, appends
// the responses to the view and returns them.
func (s *WriteSession) RequestLLM(ctx context.Context) ([]prompt.Message, error) {
	responses, err := s.owner.call(ctx, s.Prompt, s.Model, s.Tools)
	if err != nil {
		return nil, err
	}
	s.Prompt = s.Prompt.Append(responses...)
	return responses, nil
}

// ExecuteDetached runs an arbitrary prompt against the session's model with
// no tools and without touching the session view. History compression uses
// this for its summarization call.
func (s *WriteSession) ExecuteDetached(ctx context.Context, p prompt.Prompt) ([]prompt.Message, error) {
	return s.owner.call(ctx, p, s.Model, nil)
}

// ExecuteStreaming streams a response to the session prompt. The caller is
// responsible for assembling frames and appending the finished message.
func (s *WriteSession) ExecuteStreaming(ctx context.Context) iter.Seq2[executor.Frame, error] {
	return s.owner.executor.ExecuteStreaming(ctx, s.Prompt, s.Model, s.Tools)
}

// Moderate classifies the session prompt.
func (s *WriteSession) Moderate(ctx context.Context) (executor.ModerationResult, error) {
	return s.owner.executor.Moderate(ctx, s.Prompt, s.Model)
}

// call executes the prompt and raises LLM call pipeline events around it.
func (c *Context) call(ctx context.Context, p prompt.Prompt, model string, tools []tool.Descriptor) ([]prompt.Message, error) {
	names := make([]string, len(tools))
	for i, d := range tools {
		names[i] = d.Name
	}

	started := time.Now()
	if c.events != nil {
		c.events.OnLLMCallEvent(&pipeline.LLMCallEvent{
			Kind:      pipeline.LLMCallStarting,
			AgentID:   c.agentID,
			RunID:     c.runID,
			Model:     model,
			Tools:     names,
			Timestamp: started,
		})
	}

	responses, err := c.executor.Execute(ctx, p, model, tools)
	if err != nil {
		return nil, err
	}

	if c.events != nil {
		c.events.OnLLMCallEvent(&pipeline.LLMCallEvent{
			Kind:      pipeline.LLMCallCompleted,
			AgentID:   c.agentID,
			RunID:     c.runID,
			Model:     model,
			Tools:     names,
			Responses: responses,
			Duration:  time.Since(started),
			Timestamp: time.Now(),
		})
	}
	return responses, nil
}
