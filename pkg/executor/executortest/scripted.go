// Package executortest provides a deterministic PromptExecutor for tests.
package executortest

import (
	"context"
	"fmt"
	"iter"
	"sync"

	"github.com/aretw0/arbor/pkg/executor"
	"github.com/aretw0/arbor/pkg/prompt"
	"github.com/aretw0/arbor/pkg/tool"
)

// Turn configures one model turn in a scripted sequence.
type Turn struct {
	Messages []prompt.Message
	Frames   []executor.Frame
	Err      error
}

// Scripted replays a fixed sequence of turns. Execute and ExecuteStreaming
// consume the same script, one turn per call, and record every prompt they
// received for assertions.
type Scripted struct {
	mu         sync.Mutex
	index      int
	turns      []Turn
	prompts    []prompt.Prompt
	moderation executor.ModerationResult
}

var _ executor.PromptExecutor = (*Scripted)(nil)

// NewScripted creates a scripted executor from the given turns.
func NewScripted(turns ...Turn) *Scripted {
	cloned := make([]Turn, len(turns))
	copy(cloned, turns)
	return &Scripted{turns: cloned}
}

// SetModeration configures the result returned by Moderate.
func (s *Scripted) SetModeration(result executor.ModerationResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.moderation = result
}

func (s *Scripted) next(p prompt.Prompt) (Turn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.prompts = append(s.prompts, p.Clone())
	if s.index >= len(s.turns) {
		return Turn{}, fmt.Errorf("script exhausted at turn %d", s.index+1)
	}
	turn := s.turns[s.index]
	s.index++
	return turn, nil
}

func (s *Scripted) Execute(_ context.Context, p prompt.Prompt, _ string, _ []tool.Descriptor) ([]prompt.Message, error) {
	turn, err := s.next(p)
	if err != nil {
		return nil, err
	}
	if turn.Err != nil {
		return nil, turn.Err
	}
	out := make([]prompt.Message, len(turn.Messages))
	for i, m := range turn.Messages {
		out[i] = m.Clone()
	}
	return out, nil
}

func (s *Scripted) ExecuteStreaming(_ context.Context, p prompt.Prompt, _ string, _ []tool.Descriptor) iter.Seq2[executor.Frame, error] {
	turn, err := s.next(p)
	return func(yield func(executor.Frame, error) bool) {
		if err != nil {
			yield(executor.Frame{}, err)
			return
		}
		for _, f := range turn.Frames {
			if !yield(f, nil) {
				return
			}
		}
		if turn.Err != nil {
			yield(executor.Frame{}, turn.Err)
		}
	}
}

func (s *Scripted) Moderate(context.Context, prompt.Prompt, string) (executor.ModerationResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.moderation, nil
}

// Calls returns the number of turns consumed so far.
func (s *Scripted) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index
}

// Prompts returns copies of every prompt the executor received.
func (s *Scripted) Prompts() []prompt.Prompt {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]prompt.Prompt, len(s.prompts))
	copy(out, s.prompts)
	return out
}
