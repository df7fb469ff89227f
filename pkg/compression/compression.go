// Package compression shrinks an overlong conversation into a summarized
// form while preserving invariant message classes: system messages and the
// first user message survive verbatim as a prefix, trailing unanswered
// tool-call messages survive verbatim as a suffix, and the remainder is
// replaced by model-produced summaries.
package compression

import (
	"context"
	"fmt"
	"time"

	"github.com/aretw0/arbor/pkg/llm"
	"github.com/aretw0/arbor/pkg/prompt"
)

// Strategy compresses the conversation held by a write session. The
// memory messages (long-term memory recalled for the run) are inserted
// between the preserved prefix and the summaries.
type Strategy interface {
	Compress(ctx context.Context, s *llm.WriteSession, memory []prompt.Message) error
}

const summaryInstruction = "Summarize the conversation above into a concise TL;DR. " +
	"Preserve every fact, decision and constraint needed to continue the task."

// split partitions the conversation into the preserved prefix (system
// messages in original order plus the first user message), the working
// middle (system messages kept in place as block boundaries) and the
// trailing run of not-yet-answered tool-call messages.
func split(messages []prompt.Message) (preserved, working, trailing []prompt.Message) {
	end := len(messages)
	for end > 0 && messages[end-1].Kind == prompt.KindToolCall {
		end--
	}
	trailing = messages[end:]

	firstUser := -1
	for i, m := range messages[:end] {
		if m.Kind == prompt.KindSystem {
			preserved = append(preserved, m)
		} else if m.Kind == prompt.KindUser && firstUser < 0 {
			firstUser = i
		}
	}
	if firstUser >= 0 {
		preserved = append(preserved, messages[firstUser])
	}

	for i, m := range messages[:end] {
		if i == firstUser {
			continue
		}
		working = append(working, m)
	}
	return preserved, working, trailing
}

// splitAtSystems cuts the working slice into blocks at each system-message
// boundary, dropping the system markers themselves.
func splitAtSystems(working []prompt.Message) [][]prompt.Message {
	var blocks [][]prompt.Message
	var current []prompt.Message
	for _, m := range working {
		if m.Kind == prompt.KindSystem {
			if len(current) > 0 {
				blocks = append(blocks, current)
				current = nil
			}
			continue
		}
		current = append(current, m)
	}
	if len(current) > 0 {
		blocks = append(blocks, current)
	}
	return blocks
}

// nonSystem drops the system boundary markers from the working slice.
func nonSystem(working []prompt.Message) []prompt.Message {
	out := make([]prompt.Message, 0, len(working))
	for _, m := range working {
		if m.Kind != prompt.KindSystem {
			out = append(out, m)
		}
	}
	return out
}

// summarize issues one model call without tools against a synthetic
// instruction and returns the summary as an assistant message.
func summarize(ctx context.Context, s *llm.WriteSession, block []prompt.Message) (prompt.Message, error) {
	p := prompt.New().Append(block...).Append(prompt.NewUser(summaryInstruction))
	responses, err := s.ExecuteDetached(ctx, p)
	if err != nil {
		return prompt.Message{}, fmt.Errorf("summarization call failed: %w", err)
	}
	for _, m := range responses {
		if m.Kind == prompt.KindAssistant {
			return prompt.NewAssistant(m.Content), nil
		}
	}
	return prompt.Message{}, fmt.Errorf("summarization call returned no assistant message")
}

// compress rebuilds the session prompt from the preserved prefix, the
// memory messages, one summary per selected block, and the trailing
// tool-call suffix.
func compress(ctx context.Context, s *llm.WriteSession, memory []prompt.Message, blocks func(working []prompt.Message) [][]prompt.Message) error {
	preserved, working, trailing := split(s.Prompt.Messages)

	var summaries []prompt.Message
	for _, block := range blocks(working) {
		if len(block) == 0 {
			continue
		}
		summary, err := summarize(ctx, s, block)
		if err != nil {
			return err
		}
		summaries = append(summaries, summary)
	}

	rebuilt := make([]prompt.Message, 0, len(preserved)+len(memory)+len(summaries)+len(trailing))
	rebuilt = append(rebuilt, preserved...)
	rebuilt = append(rebuilt, memory...)
	rebuilt = append(rebuilt, summaries...)
	rebuilt = append(rebuilt, trailing...)
	s.Prompt = prompt.New(rebuilt...)
	return nil
}

// WholeHistory summarizes the entire compressible history in one shot.
type WholeHistory struct{}

func (WholeHistory) Compress(ctx context.Context, s *llm.WriteSession, memory []prompt.Message) error {
	return compress(ctx, s, memory, func(working []prompt.Message) [][]prompt.Message {
		return [][]prompt.Message{nonSystem(working)}
	})
}

// SystemChunks summarizes the history as independent blocks split at each
// system-message boundary, for multi-system-prompt conversations.
type SystemChunks struct{}

func (SystemChunks) Compress(ctx context.Context, s *llm.WriteSession, memory []prompt.Message) error {
	return compress(ctx, s, memory, splitAtSystems)
}

// LastN summarizes only the last N compressible messages; older ones are
// dropped.
type LastN struct {
	N int
}

func (c LastN) Compress(ctx context.Context, s *llm.WriteSession, memory []prompt.Message) error {
	return compress(ctx, s, memory, func(working []prompt.Message) [][]prompt.Message {
		body := nonSystem(working)
		if c.N < len(body) {
			body = body[len(body)-c.N:]
		}
		return [][]prompt.Message{body}
	})
}

// FromTimestamp summarizes only the messages at or after the cutoff; older
// ones are dropped.
type FromTimestamp struct {
	At time.Time
}

func (c FromTimestamp) Compress(ctx context.Context, s *llm.WriteSession, memory []prompt.Message) error {
	return compress(ctx, s, memory, func(working []prompt.Message) [][]prompt.Message {
		var recent []prompt.Message
		for _, m := range nonSystem(working) {
			if !m.Timestamp.Before(c.At) {
				recent = append(recent, m)
			}
		}
		return [][]prompt.Message{recent}
	})
}

// FixedWindows summarizes the history chunked into fixed-size windows,
// each summarized independently.
type FixedWindows struct {
	Size int
}

func (c FixedWindows) Compress(ctx context.Context, s *llm.WriteSession, memory []prompt.Message) error {
	size := c.Size
	if size <= 0 {
		size = 1
	}
	return compress(ctx, s, memory, func(working []prompt.Message) [][]prompt.Message {
		body := nonSystem(working)
		var blocks [][]prompt.Message
		for start := 0; start < len(body); start += size {
			stop := min(start+size, len(body))
			blocks = append(blocks, body[start:stop])
		}
		return blocks
	})
}
