// Package streaming assembles incremental model output frames into
// discrete messages, raising streaming pipeline events along the way.
package streaming

import (
	"context"
	"fmt"
	"iter"
	"sort"
	"strings"
	"time"

	"github.com/aretw0/arbor/pkg/executor"
	"github.com/aretw0/arbor/pkg/pipeline"
	"github.com/aretw0/arbor/pkg/prompt"
)

// Consumer accumulates text deltas and per-index tool-call fragments until
// the end frame, then emits the finished message.
type Consumer struct {
	events  *pipeline.Pipeline
	agentID string
	runID   string
	model   string
}

// NewConsumer creates a consumer wired to the given pipeline.
func NewConsumer(events *pipeline.Pipeline, agentID, runID, model string) *Consumer {
	return &Consumer{events: events, agentID: agentID, runID: runID, model: model}
}

type partialCall struct {
	index int
	id    string
	name  string
	args  strings.Builder
}

// Collect drains the frame sequence and returns the assembled message: an
// assistant text message, or a tool-call message when any tool-call deltas
// arrived. A mid-stream error raises a streaming-failed event and
// propagates.
func (c *Consumer) Collect(ctx context.Context, frames iter.Seq2[executor.Frame, error]) (prompt.Message, error) {
	c.emit(pipeline.StreamingStarting, nil, nil)

	var text strings.Builder
	calls := make(map[int]*partialCall)
	ended := false

	for frame, err := range frames {
		if err == nil {
			err = ctx.Err()
		}
		if err != nil {
			c.emit(pipeline.StreamingFailed, nil, err)
			return prompt.Message{}, err
		}

		c.emit(pipeline.StreamingFrameReceived, &frame, nil)

		switch frame.Kind {
		case executor.FrameAppend:
			text.WriteString(frame.Text)

		case executor.FrameToolCallDelta:
			d := frame.Delta
			if d == nil {
				continue
			}
			call, ok := calls[d.Index]
			if !ok {
				call = &partialCall{index: d.Index}
				calls[d.Index] = call
			}
			if d.ID != "" {
				call.id = d.ID
			}
			if d.Name != "" {
				call.name = d.Name
			}
			call.args.WriteString(d.Arguments)

		case executor.FrameEnd:
			ended = true
		}

		if ended {
			break
		}
	}

	if !ended {
		err := fmt.Errorf("stream ended without an end frame")
		c.emit(pipeline.StreamingFailed, nil, err)
		return prompt.Message{}, err
	}

	message := assemble(text.String(), calls)
	c.emit(pipeline.StreamingCompleted, nil, nil)
	return message, nil
}

func assemble(text string, calls map[int]*partialCall) prompt.Message {
	if len(calls) == 0 {
		return prompt.NewAssistant(text)
	}

	ordered := make([]*partialCall, 0, len(calls))
	for _, call := range calls {
		ordered = append(ordered, call)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].index < ordered[j].index })

	toolCalls := make([]prompt.ToolCall, len(ordered))
	for i, call := range ordered {
		toolCalls[i] = prompt.ToolCall{
			ID:        call.id,
			Name:      call.name,
			Arguments: call.args.String(),
		}
	}
	message := prompt.NewToolCall(toolCalls...)
	message.Content = text
	return message
}

func (c *Consumer) emit(kind pipeline.EventKind, frame *executor.Frame, err error) {
	ev := &pipeline.StreamingEvent{
		Kind:      kind,
		AgentID:   c.agentID,
		RunID:     c.runID,
		Model:     c.model,
		Frame:     frame,
		Timestamp: time.Now(),
	}
	if err != nil {
		ev.Error = err.Error()
	}
	c.events.OnStreamingEvent(ev)
}
