package streaming_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/arbor/pkg/executor"
	"github.com/aretw0/arbor/pkg/executor/executortest"
	"github.com/aretw0/arbor/pkg/pipeline"
	"github.com/aretw0/arbor/pkg/prompt"
	"github.com/aretw0/arbor/pkg/streaming"
)

func collect(t *testing.T, turn executortest.Turn) (prompt.Message, []pipeline.EventKind, error) {
	t.Helper()

	p := pipeline.New()
	var kinds []pipeline.EventKind
	p.InterceptStreamingEvents(func(ev *pipeline.StreamingEvent) {
		kinds = append(kinds, ev.Kind)
	})

	model := executortest.NewScripted(turn)
	consumer := streaming.NewConsumer(p, "agent-1", "run-1", "test-model")
	frames := model.ExecuteStreaming(context.Background(), prompt.New(), "test-model", nil)
	message, err := consumer.Collect(context.Background(), frames)
	return message, kinds, err
}

func TestCollect_AssemblesText(t *testing.T) {
	message, kinds, err := collect(t, executortest.Turn{Frames: []executor.Frame{
		executor.Append("Hello"),
		executor.Append(", "),
		executor.Append("world"),
		executor.End("stop", prompt.TokenUsage{}),
	}})
	require.NoError(t, err)

	assert.Equal(t, prompt.KindAssistant, message.Kind)
	assert.Equal(t, "Hello, world", message.Content)
	assert.Equal(t, []pipeline.EventKind{
		pipeline.StreamingStarting,
		pipeline.StreamingFrameReceived,
		pipeline.StreamingFrameReceived,
		pipeline.StreamingFrameReceived,
		pipeline.StreamingFrameReceived,
		pipeline.StreamingCompleted,
	}, kinds)
}

func TestCollect_AssemblesToolCallsByIndex(t *testing.T) {
	message, _, err := collect(t, executortest.Turn{Frames: []executor.Frame{
		executor.Delta(executor.ToolCallDelta{Index: 1, ID: "c2", Name: "translate"}),
		executor.Delta(executor.ToolCallDelta{Index: 0, ID: "c1", Name: "search", Arguments: `{"q":`}),
		executor.Delta(executor.ToolCallDelta{Index: 0, Arguments: `"weather"}`}),
		executor.Delta(executor.ToolCallDelta{Index: 1, Arguments: `{}`}),
		executor.End("stop", prompt.TokenUsage{}),
	}})
	require.NoError(t, err)

	assert.Equal(t, prompt.KindToolCall, message.Kind)
	require.Len(t, message.ToolCalls, 2)
	assert.Equal(t, prompt.ToolCall{ID: "c1", Name: "search", Arguments: `{"q":"weather"}`}, message.ToolCalls[0])
	assert.Equal(t, prompt.ToolCall{ID: "c2", Name: "translate", Arguments: `{}`}, message.ToolCalls[1])
}

func TestCollect_MissingEndFrameFails(t *testing.T) {
	_, kinds, err := collect(t, executortest.Turn{Frames: []executor.Frame{
		executor.Append("partial"),
	}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "without an end frame")
	assert.Equal(t, pipeline.StreamingFailed, kinds[len(kinds)-1])
}

func TestCollect_MidStreamErrorPropagates(t *testing.T) {
	boom := errors.New("connection reset")
	_, kinds, err := collect(t, executortest.Turn{
		Frames: []executor.Frame{executor.Append("par")},
		Err:    boom,
	})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, pipeline.StreamingFailed, kinds[len(kinds)-1])
}

func TestCollect_CancelledContextFails(t *testing.T) {
	p := pipeline.New()
	model := executortest.NewScripted(executortest.Turn{Frames: []executor.Frame{
		executor.Append("a"), executor.End("stop", prompt.TokenUsage{}),
	}})
	consumer := streaming.NewConsumer(p, "agent-1", "run-1", "test-model")

	ctx, cancel := context.WithCancel(context.Background())
	frames := model.ExecuteStreaming(ctx, prompt.New(), "test-model", nil)
	cancel()

	_, err := consumer.Collect(ctx, frames)
	assert.ErrorIs(t, err, context.Canceled)
}
