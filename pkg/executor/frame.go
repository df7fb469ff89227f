package executor

import "github.com/aretw0/arbor/pkg/prompt"

// FrameKind identifies the variant of a streamed frame.
type FrameKind string

const (
	// FrameAppend carries a text delta.
	FrameAppend FrameKind = "append"
	// FrameToolCallDelta carries an incremental tool-call fragment.
	FrameToolCallDelta FrameKind = "tool_call_delta"
	// FrameEnd terminates the stream.
	FrameEnd FrameKind = "end"
)

// ToolCallDelta is an incremental update to a streamed tool call.
// Index identifies which call is being updated; ID and Name arrive once,
// Arguments fragments arrive incrementally and must be concatenated.
type ToolCallDelta struct {
	Index     int    `json:"index"`
	ID        string `json:"id,omitempty"`
	Name      string `json:"name,omitempty"`
	Arguments string `json:"arguments,omitempty"`
}

// Frame is one incremental unit of a streamed model response.
// Exactly one payload is populated depending on Kind.
type Frame struct {
	Kind         FrameKind         `json:"kind"`
	Text         string            `json:"text,omitempty"`
	Delta        *ToolCallDelta    `json:"delta,omitempty"`
	FinishReason string            `json:"finish_reason,omitempty"`
	Usage        prompt.TokenUsage `json:"usage,omitzero"`
}

// Append builds a text delta frame.
func Append(text string) Frame {
	return Frame{Kind: FrameAppend, Text: text}
}

// Delta builds a tool-call delta frame.
func Delta(d ToolCallDelta) Frame {
	return Frame{Kind: FrameToolCallDelta, Delta: &d}
}

// End builds a stream end frame.
func End(finishReason string, usage prompt.TokenUsage) Frame {
	return Frame{Kind: FrameEnd, FinishReason: finishReason, Usage: usage}
}
