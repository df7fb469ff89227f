// Package executor defines the capability the runtime consumes to talk to a
// language model. Any HTTP/SSE/gRPC client satisfying PromptExecutor is
// pluggable; the runtime is agnostic to the wire format.
package executor

import (
	"context"
	"iter"

	"github.com/aretw0/arbor/pkg/prompt"
	"github.com/aretw0/arbor/pkg/tool"
)

// PromptExecutor executes prompts against a model.
type PromptExecutor interface {
	// Execute sends the prompt and returns the model's response messages.
	Execute(ctx context.Context, p prompt.Prompt, model string, tools []tool.Descriptor) ([]prompt.Message, error)

	// ExecuteStreaming sends the prompt and yields response frames
	// incrementally. The sequence is finite and must not be restarted.
	ExecuteStreaming(ctx context.Context, p prompt.Prompt, model string, tools []tool.Descriptor) iter.Seq2[Frame, error]

	// Moderate classifies the prompt content.
	Moderate(ctx context.Context, p prompt.Prompt, model string) (ModerationResult, error)
}

// ModerationResult is the outcome of a moderation check.
type ModerationResult struct {
	Flagged    bool     `json:"flagged"`
	Categories []string `json:"categories,omitempty"`
}
