// Package environment is the capability the tool-call loop uses to execute
// tools and report problems. Substituting the environment wholesale is how
// tests mock tool execution.
package environment

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/aretw0/arbor/internal/logging"
	"github.com/aretw0/arbor/pkg/tool"
)

// Invocation is one resolved tool call ready for execution: arguments are
// already decoded from the model's JSON payload.
type Invocation struct {
	CallID string
	Name   string
	Args   map[string]any
}

// Environment executes tools on behalf of the run.
type Environment interface {
	// ExecuteTool runs one tool invocation. Execution failures are folded
	// into the result, not returned.
	ExecuteTool(ctx context.Context, call Invocation) tool.ReceivedResult

	// ExecuteTools runs the invocations concurrently and returns results in
	// invocation order.
	ExecuteTools(ctx context.Context, calls []Invocation) []tool.ReceivedResult

	// ReportProblem surfaces a non-fatal problem encountered during the run.
	ReportProblem(ctx context.Context, err error)
}

// Direct executes tools straight from a registry.
type Direct struct {
	registry *tool.Registry
	logger   *slog.Logger
}

// Option configures the Direct environment.
type Option func(*Direct)

// WithLogger configures a logger for problem reports.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Direct) {
		d.logger = logger
	}
}

// NewDirect creates an environment over the given registry.
func NewDirect(registry *tool.Registry, opts ...Option) *Direct {
	d := &Direct{
		registry: registry,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

var _ Environment = (*Direct)(nil)

func (d *Direct) ExecuteTool(ctx context.Context, call Invocation) tool.ReceivedResult {
	t, ok := d.registry.Get(call.Name)
	if !ok {
		err := fmt.Errorf("tool not found: %s", call.Name)
		d.ReportProblem(ctx, err)
		return tool.FailedResult(call.CallID, call.Name, err)
	}

	result, err := t.Execute(ctx, call.Args)
	if err != nil {
		d.ReportProblem(ctx, fmt.Errorf("tool %s failed: %w", call.Name, err))
		return tool.FailedResult(call.CallID, call.Name, err)
	}

	content, err := tool.EncodeResult(result)
	if err != nil {
		return tool.FailedResult(call.CallID, call.Name, err)
	}

	return tool.ReceivedResult{
		CallID:  call.CallID,
		Name:    call.Name,
		Content: content,
		Result:  result,
	}
}

func (d *Direct) ExecuteTools(ctx context.Context, calls []Invocation) []tool.ReceivedResult {
	results := make([]tool.ReceivedResult, len(calls))

	var wg sync.WaitGroup
	for i, call := range calls {
		wg.Add(1)
		go func(i int, call Invocation) {
			defer wg.Done()
			results[i] = d.ExecuteTool(ctx, call)
		}(i, call)
	}
	wg.Wait()
	return results
}

func (d *Direct) ReportProblem(_ context.Context, err error) {
	d.logger.Warn("environment problem", "err", err)
}
