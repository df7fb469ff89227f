package agent

import (
	"context"
	"fmt"
	"time"

	"github.com/aretw0/arbor/pkg/environment"
	"github.com/aretw0/arbor/pkg/llm"
	"github.com/aretw0/arbor/pkg/pipeline"
	"github.com/aretw0/arbor/pkg/prompt"
	"github.com/aretw0/arbor/pkg/tool"
)

// RunMode selects how a model turn's tool calls are executed.
type RunMode string

const (
	// RunModeSequential runs the calls one at a time, in request order.
	RunModeSequential RunMode = "sequential"
	// RunModeParallel runs all calls of one turn concurrently.
	RunModeParallel RunMode = "parallel"
	// RunModeSingle constrains the model to one call per turn; extra calls
	// are rejected with a feedback result instead of executed.
	RunModeSingle RunMode = "single"
)

// decisionMessage picks the control-flow message out of a model turn.
// The response shape is a closed variant: a plain assistant message or a
// tool-call message. Anything else is a protocol violation.
func decisionMessage(responses []prompt.Message) (prompt.Message, error) {
	for _, m := range responses {
		if m.Kind == prompt.KindToolCall {
			return m, nil
		}
	}
	for _, m := range responses {
		if m.Kind == prompt.KindAssistant {
			return m, nil
		}
	}
	return prompt.Message{}, fmt.Errorf("model returned no assistant or tool-call message")
}

// runToolCalls executes one turn's tool calls per the run mode and returns
// the tool-result messages in call order. Unknown tools follow the
// configured missing-tool policy; invalid arguments become validation
// failure results fed back to the model.
func runToolCalls(ctx context.Context, run *Context, calls []prompt.ToolCall, mode RunMode) ([]prompt.Message, error) {
	descriptors := run.LLM().Tools()
	byName := make(map[string]tool.Descriptor, len(descriptors))
	for _, d := range descriptors {
		byName[d.Name] = d
	}

	switch mode {
	case RunModeParallel:
		// Calls that fail resolution keep their per-call feedback result;
		// the remainder goes to the environment as one batch.
		results := make([]prompt.Message, len(calls))
		batch := make([]environment.Invocation, 0, len(calls))
		slots := make([]int, 0, len(calls))
		for i, call := range calls {
			inv, feedback, err := resolveCall(run, byName, call)
			if err != nil {
				return nil, err
			}
			if feedback != nil {
				results[i] = *feedback
				continue
			}
			batch = append(batch, inv)
			slots = append(slots, i)
		}
		started := time.Now()
		for _, inv := range batch {
			announceCall(run, inv, started)
		}
		for j, result := range run.Environment().ExecuteTools(ctx, batch) {
			results[slots[j]] = concludeCall(run, batch[j], result, started)
		}
		return results, nil

	case RunModeSingle:
		results := make([]prompt.Message, 0, len(calls))
		for i, call := range calls {
			if i > 0 {
				results = append(results, prompt.NewToolResult(call.ID, call.Name,
					"rejected: only one tool call is allowed per turn"))
				continue
			}
			msg, err := executeCall(ctx, run, byName, call)
			if err != nil {
				return nil, err
			}
			results = append(results, msg)
		}
		return results, nil

	default: // RunModeSequential
		results := make([]prompt.Message, 0, len(calls))
		for _, call := range calls {
			msg, err := executeCall(ctx, run, byName, call)
			if err != nil {
				return nil, err
			}
			results = append(results, msg)
		}
		return results, nil
	}
}

// executeCall resolves, validates and executes a single tool call,
// raising tool-call pipeline events along the way.
func executeCall(ctx context.Context, run *Context, descriptors map[string]tool.Descriptor, call prompt.ToolCall) (prompt.Message, error) {
	inv, feedback, err := resolveCall(run, descriptors, call)
	if err != nil {
		return prompt.Message{}, err
	}
	if feedback != nil {
		return *feedback, nil
	}

	started := time.Now()
	announceCall(run, inv, started)
	result := run.Environment().ExecuteTool(ctx, inv)
	return concludeCall(run, inv, result, started), nil
}

// resolveCall maps a model tool call to an executable invocation. A non-nil
// feedback message means the call cannot run and the message is what the
// model sees instead. The missing-tool fail policy aborts with an error.
func resolveCall(run *Context, descriptors map[string]tool.Descriptor, call prompt.ToolCall) (environment.Invocation, *prompt.Message, error) {
	events := run.Pipeline()

	desc, known := descriptors[call.Name]
	if !known {
		err := fmt.Errorf("unknown tool: %s", call.Name)
		if run.Config().MissingTools == MissingToolFail {
			return environment.Invocation{}, nil, err
		}
		events.OnToolCallEvent(&pipeline.ToolCallEvent{
			Kind:      pipeline.ToolCallFailed,
			AgentID:   run.AgentID(),
			RunID:     run.RunID(),
			Tool:      call.Name,
			CallID:    call.ID,
			Error:     err.Error(),
			Timestamp: time.Now(),
		})
		msg := prompt.NewToolResult(call.ID, call.Name, "tool not found: "+call.Name)
		return environment.Invocation{}, &msg, nil
	}

	args, err := tool.DecodeArgs(call.Arguments)
	if err == nil {
		err = tool.ValidateArgs(desc, args)
	}
	if err != nil {
		events.OnToolCallEvent(&pipeline.ToolCallEvent{
			Kind:      pipeline.ToolCallValidationFailed,
			AgentID:   run.AgentID(),
			RunID:     run.RunID(),
			Tool:      call.Name,
			CallID:    call.ID,
			Args:      args,
			Error:     err.Error(),
			Timestamp: time.Now(),
		})
		msg := prompt.NewToolResult(call.ID, call.Name, "invalid arguments: "+err.Error())
		return environment.Invocation{}, &msg, nil
	}

	return environment.Invocation{CallID: call.ID, Name: call.Name, Args: args}, nil, nil
}

func announceCall(run *Context, inv environment.Invocation, at time.Time) {
	run.Pipeline().OnToolCallEvent(&pipeline.ToolCallEvent{
		Kind:      pipeline.ToolCallStarting,
		AgentID:   run.AgentID(),
		RunID:     run.RunID(),
		Tool:      inv.Name,
		CallID:    inv.CallID,
		Args:      inv.Args,
		Timestamp: at,
	})
}

func concludeCall(run *Context, inv environment.Invocation, result tool.ReceivedResult, started time.Time) prompt.Message {
	kind := pipeline.ToolCallCompleted
	if result.IsError {
		kind = pipeline.ToolCallFailed
	}
	run.Pipeline().OnToolCallEvent(&pipeline.ToolCallEvent{
		Kind:      kind,
		AgentID:   run.AgentID(),
		RunID:     run.RunID(),
		Tool:      inv.Name,
		CallID:    inv.CallID,
		Args:      inv.Args,
		Result:    &result,
		Error:     result.Error,
		Duration:  time.Since(started),
		Timestamp: time.Now(),
	})
	return prompt.NewToolResult(inv.CallID, inv.Name, result.Content)
}

// AddLLMRequestNode declares a node that appends its string input as a user
// message and requests the model, producing the decision message.
func AddLLMRequestNode(b *GraphBuilder, name string) *Node {
	return AddNode(b, name, func(ctx context.Context, run *Context, input string) (prompt.Message, error) {
		if err := run.NextIteration(); err != nil {
			return prompt.Message{}, err
		}
		var decision prompt.Message
		err := run.LLM().WriteSession(ctx, func(s *llm.WriteSession) error {
			s.AppendMessage(prompt.NewUser(input))
			responses, err := s.RequestLLM(ctx)
			if err != nil {
				return err
			}
			decision, err = decisionMessage(responses)
			return err
		})
		return decision, err
	})
}

// AddExecuteToolsNode declares a node that executes a tool-call message's
// requested calls and produces the tool-result messages.
func AddExecuteToolsNode(b *GraphBuilder, name string, mode RunMode) *Node {
	return AddNode(b, name, func(ctx context.Context, run *Context, input prompt.Message) ([]prompt.Message, error) {
		return runToolCalls(ctx, run, input.ToolCalls, mode)
	})
}

// AddSendToolResultsNode declares a node that appends tool results to the
// conversation and requests the model again, producing the next decision.
func AddSendToolResultsNode(b *GraphBuilder, name string) *Node {
	return AddNode(b, name, func(ctx context.Context, run *Context, results []prompt.Message) (prompt.Message, error) {
		if err := run.NextIteration(); err != nil {
			return prompt.Message{}, err
		}
		var decision prompt.Message
		err := run.LLM().WriteSession(ctx, func(s *llm.WriteSession) error {
			s.AppendMessage(results...)
			responses, err := s.RequestLLM(ctx)
			if err != nil {
				return err
			}
			decision, err = decisionMessage(responses)
			return err
		})
		return decision, err
	})
}

// AddModerationGuardNode declares a pass-through node that fails when the
// current conversation is flagged by the moderation capability.
func AddModerationGuardNode(b *GraphBuilder, name string) *Node {
	return AddNode(b, name, func(ctx context.Context, run *Context, input any) (any, error) {
		var flagged bool
		err := run.LLM().ReadSession(ctx, func(s llm.ReadSession) error {
			result, err := s.Moderate(ctx)
			if err != nil {
				return err
			}
			flagged = result.Flagged
			return nil
		})
		if err != nil {
			return nil, err
		}
		if flagged {
			return nil, fmt.Errorf("conversation flagged by moderation")
		}
		return input, nil
	})
}

// isToolCall guards edges leaving a decision node.
func isToolCall(_ *Context, m prompt.Message) bool { return m.Kind == prompt.KindToolCall }

func isAssistant(_ *Context, m prompt.Message) bool { return m.Kind == prompt.KindAssistant }

// SingleRunStrategy builds the standard ask-model / execute-tools /
// report-results loop as a strategy graph: the walk alternates model
// requests and tool execution until the model answers in plain text, which
// becomes the run's output.
func SingleRunStrategy(name string, mode RunMode) (*Strategy, error) {
	b := NewSubgraph(name)

	callLLM := AddLLMRequestNode(b, "request_llm")
	execute := AddExecuteToolsNode(b, "execute_tools", mode)
	report := AddSendToolResultsNode(b, "send_tool_results")

	b.Forward(b.Start(), callLLM)
	Connect(b, callLLM, execute, EdgeSpec[prompt.Message, prompt.Message]{Guard: isToolCall})
	Connect(b, callLLM, b.Finish(), EdgeSpec[prompt.Message, string]{
		Guard: isAssistant,
		Transform: func(_ *Context, m prompt.Message) (string, error) {
			return m.Content, nil
		},
	})
	b.Forward(execute, report)
	Connect(b, report, execute, EdgeSpec[prompt.Message, prompt.Message]{Guard: isToolCall})
	Connect(b, report, b.Finish(), EdgeSpec[prompt.Message, string]{
		Guard: isAssistant,
		Transform: func(_ *Context, m prompt.Message) (string, error) {
			return m.Content, nil
		},
	})

	return b.BuildStrategy()
}

// ExecuteWithFinishTool drives the tool-call loop until the model invokes
// the finish tool, whose decoded arguments become the result. A model that
// keeps answering in plain text is corrected and retried up to the
// configured maximum of refusals, then the loop fails.
func ExecuteWithFinishTool[T any](ctx context.Context, run *Context, finish *tool.Finish[T], input string, mode RunMode) (T, error) {
	var zero T
	finishName := finish.Descriptor().Name

	err := run.LLM().WriteSession(ctx, func(s *llm.WriteSession) error {
		s.AppendMessage(prompt.NewUser(input))
		return nil
	})
	if err != nil {
		return zero, err
	}

	refusals := 0
	for {
		if err := run.NextIteration(); err != nil {
			return zero, err
		}

		var decision prompt.Message
		err := run.LLM().WriteSession(ctx, func(s *llm.WriteSession) error {
			responses, err := s.RequestLLM(ctx)
			if err != nil {
				return err
			}
			decision, err = decisionMessage(responses)
			return err
		})
		if err != nil {
			return zero, err
		}

		switch decision.Kind {
		case prompt.KindToolCall:
			if call, ok := findCall(decision.ToolCalls, finishName); ok {
				args, err := tool.DecodeArgs(call.Arguments)
				if err == nil {
					var result T
					result, err = finish.Decode(args)
					if err == nil {
						return result, nil
					}
				}
				// A failing finish call is fatal for the subtask.
				return zero, fmt.Errorf("finish tool %q failed: %w", finishName, err)
			}

			results, err := runToolCalls(ctx, run, decision.ToolCalls, mode)
			if err != nil {
				return zero, err
			}
			err = run.LLM().WriteSession(ctx, func(s *llm.WriteSession) error {
				s.AppendMessage(results...)
				return nil
			})
			if err != nil {
				return zero, err
			}

		case prompt.KindAssistant:
			refusals++
			if refusals > run.Config().MaxRefusals {
				return zero, &ModelRefusalError{
					Model:    run.LLM().Model(),
					Tool:     finishName,
					Attempts: refusals,
				}
			}
			correction := fmt.Sprintf("A tool call is required. Call the %q tool to provide your final answer.", finishName)
			err = run.LLM().WriteSession(ctx, func(s *llm.WriteSession) error {
				s.AppendMessage(prompt.NewUser(correction))
				return nil
			})
			if err != nil {
				return zero, err
			}
		}
	}
}

func findCall(calls []prompt.ToolCall, name string) (prompt.ToolCall, bool) {
	for _, c := range calls {
		if c.Name == name {
			return c, true
		}
	}
	return prompt.ToolCall{}, false
}
