package prompt

import "time"

// Kind identifies the class of a message in the conversation log.
type Kind string

const (
	KindSystem     Kind = "system"
	KindUser       Kind = "user"
	KindAssistant  Kind = "assistant"
	KindToolCall   Kind = "tool_call"
	KindToolResult Kind = "tool_result"
)

// TokenUsage carries token accounting metadata for a message.
type TokenUsage struct {
	Input  int `json:"input,omitempty"`
	Output int `json:"output,omitempty"`
	Total  int `json:"total,omitempty"`
}

// ToolCall is one tool invocation requested by the model.
// Arguments is the raw JSON payload as emitted by the provider.
type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// Message is a single entry in the conversation log.
// Exactly one shape is populated depending on Kind:
// Content for system/user/assistant, ToolCalls for tool_call,
// and CallID/ToolName/Content for tool_result.
type Message struct {
	Kind      Kind       `json:"kind"`
	Content   string     `json:"content,omitempty"`
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`
	CallID    string     `json:"call_id,omitempty"`
	ToolName  string     `json:"tool_name,omitempty"`
	Timestamp time.Time  `json:"timestamp"`
	Tokens    TokenUsage `json:"tokens,omitzero"`
}

// NewSystem creates a system message timestamped now.
func NewSystem(content string) Message {
	return Message{Kind: KindSystem, Content: content, Timestamp: time.Now()}
}

// NewUser creates a user message timestamped now.
func NewUser(content string) Message {
	return Message{Kind: KindUser, Content: content, Timestamp: time.Now()}
}

// NewAssistant creates a plain assistant message timestamped now.
func NewAssistant(content string) Message {
	return Message{Kind: KindAssistant, Content: content, Timestamp: time.Now()}
}

// NewToolCall creates an assistant tool-call message timestamped now.
func NewToolCall(calls ...ToolCall) Message {
	return Message{Kind: KindToolCall, ToolCalls: calls, Timestamp: time.Now()}
}

// NewToolResult creates a tool-result message answering the given call.
func NewToolResult(callID, toolName, content string) Message {
	return Message{
		Kind:      KindToolResult,
		CallID:    callID,
		ToolName:  toolName,
		Content:   content,
		Timestamp: time.Now(),
	}
}

// Clone returns a deep copy of the message.
func (m Message) Clone() Message {
	out := m
	if m.ToolCalls != nil {
		out.ToolCalls = make([]ToolCall, len(m.ToolCalls))
		copy(out.ToolCalls, m.ToolCalls)
	}
	return out
}
