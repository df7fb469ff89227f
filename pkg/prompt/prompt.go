// Package prompt defines the ordered conversation log exchanged with a
// language model: message kinds, tool-call payloads and token metadata.
package prompt

// Prompt is the ordered message log sent to the model.
// Order is monotonic by logical sequence; timestamps may tie.
type Prompt struct {
	Messages []Message `json:"messages"`
}

// New builds a prompt from the given messages.
func New(messages ...Message) Prompt {
	return Prompt{Messages: messages}
}

// Append returns the prompt with the messages added at the end.
func (p Prompt) Append(messages ...Message) Prompt {
	out := make([]Message, 0, len(p.Messages)+len(messages))
	out = append(out, p.Messages...)
	out = append(out, messages...)
	return Prompt{Messages: out}
}

// Clone returns a deep copy of the prompt.
func (p Prompt) Clone() Prompt {
	out := make([]Message, len(p.Messages))
	for i, m := range p.Messages {
		out[i] = m.Clone()
	}
	return Prompt{Messages: out}
}

// Len returns the number of messages in the log.
func (p Prompt) Len() int {
	return len(p.Messages)
}

// LastMessage returns the newest message, if any.
func (p Prompt) LastMessage() (Message, bool) {
	if len(p.Messages) == 0 {
		return Message{}, false
	}
	return p.Messages[len(p.Messages)-1], true
}

// PendingToolCalls reports the tool calls in the trailing tool-call messages
// that have no tool-result answering them yet.
func (p Prompt) PendingToolCalls() []ToolCall {
	answered := make(map[string]bool)
	var pending []ToolCall
	for i := len(p.Messages) - 1; i >= 0; i-- {
		m := p.Messages[i]
		switch m.Kind {
		case KindToolResult:
			answered[m.CallID] = true
		case KindToolCall:
			for _, c := range m.ToolCalls {
				if !answered[c.ID] {
					pending = append(pending, c)
				}
			}
		default:
			return pending
		}
	}
	return pending
}
