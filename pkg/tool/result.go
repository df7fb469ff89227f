package tool

// ReceivedResult is the outcome of one tool invocation, ready to be
// appended back into the prompt as a tool-result message.
type ReceivedResult struct {
	CallID  string `json:"call_id"`
	Name    string `json:"name"`
	Content string `json:"content"`
	Result  any    `json:"result,omitempty"`
	IsError bool   `json:"is_error,omitempty"`
	Error   string `json:"error,omitempty"`
}

// FailedResult builds an error result for the given call.
func FailedResult(callID, name string, err error) ReceivedResult {
	return ReceivedResult{
		CallID:  callID,
		Name:    name,
		Content: "tool execution failed: " + err.Error(),
		IsError: true,
		Error:   err.Error(),
	}
}
