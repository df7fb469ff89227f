package agent

import "fmt"

// StructuralError reports graph misuse: no edge resolved for a node's
// output, an edge attached to a finish node, an unknown node, or a value
// crossing an edge with the wrong type. Always fatal, never retried.
type StructuralError struct {
	Node   string
	Reason string
}

func (e *StructuralError) Error() string {
	if e.Node == "" {
		return "structural error: " + e.Reason
	}
	return fmt.Sprintf("structural error at node %q: %s", e.Node, e.Reason)
}

// ModelRefusalError reports a model that kept answering in plain text when
// a tool call was required, past the configured retry budget.
type ModelRefusalError struct {
	Model    string
	Tool     string
	Attempts int
}

func (e *ModelRefusalError) Error() string {
	return fmt.Sprintf("model %q refused to call tool %q after %d attempts", e.Model, e.Tool, e.Attempts)
}

// IterationLimitError reports a run that exceeded its iteration ceiling.
type IterationLimitError struct {
	Limit int
}

func (e *IterationLimitError) Error() string {
	return fmt.Sprintf("run exceeded the maximum of %d iterations", e.Limit)
}
