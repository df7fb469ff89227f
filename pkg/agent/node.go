package agent

import (
	"context"
	"time"

	"github.com/aretw0/arbor/pkg/pipeline"
)

// NodeBody is the untyped executable body of a node. The typed builder API
// wraps bodies so callers never handle `any` themselves.
type NodeBody func(ctx context.Context, run *Context, input any) (any, error)

// Node is a named unit of computation with directed, conditionally-guarded
// outgoing edges.
type Node struct {
	name     string
	body     NodeBody
	edges    []*Edge
	terminal bool
}

// Edge links one node's output to the next node's input. A nil guard always
// accepts; a nil transform passes the output through unchanged. Edges are
// tried in declaration order and the first accepting guard wins.
type Edge struct {
	to        *Node
	guard     func(run *Context, output any) bool
	transform func(run *Context, output any) (any, error)
}

// To returns the edge's destination node.
func (e *Edge) To() *Node { return e.to }

// Name returns the node's identity.
func (n *Node) Name() string { return n.name }

// Edges returns the declared outgoing edges in order.
func (n *Node) Edges() []*Edge { return n.edges }

func (n *Node) addEdge(e *Edge) error {
	if n.terminal {
		return &StructuralError{Node: n.name, Reason: "finish node cannot have outgoing edges"}
	}
	n.edges = append(n.edges, e)
	return nil
}

// Execute runs the node body under pipeline notification. A body error is
// reported via the pipeline and re-raised unchanged.
func (n *Node) Execute(ctx context.Context, run *Context, input any) (any, error) {
	events := run.Pipeline()
	started := time.Now()
	events.OnNodeEvent(&pipeline.NodeEvent{
		Kind:      pipeline.NodeExecutionStarting,
		AgentID:   run.AgentID(),
		RunID:     run.RunID(),
		Node:      n.name,
		Input:     input,
		Timestamp: started,
	})

	output, err := n.body(ctx, run, input)
	if err != nil {
		events.OnNodeEvent(&pipeline.NodeEvent{
			Kind:      pipeline.NodeExecutionFailed,
			AgentID:   run.AgentID(),
			RunID:     run.RunID(),
			Node:      n.name,
			Input:     input,
			Error:     err.Error(),
			Duration:  time.Since(started),
			Timestamp: time.Now(),
		})
		return nil, err
	}

	events.OnNodeEvent(&pipeline.NodeEvent{
		Kind:      pipeline.NodeExecutionCompleted,
		AgentID:   run.AgentID(),
		RunID:     run.RunID(),
		Node:      n.name,
		Input:     input,
		Output:    output,
		Duration:  time.Since(started),
		Timestamp: time.Now(),
	})
	return output, nil
}

// ResolveEdge tries the declared edges in order and returns the first whose
// guard accepts the output, paired with the transformed input for the next
// node. A nil edge means no edge accepted.
func (n *Node) ResolveEdge(run *Context, output any) (*Edge, any, error) {
	for _, e := range n.edges {
		if e.guard != nil && !e.guard(run, output) {
			continue
		}
		next := output
		if e.transform != nil {
			transformed, err := e.transform(run, output)
			if err != nil {
				return nil, nil, err
			}
			next = transformed
		}
		return e, next, nil
	}
	return nil, nil, nil
}
