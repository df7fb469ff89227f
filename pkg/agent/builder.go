package agent

import (
	"context"
	"errors"
	"fmt"
)

// Reserved node names for the entry and exit of every subgraph.
const (
	StartNodeName  = "start"
	FinishNodeName = "finish"
)

// GraphBuilder accumulates nodes and edges for one subgraph. Structural
// misuse (duplicate names, edges out of finish) is recorded and reported at
// Build time, so fluent construction never panics.
type GraphBuilder struct {
	name   string
	start  *Node
	finish *Node
	nodes  map[string]*Node
	errs   []error
}

// NewSubgraph starts building a subgraph with its reserved start and finish
// nodes. Both are identity pass-throughs; start is the sole entry, finish
// is terminal by construction.
func NewSubgraph(name string) *GraphBuilder {
	identity := func(_ context.Context, _ *Context, input any) (any, error) {
		return input, nil
	}
	b := &GraphBuilder{
		name:   name,
		start:  &Node{name: StartNodeName, body: identity},
		finish: &Node{name: FinishNodeName, body: identity, terminal: true},
		nodes:  make(map[string]*Node),
	}
	b.nodes[StartNodeName] = b.start
	b.nodes[FinishNodeName] = b.finish
	return b
}

// Start returns the subgraph's entry node.
func (b *GraphBuilder) Start() *Node { return b.start }

// Finish returns the subgraph's terminal node.
func (b *GraphBuilder) Finish() *Node { return b.finish }

// Node looks up a declared node by name.
func (b *GraphBuilder) Node(name string) (*Node, bool) {
	n, ok := b.nodes[name]
	return n, ok
}

func (b *GraphBuilder) addNode(n *Node) *Node {
	if _, exists := b.nodes[n.name]; exists {
		b.errs = append(b.errs, fmt.Errorf("duplicate node name: %s", n.name))
		return n
	}
	b.nodes[n.name] = n
	return n
}

// AddNode declares a typed node. The body's input and output types are
// erased for graph storage and restored through the central cast boundary.
func AddNode[In, Out any](b *GraphBuilder, name string, body func(ctx context.Context, run *Context, input In) (Out, error)) *Node {
	return b.addNode(&Node{
		name: name,
		body: func(ctx context.Context, run *Context, input any) (any, error) {
			in, err := cast[In](name, input)
			if err != nil {
				return nil, err
			}
			return body(ctx, run, in)
		},
	})
}

// AddSubgraphNode declares a node whose body is a whole subgraph: entering
// it opens a nested scope and raises subgraph execution events around the
// inner walk.
func (b *GraphBuilder) AddSubgraphNode(name string, sub *Subgraph) *Node {
	return b.addNode(sub.asNode(name))
}

// EdgeSpec declares the guard and transform for a typed edge. A nil Guard
// always accepts; a nil Transform forwards the output unchanged.
type EdgeSpec[Out, In any] struct {
	Guard     func(run *Context, output Out) bool
	Transform func(run *Context, output Out) (In, error)
}

// Connect declares a typed edge from one node to another. Edges resolve in
// declaration order, first match wins.
func Connect[Out, In any](b *GraphBuilder, from, to *Node, spec EdgeSpec[Out, In]) {
	edge := &Edge{to: to}
	if spec.Guard != nil {
		guard := spec.Guard
		edge.guard = func(run *Context, output any) bool {
			out, err := cast[Out](from.name, output)
			if err != nil {
				return false
			}
			return guard(run, out)
		}
	}
	if spec.Transform != nil {
		transform := spec.Transform
		edge.transform = func(run *Context, output any) (any, error) {
			out, err := cast[Out](from.name, output)
			if err != nil {
				return nil, err
			}
			return transform(run, out)
		}
	}
	if err := from.addEdge(edge); err != nil {
		b.errs = append(b.errs, err)
	}
}

// Forward declares an unconditional identity edge.
func (b *GraphBuilder) Forward(from, to *Node) {
	if err := from.addEdge(&Edge{to: to}); err != nil {
		b.errs = append(b.errs, err)
	}
}

// Build compiles the accumulated nodes into a Subgraph, reporting every
// structural error recorded during construction.
func (b *GraphBuilder) Build() (*Subgraph, error) {
	if len(b.errs) > 0 {
		return nil, fmt.Errorf("invalid graph %q: %w", b.name, errors.Join(b.errs...))
	}
	return &Subgraph{
		name:   b.name,
		start:  b.start,
		finish: b.finish,
		nodes:  b.nodes,
	}, nil
}

// BuildStrategy compiles the builder into a named top-level strategy.
func (b *GraphBuilder) BuildStrategy() (*Strategy, error) {
	graph, err := b.Build()
	if err != nil {
		return nil, err
	}
	return &Strategy{name: b.name, graph: graph}, nil
}
