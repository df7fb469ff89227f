package agent

import (
	"context"
	"time"

	"github.com/aretw0/arbor/pkg/pipeline"
)

// Subgraph is a graph with its own start and finish, executable as a node
// body. A Strategy is the outermost subgraph of an agent.
type Subgraph struct {
	name   string
	start  *Node
	finish *Node
	nodes  map[string]*Node
}

// Name returns the subgraph's identity.
func (g *Subgraph) Name() string { return g.name }

// Nodes returns the declared nodes keyed by name, including start and
// finish. The map must be treated as read-only.
func (g *Subgraph) Nodes() map[string]*Node { return g.nodes }

// walk executes the graph from start to finish: execute the current node,
// stop if it was finish, otherwise resolve an outgoing edge and continue.
// Edge exhaustion is a structural error.
func (g *Subgraph) walk(ctx context.Context, run *Context, input any) (any, error) {
	current := g.start
	in := input
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		output, err := current.Execute(ctx, run, in)
		if err != nil {
			return nil, err
		}
		if current == g.finish {
			return output, nil
		}

		edge, next, err := current.ResolveEdge(run, output)
		if err != nil {
			return nil, err
		}
		if edge == nil {
			return nil, &StructuralError{Node: current.name, Reason: "no edge resolved for node output"}
		}
		current = edge.to
		in = next
	}
}

// asNode wraps the subgraph as a node: entering it opens a nested context
// scope and raises subgraph execution events around the walk.
func (g *Subgraph) asNode(name string) *Node {
	return &Node{
		name: name,
		body: func(ctx context.Context, run *Context, input any) (any, error) {
			child := run.childScope()
			events := child.Pipeline()

			events.OnSubgraphEvent(&pipeline.SubgraphEvent{
				Kind:      pipeline.SubgraphExecutionStarting,
				AgentID:   child.AgentID(),
				RunID:     child.RunID(),
				Subgraph:  g.name,
				Input:     input,
				Timestamp: time.Now(),
			})

			output, err := g.walk(ctx, child, input)
			if err != nil {
				events.OnSubgraphEvent(&pipeline.SubgraphEvent{
					Kind:      pipeline.SubgraphExecutionFailed,
					AgentID:   child.AgentID(),
					RunID:     child.RunID(),
					Subgraph:  g.name,
					Input:     input,
					Error:     err.Error(),
					Timestamp: time.Now(),
				})
				return nil, err
			}

			events.OnSubgraphEvent(&pipeline.SubgraphEvent{
				Kind:      pipeline.SubgraphExecutionCompleted,
				AgentID:   child.AgentID(),
				RunID:     child.RunID(),
				Subgraph:  g.name,
				Input:     input,
				Output:    output,
				Timestamp: time.Now(),
			})
			return output, nil
		},
	}
}

// Strategy is a named, top-level subgraph defining one agent's end-to-end
// behavior.
type Strategy struct {
	name  string
	graph *Subgraph
}

// Name returns the strategy's identity.
func (s *Strategy) Name() string { return s.name }

// Graph returns the underlying subgraph.
func (s *Strategy) Graph() *Subgraph { return s.graph }
