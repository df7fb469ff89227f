package agent_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/arbor/pkg/agent"
	"github.com/aretw0/arbor/pkg/executor/executortest"
	"github.com/aretw0/arbor/pkg/pipeline"
)

func runStrategy(t *testing.T, b *agent.GraphBuilder, input any) (any, error) {
	t.Helper()
	strategy, err := b.BuildStrategy()
	require.NoError(t, err)

	a, err := agent.New(strategy, executortest.NewScripted())
	require.NoError(t, err)
	return a.Run(context.Background(), input)
}

func TestGraphBuilder_DuplicateNodeName(t *testing.T) {
	b := agent.NewSubgraph("dupes")
	agent.AddNode(b, "work", func(_ context.Context, _ *agent.Context, in string) (string, error) {
		return in, nil
	})
	agent.AddNode(b, "work", func(_ context.Context, _ *agent.Context, in string) (string, error) {
		return in, nil
	})

	_, err := b.Build()
	require.Error(t, err)
	assert.ErrorContains(t, err, "duplicate node name: work")
}

func TestGraphBuilder_FinishCannotHaveEdges(t *testing.T) {
	b := agent.NewSubgraph("bad")
	other := agent.AddNode(b, "other", func(_ context.Context, _ *agent.Context, in string) (string, error) {
		return in, nil
	})
	b.Forward(b.Start(), b.Finish())
	b.Forward(b.Finish(), other)

	_, err := b.Build()
	require.Error(t, err)
	var serr *agent.StructuralError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, agent.FinishNodeName, serr.Node)
}

func TestGraphBuilder_ReservedNamesPresent(t *testing.T) {
	b := agent.NewSubgraph("g")

	start, ok := b.Node(agent.StartNodeName)
	require.True(t, ok)
	assert.Same(t, b.Start(), start)

	finish, ok := b.Node(agent.FinishNodeName)
	require.True(t, ok)
	assert.Same(t, b.Finish(), finish)
}

func TestWalk_FirstMatchingEdgeWins(t *testing.T) {
	b := agent.NewSubgraph("routing")
	classify := agent.AddNode(b, "classify", func(_ context.Context, _ *agent.Context, n int) (int, error) {
		return n, nil
	})
	b.Forward(b.Start(), classify)

	// Both guards accept values >= 10; declaration order decides.
	agent.Connect(b, classify, b.Finish(), agent.EdgeSpec[int, string]{
		Guard:     func(_ *agent.Context, n int) bool { return n >= 10 },
		Transform: func(_ *agent.Context, _ int) (string, error) { return "big", nil },
	})
	agent.Connect(b, classify, b.Finish(), agent.EdgeSpec[int, string]{
		Guard:     func(_ *agent.Context, n int) bool { return n >= 0 },
		Transform: func(_ *agent.Context, _ int) (string, error) { return "small", nil },
	})

	out, err := runStrategy(t, b, 12)
	require.NoError(t, err)
	assert.Equal(t, "big", out)
}

func TestWalk_LaterEdgeUsedWhenGuardRejects(t *testing.T) {
	b := agent.NewSubgraph("routing")
	classify := agent.AddNode(b, "classify", func(_ context.Context, _ *agent.Context, n int) (int, error) {
		return n, nil
	})
	b.Forward(b.Start(), classify)
	agent.Connect(b, classify, b.Finish(), agent.EdgeSpec[int, string]{
		Guard:     func(_ *agent.Context, n int) bool { return n >= 10 },
		Transform: func(_ *agent.Context, _ int) (string, error) { return "big", nil },
	})
	agent.Connect(b, classify, b.Finish(), agent.EdgeSpec[int, string]{
		Transform: func(_ *agent.Context, _ int) (string, error) { return "small", nil },
	})

	out, err := runStrategy(t, b, 3)
	require.NoError(t, err)
	assert.Equal(t, "small", out)
}

func TestWalk_NoEdgeResolvedIsStructural(t *testing.T) {
	b := agent.NewSubgraph("dead-end")
	classify := agent.AddNode(b, "classify", func(_ context.Context, _ *agent.Context, n int) (int, error) {
		return n, nil
	})
	b.Forward(b.Start(), classify)
	agent.Connect(b, classify, b.Finish(), agent.EdgeSpec[int, int]{
		Guard: func(_ *agent.Context, n int) bool { return n > 100 },
	})

	_, err := runStrategy(t, b, 1)
	var serr *agent.StructuralError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, "classify", serr.Node)
	assert.Contains(t, serr.Reason, "no edge resolved")
}

func TestWalk_InputTypeMismatchIsStructural(t *testing.T) {
	b := agent.NewSubgraph("typed")
	wantsInt := agent.AddNode(b, "wants_int", func(_ context.Context, _ *agent.Context, n int) (int, error) {
		return n, nil
	})
	b.Forward(b.Start(), wantsInt)
	b.Forward(wantsInt, b.Finish())

	_, err := runStrategy(t, b, "not an int")
	var serr *agent.StructuralError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, "wants_int", serr.Node)
}

func TestWalk_NilInputBecomesZeroValue(t *testing.T) {
	b := agent.NewSubgraph("nilable")
	echo := agent.AddNode(b, "echo", func(_ context.Context, _ *agent.Context, s string) (string, error) {
		return "got:" + s, nil
	})
	b.Forward(b.Start(), echo)
	b.Forward(echo, b.Finish())

	out, err := runStrategy(t, b, nil)
	require.NoError(t, err)
	assert.Equal(t, "got:", out)
}

func TestSubgraphNode_EmitsSubgraphEvents(t *testing.T) {
	inner := agent.NewSubgraph("inner")
	double := agent.AddNode(inner, "double", func(_ context.Context, _ *agent.Context, n int) (int, error) {
		return n * 2, nil
	})
	inner.Forward(inner.Start(), double)
	inner.Forward(double, inner.Finish())
	innerGraph, err := inner.Build()
	require.NoError(t, err)

	outer := agent.NewSubgraph("outer")
	nested := outer.AddSubgraphNode("nested", innerGraph)
	outer.Forward(outer.Start(), nested)
	outer.Forward(nested, outer.Finish())
	strategy, err := outer.BuildStrategy()
	require.NoError(t, err)

	a, err := agent.New(strategy, executortest.NewScripted())
	require.NoError(t, err)

	var kinds []pipeline.EventKind
	a.Pipeline().InterceptSubgraphEvents(func(ev *pipeline.SubgraphEvent) {
		kinds = append(kinds, ev.Kind)
		assert.Equal(t, "inner", ev.Subgraph)
	})

	out, err := a.Run(context.Background(), 21)
	require.NoError(t, err)
	assert.Equal(t, 42, out)
	assert.Equal(t, []pipeline.EventKind{
		pipeline.SubgraphExecutionStarting,
		pipeline.SubgraphExecutionCompleted,
	}, kinds)
}
