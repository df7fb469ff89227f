package agent_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/arbor/pkg/agent"
	"github.com/aretw0/arbor/pkg/executor/executortest"
	"github.com/aretw0/arbor/pkg/llm"
	"github.com/aretw0/arbor/pkg/prompt"
	"github.com/aretw0/arbor/pkg/tool"
)

// testRunContext builds a live run context by capturing it from inside a
// minimal strategy.
func testRunContext(t *testing.T) *agent.Context {
	t.Helper()

	var captured *agent.Context
	b := agent.NewSubgraph("capture")
	grab := agent.AddNode(b, "grab", func(_ context.Context, run *agent.Context, in string) (string, error) {
		captured = run
		return in, nil
	})
	b.Forward(b.Start(), grab)
	b.Forward(grab, b.Finish())
	strategy, err := b.BuildStrategy()
	require.NoError(t, err)

	a, err := agent.New(strategy, executortest.NewScripted())
	require.NoError(t, err)
	_, err = a.Run(context.Background(), "seed")
	require.NoError(t, err)
	require.NotNil(t, captured)
	return captured
}

func scoreBranch(n int) func(context.Context, *agent.Context, string) (int, error) {
	return func(context.Context, *agent.Context, string) (int, error) {
		return n, nil
	}
}

func TestRunParallel_AllBranchesComplete(t *testing.T) {
	run := testRunContext(t)

	results, err := agent.RunParallel(context.Background(), run, "input",
		scoreBranch(3), scoreBranch(7), scoreBranch(5),
	)
	require.NoError(t, err)
	require.Len(t, results, 3)

	outputs := []int{results[0].Output, results[1].Output, results[2].Output}
	assert.Equal(t, []int{3, 7, 5}, outputs)
	for _, r := range results {
		assert.NotSame(t, run, r.Ctx)
	}
}

func TestRunParallel_BranchErrorFailsAll(t *testing.T) {
	run := testRunContext(t)

	boom := errors.New("branch failed")
	_, err := agent.RunParallel(context.Background(), run, "input",
		scoreBranch(1),
		func(context.Context, *agent.Context, string) (int, error) {
			return 0, boom
		},
	)
	assert.ErrorIs(t, err, boom)
}

func TestSelectByMax(t *testing.T) {
	run := testRunContext(t)

	results, err := agent.RunParallel(context.Background(), run, "input",
		scoreBranch(3), scoreBranch(7), scoreBranch(5),
	)
	require.NoError(t, err)

	best, err := agent.SelectByMax(results, func(n int) int { return n })
	require.NoError(t, err)
	assert.Equal(t, 7, best.Output)

	t.Run("ties resolve to the last maximal branch", func(t *testing.T) {
		tied, err := agent.RunParallel(context.Background(), run, "input",
			scoreBranch(7), scoreBranch(7),
		)
		require.NoError(t, err)

		best, err := agent.SelectByMax(tied, func(n int) int { return n })
		require.NoError(t, err)
		assert.Same(t, tied[1].Ctx, best.Ctx)
	})

	t.Run("empty results fail", func(t *testing.T) {
		_, err := agent.SelectByMax(nil, func(n int) int { return n })
		assert.Error(t, err)
	})
}

func TestSelectFirst(t *testing.T) {
	run := testRunContext(t)
	results, err := agent.RunParallel(context.Background(), run, "input",
		scoreBranch(3), scoreBranch(7), scoreBranch(5),
	)
	require.NoError(t, err)

	first, err := agent.SelectFirst(results, func(n int) bool { return n > 4 })
	require.NoError(t, err)
	assert.Equal(t, 7, first.Output)

	_, err = agent.SelectFirst(results, func(n int) bool { return n > 100 })
	assert.Error(t, err)
}

func TestSelectByIndex(t *testing.T) {
	run := testRunContext(t)
	results, err := agent.RunParallel(context.Background(), run, "input",
		scoreBranch(3), scoreBranch(7),
	)
	require.NoError(t, err)

	picked, err := agent.SelectByIndex(results, func(outputs []int) int {
		assert.Equal(t, []int{3, 7}, outputs)
		return 0
	})
	require.NoError(t, err)
	assert.Equal(t, 3, picked.Output)

	_, err = agent.SelectByIndex(results, func([]int) int { return 5 })
	assert.Error(t, err)
}

func TestFold(t *testing.T) {
	run := testRunContext(t)
	results, err := agent.RunParallel(context.Background(), run, "input",
		scoreBranch(3), scoreBranch(7), scoreBranch(5),
	)
	require.NoError(t, err)

	total, survivor := agent.Fold(run, results, 0, func(acc, n int) int { return acc + n })
	assert.Equal(t, 15, total)
	assert.Same(t, run, survivor)
}

func TestFork_BranchMutationsStayIsolated(t *testing.T) {
	run := testRunContext(t)
	key := agent.NewKey[string]("note")
	agent.Set(run.Storage(), key, "original")

	fork := run.Fork()
	agent.Set(fork.Storage(), key, "branch")

	got, ok := agent.Get(run.Storage(), key)
	require.True(t, ok)
	assert.Equal(t, "original", got)

	got, ok = agent.Get(fork.Storage(), key)
	require.True(t, ok)
	assert.Equal(t, "branch", got)
	assert.Same(t, run, fork.Parent())
}

func TestReplace_AdoptsBranchState(t *testing.T) {
	run := testRunContext(t)
	key := agent.NewKey[string]("note")

	fork := run.Fork()
	agent.Set(fork.Storage(), key, "winner")
	err := fork.LLM().WriteSession(context.Background(), func(s *llm.WriteSession) error {
		s.AppendMessage(prompt.NewUser("branch message"))
		s.SetModel("branch-model")
		s.SetTools([]tool.Descriptor{{Name: "branch_tool"}})
		return nil
	})
	require.NoError(t, err)

	run.Replace(fork)

	got, ok := agent.Get(run.Storage(), key)
	require.True(t, ok)
	assert.Equal(t, "winner", got)

	// The swap carries the whole conversation state, not just storage.
	log := run.LLM().Prompt()
	last, ok := log.LastMessage()
	require.True(t, ok)
	assert.Equal(t, "branch message", last.Content)
	assert.Equal(t, "branch-model", run.LLM().Model())
	tools := run.LLM().Tools()
	require.Len(t, tools, 1)
	assert.Equal(t, "branch_tool", tools[0].Name)
}
