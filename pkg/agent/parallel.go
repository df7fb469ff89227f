package agent

import (
	"cmp"
	"context"
	"fmt"
	"sync"
)

// ParallelResult pairs one branch's output with the forked context that
// produced it.
type ParallelResult[T any] struct {
	Output T
	Ctx    *Context
}

// RunParallel forks the context once per branch and runs the branches
// concurrently. Forks are full clones, so branches never race the original;
// the caller decides which fork, if any, to adopt via Replace. The first
// branch error cancels the remaining branches and fails the whole call.
func RunParallel[In, Out any](ctx context.Context, run *Context, input In, branches ...func(ctx context.Context, run *Context, input In) (Out, error)) ([]ParallelResult[Out], error) {
	branchCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make([]ParallelResult[Out], len(branches))
	errs := make([]error, len(branches))

	var wg sync.WaitGroup
	for i, branch := range branches {
		wg.Add(1)
		go func(i int, branch func(context.Context, *Context, In) (Out, error)) {
			defer wg.Done()
			fork := run.Fork()
			output, err := branch(branchCtx, fork, input)
			if err != nil {
				errs[i] = err
				cancel()
				return
			}
			results[i] = ParallelResult[Out]{Output: output, Ctx: fork}
		}(i, branch)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return results, nil
}

// SelectFirst returns the first branch whose output satisfies the
// predicate.
func SelectFirst[T any](results []ParallelResult[T], pred func(T) bool) (ParallelResult[T], error) {
	for _, r := range results {
		if pred(r.Output) {
			return r, nil
		}
	}
	return ParallelResult[T]{}, fmt.Errorf("no branch output satisfied the predicate")
}

// SelectByMax returns the branch maximizing the key. Ties resolve to the
// last maximal branch encountered.
func SelectByMax[T any, K cmp.Ordered](results []ParallelResult[T], key func(T) K) (ParallelResult[T], error) {
	if len(results) == 0 {
		return ParallelResult[T]{}, fmt.Errorf("no branch results to select from")
	}
	best := results[0]
	bestKey := key(best.Output)
	for _, r := range results[1:] {
		if k := key(r.Output); k >= bestKey {
			best = r
			bestKey = k
		}
	}
	return best, nil
}

// SelectByIndex returns the branch at the index chosen from the list of
// outputs.
func SelectByIndex[T any](results []ParallelResult[T], choose func(outputs []T) int) (ParallelResult[T], error) {
	outputs := make([]T, len(results))
	for i, r := range results {
		outputs[i] = r.Output
	}
	idx := choose(outputs)
	if idx < 0 || idx >= len(results) {
		return ParallelResult[T]{}, fmt.Errorf("selected branch index %d out of range [0,%d)", idx, len(results))
	}
	return results[idx], nil
}

// Fold left-folds all branch outputs into one accumulated value, keeping
// the designated context as the survivor.
func Fold[T, A any](survivor *Context, results []ParallelResult[T], initial A, fn func(acc A, output T) A) (A, *Context) {
	acc := initial
	for _, r := range results {
		acc = fn(acc, r.Output)
	}
	return acc, survivor
}
