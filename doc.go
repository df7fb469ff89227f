/*
Package arbor is a graph based execution runtime for LLM agents. A strategy
is a directed graph of typed nodes; the interpreter walks it from start to
finish, resolving conditional edges against each node's output, while a
shared conversation context carries the prompt, the tool catalog and
per-run state.

# Concept

Arbor separates the control flow (the graph), the conversation (the LLM
context with reader/writer sessions), and the side effects (tools executed
through an environment). The interpreter is synchronous and deterministic:
given the same node outputs, edge resolution always picks the first
matching edge in registration order. Observability is an event pipeline
that features subscribe to before the first run.

# Key Features

  - Typed graphs: nodes and edges declare their input and output types and
    are checked at the boundary, not deep inside node bodies.
  - Tool loop: the standard strategy alternates model requests and tool
    execution, with argument validation fed back to the model.
  - Concurrency: runs fork into parallel subgraph walks whose results are
    merged by selection or folding combinators.
  - History compression: long conversations are summarized in place with
    pluggable splitting strategies.
  - Streaming: frame consumers assemble streamed output while emitting
    per-frame pipeline events.

# Usage

Build an agent from a strategy and a prompt executor, then run it:

	package main

	import (
		"context"
		"fmt"
		"log"

		"github.com/aretw0/arbor"
		"github.com/aretw0/arbor/pkg/executor/executortest"
		"github.com/aretw0/arbor/pkg/prompt"
	)

	func main() {
		model := executortest.NewScripted(executortest.Turn{
			Messages: []prompt.Message{prompt.NewAssistant("Done")},
		})

		agent, err := arbor.New(model, arbor.RunModeSequential)
		if err != nil {
			log.Fatal(err)
		}

		output, err := arbor.Run(context.Background(), agent, "Hello")
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println(output)
	}

Custom graphs are built with pkg/agent's GraphBuilder; production deploys
swap the scripted executor for a real backend implementing
executor.PromptExecutor.
*/
package arbor
