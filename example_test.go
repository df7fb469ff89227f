package arbor_test

import (
	"context"
	"fmt"
	"log"

	"github.com/aretw0/arbor"
	"github.com/aretw0/arbor/pkg/executor/executortest"
	"github.com/aretw0/arbor/pkg/prompt"
)

// Example runs the standard tool-loop strategy against a scripted model.
func Example() {
	model := executortest.NewScripted(executortest.Turn{
		Messages: []prompt.Message{prompt.NewAssistant("Done")},
	})

	a, err := arbor.New(model, arbor.RunModeSequential)
	if err != nil {
		log.Fatal(err)
	}

	output, err := arbor.Run(context.Background(), a, "Hello")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(output)
	// Output: Done
}
