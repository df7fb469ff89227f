package tool

import (
	"context"
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"
)

// Finish is a synthetic tool whose invocation terminates a task with a
// structured result. The loop intercepts calls to it: Execute is never
// routed through the general tool runner.
type Finish[T any] struct {
	desc Descriptor
}

// NewFinish declares a finish tool whose arguments decode into T.
func NewFinish[T any](name, description string, params *openapi3.Schema) *Finish[T] {
	return &Finish[T]{desc: Descriptor{
		Name:        name,
		Description: description,
		Parameters:  params,
	}}
}

func (f *Finish[T]) Descriptor() Descriptor { return f.desc }

// Execute always fails: finish calls are intercepted before execution.
func (f *Finish[T]) Execute(context.Context, map[string]any) (any, error) {
	return nil, fmt.Errorf("finish tool %q must not be executed", f.desc.Name)
}

// Decode validates and decodes a finish call's arguments into the result type.
func (f *Finish[T]) Decode(args map[string]any) (T, error) {
	var zero T
	if err := ValidateArgs(f.desc, args); err != nil {
		return zero, err
	}
	return DecodeInto[T](args)
}
