package agent

import (
	"fmt"
	"reflect"
)

// cast is the single unsafe-cast boundary between the untyped graph core
// and the typed public API. Graph storage is type-erased; every typed node
// body and edge spec funnels through here, so a value crossing an edge with
// the wrong type surfaces as a structural error instead of a panic.
func cast[T any](node string, v any) (T, error) {
	if v == nil {
		var zero T
		return zero, nil
	}
	t, ok := v.(T)
	if !ok {
		var zero T
		return zero, &StructuralError{
			Node:   node,
			Reason: fmt.Sprintf("value of type %T does not satisfy %v", v, reflect.TypeFor[T]()),
		}
	}
	return t, nil
}
