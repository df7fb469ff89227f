// Package tool defines the callable tool contract: descriptors with
// JSON-schema argument shapes, argument decoding/validation, a registry,
// and the structured result fed back into the conversation.
package tool

import (
	"context"

	"github.com/getkin/kin-openapi/openapi3"
)

// Descriptor describes a tool to the model.
// Parameters is a JSON schema for the argument object; nil means the tool
// takes no arguments.
type Descriptor struct {
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Parameters  *openapi3.Schema `json:"parameters,omitempty"`
}

// Tool is a callable capability exposed to the model.
// Execute receives arguments already decoded from the model's JSON payload.
type Tool interface {
	Descriptor() Descriptor
	Execute(ctx context.Context, args map[string]any) (any, error)
}

// Func adapts a plain function into a Tool.
type Func struct {
	Desc Descriptor
	Fn   func(ctx context.Context, args map[string]any) (any, error)
}

func (f Func) Descriptor() Descriptor { return f.Desc }

func (f Func) Execute(ctx context.Context, args map[string]any) (any, error) {
	return f.Fn(ctx, args)
}
