// Package mcp exposes tools served by an MCP server as runtime tools,
// so a model can call them through the normal tool loop.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/aretw0/arbor/pkg/tool"
)

// Client is the slice of the MCP client surface the adapter needs.
type Client interface {
	ListTools(ctx context.Context, request mcp.ListToolsRequest) (*mcp.ListToolsResult, error)
	CallTool(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error)
}

var _ Client = (client.MCPClient)(nil)

// Tool proxies a single remote MCP tool.
type Tool struct {
	client Client
	desc   tool.Descriptor
}

var _ tool.Tool = (*Tool)(nil)

func (t *Tool) Descriptor() tool.Descriptor {
	return t.desc
}

// Execute forwards the call to the remote server and flattens its text
// content into a single result string.
func (t *Tool) Execute(ctx context.Context, args map[string]any) (any, error) {
	request := mcp.CallToolRequest{}
	request.Params.Name = t.desc.Name
	request.Params.Arguments = args

	result, err := t.client.CallTool(ctx, request)
	if err != nil {
		return nil, fmt.Errorf("mcp call %q failed: %w", t.desc.Name, err)
	}

	text := flattenContent(result.Content)
	if result.IsError {
		return nil, fmt.Errorf("mcp tool %q reported an error: %s", t.desc.Name, text)
	}
	return text, nil
}

func flattenContent(content []mcp.Content) string {
	var parts []string
	for _, c := range content {
		if tc, ok := c.(mcp.TextContent); ok {
			parts = append(parts, tc.Text)
		}
	}
	return strings.Join(parts, "\n")
}

// ListTools fetches the server's tool catalog and wraps each entry.
func ListTools(ctx context.Context, c Client) ([]tool.Tool, error) {
	result, err := c.ListTools(ctx, mcp.ListToolsRequest{})
	if err != nil {
		return nil, fmt.Errorf("mcp list tools failed: %w", err)
	}

	tools := make([]tool.Tool, 0, len(result.Tools))
	for _, remote := range result.Tools {
		schema, err := schemaFromMCP(remote.InputSchema)
		if err != nil {
			return nil, fmt.Errorf("mcp tool %q: %w", remote.Name, err)
		}
		tools = append(tools, &Tool{
			client: c,
			desc: tool.Descriptor{
				Name:        remote.Name,
				Description: remote.Description,
				Parameters:  schema,
			},
		})
	}
	return tools, nil
}

// Register fetches the server's tools and adds them to the registry.
func Register(ctx context.Context, c Client, registry *tool.Registry) error {
	tools, err := ListTools(ctx, c)
	if err != nil {
		return err
	}
	for _, t := range tools {
		if err := registry.Register(t); err != nil {
			return err
		}
	}
	return nil
}

// schemaFromMCP converts an MCP input schema through its JSON encoding.
func schemaFromMCP(input mcp.ToolInputSchema) (*openapi3.Schema, error) {
	data, err := json.Marshal(input)
	if err != nil {
		return nil, fmt.Errorf("invalid input schema: %w", err)
	}

	var schema openapi3.Schema
	if err := json.Unmarshal(data, &schema); err != nil {
		return nil, fmt.Errorf("invalid input schema: %w", err)
	}
	return &schema, nil
}
