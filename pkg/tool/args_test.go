package tool_test

import (
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/arbor/pkg/tool"
)

func queryParams() *openapi3.Schema {
	return &openapi3.Schema{
		Type: &openapi3.Types{"object"},
		Properties: openapi3.Schemas{
			"query": openapi3.NewStringSchema().NewRef(),
			"limit": openapi3.NewIntegerSchema().NewRef(),
		},
		Required: []string{"query"},
	}
}

func TestDecodeArgs(t *testing.T) {
	t.Run("valid json", func(t *testing.T) {
		args, err := tool.DecodeArgs(`{"query":"weather","limit":3}`)
		require.NoError(t, err)
		assert.Equal(t, "weather", args["query"])
		assert.Equal(t, float64(3), args["limit"])
	})

	t.Run("empty payload means no arguments", func(t *testing.T) {
		args, err := tool.DecodeArgs("  ")
		require.NoError(t, err)
		assert.Empty(t, args)
	})

	t.Run("malformed json is repaired", func(t *testing.T) {
		args, err := tool.DecodeArgs(`{query: "weather", limit: 3,}`)
		require.NoError(t, err)
		assert.Equal(t, "weather", args["query"])
	})
}

func TestValidateArgs(t *testing.T) {
	desc := tool.Descriptor{Name: "search", Parameters: queryParams()}

	t.Run("valid arguments pass", func(t *testing.T) {
		err := tool.ValidateArgs(desc, map[string]any{"query": "weather"})
		assert.NoError(t, err)
	})

	t.Run("missing required field fails", func(t *testing.T) {
		err := tool.ValidateArgs(desc, map[string]any{"limit": float64(3)})
		require.Error(t, err)
		var verr *tool.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "search", verr.Tool)
	})

	t.Run("wrong type fails", func(t *testing.T) {
		err := tool.ValidateArgs(desc, map[string]any{"query": float64(1)})
		assert.Error(t, err)
	})

	t.Run("nil schema accepts anything", func(t *testing.T) {
		err := tool.ValidateArgs(tool.Descriptor{Name: "free"}, map[string]any{"x": "y"})
		assert.NoError(t, err)
	})
}

func TestDecodeInto(t *testing.T) {
	type searchArgs struct {
		Query string `json:"query"`
		Limit int    `json:"limit"`
	}

	args, err := tool.DecodeInto[searchArgs](map[string]any{
		"query": "weather",
		"limit": float64(3),
	})
	require.NoError(t, err)
	assert.Equal(t, "weather", args.Query)
	assert.Equal(t, 3, args.Limit)
}

func TestEncodeResult(t *testing.T) {
	t.Run("string passes through", func(t *testing.T) {
		out, err := tool.EncodeResult("plain")
		require.NoError(t, err)
		assert.Equal(t, "plain", out)
	})

	t.Run("struct is marshaled", func(t *testing.T) {
		out, err := tool.EncodeResult(map[string]any{"ok": true})
		require.NoError(t, err)
		assert.JSONEq(t, `{"ok":true}`, out)
	})

	t.Run("nil is empty", func(t *testing.T) {
		out, err := tool.EncodeResult(nil)
		require.NoError(t, err)
		assert.Equal(t, "", out)
	})
}
