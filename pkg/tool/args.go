package tool

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kaptinlin/jsonrepair"
	"github.com/mitchellh/mapstructure"
)

// ValidationError reports tool arguments that failed schema validation.
// It is recoverable: the loop converts it into a tool-result message so the
// model can correct itself.
type ValidationError struct {
	Tool   string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid arguments for tool %q: %s", e.Tool, e.Reason)
}

// DecodeArgs parses the raw JSON argument payload emitted by the model.
// Models occasionally emit slightly malformed JSON (unquoted keys, trailing
// commas, truncated fragments); on a parse failure the payload is repaired
// and parsed once more before giving up.
func DecodeArgs(raw string) (map[string]any, error) {
	if strings.TrimSpace(raw) == "" {
		return map[string]any{}, nil
	}

	var args map[string]any
	if err := json.Unmarshal([]byte(raw), &args); err != nil {
		repaired, repairErr := jsonrepair.JSONRepair(raw)
		if repairErr != nil {
			return nil, fmt.Errorf("failed to parse tool arguments: %w", err)
		}
		if err := json.Unmarshal([]byte(repaired), &args); err != nil {
			return nil, fmt.Errorf("failed to parse repaired tool arguments: %w", err)
		}
	}
	return args, nil
}

// ValidateArgs checks the decoded arguments against the descriptor's schema.
func ValidateArgs(d Descriptor, args map[string]any) error {
	if d.Parameters == nil {
		return nil
	}
	if err := d.Parameters.VisitJSON(anyMap(args)); err != nil {
		return &ValidationError{Tool: d.Name, Reason: err.Error()}
	}
	return nil
}

// DecodeInto maps loosely-typed arguments onto a typed struct using its
// json field tags.
func DecodeInto[T any](args map[string]any) (T, error) {
	var out T
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		Result:           &out,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return out, fmt.Errorf("failed to build argument decoder: %w", err)
	}
	if err := dec.Decode(args); err != nil {
		return out, fmt.Errorf("failed to decode arguments: %w", err)
	}
	return out, nil
}

// EncodeResult renders a tool result as the textual content of a
// tool-result message. Strings pass through untouched.
func EncodeResult(result any) (string, error) {
	if result == nil {
		return "", nil
	}
	if s, ok := result.(string); ok {
		return s, nil
	}
	data, err := json.Marshal(result)
	if err != nil {
		return "", fmt.Errorf("failed to encode tool result: %w", err)
	}
	return string(data), nil
}

// anyMap widens the map type so schema validation sees plain JSON values.
func anyMap(m map[string]any) any {
	if m == nil {
		return map[string]any{}
	}
	return m
}
