package tools

import (
	"encoding/json"
	"fmt"

	"github.com/lakefhir/healthlake-mcp-server/toolerr"
)

// requireString fetches a required string argument.
func requireString(args map[string]any, name string) (string, error) {
	v, ok := args[name]
	if !ok || v == nil {
		return "", toolerr.MissingParam(name)
	}
	s, ok := v.(string)
	if !ok {
		return "", toolerr.Validationf("parameter %q must be a string", name)
	}
	if s == "" {
		return "", toolerr.MissingParam(name)
	}
	return s, nil
}

// optionalString fetches an optional string argument, empty when absent.
func optionalString(args map[string]any, name string) (string, error) {
	v, ok := args[name]
	if !ok || v == nil {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", toolerr.Validationf("parameter %q must be a string", name)
	}
	return s, nil
}

// optionalInt32 fetches an optional integer argument. JSON numbers arrive as
// float64 from the MCP transport.
func optionalInt32(args map[string]any, name string) (int32, error) {
	v, ok := args[name]
	if !ok || v == nil {
		return 0, nil
	}
	switch n := v.(type) {
	case float64:
		return int32(n), nil
	case int:
		return int32(n), nil
	case int32:
		return n, nil
	case int64:
		return int32(n), nil
	default:
		return 0, toolerr.Validationf("parameter %q must be an integer", name)
	}
}

// optionalBool fetches an optional boolean argument, false when absent.
func optionalBool(args map[string]any, name string) (bool, error) {
	v, ok := args[name]
	if !ok || v == nil {
		return false, nil
	}
	b, ok := v.(bool)
	if !ok {
		return false, toolerr.Validationf("parameter %q must be a boolean", name)
	}
	return b, nil
}

// requireObject fetches a required JSON object argument.
func requireObject(args map[string]any, name string) (map[string]any, error) {
	v, ok := args[name]
	if !ok || v == nil {
		return nil, toolerr.MissingParam(name)
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, toolerr.Validationf("parameter %q must be a JSON object", name)
	}
	return m, nil
}

// optionalStringMap fetches an optional object of string values, used for
// FHIR search parameters. Non-string values are stringified so numeric
// arguments like _count still work.
func optionalStringMap(args map[string]any, name string) (map[string]string, error) {
	v, ok := args[name]
	if !ok || v == nil {
		return nil, nil
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, toolerr.Validationf("parameter %q must be a JSON object", name)
	}
	out := make(map[string]string, len(m))
	for k, raw := range m {
		switch s := raw.(type) {
		case string:
			out[k] = s
		case float64:
			out[k] = trimFloat(s)
		case bool:
			out[k] = fmt.Sprintf("%t", s)
		default:
			return nil, toolerr.Validationf("parameter %q values must be strings", name)
		}
	}
	return out, nil
}

func trimFloat(f float64) string {
	if f == float64(int64(f)) {
		return fmt.Sprintf("%d", int64(f))
	}
	return fmt.Sprintf("%g", f)
}

// bindArg decodes one argument into a typed struct through a JSON round
// trip, honoring the struct's json tags.
func bindArg(args map[string]any, name string, v any) error {
	raw, ok := args[name]
	if !ok || raw == nil {
		return nil
	}
	b, err := json.Marshal(raw)
	if err != nil {
		return toolerr.Validationf("parameter %q is not serializable: %v", name, err)
	}
	if err := json.Unmarshal(b, v); err != nil {
		return toolerr.Validationf("parameter %q has the wrong shape: %v", name, err)
	}
	return nil
}
