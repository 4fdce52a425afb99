// Package tree provides the pure operations on nested settings trees
// that the reconciliation engine is built from: deep merge, minimal
// diff, path addressing, and point mutations with structural sharing.
//
// A settings tree is a map[string]any whose values are drawn from the
// JSON kind set: nil, bool, float64, string, []any, and nested
// map[string]any. Normalize coerces decoder output (TOML, YAML,
// json.Number) into this set so every other operation can rely on it.
package tree

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrUnsupportedKind reports a value outside the settings kind set.
var ErrUnsupportedKind = errors.New("unsupported value kind")

// ErrNonStringKey reports a decoded map whose key is not a string.
var ErrNonStringKey = errors.New("non-string map key")

// Normalize returns a copy of tree with every value coerced into the
// JSON kind set. Integer kinds and json.Number become float64,
// map[any]any becomes map[string]any, and TOML/YAML timestamps become
// RFC 3339 strings.
func Normalize(t map[string]any) (map[string]any, error) {
	if t == nil {
		return map[string]any{}, nil
	}
	out, err := normalizeMap(t, "")
	if err != nil {
		return nil, err
	}
	return out, nil
}

// NormalizeValue coerces a single value into the JSON kind set.
func NormalizeValue(v any) (any, error) {
	return normalizeValue(v, "")
}

func normalizeMap(m map[string]any, at string) (map[string]any, error) {
	out := make(map[string]any, len(m))
	for key, val := range m {
		nv, err := normalizeValue(val, childPath(at, key))
		if err != nil {
			return nil, err
		}
		out[key] = nv
	}
	return out, nil
}

func normalizeValue(v any, at string) (any, error) {
	switch val := v.(type) {
	case nil, bool, string, float64:
		return val, nil
	case float32:
		return float64(val), nil
	case int:
		return float64(val), nil
	case int8:
		return float64(val), nil
	case int16:
		return float64(val), nil
	case int32:
		return float64(val), nil
	case int64:
		return float64(val), nil
	case uint:
		return float64(val), nil
	case uint8:
		return float64(val), nil
	case uint16:
		return float64(val), nil
	case uint32:
		return float64(val), nil
	case uint64:
		return float64(val), nil
	case json.Number:
		f, err := val.Float64()
		if err != nil {
			return nil, fmt.Errorf("normalize %s: %w: %v", at, ErrUnsupportedKind, err)
		}
		return f, nil
	case time.Time:
		return val.Format(time.RFC3339), nil
	case map[string]any:
		return normalizeMap(val, at)
	case map[any]any:
		out := make(map[string]any, len(val))
		for key, elem := range val {
			ks, ok := key.(string)
			if !ok {
				return nil, fmt.Errorf("normalize %s: %w: %T", at, ErrNonStringKey, key)
			}
			nv, err := normalizeValue(elem, childPath(at, ks))
			if err != nil {
				return nil, err
			}
			out[ks] = nv
		}
		return out, nil
	case []any:
		out := make([]any, len(val))
		for i, elem := range val {
			nv, err := normalizeValue(elem, fmt.Sprintf("%s[%d]", at, i))
			if err != nil {
				return nil, err
			}
			out[i] = nv
		}
		return out, nil
	default:
		return nil, fmt.Errorf("normalize %s: %w: %T", at, ErrUnsupportedKind, v)
	}
}

func childPath(at, key string) string {
	if at == "" {
		return key
	}
	return at + "." + key
}

// KindOf names a value's JSON kind for diagnostics.
func KindOf(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "bool"
	case float64, float32, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, json.Number:
		return "number"
	case string:
		return "string"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}
