package settings

// GetString returns a string value at the given path.
func (d *Document) GetString(path string) (string, error) {
	v, ok := d.Get(path)
	if !ok {
		return "", ErrFieldNotFound
	}
	s, ok := v.(string)
	if !ok {
		return "", &TypeError{Path: path, Expected: "string", Actual: typeName(v)}
	}
	return s, nil
}

// GetInt returns an integer value at the given path. Numbers are stored
// as float64 and truncated.
func (d *Document) GetInt(path string) (int, error) {
	v, ok := d.Get(path)
	if !ok {
		return 0, ErrFieldNotFound
	}
	switch val := v.(type) {
	case int:
		return val, nil
	case int64:
		return int(val), nil
	case float64:
		return int(val), nil
	default:
		return 0, &TypeError{Path: path, Expected: "int", Actual: typeName(v)}
	}
}

// GetBool returns a boolean value at the given path.
func (d *Document) GetBool(path string) (bool, error) {
	v, ok := d.Get(path)
	if !ok {
		return false, ErrFieldNotFound
	}
	b, ok := v.(bool)
	if !ok {
		return false, &TypeError{Path: path, Expected: "bool", Actual: typeName(v)}
	}
	return b, nil
}

// GetFloat returns a float64 value at the given path.
func (d *Document) GetFloat(path string) (float64, error) {
	v, ok := d.Get(path)
	if !ok {
		return 0, ErrFieldNotFound
	}
	switch val := v.(type) {
	case float64:
		return val, nil
	case float32:
		return float64(val), nil
	case int:
		return float64(val), nil
	case int64:
		return float64(val), nil
	default:
		return 0, &TypeError{Path: path, Expected: "float64", Actual: typeName(v)}
	}
}

// GetStringSlice returns a string slice at the given path.
func (d *Document) GetStringSlice(path string) ([]string, error) {
	v, ok := d.Get(path)
	if !ok {
		return nil, ErrFieldNotFound
	}

	switch val := v.(type) {
	case []string:
		return val, nil
	case []any:
		result := make([]string, len(val))
		for i, item := range val {
			s, ok := item.(string)
			if !ok {
				return nil, &TypeError{Path: path, Expected: "[]string", Actual: typeName(v)}
			}
			result[i] = s
		}
		return result, nil
	default:
		return nil, &TypeError{Path: path, Expected: "[]string", Actual: typeName(v)}
	}
}

// GetMap returns an object value at the given path.
func (d *Document) GetMap(path string) (map[string]any, error) {
	v, ok := d.Get(path)
	if !ok {
		return nil, ErrFieldNotFound
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, &TypeError{Path: path, Expected: "map", Actual: typeName(v)}
	}
	return m, nil
}

// typeName returns the type name for error messages.
func typeName(v any) string {
	if v == nil {
		return "nil"
	}
	switch v.(type) {
	case string:
		return "string"
	case int, int64:
		return "int"
	case float64:
		return "float64"
	case bool:
		return "bool"
	case []string:
		return "[]string"
	case []any:
		return "[]any"
	case map[string]any:
		return "map"
	default:
		return "unknown"
	}
}
