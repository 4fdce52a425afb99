package tree

import "strings"

// ParsePath splits a path string into key components. A leading "/"
// selects JSON Pointer parsing (RFC 6901, with ~0/~1 unescaping);
// anything else is split on ".". The empty string addresses the root
// and parses to nil. Dotted paths cannot address keys that contain a
// dot; use the pointer form for those.
func ParsePath(path string) []string {
	if path == "" {
		return nil
	}
	if strings.HasPrefix(path, "/") {
		return parsePointer(path)
	}
	return strings.Split(path, ".")
}

// FormatPath joins components into a dotted path. Components are not
// escaped, so the result is ambiguous for keys containing dots.
func FormatPath(parts []string) string {
	return strings.Join(parts, ".")
}

// ParentPath drops the last component of a path, preserving the
// input's addressing convention. The root's parent is the root ("").
func ParentPath(path string) string {
	parts := ParsePath(path)
	if len(parts) <= 1 {
		return ""
	}
	if strings.HasPrefix(path, "/") {
		return FormatPointer(parts[:len(parts)-1])
	}
	return FormatPath(parts[:len(parts)-1])
}

// Get retrieves the value at path. The second return is false when any
// intermediate step is not a map or a key is absent; absence is a
// normal result, never a panic or error.
func Get(data map[string]any, path string) (any, bool) {
	if data == nil {
		return nil, false
	}
	parts := ParsePath(path)
	if len(parts) == 0 {
		return data, true
	}
	return GetParts(data, parts)
}

// GetParts is Get for an already-parsed component sequence. It avoids
// re-formatting round trips, which matters for keys containing dots.
func GetParts(data map[string]any, parts []string) (any, bool) {
	current := any(data)

	for _, part := range parts {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}

		val, exists := m[part]
		if !exists {
			return nil, false
		}

		current = val
	}

	return current, true
}
