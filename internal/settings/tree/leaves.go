package tree

import "sort"

// IsLeaf reports whether a value is atomic for path enumeration.
// Primitives, nil, arrays, and empty maps are leaves; a non-empty map
// is a branch whose descendants are enumerated instead.
func IsLeaf(v any) bool {
	m, ok := v.(map[string]any)
	return !ok || len(m) == 0
}

// WalkLeaves visits every leaf of the tree in sorted key order. The
// parts slice is reused between calls; callers that retain it must
// copy.
func WalkLeaves(data map[string]any, fn func(parts []string, value any)) {
	walkLeaves(data, nil, fn)
}

func walkLeaves(data map[string]any, prefix []string, fn func(parts []string, value any)) {
	for _, key := range sortedKeys(data) {
		val := data[key]
		parts := append(prefix, key)
		if nested, ok := val.(map[string]any); ok && len(nested) > 0 {
			walkLeaves(nested, parts, fn)
		} else {
			fn(parts, val)
		}
	}
}

// Leaves returns the dotted paths of every leaf, sorted.
func Leaves(data map[string]any) []string {
	var paths []string
	WalkLeaves(data, func(parts []string, _ any) {
		paths = append(paths, FormatPath(parts))
	})
	sort.Strings(paths)
	return paths
}

// Flatten flattens a nested tree into a single-level map from dotted
// leaf path to value. Empty maps appear as leaves with a map value.
func Flatten(data map[string]any) map[string]any {
	result := make(map[string]any)
	WalkLeaves(data, func(parts []string, value any) {
		result[FormatPath(parts)] = value
	})
	return result
}

// Unflatten converts a flattened map with dotted (or pointer) keys
// back into a nested tree. Later entries overwrite earlier ones when
// a path runs through a previously set non-map value.
func Unflatten(flat map[string]any) map[string]any {
	result := make(map[string]any)
	for _, path := range sortedKeys(flat) {
		setParts(result, ParsePath(path), flat[path])
	}
	return result
}

// setParts mutates a tree under construction. Only Unflatten and the
// diff builder use it; published trees are never mutated in place.
func setParts(data map[string]any, parts []string, value any) {
	if len(parts) == 0 {
		return
	}
	current := data
	for i := 0; i < len(parts)-1; i++ {
		if next, ok := current[parts[i]].(map[string]any); ok {
			current = next
			continue
		}
		next := make(map[string]any)
		current[parts[i]] = next
		current = next
	}
	current[parts[len(parts)-1]] = value
}

// BranchPaths returns the dotted paths of every intermediate
// container (non-leaf) in the tree, sorted.
func BranchPaths(data map[string]any) []string {
	var paths []string
	var walk func(m map[string]any, prefix []string)
	walk = func(m map[string]any, prefix []string) {
		for _, key := range sortedKeys(m) {
			nested, ok := m[key].(map[string]any)
			if !ok || len(nested) == 0 {
				continue
			}
			parts := append(prefix, key)
			paths = append(paths, FormatPath(parts))
			walk(nested, parts)
		}
	}
	walk(data, nil)
	sort.Strings(paths)
	return paths
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
