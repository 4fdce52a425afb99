package tree

import (
	"errors"
	"fmt"
)

// Mutation sentinel errors.
var (
	// ErrPathConflict reports a set that would descend through a
	// non-container value.
	ErrPathConflict = errors.New("path conflicts with existing value")
	// ErrInvalidPath reports a path that cannot name a mutable location,
	// such as the root.
	ErrInvalidPath = errors.New("invalid path")
)

// ConflictError describes a structural conflict during SetAt: the
// component at At holds a non-container value of the named kind, so
// the full Path cannot be created.
type ConflictError struct {
	Path string
	At   string
	Kind string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("cannot set %q: %q is a %s, not an object", e.Path, e.At, e.Kind)
}

// Is reports whether target is ErrPathConflict.
func (e *ConflictError) Is(target error) bool {
	return target == ErrPathConflict
}

// SetAt sets value at path and returns the new tree. The input is
// never mutated: the returned tree is a fresh top-level map whose
// spine down to the parent of path is cloned, while every subtree off
// that spine keeps its original reference (structural sharing). The
// new top-level identity is what downstream caches key invalidation
// on.
//
// Missing or nil intermediate steps become fresh maps. An existing
// non-map, non-nil intermediate is a structural conflict: the input
// tree is returned unchanged together with a *ConflictError.
func SetAt(data map[string]any, path string, value any) (map[string]any, error) {
	parts := ParsePath(path)
	if len(parts) == 0 {
		return data, fmt.Errorf("set %q: %w", path, ErrInvalidPath)
	}

	out := shallowCopy(data)
	current := out
	for i := 0; i < len(parts)-1; i++ {
		existing, exists := current[parts[i]]
		if !exists || existing == nil {
			next := make(map[string]any)
			current[parts[i]] = next
			current = next
			continue
		}
		if m, ok := existing.(map[string]any); ok {
			next := shallowCopy(m)
			current[parts[i]] = next
			current = next
			continue
		}
		return data, &ConflictError{
			Path: path,
			At:   FormatPath(parts[:i+1]),
			Kind: KindOf(existing),
		}
	}

	current[parts[len(parts)-1]] = value
	return out, nil
}

// DeleteAt removes the value at path and returns the new tree, pruning
// any ancestor container the removal left empty. Like SetAt it clones
// only the spine. When the path does not resolve the input reference
// is returned unchanged with false, so caches keyed on identity stay
// valid across no-op deletes.
func DeleteAt(data map[string]any, path string) (map[string]any, bool) {
	parts := ParsePath(path)
	if data == nil || len(parts) == 0 {
		return data, false
	}
	if _, exists := GetParts(data, parts); !exists {
		return data, false
	}

	out := shallowCopy(data)
	spine := make([]map[string]any, 0, len(parts))
	spine = append(spine, out)
	current := out
	for i := 0; i < len(parts)-1; i++ {
		next := shallowCopy(current[parts[i]].(map[string]any))
		current[parts[i]] = next
		current = next
		spine = append(spine, next)
	}

	delete(current, parts[len(parts)-1])

	// Prune emptied containers bottom-up; the root always survives.
	for i := len(spine) - 1; i >= 1; i-- {
		if len(spine[i]) > 0 {
			break
		}
		delete(spine[i-1], parts[i-1])
	}

	return out, true
}

func shallowCopy(src map[string]any) map[string]any {
	dst := make(map[string]any, len(src)+1)
	for key, val := range src {
		dst[key] = val
	}
	return dst
}
