package tree

import "sort"

// Diff returns the minimal delta of overrides against base: a nested
// tree containing exactly the override leaves that are absent from
// base or structurally unequal to base's value at the same path.
// Intermediate containers appear only where needed to reach an
// included leaf. Keys present in base but absent from overrides are
// never reported; omission means "use the default", not removal.
//
// Merging the result back over base reproduces the effective values
// of merging overrides over base.
func Diff(overrides, base map[string]any) map[string]any {
	delta := make(map[string]any)
	if overrides == nil {
		return delta
	}

	for key, overVal := range overrides {
		baseVal, exists := base[key]
		if !exists {
			delta[key] = cloneValue(overVal)
			continue
		}

		overMap, overIsMap := overVal.(map[string]any)
		baseMap, baseIsMap := baseVal.(map[string]any)
		if overIsMap && baseIsMap && len(overMap) > 0 {
			sub := Diff(overMap, baseMap)
			if len(sub) > 0 {
				delta[key] = sub
			}
			continue
		}

		if !Equal(overVal, baseVal) {
			delta[key] = cloneValue(overVal)
		}
	}

	return delta
}

// DiffPaths compares two trees leaf-by-leaf and returns the dotted
// paths that were added, modified, or removed going from old to new,
// each sorted. Unlike Diff this reports removals, which makes it the
// review operation for comparing a baseline against a full effective
// tree; it must not feed the export path.
func DiffPaths(old, new map[string]any) (added, modified, removed []string) {
	oldFlat := Flatten(old)
	newFlat := Flatten(new)

	for path, newVal := range newFlat {
		if oldVal, exists := oldFlat[path]; exists {
			if !Equal(oldVal, newVal) {
				modified = append(modified, path)
			}
		} else {
			added = append(added, path)
		}
	}

	for path := range oldFlat {
		if _, exists := newFlat[path]; !exists {
			removed = append(removed, path)
		}
	}

	sort.Strings(added)
	sort.Strings(modified)
	sort.Strings(removed)
	return added, modified, removed
}

// EntryKind classifies a delta leaf.
type EntryKind uint8

const (
	// EntryAdded marks an override leaf with no corresponding default.
	EntryAdded EntryKind = iota
	// EntryModified marks an override leaf that differs from its default.
	EntryModified
)

// String returns a human-readable name for the kind.
func (k EntryKind) String() string {
	switch k {
	case EntryAdded:
		return "added"
	case EntryModified:
		return "modified"
	default:
		return "unknown"
	}
}

// Entry describes one differing leaf for review display.
type Entry struct {
	Path    string
	Pointer string
	Kind    EntryKind
	Value   any
	Default any
}

// Entries classifies every differing override leaf against base,
// sorted by path. Leaves equal to their default are omitted.
func Entries(overrides, base map[string]any) []Entry {
	var entries []Entry
	WalkLeaves(overrides, func(parts []string, value any) {
		baseVal, exists := GetParts(base, parts)
		if exists && Equal(value, baseVal) {
			return
		}
		entry := Entry{
			Path:    FormatPath(parts),
			Pointer: FormatPointer(parts),
			Kind:    EntryModified,
			Value:   cloneValue(value),
			Default: cloneValue(baseVal),
		}
		if !exists {
			entry.Kind = EntryAdded
			entry.Default = nil
		}
		entries = append(entries, entry)
	})
	sort.Slice(entries, func(i, j int) bool { return entries[i].Path < entries[j].Path })
	return entries
}
