// Package track derives the changed, custom, and branch path sets for
// a defaults/overrides tree pair.
//
// A leaf path is changed when its override value deep-differs from its
// default; it is custom when defaults has no value at that path at
// all. Branch paths are the intermediate containers implied by the
// leaves of either tree, kept so callers can distinguish a section
// from a field without walking.
//
// Recomputation is gated by reference identity of the two input
// trees, not by deep comparison. Mutations produce new top-level maps,
// so an unchanged reference pair means the cached sets are still
// valid.
package track

import (
	"reflect"
	"sort"
	"sync"

	"github.com/prefpane/prefpane/internal/settings/tree"
)

// Tracker caches the derived path sets for one tree pair.
type Tracker struct {
	mu        sync.RWMutex
	defaults  map[string]any
	overrides map[string]any
	valid     bool

	changed  map[string]bool
	custom   map[string]bool
	branches map[string]bool
}

// New creates a tracker with no observed trees. Every set is empty
// until Update is called.
func New() *Tracker {
	return &Tracker{}
}

// Update points the tracker at a tree pair. When both references match
// the previous pair the cached sets are kept; otherwise they are
// recomputed on next access.
func (t *Tracker) Update(defaults, overrides map[string]any) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.valid && sameRef(t.defaults, defaults) && sameRef(t.overrides, overrides) {
		return
	}

	t.defaults = defaults
	t.overrides = overrides
	t.recompute()
}

// recompute rebuilds all three sets. Caller holds the write lock.
func (t *Tracker) recompute() {
	changed := make(map[string]bool)
	custom := make(map[string]bool)

	tree.WalkLeaves(t.overrides, func(parts []string, value any) {
		path := tree.FormatPath(parts)
		defVal, exists := tree.GetParts(t.defaults, parts)
		if !exists {
			custom[path] = true
			changed[path] = true
			return
		}
		if !tree.Equal(value, defVal) {
			changed[path] = true
		}
	})

	branches := make(map[string]bool)
	for _, path := range tree.BranchPaths(t.defaults) {
		branches[path] = true
	}
	for _, path := range tree.BranchPaths(t.overrides) {
		branches[path] = true
	}

	t.changed = changed
	t.custom = custom
	t.branches = branches
	t.valid = true
}

// IsChanged reports whether the leaf at path differs from its default.
func (t *Tracker) IsChanged(path string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.changed[path]
}

// IsCustom reports whether the leaf at path has no default at all.
func (t *Tracker) IsCustom(path string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.custom[path]
}

// IsBranch reports whether path names an intermediate container in
// either tree.
func (t *Tracker) IsBranch(path string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.branches[path]
}

// Changed returns the changed leaf paths, sorted.
func (t *Tracker) Changed() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return sortedPaths(t.changed)
}

// Custom returns the custom leaf paths, sorted.
func (t *Tracker) Custom() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return sortedPaths(t.custom)
}

// Branches returns the branch paths, sorted.
func (t *Tracker) Branches() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return sortedPaths(t.branches)
}

func sortedPaths(set map[string]bool) []string {
	paths := make([]string, 0, len(set))
	for path := range set {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}

func sameRef(a, b map[string]any) bool {
	return reflect.ValueOf(a).Pointer() == reflect.ValueOf(b).Pointer()
}
