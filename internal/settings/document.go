package settings

import (
	"fmt"
	"sync"

	"github.com/prefpane/prefpane/internal/settings/notify"
	"github.com/prefpane/prefpane/internal/settings/schema"
	"github.com/prefpane/prefpane/internal/settings/track"
	"github.com/prefpane/prefpane/internal/settings/tree"
)

// Document is a settings document: a defaults tree, an overrides tree
// holding user edits, and views derived from the pair. Mutations never
// modify a published tree; they build a new overrides tree and swap the
// reference, so readers holding an older tree keep a consistent
// snapshot.
//
// Trees returned by Document methods are shared snapshots. Callers must
// not modify them.
type Document struct {
	mu sync.RWMutex

	defaults  map[string]any
	overrides map[string]any

	// Derived views, rebuilt on demand after a mutation marks them
	// stale.
	effective map[string]any
	delta     map[string]any
	dirty     bool

	tracker   *track.Tracker
	notifier  *notify.Notifier
	validator *schema.Validator

	revision uint64
}

// Option configures a Document.
type Option func(*Document)

// WithOverrides seeds the document with an initial overrides tree.
func WithOverrides(overrides map[string]any) Option {
	return func(d *Document) {
		d.overrides = overrides
	}
}

// WithSchema attaches a schema; Validate checks overrides against it.
func WithSchema(s *schema.Schema) Option {
	return func(d *Document) {
		d.validator = schema.NewValidator(s)
	}
}

// WithValidator attaches a pre-configured validator.
func WithValidator(v *schema.Validator) Option {
	return func(d *Document) {
		d.validator = v
	}
}

// WithNotifier replaces the document's notifier, e.g. with an
// asynchronous one.
func WithNotifier(n *notify.Notifier) Option {
	return func(d *Document) {
		d.notifier = n
	}
}

// New creates a document over the given defaults. Both defaults and any
// seeded overrides are normalized; unsupported value kinds are
// rejected.
func New(defaults map[string]any, opts ...Option) (*Document, error) {
	nd, err := tree.Normalize(defaults)
	if err != nil {
		return nil, fmt.Errorf("normalize defaults: %w", err)
	}

	d := &Document{
		defaults:  nd,
		overrides: map[string]any{},
		tracker:   track.New(),
		notifier:  notify.New(),
		dirty:     true,
	}

	for _, opt := range opts {
		opt(d)
	}

	no, err := tree.Normalize(d.overrides)
	if err != nil {
		return nil, fmt.Errorf("normalize overrides: %w", err)
	}
	d.overrides = no

	return d, nil
}

// Close releases the document's notifier. Observers registered through
// Subscribe stop receiving changes.
func (d *Document) Close() {
	d.notifier.Close()
}

// ensureLocked rebuilds the derived views when a mutation has marked
// them stale. Callers must hold the write lock.
func (d *Document) ensureLocked() {
	if !d.dirty {
		return
	}
	d.effective = tree.Merge(d.defaults, d.overrides)
	d.delta = tree.Diff(d.overrides, d.defaults)
	d.tracker.Update(d.defaults, d.overrides)
	d.dirty = false
}

// Effective returns the merged view of defaults and overrides.
func (d *Document) Effective() map[string]any {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.ensureLocked()
	return d.effective
}

// Delta returns the minimal overrides tree: only values that differ
// from the defaults, never removals.
func (d *Document) Delta() map[string]any {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.ensureLocked()
	return d.delta
}

// Defaults returns the defaults tree.
func (d *Document) Defaults() map[string]any {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.defaults
}

// Overrides returns the overrides tree.
func (d *Document) Overrides() map[string]any {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.overrides
}

// Revision returns a counter that increases with every mutation.
func (d *Document) Revision() uint64 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.revision
}

// Get returns the effective value at path. The boolean reports whether
// the path exists; an explicit null is a value, so Get returns
// (nil, true) for it.
func (d *Document) Get(path string) (any, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.ensureLocked()
	return tree.Get(d.effective, path)
}

// GetDefault returns the default value at path.
func (d *Document) GetDefault(path string) (any, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return tree.Get(d.defaults, path)
}

// Entries lists every delta leaf with its effective and default value,
// sorted by path.
func (d *Document) Entries() []tree.Entry {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.ensureLocked()
	return tree.Entries(d.overrides, d.defaults)
}

// ReviewDiff compares the effective tree against the defaults and
// reports the leaf paths the overrides added, modified, or hid.
func (d *Document) ReviewDiff() (added, modified, removed []string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.ensureLocked()
	return tree.DiffPaths(d.defaults, d.effective)
}

// Changed returns the sorted paths whose effective value differs from
// the default.
func (d *Document) Changed() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.ensureLocked()
	return d.tracker.Changed()
}

// Custom returns the sorted paths set by the user with no counterpart
// in the defaults.
func (d *Document) Custom() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.ensureLocked()
	return d.tracker.Custom()
}

// Branches returns the sorted non-leaf paths of both trees.
func (d *Document) Branches() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.ensureLocked()
	return d.tracker.Branches()
}

// IsChanged reports whether the value at path differs from its default.
func (d *Document) IsChanged(path string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.ensureLocked()
	return d.tracker.IsChanged(path)
}

// IsCustom reports whether path is set by the user with no default.
func (d *Document) IsCustom(path string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.ensureLocked()
	return d.tracker.IsCustom(path)
}

// IsBranch reports whether path names a non-leaf node in either tree.
func (d *Document) IsBranch(path string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.ensureLocked()
	return d.tracker.IsBranch(path)
}

// Set writes a value at path in the overrides tree. Writing through an
// existing non-map value fails with *tree.ConflictError and leaves the
// document untouched. Observers are notified after the lock is
// released.
func (d *Document) Set(path string, value any) error {
	nv, err := tree.NormalizeValue(value)
	if err != nil {
		return err
	}

	d.mu.Lock()
	d.ensureLocked()
	old, _ := tree.Get(d.effective, path)

	next, err := tree.SetAt(d.overrides, path, nv)
	if err != nil {
		d.mu.Unlock()
		return err
	}

	d.overrides = next
	d.dirty = true
	d.revision++
	d.ensureLocked()
	val, _ := tree.Get(d.effective, path)
	n := d.notifier
	d.mu.Unlock()

	n.NotifySet(path, old, val, "edit")
	return nil
}

// Reset removes the override at path, letting the default show through
// again. Containers left empty by the removal are pruned. Returns false
// without touching the document when the path holds no override.
func (d *Document) Reset(path string) bool {
	d.mu.Lock()
	d.ensureLocked()
	old, _ := tree.Get(d.effective, path)

	next, removed := tree.DeleteAt(d.overrides, path)
	if !removed {
		d.mu.Unlock()
		return false
	}

	d.overrides = next
	d.dirty = true
	d.revision++
	d.ensureLocked()
	val, _ := tree.Get(d.effective, path)
	n := d.notifier
	d.mu.Unlock()

	n.NotifyDelete(path, old, val, "edit")
	return true
}

// ResetAll discards every override.
func (d *Document) ResetAll() {
	d.mu.Lock()
	if len(d.overrides) == 0 {
		d.mu.Unlock()
		return
	}
	d.overrides = map[string]any{}
	d.dirty = true
	d.revision++
	n := d.notifier
	d.mu.Unlock()

	n.NotifyReset("edit")
}

// ReplaceOverrides swaps in a whole new overrides tree, e.g. from an
// import or a share link. Observers receive one change per effective
// leaf that the swap added, modified, or removed, tagged with origin.
func (d *Document) ReplaceOverrides(overrides map[string]any, origin string) error {
	no, err := tree.Normalize(overrides)
	if err != nil {
		return fmt.Errorf("normalize overrides: %w", err)
	}

	d.mu.Lock()
	d.ensureLocked()
	oldEffective := d.effective

	d.overrides = no
	d.dirty = true
	d.revision++
	d.ensureLocked()
	newEffective := d.effective

	added, modified, removed := tree.DiffPaths(oldEffective, newEffective)
	batch := d.notifier.NewBatch()
	for _, p := range added {
		v, _ := tree.Get(newEffective, p)
		batch.Add(notify.Change{Path: p, Type: notify.ChangeSet, New: v, Origin: origin})
	}
	for _, p := range modified {
		ov, _ := tree.Get(oldEffective, p)
		nv, _ := tree.Get(newEffective, p)
		batch.Add(notify.Change{Path: p, Type: notify.ChangeSet, Old: ov, New: nv, Origin: origin})
	}
	for _, p := range removed {
		ov, _ := tree.Get(oldEffective, p)
		batch.Add(notify.Change{Path: p, Type: notify.ChangeDelete, Old: ov, Origin: origin})
	}
	d.mu.Unlock()

	batch.Commit()
	return nil
}

// ReloadDefaults swaps in a new defaults tree, keeping the overrides.
// Derived views and change tracking are rebuilt against the new
// baseline.
func (d *Document) ReloadDefaults(defaults map[string]any) error {
	nd, err := tree.Normalize(defaults)
	if err != nil {
		return fmt.Errorf("normalize defaults: %w", err)
	}

	d.mu.Lock()
	d.defaults = nd
	d.dirty = true
	d.revision++
	n := d.notifier
	d.mu.Unlock()

	n.NotifyReload("defaults")
	return nil
}

// Validate checks the overrides tree against the document's schema. A
// document without a schema validates everything. The result is a plain
// value; an invalid document is data, not an error.
func (d *Document) Validate() schema.Result {
	d.mu.RLock()
	v := d.validator
	overrides := d.overrides
	d.mu.RUnlock()

	if v == nil {
		return schema.Result{Valid: true, Errors: []schema.FieldError{}}
	}
	return v.Validate(overrides)
}

// ValidateValue checks a single value against the schema property at
// path, without writing it.
func (d *Document) ValidateValue(path string, value any) schema.Result {
	d.mu.RLock()
	v := d.validator
	d.mu.RUnlock()

	if v == nil {
		return schema.Result{Valid: true, Errors: []schema.FieldError{}}
	}
	return v.ValidatePath(path, value)
}

// Subscribe registers an observer for all changes.
func (d *Document) Subscribe(fn notify.Observer) *notify.Subscription {
	return d.notifier.Subscribe(fn)
}

// SubscribePath registers an observer for changes at path and below.
func (d *Document) SubscribePath(path string, fn notify.Observer) *notify.Subscription {
	return d.notifier.SubscribePath(path, fn)
}

// Notifier returns the document's notifier.
func (d *Document) Notifier() *notify.Notifier {
	return d.notifier
}
