// Package notify provides change notification for settings documents.
//
// It implements an observer pattern so hosts can react to field edits,
// resets, and document reloads. Observers subscribe globally or to a
// path prefix; delivery is synchronous by default with an optional
// buffered asynchronous mode.
package notify

import (
	"sync"
)

// ChangeType represents the type of document change.
type ChangeType int

const (
	// ChangeSet indicates a field value was set or updated.
	ChangeSet ChangeType = iota

	// ChangeDelete indicates a field override was removed.
	ChangeDelete

	// ChangeReset indicates the override set was cleared or replaced.
	ChangeReset

	// ChangeReload indicates the defaults tree was reloaded.
	ChangeReload
)

// String returns the change type name.
func (c ChangeType) String() string {
	switch c {
	case ChangeSet:
		return "set"
	case ChangeDelete:
		return "delete"
	case ChangeReset:
		return "reset"
	case ChangeReload:
		return "reload"
	default:
		return "unknown"
	}
}

// Change represents a document change event.
type Change struct {
	// Path is the dotted path of the changed field. Empty for
	// document-wide events (reset, reload).
	Path string

	// Type is the type of change.
	Type ChangeType

	// Old is the previous effective value (may be nil).
	Old any

	// New is the new effective value (nil after a delete with no
	// default underneath).
	New any

	// Origin identifies what triggered the change ("edit", "import",
	// "share-link", "defaults", ...).
	Origin string
}

// Observer is called when document changes occur.
type Observer func(change Change)

// Subscription represents an active observer subscription.
type Subscription struct {
	id       uint64
	path     string
	notifier *Notifier
}

// Unsubscribe removes this subscription.
func (s *Subscription) Unsubscribe() {
	if s.notifier != nil {
		s.notifier.unsubscribe(s.id)
	}
}

// Notifier manages document change subscriptions.
type Notifier struct {
	mu sync.RWMutex

	// Global observers that receive all changes
	globalObservers map[uint64]Observer

	// Path-specific observers
	pathObservers map[string]map[uint64]Observer

	// Next subscription ID
	nextID uint64

	// Whether to notify synchronously or asynchronously
	async bool

	// Buffer for async notifications
	buffer chan Change

	// Done channel for shutdown
	done chan struct{}

	// Wait group for async goroutine
	wg sync.WaitGroup

	// Closed flag for idempotent Close
	closed bool
}

// Option configures a Notifier.
type Option func(*Notifier)

// WithAsync enables asynchronous notification delivery.
func WithAsync(bufferSize int) Option {
	return func(n *Notifier) {
		if bufferSize > 0 {
			n.async = true
			n.buffer = make(chan Change, bufferSize)
		}
	}
}

// New creates a new Notifier.
func New(opts ...Option) *Notifier {
	n := &Notifier{
		globalObservers: make(map[uint64]Observer),
		pathObservers:   make(map[string]map[uint64]Observer),
		done:            make(chan struct{}),
	}

	for _, opt := range opts {
		opt(n)
	}

	if n.async {
		n.wg.Add(1)
		go n.processAsync()
	}

	return n
}

// Subscribe registers an observer for all changes.
func (n *Notifier) Subscribe(observer Observer) *Subscription {
	n.mu.Lock()
	defer n.mu.Unlock()

	id := n.nextID
	n.nextID++
	n.globalObservers[id] = observer

	return &Subscription{
		id:       id,
		notifier: n,
	}
}

// SubscribePath registers an observer for changes to a specific path.
// The observer is called for exact matches and for descendants, so
// subscribing to "ui" receives changes to "ui.fontSize". Document-wide
// events (empty path) reach every path observer.
func (n *Notifier) SubscribePath(path string, observer Observer) *Subscription {
	n.mu.Lock()
	defer n.mu.Unlock()

	id := n.nextID
	n.nextID++

	if n.pathObservers[path] == nil {
		n.pathObservers[path] = make(map[uint64]Observer)
	}
	n.pathObservers[path][id] = observer

	return &Subscription{
		id:       id,
		path:     path,
		notifier: n,
	}
}

// Notify sends a change notification to all relevant observers.
func (n *Notifier) Notify(change Change) {
	n.mu.RLock()
	if n.closed {
		n.mu.RUnlock()
		return
	}
	n.mu.RUnlock()

	if n.async {
		select {
		case n.buffer <- change:
		case <-n.done:
		}
		return
	}

	n.deliverChange(change)
}

// NotifySet is a convenience method for set changes.
func (n *Notifier) NotifySet(path string, oldValue, newValue any, origin string) {
	n.Notify(Change{
		Path:   path,
		Type:   ChangeSet,
		Old:    oldValue,
		New:    newValue,
		Origin: origin,
	})
}

// NotifyDelete is a convenience method for field reset changes.
func (n *Notifier) NotifyDelete(path string, oldValue, newValue any, origin string) {
	n.Notify(Change{
		Path:   path,
		Type:   ChangeDelete,
		Old:    oldValue,
		New:    newValue,
		Origin: origin,
	})
}

// NotifyReset is a convenience method for document-wide override
// replacement.
func (n *Notifier) NotifyReset(origin string) {
	n.Notify(Change{
		Type:   ChangeReset,
		Origin: origin,
	})
}

// NotifyReload is a convenience method for defaults reload events.
func (n *Notifier) NotifyReload(origin string) {
	n.Notify(Change{
		Type:   ChangeReload,
		Origin: origin,
	})
}

// Close shuts down the notifier. It is safe to call Close multiple times.
func (n *Notifier) Close() {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return
	}
	n.closed = true
	n.mu.Unlock()

	close(n.done)
	n.wg.Wait()
}

// unsubscribe removes an observer by ID.
func (n *Notifier) unsubscribe(id uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()

	delete(n.globalObservers, id)

	for path, observers := range n.pathObservers {
		delete(observers, id)
		if len(observers) == 0 {
			delete(n.pathObservers, path)
		}
	}
}

// deliverChange sends a change to all matching observers.
func (n *Notifier) deliverChange(change Change) {
	n.mu.RLock()

	var observers []Observer

	for _, obs := range n.globalObservers {
		observers = append(observers, obs)
	}

	if change.Path != "" {
		if pathObs, ok := n.pathObservers[change.Path]; ok {
			for _, obs := range pathObs {
				observers = append(observers, obs)
			}
		}

		for path, pathObs := range n.pathObservers {
			if isParentPath(path, change.Path) {
				for _, obs := range pathObs {
					observers = append(observers, obs)
				}
			}
		}
	} else {
		// Document-wide event, every path observer is affected.
		for _, pathObs := range n.pathObservers {
			for _, obs := range pathObs {
				observers = append(observers, obs)
			}
		}
	}

	n.mu.RUnlock()

	// Call observers outside the lock.
	for _, obs := range observers {
		obs(change)
	}
}

// processAsync handles asynchronous notification delivery.
func (n *Notifier) processAsync() {
	defer n.wg.Done()

	for {
		select {
		case change := <-n.buffer:
			n.deliverChange(change)
		case <-n.done:
			// Drain remaining buffered changes
			for {
				select {
				case change := <-n.buffer:
					n.deliverChange(change)
				default:
					return
				}
			}
		}
	}
}

// isParentPath checks if parent is a parent path of child.
// e.g., "ui" is parent of "ui.fontSize".
func isParentPath(parent, child string) bool {
	if len(parent) >= len(child) {
		return false
	}
	if parent == "" {
		return true
	}
	return child[:len(parent)] == parent && child[len(parent)] == '.'
}

// Batch collects multiple changes and delivers them as a group.
type Batch struct {
	notifier *Notifier
	changes  []Change
	mu       sync.Mutex
}

// NewBatch creates a new batch for collecting changes.
func (n *Notifier) NewBatch() *Batch {
	return &Batch{
		notifier: n,
		changes:  make([]Change, 0),
	}
}

// Add adds a change to the batch.
func (b *Batch) Add(change Change) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.changes = append(b.changes, change)
}

// Commit sends all batched changes to observers.
func (b *Batch) Commit() {
	b.mu.Lock()
	changes := b.changes
	b.changes = make([]Change, 0)
	b.mu.Unlock()

	for _, change := range changes {
		b.notifier.Notify(change)
	}
}

// Discard clears the batch without sending notifications.
func (b *Batch) Discard() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.changes = make([]Change, 0)
}

// Len returns the number of pending changes.
func (b *Batch) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.changes)
}
