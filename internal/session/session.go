// Package session manages in-memory settings documents for the HTTP
// host. Each session binds one document to an ID; documents are not
// persisted.
package session

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/prefpane/prefpane/internal/settings"
)

// ErrNotFound is returned when a session ID is unknown.
var ErrNotFound = errors.New("session not found")

// Session binds a settings document to an ID.
type Session struct {
	ID        string
	Doc       *settings.Document
	CreatedAt time.Time

	mu        sync.Mutex
	updatedAt time.Time
}

// Touch records activity on the session.
func (s *Session) Touch() {
	s.mu.Lock()
	s.updatedAt = time.Now()
	s.mu.Unlock()
}

// UpdatedAt returns the time of the last mutation or access.
func (s *Session) UpdatedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updatedAt
}

// Update runs fn holding the session's write lock, so compound
// mutations from concurrent requests do not interleave. Activity is
// recorded whether or not fn fails.
func (s *Session) Update(fn func(doc *settings.Document) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := fn(s.Doc)
	s.updatedAt = time.Now()
	return err
}

// Manager tracks sessions by ID.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	closed   bool

	ttl      time.Duration
	interval time.Duration
	closeCh  chan struct{}
	wg       sync.WaitGroup
}

// Option configures a Manager.
type Option func(*Manager)

// WithTTL evicts sessions idle for longer than ttl. Zero, the default,
// keeps sessions until deleted.
func WithTTL(ttl time.Duration) Option {
	return func(m *Manager) { m.ttl = ttl }
}

// WithSweepInterval sets how often idle sessions are checked.
func WithSweepInterval(d time.Duration) Option {
	return func(m *Manager) { m.interval = d }
}

// NewManager creates a session manager.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		sessions: make(map[string]*Session),
		closeCh:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}

	if m.ttl > 0 {
		if m.interval <= 0 {
			m.interval = m.ttl / 4
		}
		if m.interval < 100*time.Millisecond {
			m.interval = 100 * time.Millisecond
		}
		m.wg.Add(1)
		go m.sweepLoop()
	}

	return m
}

// Create registers a new session for the given document.
func (m *Manager) Create(doc *settings.Document) *Session {
	now := time.Now()
	s := &Session{
		ID:        uuid.New().String(),
		Doc:       doc,
		CreatedAt: now,
		updatedAt: now,
	}

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()

	return s
}

// Get retrieves a session by ID and records activity on it.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	s.Touch()
	return s, nil
}

// List returns all sessions ordered by creation time.
func (m *Manager) List() []*Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Delete removes a session and closes its document.
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	s.Doc.Close()
	return nil
}

// Sweep evicts sessions idle for longer than the TTL. A no-op when no
// TTL is set.
func (m *Manager) Sweep() {
	if m.ttl <= 0 {
		return
	}
	cutoff := time.Now().Add(-m.ttl)

	m.mu.Lock()
	var expired []*Session
	for id, s := range m.sessions {
		if s.UpdatedAt().Before(cutoff) {
			delete(m.sessions, id)
			expired = append(expired, s)
		}
	}
	m.mu.Unlock()

	for _, s := range expired {
		s.Doc.Close()
	}
}

// Close stops the sweeper and closes every session document. Safe to
// call more than once.
func (m *Manager) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	close(m.closeCh)
	remaining := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		remaining = append(remaining, s)
	}
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	m.wg.Wait()
	for _, s := range remaining {
		s.Doc.Close()
	}
}

func (m *Manager) sweepLoop() {
	defer m.wg.Done()

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.closeCh:
			return
		case <-ticker.C:
			m.Sweep()
		}
	}
}
