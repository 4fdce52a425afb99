package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prefpane/prefpane/internal/settings"
)

func newTestDoc(t *testing.T) *settings.Document {
	t.Helper()
	doc, err := settings.New(map[string]any{
		"ui": map[string]any{"theme": "dark"},
	})
	require.NoError(t, err)
	return doc
}

func TestManager_CreateAndGet(t *testing.T) {
	m := NewManager()
	defer m.Close()

	s := m.Create(newTestDoc(t))
	require.NotEmpty(t, s.ID)

	got, err := m.Get(s.ID)
	require.NoError(t, err)
	assert.Same(t, s, got)

	_, err = m.Get("nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestManager_List(t *testing.T) {
	m := NewManager()
	defer m.Close()

	first := m.Create(newTestDoc(t))
	second := m.Create(newTestDoc(t))

	list := m.List()
	require.Len(t, list, 2)

	ids := map[string]bool{list[0].ID: true, list[1].ID: true}
	assert.True(t, ids[first.ID] && ids[second.ID], "List() missing created sessions")
	assert.False(t, list[0].CreatedAt.After(list[1].CreatedAt), "List() not ordered by creation time")
}

func TestManager_Delete(t *testing.T) {
	m := NewManager()
	defer m.Close()

	s := m.Create(newTestDoc(t))
	require.NoError(t, m.Delete(s.ID))
	assert.Equal(t, 0, m.Len())

	assert.ErrorIs(t, m.Delete(s.ID), ErrNotFound)
}

func TestManager_Sweep(t *testing.T) {
	m := NewManager(WithTTL(30*time.Millisecond), WithSweepInterval(time.Hour))
	defer m.Close()

	idle := m.Create(newTestDoc(t))
	time.Sleep(60 * time.Millisecond)
	active := m.Create(newTestDoc(t))

	m.Sweep()

	_, err := m.Get(idle.ID)
	assert.ErrorIs(t, err, ErrNotFound, "idle session survived sweep")

	_, err = m.Get(active.ID)
	assert.NoError(t, err, "active session evicted")
}

func TestManager_SweepDisabledByDefault(t *testing.T) {
	m := NewManager()
	defer m.Close()

	s := m.Create(newTestDoc(t))
	time.Sleep(20 * time.Millisecond)
	m.Sweep()

	_, err := m.Get(s.ID)
	assert.NoError(t, err, "session evicted without TTL")
}

func TestSession_Update(t *testing.T) {
	m := NewManager()
	defer m.Close()

	s := m.Create(newTestDoc(t))
	before := s.UpdatedAt()
	time.Sleep(5 * time.Millisecond)

	err := s.Update(func(doc *settings.Document) error {
		return doc.Set("ui.theme", "light")
	})
	require.NoError(t, err)

	assert.True(t, s.UpdatedAt().After(before), "UpdatedAt not advanced by Update")

	val, err := s.Doc.GetString("ui.theme")
	require.NoError(t, err)
	assert.Equal(t, "light", val)
}

func TestManager_CloseIdempotent(t *testing.T) {
	m := NewManager(WithTTL(time.Minute))
	m.Create(newTestDoc(t))

	m.Close()
	m.Close()

	assert.Equal(t, 0, m.Len())
}
