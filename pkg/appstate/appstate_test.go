package appstate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/musecraft/musecraft/internal/markdown"
)

type memStorage struct {
	values map[string]string
}

func newMemStorage() *memStorage { return &memStorage{values: make(map[string]string)} }

func (m *memStorage) Get(key string) (string, bool) {
	v, ok := m.values[key]
	return v, ok
}

func (m *memStorage) Set(key, value string) { m.values[key] = value }
func (m *memStorage) Remove(key string)     { delete(m.values, key) }

func TestReduceRequestLifecycle(t *testing.T) {
	s := NewState()

	s = Reduce(s, Action{Type: ActionRequestStarted, Module: ModuleWriting})
	assert.Equal(t, StatusLoading, s.Modules[ModuleWriting].Status)

	s = Reduce(s, Action{Type: ActionRequestSucceeded, Module: ModuleWriting, Result: "### Done"})
	assert.Equal(t, StatusSuccess, s.Modules[ModuleWriting].Status)
	assert.Equal(t, "### Done", s.Modules[ModuleWriting].Result)

	// re-enterable: success -> loading on the next dispatch
	s = Reduce(s, Action{Type: ActionRequestStarted, Module: ModuleWriting})
	assert.Equal(t, StatusLoading, s.Modules[ModuleWriting].Status)
	assert.Empty(t, s.Modules[ModuleWriting].Result)

	s = Reduce(s, Action{Type: ActionRequestFailed, Module: ModuleWriting, Error: "boom"})
	assert.Equal(t, StatusError, s.Modules[ModuleWriting].Status)
	assert.Equal(t, "boom", s.Modules[ModuleWriting].Error)
}

func TestReduceModulesAreIndependent(t *testing.T) {
	s := NewState()
	s = Reduce(s, Action{Type: ActionRequestStarted, Module: ModuleDrawing})

	assert.Equal(t, StatusLoading, s.Modules[ModuleDrawing].Status)
	assert.Equal(t, StatusIdle, s.Modules[ModuleSoundDesign].Status)
	assert.Equal(t, StatusIdle, s.Modules[ModuleChordProgression].Status)
}

func TestReduceDoesNotMutateInput(t *testing.T) {
	before := NewState()
	_ = Reduce(before, Action{Type: ActionRequestStarted, Module: ModuleWriting})
	assert.Equal(t, StatusIdle, before.Modules[ModuleWriting].Status)
}

func TestLoginPersistsSession(t *testing.T) {
	storage := newMemStorage()
	store := NewStore(storage)

	state := store.Dispatch(Action{
		Type:  ActionLogin,
		User:  User{ID: "u1", Email: "a@b.c", Name: "Ada"},
		Token: "tok-123",
	})

	assert.True(t, state.Authenticated)
	assert.Equal(t, "tok-123", state.Token)
	assert.Equal(t, "tok-123", storage.values[tokenKey])
	assert.Contains(t, storage.values[userKey], `"id":"u1"`)
}

func TestLogoutClearsSessionAndStorage(t *testing.T) {
	storage := newMemStorage()
	store := NewStore(storage)
	store.Dispatch(Action{Type: ActionLogin, User: User{ID: "u1"}, Token: "tok"})

	state := store.Dispatch(Action{Type: ActionLogout})

	assert.False(t, state.Authenticated)
	assert.Empty(t, state.Token)
	assert.Empty(t, state.User.ID)
	assert.Empty(t, storage.values)
}

func TestRestoreReadsWithoutWriting(t *testing.T) {
	storage := newMemStorage()
	storage.Set(tokenKey, "tok-restored")
	storage.Set(userKey, `{"id":"u2","email":"x@y.z","name":"Max"}`)
	writes := len(storage.values)

	store := NewStore(storage)
	require.True(t, store.Restore())

	state := store.State()
	assert.True(t, state.Authenticated)
	assert.Equal(t, "tok-restored", state.Token)
	assert.Equal(t, "u2", state.User.ID)
	assert.Len(t, storage.values, writes, "restore must not write to storage")
}

func TestRestoreWithoutSession(t *testing.T) {
	store := NewStore(newMemStorage())
	assert.False(t, store.Restore())
	assert.False(t, store.State().Authenticated)
}

// A hostile display name is stored verbatim and never comes back as
// renderable markup.
func TestScriptTagNameStoredRawAndRenderedInert(t *testing.T) {
	storage := newMemStorage()
	store := NewStore(storage)

	name := `<script>alert("xss")</script>`
	store.Dispatch(Action{Type: ActionLogin, User: User{ID: "u1", Name: name}, Token: "tok"})

	assert.Contains(t, storage.values[userKey], `<script>`)
	assert.NotContains(t, storage.values[userKey], `<`)

	fresh := NewStore(storage)
	require.True(t, fresh.Restore())
	assert.Equal(t, name, fresh.State().User.Name)

	nodes := markdown.Render("Welcome back, " + fresh.State().User.Name)
	require.Len(t, nodes, 1)
	assert.Equal(t, markdown.KindParagraph, nodes[0].Kind)
	assert.Equal(t, "Welcome back, "+name, nodes[0].Text())
}
