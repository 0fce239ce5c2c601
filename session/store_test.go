package session

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "sessions.json"), nil)
	require.NoError(t, err)
	return store
}

func writeTempFile(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte("int main() {}\n"), 0o644))
	return path
}

func TestGetOrCreateStableIDs(t *testing.T) {
	store := newTestStore(t)
	path := writeTempFile(t, "main.cpp")

	first, err := store.GetOrCreate(path)
	require.NoError(t, err)
	second, err := store.GetOrCreate(path)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID, "same path must resolve to the same session")

	other, err := store.GetOrCreate(writeTempFile(t, "other.cpp"))
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, other.ID, "distinct paths must resolve to distinct sessions")
}

func TestGetOrCreateGlobal(t *testing.T) {
	store := newTestStore(t)
	sess, err := store.GetOrCreate("")
	require.NoError(t, err)
	assert.Equal(t, GlobalID, sess.ID)
	assert.Equal(t, "Global chat", sess.Title)
}

func TestCreateAlwaysFresh(t *testing.T) {
	store := newTestStore(t)
	path := writeTempFile(t, "main.cpp")

	stable, err := store.GetOrCreate(path)
	require.NoError(t, err)
	fresh, err := store.Create(path)
	require.NoError(t, err)
	assert.NotEqual(t, stable.ID, fresh.ID)
	assert.Contains(t, fresh.ID, stable.ID+"-", "fresh ids extend the stable id with a suffix")
}

func TestAppendOrderAndPersistence(t *testing.T) {
	dir := t.TempDir()
	tablePath := filepath.Join(dir, "sessions.json")

	store, err := NewStore(tablePath, nil)
	require.NoError(t, err)

	sess, err := store.GetOrCreate("")
	require.NoError(t, err)
	require.NoError(t, store.Append(sess.ID, RoleUser, "how do I solve this?"))
	require.NoError(t, store.Append(sess.ID, RoleAssistant, "binary search on the answer"))
	require.NoError(t, store.Append(sess.ID, RoleUser, "why does that work?"))

	// A second store over the same table sees the same ordered log.
	reborn, err := NewStore(tablePath, nil)
	require.NoError(t, err)
	loaded, ok := reborn.Get(sess.ID)
	require.True(t, ok)
	require.Len(t, loaded.Messages, 3)
	assert.Equal(t, RoleUser, loaded.Messages[0].Role)
	assert.Equal(t, "binary search on the answer", loaded.Messages[1].Content)
	assert.Equal(t, "why does that work?", loaded.Messages[2].Content)
}

func TestDeleteGlobalResets(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Append(GlobalID, RoleUser, "hello"))

	assert.True(t, store.Delete(GlobalID), "deleting the global session reports success")

	var global *Session
	for _, sess := range store.List() {
		if sess.ID == GlobalID {
			global = sess
		}
	}
	require.NotNil(t, global, "the global session must survive deletion")
	assert.Empty(t, global.Messages)
}

func TestDeleteRegularSession(t *testing.T) {
	store := newTestStore(t)
	sess, err := store.GetOrCreate(writeTempFile(t, "main.cpp"))
	require.NoError(t, err)

	assert.True(t, store.Delete(sess.ID))
	_, ok := store.Get(sess.ID)
	assert.False(t, ok)
	assert.False(t, store.Delete(sess.ID), "second delete reports absence")
}

func TestClearKeepsSession(t *testing.T) {
	store := newTestStore(t)
	sess, err := store.GetOrCreate(writeTempFile(t, "main.cpp"))
	require.NoError(t, err)
	require.NoError(t, store.Append(sess.ID, RoleUser, "hi"))

	require.NoError(t, store.Clear(sess.ID))
	loaded, ok := store.Get(sess.ID)
	require.True(t, ok)
	assert.Empty(t, loaded.Messages)
}

func TestLoadClearsDeadFileAssociations(t *testing.T) {
	dir := t.TempDir()
	tablePath := filepath.Join(dir, "sessions.json")
	filePath := filepath.Join(dir, "main.cpp")
	require.NoError(t, os.WriteFile(filePath, []byte("code"), 0o644))

	store, err := NewStore(tablePath, nil)
	require.NoError(t, err)
	sess, err := store.GetOrCreate(filePath)
	require.NoError(t, err)
	require.NoError(t, store.Append(sess.ID, RoleUser, "remember me"))

	// The file disappears between host restarts.
	require.NoError(t, os.Remove(filePath))

	reborn, err := NewStore(tablePath, nil)
	require.NoError(t, err)
	loaded, ok := reborn.Get(sess.ID)
	require.True(t, ok, "history survives the file going away")
	assert.Empty(t, loaded.FilePath, "the dead association is cleared")
	require.Len(t, loaded.Messages, 1)
	assert.Equal(t, "remember me", loaded.Messages[0].Content)
}

func TestStoreHandsOutCopies(t *testing.T) {
	store := newTestStore(t)
	sess, err := store.GetOrCreate("")
	require.NoError(t, err)

	sess.Messages = append(sess.Messages, Message{Role: RoleUser, Content: "sneaky"})
	loaded, ok := store.Get(GlobalID)
	require.True(t, ok)
	assert.Empty(t, loaded.Messages, "mutating a returned session must not touch the table")
}

func TestDeriveProblemFromPath(t *testing.T) {
	tests := []struct {
		path        string
		wantContest string
		wantIndex   string
	}{
		{"/home/u/contests/2112/B/main.cpp", "2112", "B"},
		{"/home/u/contests/1794/C1/sol.py", "1794", "C1"},
		{"/home/u/scratch/notes.txt", "", ""},
	}
	for _, tt := range tests {
		contest, index := deriveProblem(tt.path)
		assert.Equal(t, tt.wantContest, contest, tt.path)
		assert.Equal(t, tt.wantIndex, index, tt.path)
	}
}
