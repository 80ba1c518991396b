package durable

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore(t *testing.T) {
	t.Parallel()

	t.Run("missing file reads as not found", func(t *testing.T) {
		t.Parallel()

		store := NewFileStore(t.TempDir(), DefaultKey, 0)
		_, err := store.Read()
		assert.True(t, IsNotFound(err))
	})

	t.Run("write then read round trips", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		store := NewFileStore(dir, ContextKey("ctx/1"), 0)
		require.NoError(t, store.Write([]byte(`{"savedState":{}}`)))

		raw, err := store.Read()
		require.NoError(t, err)
		assert.Equal(t, `{"savedState":{}}`, string(raw))

		// Path separators in keys never escape the directory
		assert.Equal(t, dir, filepath.Dir(store.Path()))

		// No temp files are left behind
		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Len(t, entries, 1)
	})

	t.Run("a second store on the same file sees the write", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		require.NoError(t, NewFileStore(dir, DefaultKey, 0).Write([]byte("v1")))

		raw, err := NewFileStore(dir, DefaultKey, 0).Read()
		require.NoError(t, err)
		assert.Equal(t, "v1", string(raw))
	})

	t.Run("capacity is enforced", func(t *testing.T) {
		t.Parallel()

		store := NewFileStore(t.TempDir(), DefaultKey, 2)
		err := store.Write([]byte("abc"))
		assert.ErrorIs(t, err, ErrQuotaExceeded)
	})

	t.Run("erase of a missing file succeeds", func(t *testing.T) {
		t.Parallel()

		store := NewFileStore(t.TempDir(), DefaultKey, 0)
		assert.NoError(t, store.Erase())

		require.NoError(t, store.Write([]byte("x")))
		require.NoError(t, store.Erase())
		_, err := store.Read()
		assert.True(t, IsNotFound(err))
	})

	t.Run("unreadable path reports unavailable", func(t *testing.T) {
		t.Parallel()

		// A directory where the file should be makes ReadFile fail
		dir := t.TempDir()
		store := NewFileStore(dir, DefaultKey, 0)
		require.NoError(t, os.Mkdir(store.Path(), 0o755))

		_, err := store.Read()
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrUnavailable)
		assert.False(t, IsNotFound(err))
	})
}

func TestFileFactory(t *testing.T) {
	dir := t.TempDir()
	factory := FileFactory(dir, 0)

	store := factory(ContextKey("abc"))
	require.NoError(t, store.Write([]byte("1")))

	_, err := os.Stat(filepath.Join(dir, fileName(ContextKey("abc"))))
	assert.NoError(t, err)
}

func TestFileFactory_KeysAreIsolated(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	factory := FileFactory(dir, 0)

	// context ids that differ only in characters a naive file name mapping
	// would fold together
	ids := []string{"team:alice", "team_alice", "team/alice", "team\\alice", "Team_Alice", "team..alice"}
	for _, id := range ids {
		require.NoError(t, factory(ContextKey(id)).Write([]byte(`{"owner":"`+id+`"}`)))
	}

	for _, id := range ids {
		raw, err := factory(ContextKey(id)).Read()
		require.NoError(t, err, id)
		assert.Equal(t, `{"owner":"`+id+`"}`, string(raw), id)
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, len(ids))

	require.NoError(t, factory(ContextKey("team:alice")).Erase())
	_, err = factory(ContextKey("team:alice")).Read()
	assert.True(t, IsNotFound(err))
	_, err = factory(ContextKey("team_alice")).Read()
	assert.NoError(t, err, "erasing one context leaves the other")
}

func TestFileName(t *testing.T) {
	t.Parallel()

	long := ContextKey(strings.Repeat("z", 128))
	name := fileName(long)
	assert.LessOrEqual(t, len(name), 255)
	assert.Regexp(t, `^[0-9a-v]+\.json$`, name)
	assert.NotEqual(t, fileName(ContextKey("a")), fileName(ContextKey("A")))
}
