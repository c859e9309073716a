package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStore(t *testing.T) *FileStore {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "portrait.json"), []byte(`{"runs": 1}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "landscape.json"), []byte(`{"runs": 2}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("not a template"), 0o644))

	store, err := NewFileStore(dir, nil)
	require.NoError(t, err)
	return store
}

func TestFileStoreLoad(t *testing.T) {
	store := testStore(t)

	data, err := store.Load(context.Background(), "portrait.json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"runs": 1}`, string(data))
}

func TestFileStoreLoadMissingTemplate(t *testing.T) {
	store := testStore(t)

	_, err := store.Load(context.Background(), "absent.json")
	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "absent.json", notFound.Name)
}

func TestFileStoreRejectsPathTraversal(t *testing.T) {
	store := testStore(t)

	for _, name := range []string{"", "../portrait.json", "sub/portrait.json", ".."} {
		_, err := store.Load(context.Background(), name)
		assert.Error(t, err, "name %q", name)
	}
}

func TestFileStoreListOnlyJSON(t *testing.T) {
	store := testStore(t)

	names, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"landscape.json", "portrait.json"}, names)
}

func TestNewFileStoreRequiresDirectory(t *testing.T) {
	_, err := NewFileStore("", nil)
	assert.Error(t, err)

	_, err = NewFileStore(filepath.Join(t.TempDir(), "missing"), nil)
	assert.Error(t, err)

	file := filepath.Join(t.TempDir(), "file.json")
	require.NoError(t, os.WriteFile(file, []byte("{}"), 0o644))
	_, err = NewFileStore(file, nil)
	assert.Error(t, err)
}
