package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLocalStorageRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	src := writeTempFile(t, t.TempDir(), "tables.csv", "a,b,c")
	require.NoError(t, store.Upload(ctx, src, "runs/r1/tables.csv"))

	exists, err := store.Exists(ctx, "runs/r1/tables.csv")
	require.NoError(t, err)
	assert.True(t, exists)

	dest := filepath.Join(t.TempDir(), "out.csv")
	require.NoError(t, store.Download(ctx, "runs/r1/tables.csv", dest))
	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "a,b,c", string(data))
}

func TestLocalStorageDownloadMissing(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	err = store.Download(context.Background(), "nope", filepath.Join(t.TempDir(), "x"))
	assert.ErrorIs(t, err, ErrObjectNotFound)
}

func TestLocalStorageDeleteIdempotent(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	src := writeTempFile(t, t.TempDir(), "f", "x")
	require.NoError(t, store.Upload(ctx, src, "f"))
	require.NoError(t, store.Delete(ctx, "f"))
	require.NoError(t, store.Delete(ctx, "f"), "deleting a missing object is not an error")

	exists, err := store.Exists(ctx, "f")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestLocalStorageList(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	tmp := t.TempDir()
	require.NoError(t, store.Upload(ctx, writeTempFile(t, tmp, "a", "1"), "runs/r1/a.csv"))
	require.NoError(t, store.Upload(ctx, writeTempFile(t, tmp, "b", "2"), "runs/r1/b.csv"))
	require.NoError(t, store.Upload(ctx, writeTempFile(t, tmp, "c", "3"), "runs/r2/c.csv"))

	objects, err := store.ListObjects(ctx, "runs/r1")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"runs/r1/a.csv", "runs/r1/b.csv"}, objects)

	objects, err = store.ListObjects(ctx, "missing")
	require.NoError(t, err)
	assert.Empty(t, objects)
}

func TestPublishDir(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	out := t.TempDir()
	writeTempFile(t, out, "tables.csv", "t")
	writeTempFile(t, out, "archive/run.bin", "z")

	require.NoError(t, PublishDir(ctx, store, out, "runs/abc"))

	objects, err := store.ListObjects(ctx, "runs/abc")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"runs/abc/tables.csv", "runs/abc/archive/run.bin"}, objects)
}
