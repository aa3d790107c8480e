package objstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorage_UploadDownload(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	src := filepath.Join(t.TempDir(), "src.tbl")
	require.NoError(t, os.WriteFile(src, []byte("1,Alice\n"), 0644))

	require.NoError(t, store.Upload(ctx, src, "snap/users.tbl"))

	exists, err := store.Exists(ctx, "snap/users.tbl")
	require.NoError(t, err)
	assert.True(t, exists)

	dst := filepath.Join(t.TempDir(), "dst.tbl")
	require.NoError(t, store.Download(ctx, "snap/users.tbl", dst))

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "1,Alice\n", string(data))
}

func TestLocalStorage_DownloadMissing(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	err = store.Download(ctx, "nope", filepath.Join(t.TempDir(), "out"))
	assert.ErrorIs(t, err, ErrObjectNotFound)
}

func TestLocalStorage_DeleteIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	src := filepath.Join(t.TempDir(), "f")
	require.NoError(t, os.WriteFile(src, []byte("x"), 0644))
	require.NoError(t, store.Upload(ctx, src, "a/f"))

	require.NoError(t, store.Delete(ctx, "a/f"))
	require.NoError(t, store.Delete(ctx, "a/f"))

	exists, err := store.Exists(ctx, "a/f")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestLocalStorage_ListObjects(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	src := filepath.Join(t.TempDir(), "f")
	require.NoError(t, os.WriteFile(src, []byte("x"), 0644))
	require.NoError(t, store.Upload(ctx, src, "snap/a.tbl"))
	require.NoError(t, store.Upload(ctx, src, "snap/b.schema"))
	require.NoError(t, store.Upload(ctx, src, "other/c.tbl"))

	objects, err := store.ListObjects(ctx, "snap/")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"snap/a.tbl", "snap/b.schema"}, objects)
}
