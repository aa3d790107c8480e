package backup

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minirel/minirel/internal/engine"
	"github.com/minirel/minirel/internal/objstore"
)

func TestSnapshotAndRestore(t *testing.T) {
	ctx := context.Background()
	dbDir := t.TempDir()

	db, err := engine.Open(dbDir)
	require.NoError(t, err)
	_, err = db.Execute("CREATE TABLE users (id INT PRIMARY KEY, name VARCHAR(50))")
	require.NoError(t, err)
	_, err = db.Execute("INSERT INTO users VALUES (1, 'Alice')")
	require.NoError(t, err)
	require.NoError(t, db.Close())

	store, err := objstore.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	// Schema, row file, and index file all travel.
	uploaded, err := Snapshot(ctx, dbDir, store, "snapshots")
	require.NoError(t, err)
	assert.Equal(t, 3, uploaded)

	restoreDir := t.TempDir()
	restored, err := Restore(ctx, restoreDir, store, "snapshots")
	require.NoError(t, err)
	assert.Equal(t, 3, restored)

	// The restored database answers queries and enforces the PK.
	restoredDB, err := engine.Open(restoreDir)
	require.NoError(t, err)
	defer restoredDB.Close()

	result, err := restoredDB.Execute("SELECT name FROM users WHERE id = 1")
	require.NoError(t, err)
	require.Len(t, result.Rows, 1)
	assert.Equal(t, "Alice", result.Rows[0]["name"])

	_, err = restoredDB.Execute("INSERT INTO users VALUES (1, 'Bob')")
	assert.Error(t, err)
}

func TestSnapshot_SkipsForeignFiles(t *testing.T) {
	ctx := context.Background()
	dbDir := t.TempDir()

	db, err := engine.Open(dbDir)
	require.NoError(t, err)
	_, err = db.Execute("CREATE TABLE t (id INT)")
	require.NoError(t, err)
	require.NoError(t, db.Close())
	require.NoError(t, os.WriteFile(filepath.Join(dbDir, "notes.txt"), []byte("x"), 0644))

	store, err := objstore.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	// Only .schema and .tbl travel (no indexed columns); notes.txt is skipped.
	uploaded, err := Snapshot(ctx, dbDir, store, "snap")
	require.NoError(t, err)
	assert.Equal(t, 2, uploaded)
}

func TestRestore_EmptyPrefix(t *testing.T) {
	ctx := context.Background()

	store, err := objstore.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	restored, err := Restore(ctx, t.TempDir(), store, "nothing")
	require.NoError(t, err)
	assert.Equal(t, 0, restored)
}
