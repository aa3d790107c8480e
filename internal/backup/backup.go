// Package backup snapshots a database directory to object storage and
// restores it back. Snapshots taken while the database is being mutated
// have undefined contents, matching the engine's single-writer model.
package backup

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/minirel/minirel/internal/objstore"
)

// backupSuffixes are the file kinds that make up a database directory.
var backupSuffixes = []string{".schema", ".tbl", ".idx"}

// Snapshot uploads every schema, row, and index file of the database
// directory under the given object prefix. Returns the number of files
// uploaded.
func Snapshot(ctx context.Context, dbPath string, store objstore.ObjectStorage, prefix string) (int, error) {
	entries, err := os.ReadDir(dbPath)
	if err != nil {
		return 0, fmt.Errorf("failed to read database directory: %w", err)
	}

	uploaded := 0
	for _, entry := range entries {
		if entry.IsDir() || !isDatabaseFile(entry.Name()) {
			continue
		}
		local := filepath.Join(dbPath, entry.Name())
		object := path.Join(prefix, entry.Name())
		if err := store.Upload(ctx, local, object); err != nil {
			return uploaded, fmt.Errorf("failed to upload %s: %w", entry.Name(), err)
		}
		uploaded++
	}
	return uploaded, nil
}

// Restore downloads every schema, row, and index object under the prefix
// into the database directory, creating it if missing; other objects are
// skipped. Returns the number of files restored.
func Restore(ctx context.Context, dbPath string, store objstore.ObjectStorage, prefix string) (int, error) {
	if err := os.MkdirAll(dbPath, 0755); err != nil {
		return 0, fmt.Errorf("failed to create database directory: %w", err)
	}

	objects, err := store.ListObjects(ctx, prefix)
	if err != nil {
		return 0, fmt.Errorf("failed to list snapshot objects: %w", err)
	}

	restored := 0
	for _, object := range objects {
		name := path.Base(object)
		if !isDatabaseFile(name) {
			continue
		}
		local := filepath.Join(dbPath, name)
		if err := store.Download(ctx, object, local); err != nil {
			return restored, fmt.Errorf("failed to download %s: %w", object, err)
		}
		restored++
	}
	return restored, nil
}

// isDatabaseFile reports whether a file name is part of a database layout.
func isDatabaseFile(name string) bool {
	for _, suffix := range backupSuffixes {
		if strings.HasSuffix(name, suffix) {
			return true
		}
	}
	return false
}
