// Package objstore provides the object storage abstraction used by the
// backup subsystem. Implementations cover S3 and the local filesystem.
package objstore

import (
	"context"
	"errors"
)

// Common errors for object storage operations.
var (
	ErrObjectNotFound = errors.New("object not found")
	ErrUploadFailed   = errors.New("upload failed")
	ErrDownloadFailed = errors.New("download failed")
	ErrDeleteFailed   = errors.New("delete failed")
)

// ObjectStorage abstracts the storage a database snapshot is written to.
type ObjectStorage interface {
	// Upload uploads a local file to objectPath.
	Upload(ctx context.Context, localPath, objectPath string) error

	// Download downloads objectPath to a local file.
	Download(ctx context.Context, objectPath, localPath string) error

	// Delete removes an object. Deleting a missing object is not an error.
	Delete(ctx context.Context, objectPath string) error

	// Exists checks if an object exists.
	Exists(ctx context.Context, objectPath string) (bool, error)

	// ListObjects returns all object paths under the given prefix.
	ListObjects(ctx context.Context, prefix string) ([]string, error)
}
