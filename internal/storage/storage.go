// Package storage publishes pipeline run outputs (tables and archives) to
// object storage. Implementations cover S3 and the local filesystem.
package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
)

// Common errors for storage operations.
var (
	ErrObjectNotFound = errors.New("object not found")
	ErrUploadFailed   = errors.New("upload failed")
	ErrDownloadFailed = errors.New("download failed")
	ErrDeleteFailed   = errors.New("delete failed")
)

// ObjectStorage abstracts the object store a run publishes to.
type ObjectStorage interface {
	// Upload copies a local file to objectPath in the store.
	Upload(ctx context.Context, localPath, objectPath string) error

	// Download copies the object at objectPath to a local file.
	Download(ctx context.Context, objectPath, localPath string) error

	// Exists reports whether an object exists.
	Exists(ctx context.Context, objectPath string) (bool, error)

	// Delete removes an object. Deleting a missing object is not an
	// error.
	Delete(ctx context.Context, objectPath string) error

	// ListObjects returns all object paths under the given prefix.
	ListObjects(ctx context.Context, prefix string) ([]string, error)
}

// PublishDir uploads every regular file under dir to the store, keyed as
// prefix/<path relative to dir>. Used to push a finished run's output
// directory in one call.
func PublishDir(ctx context.Context, store ObjectStorage, dir, prefix string) error {
	return filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		return store.Upload(ctx, path, filepath.ToSlash(filepath.Join(prefix, rel)))
	})
}
