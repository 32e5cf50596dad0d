// Package storage defines the destination boundary of the ingestion
// pipeline. Downloaded files and metadata artifacts are written through the
// ObjectStorage interface, keyed by "<uuid>/<filename>", so the
// skip-existing and never-overwrite rules hold regardless of backend.
package storage

import (
	"context"
	"errors"
	"io"
)

// ErrObjectNotFound is returned when an object is not found in storage.
var ErrObjectNotFound = errors.New("object not found")

// ObjectMetadata represents metadata associated with stored objects.
type ObjectMetadata struct {
	ContentType   string
	ContentLength int64
	UserMetadata  map[string]string
}

// ObjectStorage abstracts the destination of the ingestion run.
// Implementations exist for the local filesystem and for S3.
type ObjectStorage interface {
	// Put stores an object under the given key. Parent "directories" are
	// created on demand. Callers are expected to check Exists first; Put
	// itself does not guard against overwrites.
	Put(ctx context.Context, key string, reader io.Reader, metadata ObjectMetadata) error

	// Get retrieves an object by key. Returns ErrObjectNotFound if absent.
	Get(ctx context.Context, key string) (io.ReadCloser, error)

	// Exists checks whether an object is already present under the key.
	Exists(ctx context.Context, key string) (bool, error)
}
