// Package fs implements ObjectStorage on the local filesystem.
package fs

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/aarhusstadsarkiv/smart-client/internal/observability"
	"github.com/aarhusstadsarkiv/smart-client/internal/storage"
)

// Storage implements ObjectStorage rooted at a destination directory.
type Storage struct {
	basePath string
	logger   observability.Logger
	metrics  observability.Metrics
}

// New creates a filesystem-backed object storage. The base path must be an
// existing directory; per-submission subdirectories are created on demand
// by Put.
func New(basePath string, logger observability.Logger, metrics observability.Metrics) (*Storage, error) {
	info, err := os.Stat(basePath)
	if err != nil {
		return nil, fmt.Errorf("destination is not accessible: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("destination is not a directory: %s", basePath)
	}

	return &Storage{
		basePath: basePath,
		logger:   logger.WithFields(map[string]interface{}{"component": "storage.fs"}),
		metrics:  metrics.WithTags(map[string]string{"storage": "fs"}),
	}, nil
}

// Put writes the object to disk. The destination handle is opened, written
// and closed within this call; it is never held across objects.
func (s *Storage) Put(ctx context.Context, key string, reader io.Reader, metadata storage.ObjectMetadata) error {
	objectPath := s.objectPath(key)

	if err := os.MkdirAll(filepath.Dir(objectPath), 0o755); err != nil {
		s.logger.Error("failed to create object directory", "key", key, "error", err)
		s.metrics.IncrementCounter("storage.put.errors", map[string]string{"error": "mkdir"})
		return fmt.Errorf("failed to create object directory: %w", err)
	}

	file, err := os.Create(objectPath)
	if err != nil {
		s.logger.Error("failed to create file", "path", objectPath, "error", err)
		s.metrics.IncrementCounter("storage.put.errors", map[string]string{"error": "create"})
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	bytesWritten, err := io.Copy(file, reader)
	if err != nil {
		s.logger.Error("failed to write data", "key", key, "error", err)
		s.metrics.IncrementCounter("storage.put.errors", map[string]string{"error": "write"})
		return fmt.Errorf("failed to write data: %w", err)
	}

	s.logger.Debug("object stored", "key", key, "bytes", bytesWritten)
	s.metrics.RecordHistogram("storage.put.bytes", float64(bytesWritten), nil)

	return nil
}

// Get opens the object for reading.
func (s *Storage) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	file, err := os.Open(s.objectPath(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", storage.ErrObjectNotFound, key)
		}
		return nil, fmt.Errorf("failed to open object: %w", err)
	}
	return file, nil
}

// Exists checks whether the object is present on disk.
func (s *Storage) Exists(ctx context.Context, key string) (bool, error) {
	_, err := os.Stat(s.objectPath(key))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, fmt.Errorf("failed to check object existence: %w", err)
}

func (s *Storage) objectPath(key string) string {
	return filepath.Join(s.basePath, filepath.FromSlash(key))
}
