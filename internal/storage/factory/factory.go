// Package factory constructs the configured storage backend.
package factory

import (
	"context"
	"fmt"

	"github.com/aarhusstadsarkiv/smart-client/internal/config"
	"github.com/aarhusstadsarkiv/smart-client/internal/observability"
	"github.com/aarhusstadsarkiv/smart-client/internal/storage"
	"github.com/aarhusstadsarkiv/smart-client/internal/storage/fs"
	"github.com/aarhusstadsarkiv/smart-client/internal/storage/s3"
)

// New creates the ObjectStorage selected by the configuration. For the fs
// backend the destination is the root directory and must already exist; for
// the s3 backend the destination argument is unused and the configured
// bucket is the root.
func New(ctx context.Context, cfg *config.Config, destination string, logger observability.Logger, metrics observability.Metrics) (storage.ObjectStorage, error) {
	switch cfg.Storage.Provider {
	case "fs":
		return fs.New(destination, logger, metrics)
	case "s3":
		return s3.New(ctx, cfg.Storage.S3, logger, metrics)
	default:
		return nil, fmt.Errorf("unknown storage provider: %q", cfg.Storage.Provider)
	}
}
