// Package download runs the sequential attachment transfer of an ingestion
// run and classifies every file's outcome.
package download

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"path/filepath"
	"time"

	"github.com/aarhusstadsarkiv/smart-client/internal/checksum"
	"github.com/aarhusstadsarkiv/smart-client/internal/observability"
	"github.com/aarhusstadsarkiv/smart-client/internal/storage"
	"github.com/aarhusstadsarkiv/smart-client/internal/submission"
)

// Downloader transfers submission attachments into object storage, one at a
// time, in list order. One file's failure never stops the run; the single
// exception is a rejected api key, which aborts immediately because every
// remaining request would fail the same way.
type Downloader struct {
	http    httpGetter
	store   storage.ObjectStorage
	algo    checksum.Algorithm
	logger  observability.Logger
	metrics observability.Metrics
}

// httpGetter mirrors httpclient.Getter so tests can fake the transport.
type httpGetter interface {
	Get(ctx context.Context, rawURL string) (*http.Response, error)
}

// New creates a downloader writing through the given storage backend.
func New(http httpGetter, store storage.ObjectStorage, algo checksum.Algorithm, logger observability.Logger, metrics observability.Metrics) *Downloader {
	return &Downloader{
		http:    http,
		store:   store,
		algo:    algo,
		logger:  logger.WithFields(map[string]interface{}{"component": "download"}),
		metrics: metrics,
	}
}

// Run processes every descriptor in order, setting Outcome on each and
// Checksum on the ones that ended up materialized. Files already present in
// storage are skipped without a network call. Returns
// submission.ErrAccessDenied if the server rejects the api key for any file.
func (d *Downloader) Run(ctx context.Context, prefix string, files []submission.FileDescriptor) error {
	for i := range files {
		file := &files[i]

		if err := d.downloadOne(ctx, prefix, file); err != nil {
			return err
		}
		d.metrics.IncrementCounter("download.files", map[string]string{"outcome": string(file.Outcome)})

		if !file.Outcome.ChecksumEligible() {
			continue
		}
		sum, err := d.digest(ctx, prefix, file)
		if err != nil {
			// The object was written but cannot be read back; treat it
			// like any other local failure.
			d.logger.Error("failed to digest file", "filename", file.Filename, "error", err)
			file.Outcome = submission.OutcomeDownloadError
			continue
		}
		file.Checksum = sum
	}
	return nil
}

func (d *Downloader) downloadOne(ctx context.Context, prefix string, file *submission.FileDescriptor) error {
	key := prefix + "/" + file.Filename

	exists, err := d.store.Exists(ctx, key)
	if err != nil {
		return fmt.Errorf("failed to check destination for %q: %w", file.Filename, err)
	}
	if exists {
		d.logger.Info("file already present, skipping", "filename", file.Filename)
		file.Outcome = submission.OutcomeExisting
		return nil
	}

	started := time.Now()
	resp, err := d.http.Get(ctx, file.URL)
	if err != nil {
		d.logger.Error("download request failed", "filename", file.Filename, "error", err)
		file.Outcome = submission.OutcomeError
		return nil
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusNotFound:
		d.logger.Warn("file missing on server", "filename", file.Filename)
		file.Outcome = submission.OutcomeMissing
		return nil
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		file.Outcome = submission.OutcomeAccessDenied
		return fmt.Errorf("%w: file %q", submission.ErrAccessDenied, file.Filename)
	default:
		d.logger.Error("unexpected status for file", "filename", file.Filename, "status", resp.StatusCode)
		file.Outcome = submission.OutcomeError
		return nil
	}

	metadata := storage.ObjectMetadata{
		ContentType:   contentTypeOf(resp, file.Filename),
		ContentLength: resp.ContentLength,
	}
	if err := d.store.Put(ctx, key, resp.Body, metadata); err != nil {
		d.logger.Error("failed to write file", "filename", file.Filename, "error", err)
		file.Outcome = submission.OutcomeDownloadError
		return nil
	}

	d.metrics.RecordHistogram("download.duration_seconds", time.Since(started).Seconds(), nil)
	d.logger.Info("file downloaded", "filename", file.Filename, "duration", time.Since(started).String())
	file.Outcome = submission.OutcomeOK
	return nil
}

// digest reads the stored object back and computes its checksum, so the
// digest always reflects the bytes at the destination rather than the
// bytes on the wire.
func (d *Downloader) digest(ctx context.Context, prefix string, file *submission.FileDescriptor) (string, error) {
	reader, err := d.store.Get(ctx, prefix+"/"+file.Filename)
	if err != nil {
		return "", err
	}
	defer reader.Close()
	return checksum.Sum(d.algo, reader)
}

func contentTypeOf(resp *http.Response, filename string) string {
	if ct := resp.Header.Get("Content-Type"); ct != "" {
		return ct
	}
	if ct := mime.TypeByExtension(filepath.Ext(filename)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
