// Package pipeline orchestrates one ingestion run: fetch the submission,
// download its files, digest them, project the metadata and serialize the
// artifact.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/aarhusstadsarkiv/smart-client/internal/checksum"
	"github.com/aarhusstadsarkiv/smart-client/internal/config"
	"github.com/aarhusstadsarkiv/smart-client/internal/document"
	"github.com/aarhusstadsarkiv/smart-client/internal/history"
	"github.com/aarhusstadsarkiv/smart-client/internal/observability"
	"github.com/aarhusstadsarkiv/smart-client/internal/serialize"
	"github.com/aarhusstadsarkiv/smart-client/internal/submission"
)

var (
	// ErrInvalidUUID is returned when the submission id is not a UUID.
	ErrInvalidUUID = errors.New("submission id is not a valid uuid")
	// ErrDestinationNotDir is returned when the destination root does not
	// exist or is not a directory.
	ErrDestinationNotDir = errors.New("destination is not an existing directory")
)

// Options are the per-run inputs, resolved from CLI flags and config
// defaults before the run starts.
type Options struct {
	UUID        string
	Destination string
	Format      serialize.Format
	Algorithm   checksum.Algorithm
}

// Validate checks the options without touching the network, so a typo
// fails fast instead of after a fetch.
func (o *Options) Validate() (uuid.UUID, error) {
	id, err := uuid.Parse(o.UUID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %q", ErrInvalidUUID, o.UUID)
	}

	info, err := os.Stat(o.Destination)
	if err != nil || !info.IsDir() {
		return uuid.Nil, fmt.Errorf("%w: %s", ErrDestinationNotDir, o.Destination)
	}
	return id, nil
}

// Summary aggregates per-file outcomes of a finished run.
type Summary struct {
	Downloaded int
	Existing   int
	Missing    int
	Errored    int

	// Artifacts lists the metadata files written this run; empty when an
	// earlier run already produced them.
	Artifacts []string
	Files     []submission.FileDescriptor
}

// Total returns the number of files in the submission.
func (s *Summary) Total() int {
	return s.Downloaded + s.Existing + s.Missing + s.Errored
}

// Pipeline wires the run's components together. Construct it once per
// process with New and run it once per submission.
type Pipeline struct {
	cfg        *config.Config
	fetcher    fetcher
	downloader downloader
	projector  *submission.Projector
	serializer serializer
	journal    journal
	logger     observability.Logger
	metrics    observability.Metrics
}

// Narrow views of the collaborating components so tests can fake each
// stage independently.
type fetcher interface {
	Fetch(ctx context.Context, id uuid.UUID) (*document.Document, error)
}

type downloader interface {
	Run(ctx context.Context, prefix string, files []submission.FileDescriptor) error
}

type serializer interface {
	Write(ctx context.Context, prefix string, format serialize.Format, projected map[string]interface{}) ([]string, error)
}

type journal interface {
	RecordRun(ctx context.Context, run history.Run, files []submission.FileDescriptor) error
}

// New assembles a pipeline from its components. journal may be nil to
// disable history recording.
func New(cfg *config.Config, fetcher fetcher, downloader downloader, serializer serializer, journal journal, logger observability.Logger, metrics observability.Metrics) *Pipeline {
	return &Pipeline{
		cfg:        cfg,
		fetcher:    fetcher,
		downloader: downloader,
		projector:  submission.NewProjector(cfg.ArchivePrefix),
		serializer: serializer,
		journal:    journal,
		logger:     logger.WithFields(map[string]interface{}{"component": "pipeline"}),
		metrics:    metrics,
	}
}

// Run executes one ingestion. Fatal conditions (bad input, unreachable or
// unknown submission, rejected api key, artifact write failure) return an
// error; per-file download failures are absorbed into the summary.
func (p *Pipeline) Run(ctx context.Context, opts Options) (*Summary, error) {
	id, err := opts.Validate()
	if err != nil {
		return nil, err
	}
	started := time.Now()

	doc, err := p.fetcher.Fetch(ctx, id)
	if err != nil {
		return nil, err
	}

	files, err := submission.ExtractFileList(doc)
	if err != nil {
		return nil, err
	}
	p.logger.Info("submission fetched", "uuid", id.String(), "files", len(files))

	if err := p.downloader.Run(ctx, id.String(), files); err != nil {
		return nil, err
	}

	projected, err := p.projector.Project(doc, files)
	if err != nil {
		return nil, err
	}

	artifacts, err := p.serializer.Write(ctx, id.String(), opts.Format, projected)
	if err != nil {
		return nil, err
	}

	summary := summarize(files, artifacts)
	p.record(ctx, id, opts, started, summary)

	p.logger.Info("run finished",
		"uuid", id.String(),
		"downloaded", summary.Downloaded,
		"existing", summary.Existing,
		"missing", summary.Missing,
		"errored", summary.Errored,
	)
	return summary, nil
}

func summarize(files []submission.FileDescriptor, artifacts []string) *Summary {
	summary := &Summary{Artifacts: artifacts, Files: files}
	for i := range files {
		switch files[i].Outcome {
		case submission.OutcomeOK:
			summary.Downloaded++
		case submission.OutcomeExisting:
			summary.Existing++
		case submission.OutcomeMissing:
			summary.Missing++
		default:
			summary.Errored++
		}
	}
	return summary
}

// record appends the run to the local journal. The journal is an audit
// aid; a failure here is logged but never fails a run that otherwise
// succeeded.
func (p *Pipeline) record(ctx context.Context, id uuid.UUID, opts Options, started time.Time, summary *Summary) {
	if p.journal == nil {
		return
	}
	run := history.Run{
		UUID:       id.String(),
		Format:     string(opts.Format),
		Algorithm:  opts.Algorithm.String(),
		Downloaded: summary.Downloaded,
		Existing:   summary.Existing,
		Missing:    summary.Missing,
		Errored:    summary.Errored,
		StartedAt:  started,
		FinishedAt: time.Now(),
	}
	if err := p.journal.RecordRun(ctx, run, summary.Files); err != nil {
		p.logger.Warn("failed to record run in history", "error", err)
	}
}
