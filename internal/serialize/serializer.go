package serialize

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aarhusstadsarkiv/smart-client/internal/observability"
	"github.com/aarhusstadsarkiv/smart-client/internal/storage"
)

// artifact is one rendered metadata file ready to be stored.
type artifact struct {
	name        string
	contentType string
	body        []byte
}

// Serializer renders the projected submission and writes the resulting
// artifacts under the submission's storage prefix. Existing artifacts are
// never overwritten: if any target already exists, the whole write is
// skipped with a warning, so a re-run leaves earlier output untouched.
type Serializer struct {
	store   storage.ObjectStorage
	logger  observability.Logger
	metrics observability.Metrics
}

// New creates a serializer writing through the given storage backend.
func New(store storage.ObjectStorage, logger observability.Logger, metrics observability.Metrics) *Serializer {
	return &Serializer{
		store:   store,
		logger:  logger.WithFields(map[string]interface{}{"component": "serialize"}),
		metrics: metrics,
	}
}

// Write renders the projected submission in the given format and stores the
// artifacts. Returns the names of the artifacts actually written; an empty
// slice means everything was skipped because of an earlier run.
func (s *Serializer) Write(ctx context.Context, prefix string, format Format, projected map[string]interface{}) ([]string, error) {
	artifacts, err := render(format, projected)
	if err != nil {
		return nil, err
	}

	for _, a := range artifacts {
		exists, err := s.store.Exists(ctx, prefix+"/"+a.name)
		if err != nil {
			return nil, fmt.Errorf("failed to check artifact %q: %w", a.name, err)
		}
		if exists {
			s.logger.Warn("metadata artifact already present, not overwriting", "artifact", a.name)
			s.metrics.IncrementCounter("serialize.skipped", map[string]string{"format": string(format)})
			return nil, nil
		}
	}

	written := make([]string, 0, len(artifacts))
	for _, a := range artifacts {
		metadata := storage.ObjectMetadata{
			ContentType:   a.contentType,
			ContentLength: int64(len(a.body)),
		}
		if err := s.store.Put(ctx, prefix+"/"+a.name, bytes.NewReader(a.body), metadata); err != nil {
			return written, fmt.Errorf("failed to write artifact %q: %w", a.name, err)
		}
		s.logger.Info("metadata artifact written", "artifact", a.name, "bytes", len(a.body))
		s.metrics.IncrementCounter("serialize.written", map[string]string{"format": string(format)})
		written = append(written, a.name)
	}
	return written, nil
}

func render(format Format, projected map[string]interface{}) ([]artifact, error) {
	switch format {
	case FormatJSON:
		body, err := renderJSON(projected)
		if err != nil {
			return nil, err
		}
		return []artifact{{name: "submission.json", contentType: "application/json", body: body}}, nil
	case FormatXML:
		return []artifact{{name: "submission.xml", contentType: "application/xml", body: renderXML(projected)}}, nil
	case FormatArkibas:
		journal, content, err := renderArkibas(projected)
		if err != nil {
			return nil, err
		}
		return []artifact{
			{name: "journal.csv", contentType: "text/csv", body: journal},
			{name: "indhold.csv", contentType: "text/csv", body: content},
		}, nil
	default:
		return nil, fmt.Errorf("unknown output format: %q", format)
	}
}
