// Package history keeps a local journal of ingestion runs in a SQLite
// database, one row per run plus one row per file. The journal is an
// audit aid for archivists; the pipeline works the same without it.
package history

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/aarhusstadsarkiv/smart-client/internal/observability"
	"github.com/aarhusstadsarkiv/smart-client/internal/submission"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	uuid        TEXT NOT NULL,
	format      TEXT NOT NULL,
	algorithm   TEXT NOT NULL,
	downloaded  INTEGER NOT NULL,
	existing    INTEGER NOT NULL,
	missing     INTEGER NOT NULL,
	errored     INTEGER NOT NULL,
	started_at  TIMESTAMP NOT NULL,
	finished_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS run_files (
	id       INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id   INTEGER NOT NULL REFERENCES runs(id),
	filename TEXT NOT NULL,
	outcome  TEXT NOT NULL,
	checksum TEXT NOT NULL DEFAULT '',
	size     INTEGER NOT NULL DEFAULT 0
);
`

// Run is one recorded ingestion run.
type Run struct {
	ID         int64     `db:"id"`
	UUID       string    `db:"uuid"`
	Format     string    `db:"format"`
	Algorithm  string    `db:"algorithm"`
	Downloaded int       `db:"downloaded"`
	Existing   int       `db:"existing"`
	Missing    int       `db:"missing"`
	Errored    int       `db:"errored"`
	StartedAt  time.Time `db:"started_at"`
	FinishedAt time.Time `db:"finished_at"`
}

// RunFile is one file of a recorded run.
type RunFile struct {
	ID       int64  `db:"id"`
	RunID    int64  `db:"run_id"`
	Filename string `db:"filename"`
	Outcome  string `db:"outcome"`
	Checksum string `db:"checksum"`
	Size     int64  `db:"size"`
}

// Store is the SQLite-backed run journal.
type Store struct {
	db      *sqlx.DB
	builder sq.StatementBuilderType
	logger  observability.Logger
}

// Open creates or opens the journal database at the given path, creating
// parent directories and the schema on demand.
func Open(path string, logger observability.Logger) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize history schema: %w", err)
	}

	return &Store{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Question),
		logger:  logger.WithFields(map[string]interface{}{"component": "history"}),
	}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// RecordRun appends the run and its files in a single transaction.
func (s *Store) RecordRun(ctx context.Context, run Run, files []submission.FileDescriptor) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin history transaction: %w", err)
	}
	defer tx.Rollback()

	query, args, err := s.builder.
		Insert("runs").
		Columns("uuid", "format", "algorithm", "downloaded", "existing", "missing", "errored", "started_at", "finished_at").
		Values(run.UUID, run.Format, run.Algorithm, run.Downloaded, run.Existing, run.Missing, run.Errored, run.StartedAt, run.FinishedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build run insert: %w", err)
	}

	result, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}
	runID, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read run id: %w", err)
	}

	for i := range files {
		file := &files[i]
		query, args, err := s.builder.
			Insert("run_files").
			Columns("run_id", "filename", "outcome", "checksum", "size").
			Values(runID, file.Filename, string(file.Outcome), file.Checksum, file.Size).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build file insert: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("failed to insert file row: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit history transaction: %w", err)
	}

	s.logger.Debug("run recorded", "uuid", run.UUID, "files", len(files))
	return nil
}

// RunsFor returns all recorded runs for a submission, newest first.
func (s *Store) RunsFor(ctx context.Context, submissionID string) ([]Run, error) {
	query, args, err := s.builder.
		Select("id", "uuid", "format", "algorithm", "downloaded", "existing", "missing", "errored", "started_at", "finished_at").
		From("runs").
		Where(sq.Eq{"uuid": submissionID}).
		OrderBy("id DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build runs query: %w", err)
	}

	var runs []Run
	if err := s.db.SelectContext(ctx, &runs, query, args...); err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	return runs, nil
}

// FilesFor returns the file rows of one recorded run, in insertion order.
func (s *Store) FilesFor(ctx context.Context, runID int64) ([]RunFile, error) {
	query, args, err := s.builder.
		Select("id", "run_id", "filename", "outcome", "checksum", "size").
		From("run_files").
		Where(sq.Eq{"run_id": runID}).
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build files query: %w", err)
	}

	var rows []RunFile
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to query run files: %w", err)
	}
	return rows, nil
}
