package fs

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aarhusstadsarkiv/smart-client/internal/observability"
	"github.com/aarhusstadsarkiv/smart-client/internal/storage"
)

func newTestStorage(t *testing.T) (*Storage, string) {
	t.Helper()
	dir := t.TempDir()
	s, err := New(dir, observability.NopLogger{}, observability.NopMetrics{})
	require.NoError(t, err)
	return s, dir
}

func TestNew_RequiresExistingDirectory(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "missing"), observability.NopLogger{}, observability.NopMetrics{})
	assert.Error(t, err)

	file := filepath.Join(t.TempDir(), "file.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))
	_, err = New(file, observability.NopLogger{}, observability.NopMetrics{})
	assert.Error(t, err)
}

func TestPutGetExists(t *testing.T) {
	s, dir := newTestStorage(t)
	ctx := context.Background()
	key := "dbd9bcb8-8110-4a10-9fe7-d12d9ca9f09d/letter.pdf"

	exists, err := s.Exists(ctx, key)
	require.NoError(t, err)
	assert.False(t, exists)

	err = s.Put(ctx, key, strings.NewReader("pdf bytes"), storage.ObjectMetadata{})
	require.NoError(t, err)

	// The submission subdirectory is created on demand.
	info, err := os.Stat(filepath.Join(dir, "dbd9bcb8-8110-4a10-9fe7-d12d9ca9f09d"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	exists, err = s.Exists(ctx, key)
	require.NoError(t, err)
	assert.True(t, exists)

	reader, err := s.Get(ctx, key)
	require.NoError(t, err)
	defer reader.Close()

	content, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.Equal(t, "pdf bytes", string(content))
}

func TestGet_NotFound(t *testing.T) {
	s, _ := newTestStorage(t)

	_, err := s.Get(context.Background(), "nope/missing.bin")
	assert.ErrorIs(t, err, storage.ErrObjectNotFound)
}
