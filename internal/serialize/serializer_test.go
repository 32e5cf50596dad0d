package serialize

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aarhusstadsarkiv/smart-client/internal/observability"
	"github.com/aarhusstadsarkiv/smart-client/internal/storage/fs"
)

func newTestSerializer(t *testing.T) (*Serializer, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := fs.New(dir, observability.NopLogger{}, observability.NopMetrics{})
	require.NoError(t, err)
	return New(store, observability.NopLogger{}, observability.NopMetrics{}), dir
}

func sampleSubmission() map[string]interface{} {
	return map[string]interface{}{
		"name":        "Jens Jensen",
		"email":       "jens@example.org",
		"phone":       "12345678",
		"description": "Fotos fra havnen i København",
		"location":    "Aarhus Ø",
		"files": []interface{}{
			map[string]interface{}{"filename": "a.jpg", "outcome": "ok", "checksum": "sha256:aa"},
			map[string]interface{}{"filename": "nøgletal.xlsx", "outcome": "existing", "checksum": "sha256:bb"},
		},
	}
}

func TestParseFormat(t *testing.T) {
	for _, valid := range []string{"json", "xml", "arkibas"} {
		format, err := ParseFormat(valid)
		require.NoError(t, err)
		assert.Equal(t, Format(valid), format)
	}

	_, err := ParseFormat("yaml")
	assert.ErrorContains(t, err, "unknown output format")
}

func TestRenderJSON(t *testing.T) {
	body, err := renderJSON(sampleSubmission())
	require.NoError(t, err)

	// Non-ASCII values are written literally, not escaped.
	assert.Contains(t, string(body), "København")
	assert.Contains(t, string(body), "    \"name\": \"Jens Jensen\"")

	// The artifact parses back to the projection it was rendered from.
	var parsed map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &parsed))
	assert.Equal(t, "Jens Jensen", parsed["name"])
	assert.Len(t, parsed["files"], 2)
}

func TestRenderXML(t *testing.T) {
	body := string(renderXML(map[string]interface{}{
		"name":        "Jens & søn",
		"description": "Fotos",
		"files": []interface{}{
			map[string]interface{}{"filename": "a.jpg", "outcome": "ok"},
		},
	}))

	assert.True(t, strings.HasPrefix(body, xmlHeaderPrefix), body)
	assert.Contains(t, body, "<submission>")
	assert.Contains(t, body, "</submission>")
	assert.Contains(t, body, "<name>Jens &amp; søn</name>")
	assert.Contains(t, body, "<file>")
	assert.Contains(t, body, "<filename>a.jpg</filename>")

	// Keys are emitted in sorted order.
	assert.Less(t, strings.Index(body, "<description>"), strings.Index(body, "<files>"))
	assert.Less(t, strings.Index(body, "<files>"), strings.Index(body, "<name>"))
}

const xmlHeaderPrefix = "<?xml version=\"1.0\""

func TestRenderArkibas(t *testing.T) {
	journal, content, err := renderArkibas(sampleSubmission())
	require.NoError(t, err)

	journalRows, err := csv.NewReader(strings.NewReader(string(journal))).ReadAll()
	require.NoError(t, err)
	require.Len(t, journalRows, 2)
	assert.Equal(t, journalColumns, journalRows[0])

	row := journalRows[1]
	require.Len(t, row, len(journalColumns))
	assert.Equal(t, "Jens Jensen", row[indexOf(t, journalColumns, "Giver1Navn")])
	assert.Equal(t, "12345678", row[indexOf(t, journalColumns, "Giver1Telefon")])
	assert.Equal(t, "jens@example.org", row[indexOf(t, journalColumns, "Giver1Email")])
	assert.Empty(t, row[indexOf(t, journalColumns, "JournalAar")])

	contentRows, err := csv.NewReader(strings.NewReader(string(content))).ReadAll()
	require.NoError(t, err)
	require.Len(t, contentRows, 3)
	assert.Equal(t, contentColumns, contentRows[0])

	for i, filename := range []string{"a.jpg", "nøgletal.xlsx"} {
		row := contentRows[i+1]
		assert.Equal(t, "Fotos fra havnen i København", row[indexOf(t, contentColumns, "Indhold")])
		assert.Equal(t, "2", row[indexOf(t, contentColumns, "Mængde")])
		assert.Equal(t, "Aarhus Ø", row[indexOf(t, contentColumns, "Placering")])
		assert.Equal(t, filename, row[indexOf(t, contentColumns, "Filnavn")])
	}
}

func indexOf(t *testing.T, columns []string, name string) int {
	t.Helper()
	for i, col := range columns {
		if col == name {
			return i
		}
	}
	t.Fatalf("column %q not found", name)
	return -1
}

func TestWrite_JSON(t *testing.T) {
	s, dir := newTestSerializer(t)

	written, err := s.Write(context.Background(), "sub-1", FormatJSON, sampleSubmission())
	require.NoError(t, err)
	assert.Equal(t, []string{"submission.json"}, written)

	_, err = os.Stat(filepath.Join(dir, "sub-1", "submission.json"))
	assert.NoError(t, err)
}

func TestWrite_ArkibasPair(t *testing.T) {
	s, dir := newTestSerializer(t)

	written, err := s.Write(context.Background(), "sub-1", FormatArkibas, sampleSubmission())
	require.NoError(t, err)
	assert.Equal(t, []string{"journal.csv", "indhold.csv"}, written)

	for _, name := range written {
		_, err = os.Stat(filepath.Join(dir, "sub-1", name))
		assert.NoError(t, err)
	}
}

func TestWrite_SkipsExistingArtifact(t *testing.T) {
	s, dir := newTestSerializer(t)

	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub-1"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sub-1", "submission.json"), []byte("earlier run"), 0o644))

	written, err := s.Write(context.Background(), "sub-1", FormatJSON, sampleSubmission())
	require.NoError(t, err)
	assert.Empty(t, written)

	// The earlier artifact is untouched.
	body, err := os.ReadFile(filepath.Join(dir, "sub-1", "submission.json"))
	require.NoError(t, err)
	assert.Equal(t, "earlier run", string(body))
}

func TestWrite_SkipsWholePairIfOneExists(t *testing.T) {
	s, dir := newTestSerializer(t)

	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub-1"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sub-1", "journal.csv"), []byte("earlier run"), 0o644))

	written, err := s.Write(context.Background(), "sub-1", FormatArkibas, sampleSubmission())
	require.NoError(t, err)
	assert.Empty(t, written)

	_, err = os.Stat(filepath.Join(dir, "sub-1", "indhold.csv"))
	assert.True(t, os.IsNotExist(err))
}
