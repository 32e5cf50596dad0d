package document

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDoc = `{
	"uuid": "dbd9bcb8-8110-4a10-9fe7-d12d9ca9f09d",
	"data": {
		"navn": "Jens Jensen",
		"ark_description": "Fotos fra havnen",
		"linked": {
			"files": {
				"41": {"url": "https://files.example.org/41/billede%20et.jpg", "size": 1024},
				"7":  {"url": "https://files.example.org/7/brev.pdf", "size": 2048},
				"23": {"url": "https://files.example.org/23/noter.txt", "size": 12}
			}
		}
	}
}`

func TestParse_Invalid(t *testing.T) {
	_, err := Parse([]byte(`[1, 2, 3]`))
	assert.ErrorIs(t, err, ErrNotAnObject)

	_, err = Parse([]byte(`{broken`))
	assert.ErrorIs(t, err, ErrNotAnObject)
}

func TestData_Missing(t *testing.T) {
	doc, err := Parse([]byte(`{"uuid": "x"}`))
	require.NoError(t, err)

	_, err = doc.Data()
	assert.ErrorIs(t, err, ErrMissingData)
}

func TestLinkedFiles_Missing(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"no linked", `{"data": {"navn": "x"}}`},
		{"no files", `{"data": {"linked": {}}}`},
		{"empty files", `{"data": {"linked": {"files": {}}}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Parse([]byte(tt.body))
			require.NoError(t, err)

			_, err = doc.LinkedFiles()
			assert.ErrorIs(t, err, ErrMissingFiles)
		})
	}
}

func TestLinkedFiles_PreservesDocumentOrder(t *testing.T) {
	doc, err := Parse([]byte(sampleDoc))
	require.NoError(t, err)

	entries, err := doc.LinkedFiles()
	require.NoError(t, err)
	require.Len(t, entries, 3)

	// Document order, not lexical or numeric key order.
	assert.Equal(t, "41", entries[0].ID)
	assert.Equal(t, "7", entries[1].ID)
	assert.Equal(t, "23", entries[2].ID)

	assert.Equal(t, "https://files.example.org/7/brev.pdf", entries[1].Fields["url"])
}

func TestLinkedFiles_OrderIsStableForManyKeys(t *testing.T) {
	// Enough keys that map iteration order would almost certainly differ.
	var sb strings.Builder
	sb.WriteString(`{"data": {"linked": {"files": {`)
	for i := 0; i < 50; i++ {
		if i > 0 {
			sb.WriteString(",")
		}
		fmt.Fprintf(&sb, `"f%02d": {"url": "https://files.example.org/%d/file%d.bin"}`, i, i, i)
	}
	sb.WriteString(`}}}}`)

	doc, err := Parse([]byte(sb.String()))
	require.NoError(t, err)

	entries, err := doc.LinkedFiles()
	require.NoError(t, err)
	require.Len(t, entries, 50)
	for i, entry := range entries {
		assert.Equal(t, fmt.Sprintf("f%02d", i), entry.ID)
	}
}
