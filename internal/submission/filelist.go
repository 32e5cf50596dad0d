package submission

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"path"

	"github.com/aarhusstadsarkiv/smart-client/internal/document"
)

// ExtractFileList derives the ordered attachment list from a submission
// document. The order of the linked files map is preserved; it determines
// download order and row order in tabular output.
func ExtractFileList(doc *document.Document) ([]FileDescriptor, error) {
	entries, err := doc.LinkedFiles()
	if err != nil {
		if errors.Is(err, document.ErrMissingFiles) {
			return nil, ErrNoAttachments
		}
		return nil, err
	}

	files := make([]FileDescriptor, 0, len(entries))
	for _, entry := range entries {
		rawURL, _ := entry.Fields["url"].(string)
		if rawURL == "" {
			return nil, fmt.Errorf("file entry %q has no url", entry.ID)
		}

		filename, err := filenameFromURL(rawURL)
		if err != nil {
			return nil, fmt.Errorf("file entry %q: %w", entry.ID, err)
		}

		files = append(files, FileDescriptor{
			ID:       entry.ID,
			URL:      rawURL,
			Size:     sizeOf(entry.Fields),
			Filename: filename,
			fields:   entry.Fields,
		})
	}
	return files, nil
}

// filenameFromURL returns the percent-decoded final path segment of the
// source URL.
func filenameFromURL(rawURL string) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid file url: %w", err)
	}
	// url.Parse already decodes the path.
	name := path.Base(parsed.Path)
	if name == "." || name == "/" || name == "" {
		return "", fmt.Errorf("file url has no filename: %s", rawURL)
	}
	return name, nil
}

func sizeOf(fields map[string]interface{}) int64 {
	switch v := fields["size"].(type) {
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0
		}
		return n
	case float64:
		return int64(v)
	case string:
		var n json.Number = json.Number(v)
		size, err := n.Int64()
		if err != nil {
			return 0
		}
		return size
	default:
		return 0
	}
}
