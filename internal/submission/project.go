package submission

import (
	"encoding/json"
	"strings"

	"github.com/aarhusstadsarkiv/smart-client/internal/document"
)

// allowList holds raw field names retained verbatim regardless of the
// configured namespace prefix.
var allowList = map[string]bool{
	"name":  true,
	"email": true,
	"phone": true,
}

// Projector rewrites raw submission fields into the output namespace.
type Projector struct {
	prefix string
}

// NewProjector creates a projector for the given namespace prefix. Prefix
// matching is case-insensitive. An empty prefix disables prefix-based
// retention, leaving only the allow-list.
func NewProjector(prefix string) *Projector {
	return &Projector{prefix: strings.ToLower(prefix)}
}

// Project produces the output-ready field mapping: prefixed fields with the
// prefix stripped, allow-listed fields verbatim, empty values dropped, and
// the finalized file list attached under "files" unconditionally. The
// source document is not modified.
func (p *Projector) Project(doc *document.Document, files []FileDescriptor) (map[string]interface{}, error) {
	data, err := doc.Data()
	if err != nil {
		return nil, err
	}

	out := make(map[string]interface{})
	for k, v := range data {
		if isEmptyValue(v) {
			continue
		}
		if p.prefix != "" && strings.HasPrefix(strings.ToLower(k), p.prefix) {
			out[k[len(p.prefix):]] = v
		} else if allowList[k] {
			out[k] = v
		}
	}

	fileList := make([]interface{}, 0, len(files))
	for i := range files {
		fileList = append(fileList, files[i].OutputFields())
	}
	out["files"] = fileList

	return out, nil
}

// isEmptyValue reports whether a raw field value carries no information:
// nil, empty string, zero number, false, or an empty collection.
func isEmptyValue(v interface{}) bool {
	switch value := v.(type) {
	case nil:
		return true
	case string:
		return value == ""
	case bool:
		return !value
	case json.Number:
		f, err := value.Float64()
		return err == nil && f == 0
	case float64:
		return value == 0
	case []interface{}:
		return len(value) == 0
	case map[string]interface{}:
		return len(value) == 0
	default:
		return false
	}
}
