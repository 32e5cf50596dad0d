package serialize

import (
	"bytes"
	"encoding/json"
)

// renderJSON writes the projected submission with a 4-space indent and
// without escaping non-ASCII or HTML characters, so Danish field values
// stay readable in the artifact.
func renderJSON(projected map[string]interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(projected); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
