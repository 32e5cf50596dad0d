// Package document models the untyped submission JSON returned by the
// intake API. The shape is API-defined, so required nested paths are
// validated explicitly and missing ones reported with named errors instead
// of assuming a fixed structure.
package document

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrNotAnObject  = errors.New("submission document is not a json object")
	ErrMissingData  = errors.New("submission document has no data section")
	ErrMissingFiles = errors.New("submission document has no linked files section")
)

// Document is an immutable parsed submission. The raw bytes are retained so
// that map key order can be recovered where it matters; transformations
// never mutate the decoded fields in place.
type Document struct {
	raw    []byte
	fields map[string]interface{}
}

// Parse decodes a submission document. Numbers are kept as json.Number so
// their original text survives re-serialization.
func Parse(raw []byte) (*Document, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var fields map[string]interface{}
	if err := dec.Decode(&fields); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotAnObject, err)
	}

	return &Document{raw: raw, fields: fields}, nil
}

// Data returns the form-field map under the top-level "data" key.
func (d *Document) Data() (map[string]interface{}, error) {
	data, ok := d.fields["data"].(map[string]interface{})
	if !ok {
		return nil, ErrMissingData
	}
	return data, nil
}

// FileEntry is one attachment entry from data.linked.files, keyed by the
// internal file id.
type FileEntry struct {
	ID     string
	Fields map[string]interface{}
}

// LinkedFiles returns the attachment entries in document order. Go maps do
// not preserve key order, so the order is recovered by re-walking the raw
// bytes with a token decoder; it determines both download order and row
// order in tabular output.
func (d *Document) LinkedFiles() ([]FileEntry, error) {
	data, err := d.Data()
	if err != nil {
		return nil, err
	}
	linked, ok := data["linked"].(map[string]interface{})
	if !ok {
		return nil, ErrMissingFiles
	}
	files, ok := linked["files"].(map[string]interface{})
	if !ok || len(files) == 0 {
		return nil, ErrMissingFiles
	}

	entries, err := orderedEntries(d.raw, "data", "linked", "files")
	if err != nil {
		return nil, fmt.Errorf("failed to read file entries: %w", err)
	}
	return entries, nil
}

// orderedEntries walks the raw document to the object at the given path and
// returns its members in document order.
func orderedEntries(raw []byte, path ...string) ([]FileEntry, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	if err := seekObject(dec, path); err != nil {
		return nil, err
	}

	var entries []FileEntry
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected token %v in object", keyTok)
		}

		var value map[string]interface{}
		if err := dec.Decode(&value); err != nil {
			return nil, fmt.Errorf("entry %q is not an object: %w", key, err)
		}
		entries = append(entries, FileEntry{ID: key, Fields: value})
	}
	return entries, nil
}

// seekObject advances the decoder through the opening braces along path,
// leaving it positioned inside the target object.
func seekObject(dec *json.Decoder, path []string) error {
	if err := expectDelim(dec, '{'); err != nil {
		return err
	}
	for _, segment := range path {
		found := false
		for dec.More() {
			keyTok, err := dec.Token()
			if err != nil {
				return err
			}
			key, ok := keyTok.(string)
			if !ok {
				return fmt.Errorf("unexpected token %v in object", keyTok)
			}
			if key == segment {
				if err := expectDelim(dec, '{'); err != nil {
					return fmt.Errorf("%q is not an object: %w", segment, err)
				}
				found = true
				break
			}
			// Skip the value of a non-matching key.
			var skip json.RawMessage
			if err := dec.Decode(&skip); err != nil {
				return err
			}
		}
		if !found {
			return fmt.Errorf("path segment %q not found", segment)
		}
	}
	return nil
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	delim, ok := tok.(json.Delim)
	if !ok || delim != want {
		return fmt.Errorf("expected %q, got %v", want, tok)
	}
	return nil
}
