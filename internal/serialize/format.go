// Package serialize renders the projected submission to its on-disk
// metadata artifact and writes it through object storage.
package serialize

import "fmt"

// Format selects the metadata artifact layout.
type Format string

const (
	// FormatJSON writes submission.json.
	FormatJSON Format = "json"
	// FormatXML writes submission.xml.
	FormatXML Format = "xml"
	// FormatArkibas writes the journal.csv / indhold.csv pair consumed by
	// the Arkibas import.
	FormatArkibas Format = "arkibas"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatJSON, FormatXML, FormatArkibas:
		return Format(s), nil
	default:
		return "", fmt.Errorf("unknown output format: %q", s)
	}
}
