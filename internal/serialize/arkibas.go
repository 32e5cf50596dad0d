package serialize

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
)

// Column layouts required by the Arkibas import. The headers are fixed;
// columns this client cannot fill are left empty for the archivist.
var (
	journalColumns = []string{
		"JournalAar",
		"JournalNr",
		"ModtagetAf",
		"ModtagetDato",
		"Aftale",
		"Klausul",
		"Klausulbeskrivelse",
		"Bemærkning",
		"Stikord",
		"Giver1Navn",
		"Giver1Adresse",
		"Giver1Postnummer",
		"Giver1By",
		"Giver1Telefon",
		"Giver1Email",
		"Giver1Bemærkninger",
	}
	contentColumns = []string{
		"Journalnummer",
		"Indhold",
		"Råderet",
		"Mængde",
		"Placering",
		"Note",
		"Filnavn",
	}
)

// renderArkibas produces the journal.csv / indhold.csv pair. The journal
// table holds a single row with the donor's contact fields; the content
// table holds one row per file, repeating the shared description, file
// count and location next to each filename.
func renderArkibas(projected map[string]interface{}) (journal, content []byte, err error) {
	files, _ := projected["files"].([]interface{})

	journalRow := map[string]string{
		"Giver1Navn":    stringField(projected, "name"),
		"Giver1Telefon": stringField(projected, "phone"),
		"Giver1Email":   stringField(projected, "email"),
	}
	journal, err = renderTable(journalColumns, []map[string]string{journalRow})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to render journal table: %w", err)
	}

	contentRows := make([]map[string]string, 0, len(files))
	for _, item := range files {
		fields, _ := item.(map[string]interface{})
		contentRows = append(contentRows, map[string]string{
			"Indhold":   stringField(projected, "description"),
			"Mængde":    strconv.Itoa(len(files)),
			"Placering": stringField(projected, "location"),
			"Filnavn":   stringField(fields, "filename"),
		})
	}
	content, err = renderTable(contentColumns, contentRows)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to render content table: %w", err)
	}
	return journal, content, nil
}

func renderTable(columns []string, rows []map[string]string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.UseCRLF = true

	if err := w.Write(columns); err != nil {
		return nil, err
	}
	for _, row := range rows {
		record := make([]string, len(columns))
		for i, col := range columns {
			record[i] = row[col]
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func stringField(fields map[string]interface{}, key string) string {
	switch v := fields[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}
