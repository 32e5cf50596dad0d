package serialize

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"sort"
	"strconv"
)

// renderXML writes the projected submission as a pretty-printed XML
// document with root element "submission". Maps become nested elements
// with keys sorted for deterministic output, and every list item is
// emitted as a <file> element since the file list is the only list the
// projection produces.
func renderXML(projected map[string]interface{}) []byte {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	buf.WriteString("<submission>\n")
	writeFields(&buf, projected, 1)
	buf.WriteString("</submission>\n")
	return buf.Bytes()
}

func writeFields(buf *bytes.Buffer, fields map[string]interface{}, depth int) {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		writeElement(buf, k, fields[k], depth)
	}
}

func writeElement(buf *bytes.Buffer, name string, value interface{}, depth int) {
	indent(buf, depth)
	switch v := value.(type) {
	case map[string]interface{}:
		fmt.Fprintf(buf, "<%s>\n", name)
		writeFields(buf, v, depth+1)
		indent(buf, depth)
		fmt.Fprintf(buf, "</%s>\n", name)
	case []interface{}:
		fmt.Fprintf(buf, "<%s>\n", name)
		for _, item := range v {
			writeElement(buf, "file", item, depth+1)
		}
		indent(buf, depth)
		fmt.Fprintf(buf, "</%s>\n", name)
	case nil:
		fmt.Fprintf(buf, "<%s/>\n", name)
	default:
		fmt.Fprintf(buf, "<%s>", name)
		escape(buf, scalarText(v))
		fmt.Fprintf(buf, "</%s>\n", name)
	}
}

func scalarText(v interface{}) string {
	switch value := v.(type) {
	case string:
		return value
	case json.Number:
		return value.String()
	case bool:
		return strconv.FormatBool(value)
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", value)
	}
}

func escape(buf *bytes.Buffer, s string) {
	// EscapeText cannot fail on a bytes.Buffer.
	_ = xml.EscapeText(buf, []byte(s))
}

func indent(buf *bytes.Buffer, depth int) {
	for i := 0; i < depth; i++ {
		buf.WriteString("  ")
	}
}
