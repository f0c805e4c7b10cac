package models

import (
	"bytes"
	"encoding/json"
	"sort"
)

// Record field names produced by the normalizer.
const (
	FieldText  = "text"
	FieldHTML  = "html"
	FieldValue = "value"
)

var canonicalFields = []string{FieldText, FieldHTML, FieldValue}

// Record is one flat, string-valued output row built from a single matched node.
type Record map[string]string

// Keys returns the record's field names in canonical order: text, html,
// value, then any other field sorted by name.
func (r Record) Keys() []string {
	keys := make([]string, 0, len(r))
	for _, k := range canonicalFields {
		if _, ok := r[k]; ok {
			keys = append(keys, k)
		}
	}
	var extra []string
	for k := range r {
		if k != FieldText && k != FieldHTML && k != FieldValue {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	return append(keys, extra...)
}

// MarshalJSON writes the fields in canonical order without HTML escaping,
// so the same record always encodes to the same bytes.
func (r Record) MarshalJSON() ([]byte, error) {
	if r == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.Keys() {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeJSONString(&buf, k); err != nil {
			return nil, err
		}
		buf.WriteByte(':')
		if err := writeJSONString(&buf, r[k]); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func writeJSONString(buf *bytes.Buffer, s string) error {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return err
	}
	// Encode terminates each value with a newline.
	buf.Truncate(buf.Len() - 1)
	return nil
}
