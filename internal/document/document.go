// Package document implements the on-disk representation shared by every
// record store: ordered semi-structured documents made of named sections,
// each holding an array of records whose scalar attributes are strings.
//
// Two interchangeable repository backends persist documents: a plain JSON
// file per document, and a single SQLite database holding all of them.
package document

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Document is a parsed backing structure: an ordered set of named sections,
// each an array of records. A store mutates its section only at commit time.
type Document struct {
	names    []string
	sections map[string][]*Record
}

// NewDocument returns an empty document.
func NewDocument() *Document {
	return &Document{sections: make(map[string][]*Record)}
}

// Section returns the record array stored under name, and whether the
// section exists.
func (d *Document) Section(name string) ([]*Record, bool) {
	recs, ok := d.sections[name]
	return recs, ok
}

// SetSection replaces (or appends) the section under name.
func (d *Document) SetSection(name string, records []*Record) {
	if d.sections == nil {
		d.sections = make(map[string][]*Record)
	}
	if _, ok := d.sections[name]; !ok {
		d.names = append(d.names, name)
	}
	d.sections[name] = records
}

// SectionNames returns the section names in insertion order.
func (d *Document) SectionNames() []string {
	out := make([]string, len(d.names))
	copy(out, d.names)
	return out
}

// MarshalJSON encodes the document as a JSON object of arrays, sections in
// insertion order.
func (d *Document) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range d.names {
		if i > 0 {
			buf.WriteByte(',')
		}
		nb, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		buf.Write(nb)
		buf.WriteByte(':')
		buf.WriteByte('[')
		for j, rec := range d.sections[name] {
			if j > 0 {
				buf.WriteByte(',')
			}
			if err := rec.encode(&buf); err != nil {
				return nil, fmt.Errorf("section %q: %w", name, err)
			}
		}
		buf.WriteByte(']')
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object of record arrays.
func (d *Document) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("expected top-level object, got %v", tok)
	}

	doc := NewDocument()
	for dec.More() {
		nameTok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := nameTok.(string)
		if !ok {
			return fmt.Errorf("expected section name, got %v", nameTok)
		}
		records, err := decodeRecordArray(dec)
		if err != nil {
			return fmt.Errorf("section %q: %w", name, err)
		}
		doc.SetSection(name, records)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}

	*d = *doc
	return nil
}
