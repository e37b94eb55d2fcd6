package document

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// Record is one row of a document section: an ordered mapping from attribute
// names to values. Attribute order is preserved across JSON round-trips so
// that committing an untouched document reproduces it faithfully.
type Record struct {
	keys  []string
	attrs map[string]Value
}

// NewRecord returns an empty record.
func NewRecord() *Record {
	return &Record{attrs: make(map[string]Value)}
}

// Get returns the value stored under key, and whether it was present.
func (r *Record) Get(key string) (Value, bool) {
	v, ok := r.attrs[key]
	return v, ok
}

// Set stores value under key. A new key is appended to the attribute order;
// an existing key keeps its position.
func (r *Record) Set(key string, value Value) {
	if r.attrs == nil {
		r.attrs = make(map[string]Value)
	}
	if _, ok := r.attrs[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.attrs[key] = value
}

// Len returns the number of attributes.
func (r *Record) Len() int { return len(r.keys) }

// Keys returns the attribute names in insertion order.
func (r *Record) Keys() []string {
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

// MarshalJSON encodes the record as a JSON object with attributes in
// insertion order.
func (r *Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := r.encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (r *Record) encode(buf *bytes.Buffer) error {
	buf.WriteByte('{')
	for i, key := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(key)
		if err != nil {
			return err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		if err := encodeValue(buf, r.attrs[key]); err != nil {
			return fmt.Errorf("attribute %q: %w", key, err)
		}
	}
	buf.WriteByte('}')
	return nil
}

func encodeValue(buf *bytes.Buffer, v Value) error {
	switch v.kind {
	case KindString:
		sb, err := json.Marshal(v.str)
		if err != nil {
			return err
		}
		buf.Write(sb)
	case KindList:
		buf.WriteByte('[')
		for i, rec := range v.list {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := rec.encode(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	default:
		return fmt.Errorf("unsupported value kind %v", v.kind)
	}
	return nil
}

// UnmarshalJSON decodes a JSON object into the record, preserving the order
// in which attributes appear. Scalars must be JSON strings; the only nested
// shape accepted is an array of objects.
func (r *Record) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	rec, err := decodeRecord(dec)
	if err != nil {
		return err
	}
	*r = *rec
	return nil
}

// decodeRecord consumes one JSON object from dec. The caller must have
// positioned dec so the next token is the object's opening brace.
func decodeRecord(dec *json.Decoder) (*Record, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("expected object, got %v", tok)
	}

	rec := NewRecord()
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("expected attribute name, got %v", keyTok)
		}
		val, err := decodeValue(dec)
		if err != nil {
			return nil, fmt.Errorf("attribute %q: %w", key, err)
		}
		rec.Set(key, val)
	}

	// Consume the closing brace.
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return rec, nil
}

func decodeValue(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return Value{}, err
	}
	switch t := tok.(type) {
	case string:
		return String(t), nil
	case json.Delim:
		if t != '[' {
			return Value{}, fmt.Errorf("unexpected delimiter %v", t)
		}
		var records []*Record
		for dec.More() {
			rec, err := decodeRecord(dec)
			if err != nil {
				return Value{}, err
			}
			records = append(records, rec)
		}
		// Consume the closing bracket.
		if _, err := dec.Token(); err != nil {
			return Value{}, err
		}
		return List(records), nil
	default:
		return Value{}, fmt.Errorf("unsupported value %v (%T): scalars must be strings", tok, tok)
	}
}

// decodeRecordArray consumes a JSON array of objects.
func decodeRecordArray(dec *json.Decoder) ([]*Record, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '[' {
		return nil, fmt.Errorf("expected array, got %v", tok)
	}
	var records []*Record
	for dec.More() {
		rec, err := decodeRecord(dec)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if _, err := dec.Token(); err != nil && err != io.EOF {
		return nil, err
	}
	return records, nil
}
