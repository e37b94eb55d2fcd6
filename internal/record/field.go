package record

import (
	"fmt"
	"strconv"

	"github.com/roach88/stockroom/internal/document"
)

// Codec converts between a record attribute value and a typed Go value.
// Supplying a custom codec lets an entity project structured attributes
// (e.g. a nested requirement list) through the same Field machinery as
// plain scalars.
type Codec[T any] struct {
	Decode func(document.Value) (T, error)
	Encode func(T) document.Value
}

// Field is a typed projection over one attribute of a record. It holds the
// attribute key, the codec, and the most recently decoded (or assigned)
// value. Get and Set move the value between the field and a record; Value
// and SetValue access it in memory.
type Field[T any] struct {
	key   string
	value T
	codec Codec[T]
}

// NewField constructs a field with a custom codec.
func NewField[T any](key string, codec Codec[T]) *Field[T] {
	return &Field[T]{key: key, codec: codec}
}

// StringField constructs a field with the default string codec
// (passthrough).
func StringField(key string) *Field[string] {
	return NewField(key, Codec[string]{
		Decode: func(v document.Value) (string, error) {
			s, ok := v.AsString()
			if !ok {
				return "", fmt.Errorf("expected string, got %v", v.Kind())
			}
			return s, nil
		},
		Encode: func(s string) document.Value {
			return document.String(s)
		},
	})
}

// IntField constructs a field with the default integer codec: the stored
// form is the decimal string representation.
func IntField(key string) *Field[int] {
	return NewField(key, Codec[int]{
		Decode: func(v document.Value) (int, error) {
			s, ok := v.AsString()
			if !ok {
				return 0, fmt.Errorf("expected string, got %v", v.Kind())
			}
			return strconv.Atoi(s)
		},
		Encode: func(n int) document.Value {
			return document.String(strconv.Itoa(n))
		},
	})
}

// Key returns the attribute name this field projects.
func (f *Field[T]) Key() string { return f.key }

// Value returns the field's in-memory value.
func (f *Field[T]) Value() T { return f.value }

// SetValue assigns the field's in-memory value.
func (f *Field[T]) SetValue(v T) { f.value = v }

// Get decodes the field's attribute from rec into the in-memory value and
// returns it. A missing attribute or a failed decode yields a ParseError.
func (f *Field[T]) Get(rec *document.Record) (T, error) {
	raw, ok := rec.Get(f.key)
	if !ok {
		var zero T
		return zero, &ParseError{
			Subject: fmt.Sprintf("attribute %q", f.key),
			Err:     fmt.Errorf("attribute missing"),
		}
	}
	v, err := f.codec.Decode(raw)
	if err != nil {
		var zero T
		value, _ := raw.AsString()
		return zero, &ParseError{
			Subject: fmt.Sprintf("attribute %q", f.key),
			Value:   value,
			Err:     err,
		}
	}
	f.value = v
	return v, nil
}

// Set encodes the in-memory value into rec under the field's key.
func (f *Field[T]) Set(rec *document.Record) {
	rec.Set(f.key, f.codec.Encode(f.value))
}
