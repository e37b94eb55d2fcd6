package document

import "fmt"

// Kind discriminates the two value shapes a record attribute can hold.
type Kind int

const (
	// KindString is a scalar attribute. Every scalar is stored as a string
	// on disk, even when the field is logically an integer.
	KindString Kind = iota

	// KindList is a nested array of records (e.g. a product's requirement
	// entries).
	KindList
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindList:
		return "list"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Value is one attribute value of a Record: either a scalar string or a
// nested list of records. The zero Value is the empty string.
type Value struct {
	kind Kind
	str  string
	list []*Record
}

// String constructs a scalar value.
func String(s string) Value {
	return Value{kind: KindString, str: s}
}

// List constructs a nested record-list value.
func List(records []*Record) Value {
	return Value{kind: KindList, list: records}
}

// Kind reports the shape of the value.
func (v Value) Kind() Kind { return v.kind }

// AsString returns the scalar form. The second result is false when the
// value is not a scalar.
func (v Value) AsString() (string, bool) {
	if v.kind != KindString {
		return "", false
	}
	return v.str, true
}

// AsList returns the nested record list. The second result is false when
// the value is not a list.
func (v Value) AsList() ([]*Record, bool) {
	if v.kind != KindList {
		return nil, false
	}
	return v.list, true
}
