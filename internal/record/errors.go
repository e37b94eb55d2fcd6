package record

import (
	"errors"
	"fmt"
)

// NotFoundError reports a primary key that is absent from a store's dataset
// where its presence is required.
type NotFoundError struct {
	Key any
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("record with key '%v' not found", e.Key)
}

// IsNotFound reports whether err is (or wraps) a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// ParseError reports a malformed stored value: a field that fails to decode,
// or a backing document that fails to parse. Recoverable by the caller; the
// store itself stays usable.
type ParseError struct {
	// Subject identifies what failed to parse, e.g. `attribute "stock"` or
	// `document "inventory"`.
	Subject string

	// Value is the offending raw value, when one exists.
	Value string

	// Err is the underlying decode failure.
	Err error
}

func (e *ParseError) Error() string {
	if e.Value != "" {
		return fmt.Sprintf("parse %s: bad value %q: %v", e.Subject, e.Value, e.Err)
	}
	return fmt.Sprintf("parse %s: %v", e.Subject, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// IsParse reports whether err is (or wraps) a ParseError.
func IsParse(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}
