package document

import (
	"context"
	"errors"
)

// ErrNotExist is returned by Repository.Load when no document is stored
// under the requested name. Stores treat this as an empty dataset rather
// than a failure.
var ErrNotExist = errors.New("document: does not exist")

// Repository abstracts document persistence. Implementations must return
// ErrNotExist (possibly wrapped) from Load when the named document is
// absent, and must make Save create the document if needed.
type Repository interface {
	// Load parses and returns the document stored under name.
	Load(ctx context.Context, name string) (*Document, error)

	// Save serializes doc and persists it under name, replacing any
	// previous contents.
	Save(ctx context.Context, name string, doc *Document) error
}
