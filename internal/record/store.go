// Package record implements the generic document-backed record store: typed
// field projections over ordered records, and a keyed store with an explicit
// fetch/commit lifecycle.
//
// Concrete entities plug into the store through the Entity capability
// interface: a primary-key field accessor plus decode/encode routines. The
// store itself never constructs or inspects entity attributes.
package record

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/roach88/stockroom/internal/document"
)

// Key constrains store primary keys to the types used by the concrete
// entities: integers for articles, strings for products.
type Key interface {
	~int | ~string
}

// Entity is the capability set a concrete entity supplies to the generic
// store. DecodeRecord populates the entity's fields from a record;
// EncodeRecord writes them back.
type Entity[K Key] interface {
	// PrimaryKey returns the field addressing the store's current record.
	PrimaryKey() *Field[K]

	// DecodeRecord decodes all declared fields from rec.
	DecodeRecord(rec *document.Record) error

	// EncodeRecord encodes all declared fields into rec.
	EncodeRecord(rec *document.Record) error
}

// Store is a keyed, document-backed record collection. The dataset is the
// authoritative in-memory cache of one section of the backing document;
// the document itself is only touched again at Commit time.
//
// A store addresses exactly one "current" record at a time, through the
// entity's primary-key field.
type Store[K Key] struct {
	name    string
	section string
	repo    document.Repository
	entity  Entity[K]
	logger  *slog.Logger

	doc     *document.Document
	dataset map[K]*document.Record
}

// Option configures a Store.
type Option[K Key] func(*Store[K])

// WithSection overrides the document section name, which defaults to the
// document name.
func WithSection[K Key](section string) Option[K] {
	return func(s *Store[K]) { s.section = section }
}

// WithLogger sets the store's logger. Defaults to slog.Default().
func WithLogger[K Key](logger *slog.Logger) Option[K] {
	return func(s *Store[K]) { s.logger = logger }
}

// NewStore constructs a store over the named document. Call Fetch to load
// the dataset before reading.
func NewStore[K Key](repo document.Repository, name string, entity Entity[K], opts ...Option[K]) *Store[K] {
	s := &Store[K]{
		name:    name,
		section: name,
		repo:    repo,
		entity:  entity,
		logger:  slog.Default(),
		doc:     document.NewDocument(),
		dataset: make(map[K]*document.Record),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Fetch loads the backing document and indexes every record of the store's
// section by primary key. An absent document or section yields an empty
// dataset, not an error; a malformed document yields a ParseError.
func (s *Store[K]) Fetch(ctx context.Context) error {
	doc, err := s.repo.Load(ctx, s.name)
	if errors.Is(err, document.ErrNotExist) {
		s.logger.Debug("document absent, starting empty", "document", s.name)
		return nil
	}
	if err != nil {
		return &ParseError{Subject: fmt.Sprintf("document %q", s.name), Err: err}
	}
	s.doc = doc

	records, ok := doc.Section(s.section)
	if !ok {
		s.logger.Debug("section absent, starting empty", "document", s.name, "section", s.section)
		return nil
	}

	key := s.entity.PrimaryKey()
	for _, rec := range records {
		k, err := key.Get(rec)
		if err != nil {
			return fmt.Errorf("document %q: %w", s.name, err)
		}
		s.dataset[k] = rec
	}
	s.logger.Debug("fetched dataset", "document", s.name, "records", len(s.dataset))
	return nil
}

// Exists reports whether key is present in the dataset.
func (s *Store[K]) Exists(key K) bool {
	_, ok := s.dataset[key]
	return ok
}

// Len returns the number of records in the dataset.
func (s *Store[K]) Len() int { return len(s.dataset) }

// Keys returns all primary keys in sorted order.
func (s *Store[K]) Keys() []K {
	keys := make([]K, 0, len(s.dataset))
	for k := range s.dataset {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// ReadCurrent decodes the entity's fields from the record addressed by the
// primary-key field. Returns a NotFoundError when that key is absent.
func (s *Store[K]) ReadCurrent() error {
	key := s.entity.PrimaryKey().Value()
	rec, ok := s.dataset[key]
	if !ok {
		return &NotFoundError{Key: key}
	}
	return s.entity.DecodeRecord(rec)
}

// WriteCurrent encodes the entity's fields into the record addressed by the
// primary-key field. Returns a NotFoundError when that key is absent.
func (s *Store[K]) WriteCurrent() error {
	key := s.entity.PrimaryKey().Value()
	rec, ok := s.dataset[key]
	if !ok {
		return &NotFoundError{Key: key}
	}
	return s.entity.EncodeRecord(rec)
}

// Read makes key the current record and decodes the entity's fields from
// it. Returns (false, nil) when the key is absent, leaving state
// unmodified.
func (s *Store[K]) Read(key K) (bool, error) {
	if !s.Exists(key) {
		return false, nil
	}
	s.entity.PrimaryKey().SetValue(key)
	if err := s.ReadCurrent(); err != nil {
		return false, err
	}
	return true, nil
}

// Write makes key the current record and encodes the entity's fields into
// it. Returns (false, nil) when the key is absent.
func (s *Store[K]) Write(key K) (bool, error) {
	if !s.Exists(key) {
		return false, nil
	}
	s.entity.PrimaryKey().SetValue(key)
	if err := s.WriteCurrent(); err != nil {
		return false, err
	}
	return true, nil
}

// Commit serializes the dataset (ordered by key) back into the document's
// section and persists the document. This is the only point where the
// backing document is mutated; there is no autosave.
func (s *Store[K]) Commit(ctx context.Context) error {
	records := make([]*document.Record, 0, len(s.dataset))
	for _, k := range s.Keys() {
		records = append(records, s.dataset[k])
	}
	s.doc.SetSection(s.section, records)

	if err := s.repo.Save(ctx, s.name, s.doc); err != nil {
		return fmt.Errorf("commit document %q: %w", s.name, err)
	}
	s.logger.Debug("committed dataset", "document", s.name, "records", len(records))
	return nil
}
