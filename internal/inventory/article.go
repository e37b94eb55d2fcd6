// Package inventory implements the two concrete record stores: articles
// (raw stock items, keyed by integer id) and products (sellable items,
// keyed by name), plus the availability engine that keeps each product's
// cached assemblable-unit count consistent with article stock.
package inventory

import (
	"context"
	"log/slog"
	"slices"

	"github.com/roach88/stockroom/internal/document"
	"github.com/roach88/stockroom/internal/record"
)

// Attribute keys of an article record.
const (
	articleIDKey    = "art_id"
	articleNameKey  = "name"
	articleStockKey = "stock"
)

// Articles is the record store for stock items. On top of the generic store
// it maintains the subscriber index: for each article id, the set of product
// names whose requirements include it. Subscriptions are only ever added,
// never removed.
type Articles struct {
	store *record.Store[int]

	id    *record.Field[int]
	name  *record.Field[string]
	stock *record.Field[int]

	subscribers map[int]map[string]struct{}
	logger      *slog.Logger
}

// OpenArticles constructs the article store over the named document and
// fetches all records.
func OpenArticles(ctx context.Context, repo document.Repository, docName string, logger *slog.Logger) (*Articles, error) {
	if logger == nil {
		logger = slog.Default()
	}
	a := &Articles{
		id:          record.IntField(articleIDKey),
		name:        record.StringField(articleNameKey),
		stock:       record.IntField(articleStockKey),
		subscribers: make(map[int]map[string]struct{}),
		logger:      logger,
	}
	a.store = record.NewStore[int](repo, docName, a, record.WithLogger[int](logger))
	if err := a.store.Fetch(ctx); err != nil {
		return nil, err
	}
	return a, nil
}

// PrimaryKey implements record.Entity.
func (a *Articles) PrimaryKey() *record.Field[int] { return a.id }

// DecodeRecord implements record.Entity.
func (a *Articles) DecodeRecord(rec *document.Record) error {
	if _, err := a.id.Get(rec); err != nil {
		return err
	}
	if _, err := a.name.Get(rec); err != nil {
		return err
	}
	if _, err := a.stock.Get(rec); err != nil {
		return err
	}
	return nil
}

// EncodeRecord implements record.Entity.
func (a *Articles) EncodeRecord(rec *document.Record) error {
	a.id.Set(rec)
	a.name.Set(rec)
	a.stock.Set(rec)
	return nil
}

// ID returns the current article's id.
func (a *Articles) ID() int { return a.id.Value() }

// Name returns the current article's name.
func (a *Articles) Name() string { return a.name.Value() }

// Stock returns the current article's stock.
func (a *Articles) Stock() int { return a.stock.Value() }

// SetName assigns the current article's name.
func (a *Articles) SetName(name string) { a.name.SetValue(name) }

// SetStock assigns the current article's stock.
func (a *Articles) SetStock(stock int) { a.stock.SetValue(stock) }

// Exists reports whether an article with the given id is loaded.
func (a *Articles) Exists(id int) bool { return a.store.Exists(id) }

// Keys returns all article ids in sorted order.
func (a *Articles) Keys() []int { return a.store.Keys() }

// Len returns the number of loaded articles.
func (a *Articles) Len() int { return a.store.Len() }

// Read makes the article with the given id current and decodes its fields.
// Returns (false, nil) when the id is unknown.
func (a *Articles) Read(id int) (bool, error) { return a.store.Read(id) }

// WriteCurrent encodes the current article's fields back into its
// in-memory record. No document I/O happens until Commit.
func (a *Articles) WriteCurrent() error { return a.store.WriteCurrent() }

// Commit flushes the article dataset to the backing document.
func (a *Articles) Commit(ctx context.Context) error { return a.store.Commit(ctx) }

// Subscribe registers product in the subscriber set of the given article.
// Returns whether the registration was newly added; re-subscribing the same
// pair is a no-op returning false. Returns a NotFoundError for an unknown
// article id.
func (a *Articles) Subscribe(articleID int, product string) (bool, error) {
	if !a.store.Exists(articleID) {
		return false, &record.NotFoundError{Key: articleID}
	}
	set := a.subscribers[articleID]
	if set == nil {
		set = make(map[string]struct{})
		a.subscribers[articleID] = set
	}
	if _, ok := set[product]; ok {
		return false, nil
	}
	set[product] = struct{}{}
	a.logger.Debug("subscribed product to article", "article", articleID, "product", product)
	return true, nil
}

// Subscribers returns the names of all products depending on the given
// article, in sorted order.
func (a *Articles) Subscribers(articleID int) []string {
	set := a.subscribers[articleID]
	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
