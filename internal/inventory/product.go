package inventory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"strconv"

	"golang.org/x/text/unicode/norm"

	"github.com/roach88/stockroom/internal/document"
	"github.com/roach88/stockroom/internal/record"
)

// Attribute keys of a product record and its requirement entries.
const (
	productNameKey  = "name"
	requirementsKey = "contain_articles"
	reqArticleIDKey = "art_id"
	reqAmountKey    = "amount_of"
)

// Unbounded is the availability sentinel for a product with no
// requirements. It only survives the initial computation when the
// requirement list is empty; every real requirement tightens it.
const Unbounded = math.MaxInt

// ErrNoArticles reports construction without an article store collaborator.
var ErrNoArticles = errors.New("inventory: products require an articles store")

// Requirements maps article id to the amount required per assembled unit.
type Requirements map[int]int

// Products is the record store for sellable items. It owns the cached
// per-product availability and the recomputation engine.
type Products struct {
	store *record.Store[string]

	name *record.Field[string]
	reqs *record.Field[Requirements]

	availability map[string]int
	articles     *Articles
	logger       *slog.Logger
}

// NormalizeName returns the NFC-normalized form of a product name. Product
// keys are normalized on decode and on lookup, so composed and decomposed
// spellings address the same product.
func NormalizeName(name string) string {
	return norm.NFC.String(name)
}

// OpenProducts constructs the product store over the named document,
// fetches all records, builds the article dependency index, and computes
// initial availability for every product.
func OpenProducts(ctx context.Context, repo document.Repository, docName string, articles *Articles, logger *slog.Logger) (*Products, error) {
	if articles == nil {
		return nil, ErrNoArticles
	}
	if logger == nil {
		logger = slog.Default()
	}
	p := &Products{
		availability: make(map[string]int),
		articles:     articles,
		logger:       logger,
	}
	p.name = record.NewField(productNameKey, record.Codec[string]{
		Decode: decodeName,
		Encode: func(s string) document.Value { return document.String(s) },
	})
	p.reqs = record.NewField(requirementsKey, record.Codec[Requirements]{
		Decode: decodeRequirements,
		Encode: encodeRequirements,
	})
	p.store = record.NewStore[string](repo, docName, p, record.WithLogger[string](logger))

	if err := p.store.Fetch(ctx); err != nil {
		return nil, err
	}
	if err := p.BuildIndex(); err != nil {
		return nil, err
	}
	if err := p.ComputeAvailability(); err != nil {
		return nil, err
	}
	return p, nil
}

func decodeName(v document.Value) (string, error) {
	s, ok := v.AsString()
	if !ok {
		return "", fmt.Errorf("expected string, got %v", v.Kind())
	}
	return NormalizeName(s), nil
}

// decodeRequirements parses the requirement entries of a product record.
// Entries with a non-positive amount are dropped.
func decodeRequirements(v document.Value) (Requirements, error) {
	entries, ok := v.AsList()
	if !ok {
		return nil, fmt.Errorf("expected list, got %v", v.Kind())
	}
	reqs := make(Requirements, len(entries))
	for i, entry := range entries {
		articleID, err := intAttr(entry, reqArticleIDKey)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		amount, err := intAttr(entry, reqAmountKey)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		if amount <= 0 {
			continue
		}
		reqs[articleID] = amount
	}
	return reqs, nil
}

func intAttr(rec *document.Record, key string) (int, error) {
	v, ok := rec.Get(key)
	if !ok {
		return 0, fmt.Errorf("attribute %q missing", key)
	}
	s, ok := v.AsString()
	if !ok {
		return 0, fmt.Errorf("attribute %q: expected string, got %v", key, v.Kind())
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("attribute %q: %w", key, err)
	}
	return n, nil
}

// encodeRequirements serializes requirements as an array of
// (art_id, amount_of) records, ordered by article id, amounts in decimal
// string form.
func encodeRequirements(reqs Requirements) document.Value {
	ids := make([]int, 0, len(reqs))
	for id := range reqs {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	records := make([]*document.Record, 0, len(ids))
	for _, id := range ids {
		rec := document.NewRecord()
		rec.Set(reqArticleIDKey, document.String(strconv.Itoa(id)))
		rec.Set(reqAmountKey, document.String(strconv.Itoa(reqs[id])))
		records = append(records, rec)
	}
	return document.List(records)
}

// PrimaryKey implements record.Entity.
func (p *Products) PrimaryKey() *record.Field[string] { return p.name }

// DecodeRecord implements record.Entity. Decoding is pure: the article
// dependency index is built separately by BuildIndex.
func (p *Products) DecodeRecord(rec *document.Record) error {
	if _, err := p.name.Get(rec); err != nil {
		return err
	}
	if _, err := p.reqs.Get(rec); err != nil {
		return err
	}
	return nil
}

// EncodeRecord implements record.Entity.
func (p *Products) EncodeRecord(rec *document.Record) error {
	p.name.Set(rec)
	p.reqs.Set(rec)
	return nil
}

// Name returns the current product's name.
func (p *Products) Name() string { return p.name.Value() }

// Requirements returns a copy of the current product's requirements.
func (p *Products) Requirements() Requirements {
	reqs := p.reqs.Value()
	out := make(Requirements, len(reqs))
	for id, amount := range reqs {
		out[id] = amount
	}
	return out
}

// Exists reports whether a product with the given name is loaded.
func (p *Products) Exists(name string) bool {
	return p.store.Exists(NormalizeName(name))
}

// Keys returns all product names in sorted order.
func (p *Products) Keys() []string { return p.store.Keys() }

// Len returns the number of loaded products.
func (p *Products) Len() int { return p.store.Len() }

// Read makes the named product current and decodes its fields. Returns
// (false, nil) when the name is unknown.
func (p *Products) Read(name string) (bool, error) {
	return p.store.Read(NormalizeName(name))
}

// WriteCurrent encodes the current product's fields back into its
// in-memory record.
func (p *Products) WriteCurrent() error { return p.store.WriteCurrent() }

// Commit flushes the product dataset to the backing document. Availability
// is never persisted; it is recomputed on every load.
func (p *Products) Commit(ctx context.Context) error { return p.store.Commit(ctx) }

// BuildIndex walks all loaded products and registers each one with every
// article its requirements name. Requirements referencing unknown articles
// are skipped with a warning; they contribute zero availability but do not
// fail the load.
func (p *Products) BuildIndex() error {
	for _, name := range p.store.Keys() {
		if _, err := p.store.Read(name); err != nil {
			return err
		}
		for _, articleID := range p.requirementIDs() {
			if !p.articles.Exists(articleID) {
				p.logger.Warn("requirement references unknown article",
					"product", name, "article", articleID)
				continue
			}
			if _, err := p.articles.Subscribe(articleID, name); err != nil {
				return err
			}
		}
	}
	return nil
}

// requirementIDs returns the current product's required article ids in
// sorted order, for deterministic iteration.
func (p *Products) requirementIDs() []int {
	reqs := p.reqs.Value()
	ids := make([]int, 0, len(reqs))
	for id := range reqs {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Availability returns the cached availability for the named product.
// Returns a NotFoundError for an unknown name.
func (p *Products) Availability(name string) (int, error) {
	key := NormalizeName(name)
	if !p.store.Exists(key) {
		return 0, &record.NotFoundError{Key: key}
	}
	return p.availability[key], nil
}

// Available reports whether the named product has availability > 0.
func (p *Products) Available(name string) (bool, error) {
	availability, err := p.Availability(name)
	if err != nil {
		return false, err
	}
	return availability > 0, nil
}

// ComputeAvailability derives the cached availability of every loaded
// product from scratch: the minimum over its requirements of
// floor(stock/amount), starting from the Unbounded sentinel.
func (p *Products) ComputeAvailability() error {
	for _, name := range p.store.Keys() {
		if err := p.computeAvailability(name); err != nil {
			return err
		}
	}
	return nil
}

func (p *Products) computeAvailability(name string) error {
	ok, err := p.store.Read(name)
	if err != nil {
		return err
	}
	if !ok {
		return &record.NotFoundError{Key: name}
	}

	p.availability[name] = Unbounded
	reqs := p.reqs.Value()
	for _, articleID := range p.requirementIDs() {
		afford, err := p.affordable(articleID, reqs[articleID])
		if err != nil {
			return err
		}
		p.availability[name] = min(p.availability[name], afford)
	}
	return nil
}

// affordable returns how many units the given article's stock can cover at
// the given required amount. An unknown article affords nothing.
func (p *Products) affordable(articleID, amount int) (int, error) {
	ok, err := p.articles.Read(articleID)
	if err != nil {
		return 0, err
	}
	if !ok {
		p.logger.Warn("required article not in stock list", "article", articleID)
		return 0, nil
	}
	return p.articles.Stock() / amount, nil
}

// UpdateAvailability folds the given article's current contribution into
// the cached availability of the current product (the one most recently
// Read). The update is a monotone tightening: min(cached, contribution).
// Stock only ever decreases in this system - there is no restock operation
// - so considering just the changed article is sound and avoids a full
// recompute on every mutation. Articles absent from the current product's
// requirements leave the cache untouched.
func (p *Products) UpdateAvailability(articleID int) error {
	reqs := p.reqs.Value()
	amount, ok := reqs[articleID]
	if !ok {
		return nil
	}

	name := p.name.Value()
	afford, err := p.affordable(articleID, amount)
	if err != nil {
		return err
	}
	p.logger.Debug("updating availability",
		"product", name,
		"article", articleID,
		"article_name", p.articles.Name(),
		"stock", p.articles.Stock(),
		"required", amount,
		"can_afford", afford)
	p.availability[name] = min(p.availability[name], afford)
	return nil
}
