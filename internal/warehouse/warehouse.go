// Package warehouse orchestrates sales over the article and product stores:
// validate the sale, apply stock decrements, propagate availability updates
// to every dependent product, and report a receipt.
package warehouse

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/google/uuid"

	"github.com/roach88/stockroom/internal/inventory"
	"github.com/roach88/stockroom/internal/record"
)

// ErrNilStore reports construction without both store collaborators.
var ErrNilStore = errors.New("warehouse: articles and products stores are required")

// UnavailableError reports a sale of a product whose availability is zero.
// Distinct from a NotFoundError: the product exists, stock just cannot
// cover one more unit.
type UnavailableError struct {
	Product string
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("product %q is not available", e.Product)
}

// IsUnavailable reports whether err is (or wraps) an UnavailableError.
func IsUnavailable(err error) bool {
	var ue *UnavailableError
	return errors.As(err, &ue)
}

// Sale phases, in order. Logged per phase with the sale token so one sale's
// lifecycle can be followed through the log.
const (
	phaseValidating  = "validating"
	phaseApplying    = "applying"
	phasePropagating = "propagating"
)

// StockDelta records one article decrement applied by a sale.
type StockDelta struct {
	ArticleID   int    `json:"article_id"`
	ArticleName string `json:"article_name"`
	Amount      int    `json:"amount"`
	Remaining   int    `json:"remaining"`
}

// Receipt summarizes a completed sale.
type Receipt struct {
	// Token is the UUIDv7 sale token correlating this sale's log entries.
	Token string `json:"token"`

	// Product is the (normalized) name of the sold product.
	Product string `json:"product"`

	// Deltas lists the applied stock decrements, ordered by article id.
	Deltas []StockDelta `json:"deltas"`

	// Availability is the product's cached availability after the sale.
	Availability int `json:"availability"`
}

// ProductAvailability is one row of a listing.
type ProductAvailability struct {
	Name         string `json:"name"`
	Availability int    `json:"availability"`
}

// Warehouse coordinates the article and product stores for sales and
// listings. Single-threaded: one request runs to completion before the
// next starts.
type Warehouse struct {
	articles *inventory.Articles
	products *inventory.Products
	logger   *slog.Logger
}

// New constructs a warehouse over the given stores.
func New(articles *inventory.Articles, products *inventory.Products, logger *slog.Logger) (*Warehouse, error) {
	if articles == nil || products == nil {
		return nil, ErrNilStore
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Warehouse{articles: articles, products: products, logger: logger}, nil
}

// List enumerates all products with their current availability, sorted by
// name.
func (w *Warehouse) List() ([]ProductAvailability, error) {
	names := w.products.Keys()
	out := make([]ProductAvailability, 0, len(names))
	for _, name := range names {
		availability, err := w.products.Availability(name)
		if err != nil {
			return nil, err
		}
		out = append(out, ProductAvailability{Name: name, Availability: availability})
	}
	return out, nil
}

// Sell sells one unit of the named product: every required article's stock
// is decremented by its required amount, and every product subscribed to an
// affected article has its availability updated.
//
// Validation failures abort the sale with no side effects: the product must
// exist (NotFoundError), must be available (UnavailableError), and every
// required article must still exist (NotFoundError) before any stock is
// touched. Nothing is committed; flushing the stores is the caller's
// explicit, separate step.
func (w *Warehouse) Sell(name string) (*Receipt, error) {
	token := uuid.Must(uuid.NewV7()).String()
	logger := w.logger.With("sale", token, "product", name)
	logger.Debug("sale phase", "phase", phaseValidating)

	ok, err := w.products.Read(name)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &record.NotFoundError{Key: name}
	}
	product := w.products.Name()

	available, err := w.products.Available(product)
	if err != nil {
		return nil, err
	}
	if !available {
		return nil, &UnavailableError{Product: product}
	}

	reqs := w.products.Requirements()
	ids := make([]int, 0, len(reqs))
	for id := range reqs {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	// All required articles must exist before any stock mutation, so a
	// dangling requirement aborts the sale instead of leaving it half
	// applied.
	for _, id := range ids {
		if !w.articles.Exists(id) {
			return nil, fmt.Errorf("sale of %q aborted: required %w", product, &record.NotFoundError{Key: id})
		}
	}

	receipt := &Receipt{Token: token, Product: product}
	for _, id := range ids {
		amount := reqs[id]

		logger.Debug("sale phase", "phase", phaseApplying, "article", id, "amount", amount)
		if _, err := w.articles.Read(id); err != nil {
			return nil, err
		}
		remaining := w.articles.Stock() - amount
		w.articles.SetStock(remaining)
		if err := w.articles.WriteCurrent(); err != nil {
			return nil, err
		}
		receipt.Deltas = append(receipt.Deltas, StockDelta{
			ArticleID:   id,
			ArticleName: w.articles.Name(),
			Amount:      amount,
			Remaining:   remaining,
		})

		// An article can feed multiple products; every subscriber gets its
		// availability updated, not just the selling product.
		logger.Debug("sale phase", "phase", phasePropagating, "article", id)
		for _, subscriber := range w.articles.Subscribers(id) {
			if _, err := w.products.Read(subscriber); err != nil {
				return nil, err
			}
			if err := w.products.UpdateAvailability(id); err != nil {
				return nil, err
			}
		}
	}

	receipt.Availability, err = w.products.Availability(product)
	if err != nil {
		return nil, err
	}

	logger.Info("sold product", "remaining_availability", receipt.Availability)
	return receipt, nil
}

// Commit flushes both collections to their backing documents. Triggered
// explicitly (at session exit, or after a one-shot sale) - never per sale.
func (w *Warehouse) Commit(ctx context.Context) error {
	if err := w.articles.Commit(ctx); err != nil {
		return err
	}
	return w.products.Commit(ctx)
}
