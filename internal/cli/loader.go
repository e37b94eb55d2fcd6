package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/stockroom/internal/config"
	"github.com/roach88/stockroom/internal/document"
	"github.com/roach88/stockroom/internal/document/schema"
	"github.com/roach88/stockroom/internal/inventory"
	"github.com/roach88/stockroom/internal/record"
	"github.com/roach88/stockroom/internal/warehouse"
)

// newRepository constructs the configured document repository. The returned
// closer is non-nil for backends holding resources (sqlite).
func newRepository(cfg config.Config) (document.Repository, io.Closer, error) {
	var (
		repo   document.Repository
		closer io.Closer
	)
	switch cfg.Backend {
	case config.BackendFile:
		repo = document.NewFileRepository(cfg.DataDir)
	case config.BackendSQLite:
		db, err := document.OpenSQLite(cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		repo = db
		closer = db
	default:
		return nil, nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}

	if cfg.SchemaValidation {
		repo = schema.NewValidatingRepository(repo, map[string]string{
			cfg.InventoryDocument: schema.DefInventory,
			cfg.ProductsDocument:  schema.DefProducts,
		})
	}
	return repo, closer, nil
}

// openWarehouse assembles the full stack: repository, article store,
// product store (with its dependency index and initial availability), and
// the warehouse service. The returned cleanup func is never nil.
func openWarehouse(ctx context.Context, cfg config.Config) (*warehouse.Warehouse, func(), error) {
	repo, closer, err := newRepository(cfg)
	if err != nil {
		return nil, nil, WrapExitError(ExitCommandError, "failed to open document repository", err)
	}
	cleanup := func() {
		if closer == nil {
			return
		}
		if err := closer.Close(); err != nil {
			slog.Error("error closing repository", "error", err)
		}
	}

	articles, err := inventory.OpenArticles(ctx, repo, cfg.InventoryDocument, slog.Default())
	if err != nil {
		cleanup()
		return nil, nil, WrapExitError(ExitCommandError, "failed to load articles", err)
	}
	products, err := inventory.OpenProducts(ctx, repo, cfg.ProductsDocument, articles, slog.Default())
	if err != nil {
		cleanup()
		return nil, nil, WrapExitError(ExitCommandError, "failed to load products", err)
	}
	w, err := warehouse.New(articles, products, slog.Default())
	if err != nil {
		cleanup()
		return nil, nil, WrapExitError(ExitCommandError, "failed to build warehouse", err)
	}
	return w, cleanup, nil
}

// errorCode maps domain errors to stable response codes.
func errorCode(err error) string {
	switch {
	case record.IsNotFound(err):
		return "not_found"
	case warehouse.IsUnavailable(err):
		return "unavailable"
	case record.IsParse(err):
		return "parse_error"
	default:
		return "error"
	}
}
