// Package config loads the stockroom configuration: where the data
// documents live, which repository backend persists them, and whether
// documents are schema-validated on load.
package config

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Repository backends.
const (
	BackendFile   = "file"   // one JSON file per document under DataDir
	BackendSQLite = "sqlite" // all documents in one SQLite database
)

// Config is the explicit configuration passed to store constructors.
type Config struct {
	// DataDir holds the JSON documents for the file backend.
	DataDir string `yaml:"data_dir"`

	// Backend selects the document repository: "file" or "sqlite".
	Backend string `yaml:"backend"`

	// Database is the SQLite database path for the sqlite backend.
	Database string `yaml:"database"`

	// SchemaValidation validates documents against the embedded CUE
	// schema on load.
	SchemaValidation bool `yaml:"schema_validation"`

	// InventoryDocument names the article document (and its section).
	InventoryDocument string `yaml:"inventory_document"`

	// ProductsDocument names the product document (and its section).
	ProductsDocument string `yaml:"products_document"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		DataDir:           "data",
		Backend:           BackendFile,
		Database:          "stockroom.db",
		SchemaValidation:  true,
		InventoryDocument: "inventory",
		ProductsDocument:  "products",
	}
}

// Load reads a YAML config file over the defaults. Unknown keys are
// rejected.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the configuration for usable values.
func (c Config) Validate() error {
	switch c.Backend {
	case BackendFile, BackendSQLite:
	default:
		return fmt.Errorf("invalid backend %q: must be %q or %q", c.Backend, BackendFile, BackendSQLite)
	}
	if c.InventoryDocument == "" || c.ProductsDocument == "" {
		return fmt.Errorf("document names must not be empty")
	}
	if c.InventoryDocument == c.ProductsDocument {
		return fmt.Errorf("inventory and products must use distinct documents")
	}
	return nil
}
