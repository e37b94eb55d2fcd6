package document

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// FileRepository stores each document as <dir>/<name>.json.
type FileRepository struct {
	dir string
}

// NewFileRepository returns a repository rooted at dir. The directory is
// created lazily on the first Save.
func NewFileRepository(dir string) *FileRepository {
	return &FileRepository{dir: dir}
}

func (r *FileRepository) path(name string) string {
	return filepath.Join(r.dir, name+".json")
}

// Load reads and parses <dir>/<name>.json. A missing file yields
// ErrNotExist; malformed JSON yields a parse failure.
func (r *FileRepository) Load(_ context.Context, name string) (*Document, error) {
	data, err := os.ReadFile(r.path(name))
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("document %q: %w", name, ErrNotExist)
	}
	if err != nil {
		return nil, fmt.Errorf("document %q: %w", name, err)
	}

	doc := NewDocument()
	if err := json.Unmarshal(data, doc); err != nil {
		return nil, fmt.Errorf("document %q: %w", name, err)
	}
	return doc, nil
}

// Save writes doc to <dir>/<name>.json, creating the directory if needed.
func (r *FileRepository) Save(_ context.Context, name string, doc *Document) error {
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return fmt.Errorf("document %q: %w", name, err)
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("document %q: %w", name, err)
	}
	if err := os.WriteFile(r.path(name), data, 0o644); err != nil {
		return fmt.Errorf("document %q: %w", name, err)
	}
	return nil
}
