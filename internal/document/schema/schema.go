// Package schema validates loaded documents against an embedded CUE schema
// before any record decoding happens, so shape errors are reported with the
// offending document and field instead of surfacing later as bad parses.
package schema

import (
	"context"
	_ "embed"
	"fmt"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"

	"github.com/roach88/stockroom/internal/document"
)

//go:embed schema.cue
var schemaCUE string

// Definition names exported by schema.cue.
const (
	DefInventory = "#Inventory"
	DefProducts  = "#Products"
)

var (
	compileOnce sync.Once
	compiled    cue.Value
	compileErr  error
)

func schemaValue() (cue.Value, error) {
	compileOnce.Do(func() {
		ctx := cuecontext.New()
		compiled = ctx.CompileString(schemaCUE)
		if err := compiled.Err(); err != nil {
			compileErr = fmt.Errorf("compile schema: %w", err)
		}
	})
	return compiled, compileErr
}

// Validate checks doc against the named schema definition (DefInventory or
// DefProducts). Returns a detailed error naming the first offending path.
func Validate(doc *document.Document, definition string) error {
	root, err := schemaValue()
	if err != nil {
		return err
	}
	def := root.LookupPath(cue.ParsePath(definition))
	if err := def.Err(); err != nil {
		return fmt.Errorf("unknown schema definition %q: %w", definition, err)
	}

	data := root.Context().Encode(docToAny(doc))
	if err := data.Err(); err != nil {
		return fmt.Errorf("encode document: %w", err)
	}

	unified := def.Unify(data)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("schema violation: %s", cueerrors.Details(err, nil))
	}
	return nil
}

// docToAny converts a document to plain Go maps and slices for CUE encoding.
func docToAny(doc *document.Document) map[string]any {
	out := make(map[string]any)
	for _, name := range doc.SectionNames() {
		records, _ := doc.Section(name)
		list := make([]any, 0, len(records))
		for _, rec := range records {
			list = append(list, recordToAny(rec))
		}
		out[name] = list
	}
	return out
}

func recordToAny(rec *document.Record) map[string]any {
	out := make(map[string]any, rec.Len())
	for _, key := range rec.Keys() {
		val, _ := rec.Get(key)
		switch val.Kind() {
		case document.KindString:
			s, _ := val.AsString()
			out[key] = s
		case document.KindList:
			nested, _ := val.AsList()
			list := make([]any, 0, len(nested))
			for _, n := range nested {
				list = append(list, recordToAny(n))
			}
			out[key] = list
		}
	}
	return out
}

// ValidatingRepository wraps a document.Repository and validates documents
// against their registered schema definition on every Load. Documents with
// no registered definition pass through unchecked.
type ValidatingRepository struct {
	inner       document.Repository
	definitions map[string]string // document name -> schema definition
}

// NewValidatingRepository wraps inner with per-document schema checks.
func NewValidatingRepository(inner document.Repository, definitions map[string]string) *ValidatingRepository {
	return &ValidatingRepository{inner: inner, definitions: definitions}
}

// Load loads from the inner repository, then validates.
func (r *ValidatingRepository) Load(ctx context.Context, name string) (*document.Document, error) {
	doc, err := r.inner.Load(ctx, name)
	if err != nil {
		return nil, err
	}
	if def, ok := r.definitions[name]; ok {
		if err := Validate(doc, def); err != nil {
			return nil, fmt.Errorf("document %q: %w", name, err)
		}
	}
	return doc, nil
}

// Save delegates to the inner repository unchanged.
func (r *ValidatingRepository) Save(ctx context.Context, name string, doc *document.Document) error {
	return r.inner.Save(ctx, name, doc)
}
