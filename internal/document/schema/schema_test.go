package schema

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/stockroom/internal/document"
)

func parseDoc(t *testing.T, raw string) *document.Document {
	t.Helper()
	doc := document.NewDocument()
	require.NoError(t, json.Unmarshal([]byte(raw), doc))
	return doc
}

func TestValidate_Inventory(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{
			name: "valid",
			raw:  `{"inventory":[{"art_id":"1","name":"bolt","stock":"10"}]}`,
		},
		{
			name: "empty section",
			raw:  `{"inventory":[]}`,
		},
		{
			name:    "non-numeric stock",
			raw:     `{"inventory":[{"art_id":"1","name":"bolt","stock":"lots"}]}`,
			wantErr: true,
		},
		{
			name:    "missing name",
			raw:     `{"inventory":[{"art_id":"1","stock":"10"}]}`,
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(parseDoc(t, tt.raw), DefInventory)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidate_Products(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{
			name: "valid",
			raw:  `{"products":[{"name":"gadget","contain_articles":[{"art_id":"1","amount_of":"3"}]}]}`,
		},
		{
			name:    "non-numeric amount",
			raw:     `{"products":[{"name":"gadget","contain_articles":[{"art_id":"1","amount_of":"some"}]}]}`,
			wantErr: true,
		},
		{
			name:    "missing requirements list",
			raw:     `{"products":[{"name":"gadget"}]}`,
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(parseDoc(t, tt.raw), DefProducts)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidatingRepository_RejectsOnLoad(t *testing.T) {
	dir := t.TempDir()
	inner := document.NewFileRepository(dir)
	ctx := context.Background()

	bad := parseDoc(t, `{"inventory":[{"art_id":"x","name":"bolt","stock":"10"}]}`)
	require.NoError(t, inner.Save(ctx, "inventory", bad))

	repo := NewValidatingRepository(inner, map[string]string{"inventory": DefInventory})
	_, err := repo.Load(ctx, "inventory")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "inventory")
}

func TestValidatingRepository_PassThrough(t *testing.T) {
	dir := t.TempDir()
	inner := document.NewFileRepository(dir)
	ctx := context.Background()

	good := parseDoc(t, `{"inventory":[{"art_id":"1","name":"bolt","stock":"10"}]}`)
	require.NoError(t, inner.Save(ctx, "inventory", good))

	repo := NewValidatingRepository(inner, map[string]string{"inventory": DefInventory})
	doc, err := repo.Load(ctx, "inventory")
	require.NoError(t, err)
	_, ok := doc.Section("inventory")
	assert.True(t, ok)

	// Unregistered documents load unchecked.
	other := parseDoc(t, `{"misc":[{"free":"form"}]}`)
	require.NoError(t, repo.Save(ctx, "misc", other))
	_, err = repo.Load(ctx, "misc")
	assert.NoError(t, err)
}
