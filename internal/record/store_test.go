package record

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/stockroom/internal/document"
)

// widget is a minimal entity exercising the generic store.
type widget struct {
	id    *Field[int]
	label *Field[string]
}

func newWidget() *widget {
	return &widget{
		id:    IntField("id"),
		label: StringField("label"),
	}
}

func (w *widget) PrimaryKey() *Field[int] { return w.id }

func (w *widget) DecodeRecord(rec *document.Record) error {
	if _, err := w.id.Get(rec); err != nil {
		return err
	}
	if _, err := w.label.Get(rec); err != nil {
		return err
	}
	return nil
}

func (w *widget) EncodeRecord(rec *document.Record) error {
	w.id.Set(rec)
	w.label.Set(rec)
	return nil
}

func seedWidgets(t *testing.T, repo document.Repository, raw string) {
	t.Helper()
	doc := document.NewDocument()
	require.NoError(t, json.Unmarshal([]byte(raw), doc))
	require.NoError(t, repo.Save(context.Background(), "widgets", doc))
}

func openWidgetStore(t *testing.T, repo document.Repository) (*Store[int], *widget) {
	t.Helper()
	w := newWidget()
	s := NewStore[int](repo, "widgets", w)
	require.NoError(t, s.Fetch(context.Background()))
	return s, w
}

func TestStore_FetchIndexesByPrimaryKey(t *testing.T) {
	repo := document.NewFileRepository(t.TempDir())
	seedWidgets(t, repo, `{"widgets":[{"id":"3","label":"c"},{"id":"1","label":"a"},{"id":"2","label":"b"}]}`)

	s, _ := openWidgetStore(t, repo)

	assert.Equal(t, 3, s.Len())
	assert.Equal(t, []int{1, 2, 3}, s.Keys(), "keys must come back sorted")
	assert.True(t, s.Exists(2))
	assert.False(t, s.Exists(42))
}

func TestStore_FetchAbsentDocument(t *testing.T) {
	repo := document.NewFileRepository(t.TempDir())

	s, _ := openWidgetStore(t, repo)
	assert.Equal(t, 0, s.Len())
}

func TestStore_FetchAbsentSection(t *testing.T) {
	repo := document.NewFileRepository(t.TempDir())
	seedWidgets(t, repo, `{"other":[{"id":"1","label":"a"}]}`)

	s, _ := openWidgetStore(t, repo)
	assert.Equal(t, 0, s.Len())
}

func TestStore_FetchMalformedPrimaryKey(t *testing.T) {
	repo := document.NewFileRepository(t.TempDir())
	seedWidgets(t, repo, `{"widgets":[{"id":"first","label":"a"}]}`)

	w := newWidget()
	s := NewStore[int](repo, "widgets", w)
	err := s.Fetch(context.Background())
	require.Error(t, err)
	assert.True(t, IsParse(err))
}

func TestStore_Read(t *testing.T) {
	repo := document.NewFileRepository(t.TempDir())
	seedWidgets(t, repo, `{"widgets":[{"id":"1","label":"a"},{"id":"2","label":"b"}]}`)

	s, w := openWidgetStore(t, repo)

	ok, err := s.Read(2)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 2, w.id.Value())
	assert.Equal(t, "b", w.label.Value())

	// Absent key: no error, state untouched.
	ok, err = s.Read(42)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 2, w.id.Value(), "current key must survive a failed read")
	assert.Equal(t, "b", w.label.Value())
}

func TestStore_ReadCurrentNotFound(t *testing.T) {
	repo := document.NewFileRepository(t.TempDir())
	seedWidgets(t, repo, `{"widgets":[{"id":"1","label":"a"}]}`)

	s, w := openWidgetStore(t, repo)
	w.id.SetValue(99)

	err := s.ReadCurrent()
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
}

func TestStore_WriteCurrentNotFound(t *testing.T) {
	repo := document.NewFileRepository(t.TempDir())
	seedWidgets(t, repo, `{"widgets":[{"id":"1","label":"a"}]}`)

	s, w := openWidgetStore(t, repo)
	w.id.SetValue(99)

	err := s.WriteCurrent()
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
}

func TestStore_WriteEncodesFields(t *testing.T) {
	repo := document.NewFileRepository(t.TempDir())
	seedWidgets(t, repo, `{"widgets":[{"id":"1","label":"a"}]}`)

	s, w := openWidgetStore(t, repo)

	ok, err := s.Read(1)
	require.NoError(t, err)
	require.True(t, ok)

	w.label.SetValue("renamed")
	ok, err = s.Write(1)
	require.NoError(t, err)
	require.True(t, ok)

	// A fresh read of the same record sees the encoded value.
	w.label.SetValue("")
	require.NoError(t, s.ReadCurrent())
	assert.Equal(t, "renamed", w.label.Value())
}

func TestStore_WriteAbsentKey(t *testing.T) {
	repo := document.NewFileRepository(t.TempDir())
	seedWidgets(t, repo, `{"widgets":[{"id":"1","label":"a"}]}`)

	s, _ := openWidgetStore(t, repo)
	ok, err := s.Write(42)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_CommitRoundTrip(t *testing.T) {
	repo := document.NewFileRepository(t.TempDir())
	seedWidgets(t, repo, `{"widgets":[{"id":"2","label":"b"},{"id":"1","label":"a"}]}`)

	s, w := openWidgetStore(t, repo)

	ok, err := s.Read(1)
	require.NoError(t, err)
	require.True(t, ok)
	w.label.SetValue("changed")
	_, err = s.Write(1)
	require.NoError(t, err)

	require.NoError(t, s.Commit(context.Background()))

	// A fresh store over the same backing document sees the committed
	// values.
	reloaded, fresh := openWidgetStore(t, repo)
	assert.Equal(t, []int{1, 2}, reloaded.Keys())

	ok, err = reloaded.Read(1)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "changed", fresh.label.Value())

	ok, err = reloaded.Read(2)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "b", fresh.label.Value())
}
