package inventory

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/stockroom/internal/document"
	"github.com/roach88/stockroom/internal/record"
)

func seedDoc(t *testing.T, repo document.Repository, name, raw string) {
	t.Helper()
	doc := document.NewDocument()
	require.NoError(t, json.Unmarshal([]byte(raw), doc))
	require.NoError(t, repo.Save(context.Background(), name, doc))
}

func openTestArticles(t *testing.T, raw string) (*Articles, document.Repository) {
	t.Helper()
	repo := document.NewFileRepository(t.TempDir())
	seedDoc(t, repo, "inventory", raw)
	articles, err := OpenArticles(context.Background(), repo, "inventory", nil)
	require.NoError(t, err)
	return articles, repo
}

const testInventory = `{"inventory":[
	{"art_id":"1","name":"bolt","stock":"10"},
	{"art_id":"2","name":"nut","stock":"5"},
	{"art_id":"3","name":"washer","stock":"2"}
]}`

func TestArticles_Fetch(t *testing.T) {
	articles, _ := openTestArticles(t, testInventory)

	assert.Equal(t, 3, articles.Len())
	assert.Equal(t, []int{1, 2, 3}, articles.Keys())
}

func TestArticles_ReadDecodesFields(t *testing.T) {
	articles, _ := openTestArticles(t, testInventory)

	ok, err := articles.Read(2)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 2, articles.ID())
	assert.Equal(t, "nut", articles.Name())
	assert.Equal(t, 5, articles.Stock())
}

func TestArticles_Subscribe(t *testing.T) {
	articles, _ := openTestArticles(t, testInventory)

	added, err := articles.Subscribe(1, "gadget")
	require.NoError(t, err)
	assert.True(t, added)

	// Re-subscribing the same pair is a no-op.
	added, err = articles.Subscribe(1, "gadget")
	require.NoError(t, err)
	assert.False(t, added)

	added, err = articles.Subscribe(1, "doohickey")
	require.NoError(t, err)
	assert.True(t, added)

	assert.Equal(t, []string{"doohickey", "gadget"}, articles.Subscribers(1))
	assert.Empty(t, articles.Subscribers(2))
}

func TestArticles_SubscribeUnknownArticle(t *testing.T) {
	articles, _ := openTestArticles(t, testInventory)

	_, err := articles.Subscribe(99, "gadget")
	require.Error(t, err)
	assert.True(t, record.IsNotFound(err))
}

func TestArticles_StockRoundTrip(t *testing.T) {
	articles, repo := openTestArticles(t, testInventory)
	ctx := context.Background()

	ok, err := articles.Read(1)
	require.NoError(t, err)
	require.True(t, ok)
	articles.SetStock(7)
	require.NoError(t, articles.WriteCurrent())
	require.NoError(t, articles.Commit(ctx))

	reloaded, err := OpenArticles(ctx, repo, "inventory", nil)
	require.NoError(t, err)
	ok, err = reloaded.Read(1)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 7, reloaded.Stock())
	assert.Equal(t, "bolt", reloaded.Name())
}
