package engine

import (
	"context"
	"testing"

	"github.com/cuemby/ftscore/pkg/eval"
	"github.com/cuemby/ftscore/pkg/settings"
	"github.com/cuemby/ftscore/pkg/transform"
	"github.com/cuemby/ftscore/pkg/types"
	"github.com/stretchr/testify/require"
)

func transformOptions(jsonData string) transform.Options {
	return transform.Options{
		Format:       types.FormatJSON,
		Method:       types.ReplaceDocuments,
		Data:         []byte(jsonData),
		AutoGenerate: true,
	}
}

func openTestIndex(t *testing.T) *Index {
	t.Helper()
	idx, err := Open(t.TempDir(), "products")
	require.NoError(t, err)
	t.Cleanup(func() { idx.Close() })
	return idx
}

func TestAddDocumentsThenSearch(t *testing.T) {
	idx := openTestIndex(t)
	ctx := context.Background()

	_, err := idx.UpdateSettings(ctx, settings.Patch{
		SearchableFields: settings.Set([]string{"t"}),
	})
	require.NoError(t, err)

	report, err := idx.AddDocuments(ctx, transformOptions(`[{"id":1,"t":"iphone from apple"}]`))
	require.NoError(t, err)
	require.Equal(t, 1, report.Indexed)
	require.Equal(t, 1, report.NewDocuments)

	res, err := idx.Search(ctx, eval.Request{Query: "iphone from apple", Limit: 10})
	require.NoError(t, err)
	require.Equal(t, []types.DocID{0}, res.DocIDs)
}

func TestAddDocumentsDuplicateIDCollapsesToOneDocument(t *testing.T) {
	idx := openTestIndex(t)
	ctx := context.Background()

	_, err := idx.AddDocuments(ctx, transformOptions(`[{"id":1,"a":"x"},{"id":1,"b":"y"}]`))
	require.NoError(t, err)

	docs, err := idx.GetDocuments([]types.ExternalID{"1"})
	require.NoError(t, err)
	require.Len(t, docs, 1)
}

func TestUpdateSettingsFilterableThenFilter(t *testing.T) {
	idx := openTestIndex(t)
	ctx := context.Background()

	_, err := idx.UpdateSettings(ctx, settings.Patch{
		SearchableFields: settings.Set([]string{"t"}),
		FilterableFields: settings.Set([]string{"color"}),
	})
	require.NoError(t, err)

	_, err = idx.AddDocuments(ctx, transformOptions(`[{"id":1,"t":"shirt","color":"red"},{"id":2,"t":"shirt","color":"blue"}]`))
	require.NoError(t, err)

	res, err := idx.Search(ctx, eval.Request{Query: "shirt", Filter: `color = blue`, Limit: 10})
	require.NoError(t, err)
	require.Len(t, res.DocIDs, 1)
}

func TestDeleteDocumentsRemovesFromSearch(t *testing.T) {
	idx := openTestIndex(t)
	ctx := context.Background()

	_, err := idx.UpdateSettings(ctx, settings.Patch{SearchableFields: settings.Set([]string{"t"})})
	require.NoError(t, err)
	_, err = idx.AddDocuments(ctx, transformOptions(`[{"id":1,"t":"shirt"},{"id":2,"t":"shirt"}]`))
	require.NoError(t, err)

	n, err := idx.DeleteDocuments(ctx, []types.ExternalID{"1"})
	require.NoError(t, err)
	require.Equal(t, 1, n)

	res, err := idx.Search(ctx, eval.Request{Query: "shirt", Limit: 10})
	require.NoError(t, err)
	require.Len(t, res.DocIDs, 1)
}

func TestClearDocuments(t *testing.T) {
	idx := openTestIndex(t)
	ctx := context.Background()

	_, err := idx.AddDocuments(ctx, transformOptions(`[{"id":1,"t":"shirt"}]`))
	require.NoError(t, err)
	require.NoError(t, idx.ClearDocuments(ctx))

	n, err := idx.DocumentCount()
	require.NoError(t, err)
	require.Equal(t, 0, n)
}
