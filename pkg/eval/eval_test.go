package eval

import (
	"context"
	"strconv"
	"testing"

	"github.com/cuemby/ftscore/pkg/document"
	"github.com/cuemby/ftscore/pkg/facet"
	"github.com/cuemby/ftscore/pkg/invindex"
	"github.com/cuemby/ftscore/pkg/kv"
	"github.com/cuemby/ftscore/pkg/schema"
	"github.com/cuemby/ftscore/pkg/settings"
	"github.com/cuemby/ftscore/pkg/tokenizer"
	"github.com/cuemby/ftscore/pkg/transform"
	"github.com/cuemby/ftscore/pkg/types"
	"github.com/stretchr/testify/require"
)

func openEvalTestDB(t *testing.T) *kv.DB {
	t.Helper()
	dbs := append([]string{}, invindex.Databases()...)
	dbs = append(dbs, facet.StringDB, facet.NumberDB, document.DB, schema.MainDB)
	db, err := kv.Open(t.TempDir(), dbs)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

type fixtureDoc struct {
	id    types.DocID
	title string
	color string
}

func seedIndex(t *testing.T, db *kv.DB, docs []fixtureDoc) (*schema.Schema, types.FieldID, types.FieldID) {
	t.Helper()
	sch := schema.New()
	titleField, err := sch.GetOrInsertField("title")
	require.NoError(t, err)
	colorField, err := sch.GetOrInsertField("color")
	require.NoError(t, err)

	tok := tokenizer.New(nil)
	var outputs []transform.OutputDocument
	for _, d := range docs {
		rec := document.NewRecord()
		rec.Set(titleField, []byte(strconv.Quote(d.title)))
		if d.color != "" {
			rec.Set(colorField, []byte(strconv.Quote(d.color)))
		}
		outputs = append(outputs, transform.OutputDocument{InternalID: d.id, Record: rec, IsNew: true})
	}

	require.NoError(t, db.Update(func(txn *kv.Txn) error {
		require.NoError(t, sch.Save(txn.Bucket(schema.MainDB)))
		for _, d := range docs {
			rec := document.NewRecord()
			rec.Set(titleField, []byte(strconv.Quote(d.title)))
			if d.color != "" {
				rec.Set(colorField, []byte(strconv.Quote(d.color)))
			}
			require.NoError(t, document.PutDocument(txn.Bucket(document.DB), d.id, rec))
			ext := types.ExternalID("ext-" + strconv.Itoa(int(d.id)))
			require.NoError(t, document.PutExternalMapping(txn.Bucket(document.DB), ext, d.id))
		}
		fields := invindex.FieldInfo{
			Searchable: []types.FieldID{titleField},
			Facets:     map[types.FieldID]types.FacetKind{colorField: types.FacetString},
		}
		p := invindex.DefaultParams
		p.TempDir = t.TempDir()
		_, err := invindex.Build(context.Background(), txn, tok, fields, outputs, p)
		return err
	}))

	return sch, titleField, colorField
}

func TestEvaluateRanksExactBeforeTypo(t *testing.T) {
	db := openEvalTestDB(t)
	sch, _, _ := seedIndex(t, db, []fixtureDoc{
		{id: 0, title: "banana split", color: "yellow"},
		{id: 1, title: "banaan smoothie", color: "yellow"}, // typo of "banana"
	})

	s := settings.Default()
	s.AuthorizeTypos = true
	s.MinWordLenOneTypo = 3
	s.MinWordLenTwoTypos = 6
	s.SearchableFields = []string{"title"}

	require.NoError(t, db.View(func(txn *kv.RoTxn) error {
		res, err := Evaluate(context.Background(), txn, tokenizer.New(nil), sch, s, Request{Query: "banana", Limit: 10})
		require.NoError(t, err)
		require.NotEmpty(t, res.DocIDs)
		require.Equal(t, types.DocID(0), res.DocIDs[0])
		return nil
	}))
}

func TestEvaluateFilterRestrictsCandidates(t *testing.T) {
	db := openEvalTestDB(t)
	sch, _, _ := seedIndex(t, db, []fixtureDoc{
		{id: 0, title: "apple watch", color: "black"},
		{id: 1, title: "apple pencil", color: "white"},
	})

	s := settings.Default()
	s.FilterableFields = []string{"color"}
	s.SearchableFields = []string{"title"}

	require.NoError(t, db.View(func(txn *kv.RoTxn) error {
		res, err := Evaluate(context.Background(), txn, tokenizer.New(nil), sch, s, Request{
			Query: "apple", Limit: 10, Filter: `color = white`,
		})
		require.NoError(t, err)
		require.Equal(t, []types.DocID{1}, res.DocIDs)
		return nil
	}))
}

func TestEvaluateFilterUnknownFieldRejected(t *testing.T) {
	db := openEvalTestDB(t)
	sch, _, _ := seedIndex(t, db, []fixtureDoc{{id: 0, title: "apple watch", color: "black"}})

	s := settings.Default()
	s.SearchableFields = []string{"title"}

	require.NoError(t, db.View(func(txn *kv.RoTxn) error {
		_, err := Evaluate(context.Background(), txn, tokenizer.New(nil), sch, s, Request{
			Query: "apple", Limit: 10, Filter: `color = black`,
		})
		require.ErrorIs(t, err, types.ErrFilterFieldNotFilterable)
		return nil
	}))
}

func TestEvaluateDistinctSuppressesDuplicates(t *testing.T) {
	db := openEvalTestDB(t)
	sch, _, _ := seedIndex(t, db, []fixtureDoc{
		{id: 0, title: "apple watch", color: "black"},
		{id: 1, title: "apple pencil", color: "black"},
		{id: 2, title: "apple pro", color: "white"},
	})

	s := settings.Default()
	s.FilterableFields = []string{"color"}
	s.SearchableFields = []string{"title"}
	s.DistinctField = "color"

	require.NoError(t, db.View(func(txn *kv.RoTxn) error {
		res, err := Evaluate(context.Background(), txn, tokenizer.New(nil), sch, s, Request{Query: "apple", Limit: 10})
		require.NoError(t, err)
		require.Len(t, res.DocIDs, 2)
		return nil
	}))
}

func TestEvaluateEmptyQueryBrowsesAllDocuments(t *testing.T) {
	db := openEvalTestDB(t)
	sch, _, _ := seedIndex(t, db, []fixtureDoc{
		{id: 0, title: "apple watch", color: "black"},
		{id: 1, title: "apple pencil", color: "white"},
	})

	s := settings.Default()
	s.SearchableFields = []string{"title"}

	require.NoError(t, db.View(func(txn *kv.RoTxn) error {
		res, err := Evaluate(context.Background(), txn, tokenizer.New(nil), sch, s, Request{Limit: 10})
		require.NoError(t, err)
		require.Len(t, res.DocIDs, 2)
		return nil
	}))
}
