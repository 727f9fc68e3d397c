package invindex

import (
	"context"
	"testing"

	"github.com/cuemby/ftscore/pkg/document"
	"github.com/cuemby/ftscore/pkg/facet"
	"github.com/cuemby/ftscore/pkg/kv"
	"github.com/cuemby/ftscore/pkg/posting"
	"github.com/cuemby/ftscore/pkg/tokenizer"
	"github.com/cuemby/ftscore/pkg/transform"
	"github.com/cuemby/ftscore/pkg/types"
	"github.com/stretchr/testify/require"
)

const (
	titleField types.FieldID = 0
	priceField types.FieldID = 1
	colorField types.FieldID = 2
)

func openTestDB(t *testing.T) *kv.DB {
	t.Helper()
	dbs := append([]string{}, Databases()...)
	dbs = append(dbs, facet.StringDB, facet.NumberDB)
	db, err := kv.Open(t.TempDir(), dbs)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func doc(id types.DocID, title string, price float64, color string) transform.OutputDocument {
	rec := document.NewRecord()
	if title != "" {
		rec.Set(titleField, []byte(`"`+title+`"`))
	}
	rec.Set(priceField, []byte(formatFloat(price)))
	if color != "" {
		rec.Set(colorField, []byte(`"`+color+`"`))
	}
	return transform.OutputDocument{InternalID: id, Record: rec, IsNew: true}
}

func formatFloat(f float64) string {
	// minimal decimal formatting sufficient for small fixtures, avoiding a
	// strconv import here since tests elsewhere already exercise it.
	if f == float64(int64(f)) {
		return itoa(int64(f))
	}
	return itoaFloat(f)
}

func itoa(n int64) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf []byte
	for n > 0 {
		buf = append([]byte{byte('0' + n%10)}, buf...)
		n /= 10
	}
	if neg {
		buf = append([]byte{'-'}, buf...)
	}
	return string(buf)
}

func itoaFloat(f float64) string {
	whole := int64(f)
	frac := int64((f-float64(whole))*100 + 0.5)
	if frac < 0 {
		frac = -frac
	}
	return itoa(whole) + "." + itoa(frac)
}

func testParams(tmp string) Params {
	p := DefaultParams
	p.TempDir = tmp
	p.Parallelism = 2
	p.CacheCapacity = 4
	p.PendingBatch = 2
	return p
}

func testFields() FieldInfo {
	return FieldInfo{
		Searchable: []types.FieldID{titleField},
		Facets: map[types.FieldID]types.FacetKind{
			priceField: types.FacetNumber,
			colorField: types.FacetString,
		},
	}
}

func TestBuildWordPostingsAndPositions(t *testing.T) {
	db := openTestDB(t)
	tok := tokenizer.New(nil)
	docs := []transform.OutputDocument{
		doc(0, "apple iphone", 999, "black"),
		doc(1, "apple watch", 399, "white"),
	}

	require.NoError(t, db.Update(func(txn *kv.Txn) error {
		_, err := Build(context.Background(), txn, tok, testFields(), docs, testParams(t.TempDir()))
		return err
	}))

	require.NoError(t, db.View(func(txn *kv.RoTxn) error {
		b := txn.Bucket(WordDocidsDB)
		apple, err := posting.UnmarshalBinary(b.Get(wordKey("apple")))
		require.NoError(t, err)
		require.Equal(t, uint64(2), apple.Cardinality())
		require.True(t, apple.Contains(0))
		require.True(t, apple.Contains(1))

		iphone, err := posting.UnmarshalBinary(b.Get(wordKey("iphone")))
		require.NoError(t, err)
		require.Equal(t, uint64(1), iphone.Cardinality())
		require.True(t, iphone.Contains(0))

		posBytes := txn.Bucket(WordDocidPositionsDB).Get(wordDocidKey("apple", 0))
		require.NotNil(t, posBytes)
		positions, err := decodePositions(posBytes)
		require.NoError(t, err)
		require.Len(t, positions, 1)
		require.EqualValues(t, 0, positions[0].WordIndex())
		return nil
	}))
}

func TestBuildPairProximity(t *testing.T) {
	db := openTestDB(t)
	tok := tokenizer.New(nil)
	docs := []transform.OutputDocument{doc(0, "apple iphone case", 1, "")}

	require.NoError(t, db.Update(func(txn *kv.Txn) error {
		_, err := Build(context.Background(), txn, tok, testFields(), docs, testParams(t.TempDir()))
		return err
	}))

	require.NoError(t, db.View(func(txn *kv.RoTxn) error {
		b := txn.Bucket(WordPairProximityDB)
		raw := b.Get(pairProximityKey("apple", "iphone", 1))
		require.NotNil(t, raw)
		p, err := posting.UnmarshalBinary(raw)
		require.NoError(t, err)
		require.True(t, p.Contains(0))
		return nil
	}))
}

func TestBuildFieldWordCount(t *testing.T) {
	db := openTestDB(t)
	tok := tokenizer.New(nil)
	docs := []transform.OutputDocument{
		doc(0, "apple iphone", 1, ""),
		doc(1, "apple watch pro", 1, ""),
	}

	require.NoError(t, db.Update(func(txn *kv.Txn) error {
		_, err := Build(context.Background(), txn, tok, testFields(), docs, testParams(t.TempDir()))
		return err
	}))

	require.NoError(t, db.View(func(txn *kv.RoTxn) error {
		b := txn.Bucket(FieldWordCountDB)
		two, err := posting.UnmarshalBinary(b.Get(fieldWordCountKey(titleField, 2)))
		require.NoError(t, err)
		require.True(t, two.Contains(0))

		three, err := posting.UnmarshalBinary(b.Get(fieldWordCountKey(titleField, 3)))
		require.NoError(t, err)
		require.True(t, three.Contains(1))
		return nil
	}))
}

func TestBuildFacetAndDistinct(t *testing.T) {
	db := openTestDB(t)
	tok := tokenizer.New(nil)
	docs := []transform.OutputDocument{
		doc(0, "apple iphone", 999, "black"),
		doc(1, "apple watch", 399, "white"),
		doc(2, "apple pencil", 999, "white"),
	}

	var facetEntries int
	require.NoError(t, db.Update(func(txn *kv.Txn) error {
		r, buildErr := Build(context.Background(), txn, tok, testFields(), docs, testParams(t.TempDir()))
		if buildErr == nil {
			facetEntries = r.FacetEntries
		}
		return buildErr
	}))
	require.Greater(t, facetEntries, 0)

	require.NoError(t, db.View(func(txn *kv.RoTxn) error {
		priceUnion := facet.LevelZeroUnion(txn.Bucket(facet.NumberDB), types.FacetNumber, priceField)
		require.Equal(t, uint64(3), priceUnion.Cardinality())

		colorUnion := facet.LevelZeroUnion(txn.Bucket(facet.StringDB), types.FacetString, colorField)
		require.Equal(t, uint64(3), colorUnion.Cardinality())

		raw := txn.Bucket(FieldDocidFacetValuesDB).Get(fieldDocidKey(colorField, 1))
		require.NotNil(t, raw)
		values, err := decodeFacetValues(raw)
		require.NoError(t, err)
		require.Len(t, values, 1)
		require.Equal(t, "white", values[0].Str)
		return nil
	}))
}

func TestBuildPrefixPostings(t *testing.T) {
	db := openTestDB(t)
	tok := tokenizer.New(nil)
	var docs []transform.OutputDocument
	for i := types.DocID(0); i < 10; i++ {
		docs = append(docs, doc(i, "smartphone accessory", 1, ""))
	}

	p := testParams(t.TempDir())
	p.PrefixThreshold = 0.5 // 10 docs -> threshold 5; "smartphone" posting has cardinality 10

	require.NoError(t, db.Update(func(txn *kv.Txn) error {
		rpt, err := Build(context.Background(), txn, tok, testFields(), docs, p)
		if err == nil {
			require.Greater(t, rpt.PrefixWords, 0)
		}
		return err
	}))

	require.NoError(t, db.View(func(txn *kv.RoTxn) error {
		raw := txn.Bucket(WordPrefixDocidsDB).Get(prefixKey("smar"))
		require.NotNil(t, raw)
		post, err := posting.UnmarshalBinary(raw)
		require.NoError(t, err)
		require.Equal(t, uint64(10), post.Cardinality())
		return nil
	}))
}
