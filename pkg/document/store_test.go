package document

import (
	"testing"

	"github.com/cuemby/ftscore/pkg/kv"
	"github.com/cuemby/ftscore/pkg/types"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *kv.DB {
	t.Helper()
	db, err := kv.Open(t.TempDir(), []string{DB})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestRecordGetSetDelete(t *testing.T) {
	r := NewRecord()
	r.Set(2, []byte("b"))
	r.Set(1, []byte("a"))
	r.Set(3, []byte("c"))

	v, ok := r.Get(1)
	require.True(t, ok)
	require.Equal(t, []byte("a"), v)

	fields := r.Fields()
	require.Len(t, fields, 3)
	require.Equal(t, types.FieldID(1), fields[0].ID)
	require.Equal(t, types.FieldID(2), fields[1].ID)
	require.Equal(t, types.FieldID(3), fields[2].ID)

	r.Delete(2)
	_, ok = r.Get(2)
	require.False(t, ok)
	require.Len(t, r.Fields(), 2)
}

func TestRecordMarshalRoundTrip(t *testing.T) {
	r := NewRecord()
	r.Set(0, []byte(`"iphone from apple"`))
	r.Set(1, []byte(`1`))

	data, err := r.MarshalBinary()
	require.NoError(t, err)

	got, err := UnmarshalRecord(data)
	require.NoError(t, err)
	require.Equal(t, r.Fields(), got.Fields())
}

func TestPutGetDeleteDocument(t *testing.T) {
	db := openTestDB(t)

	rec := NewRecord()
	rec.Set(0, []byte(`"x"`))

	err := db.Update(func(txn *kv.Txn) error {
		if err := PutDocument(txn.Bucket(DB), 1, rec); err != nil {
			return err
		}
		return PutExternalMapping(txn.Bucket(DB), "ext-1", 1)
	})
	require.NoError(t, err)

	err = db.View(func(txn *kv.RoTxn) error {
		got, ok, err := GetDocument(txn.Bucket(DB), 1)
		require.NoError(t, err)
		require.True(t, ok)
		v, _ := got.Get(0)
		require.Equal(t, []byte(`"x"`), v)

		id, ok := ExternalToInternal(txn.Bucket(DB), "ext-1")
		require.True(t, ok)
		require.Equal(t, types.DocID(1), id)

		ext, ok := InternalToExternal(txn.Bucket(DB), 1)
		require.True(t, ok)
		require.EqualValues(t, "ext-1", ext)
		return nil
	})
	require.NoError(t, err)

	err = db.Update(func(txn *kv.Txn) error {
		return DeleteDocument(txn.Bucket(DB), 1, "ext-1")
	})
	require.NoError(t, err)

	err = db.View(func(txn *kv.RoTxn) error {
		_, ok, err := GetDocument(txn.Bucket(DB), 1)
		require.NoError(t, err)
		require.False(t, ok)
		_, ok = ExternalToInternal(txn.Bucket(DB), "ext-1")
		require.False(t, ok)
		return nil
	})
	require.NoError(t, err)
}

func TestNextDocIDMonotonic(t *testing.T) {
	db := openTestDB(t)
	var ids []types.DocID
	err := db.Update(func(txn *kv.Txn) error {
		for i := 0; i < 3; i++ {
			id, err := NextDocID(txn.Bucket(DB))
			if err != nil {
				return err
			}
			ids = append(ids, id)
		}
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, []types.DocID{0, 1, 2}, ids)
}

func TestValidateExternalID(t *testing.T) {
	require.True(t, ValidateExternalID("abc-123_X"))
	require.False(t, ValidateExternalID(""))
	require.False(t, ValidateExternalID("has space"))
	require.False(t, ValidateExternalID("has/slash"))
}

func TestCountAndPrefixSearch(t *testing.T) {
	db := openTestDB(t)
	err := db.Update(func(txn *kv.Txn) error {
		for i, ext := range []types.ExternalID{"alpha-1", "alpha-2", "beta-1"} {
			rec := NewRecord()
			if err := PutDocument(txn.Bucket(DB), types.DocID(i), rec); err != nil {
				return err
			}
			if err := PutExternalMapping(txn.Bucket(DB), ext, types.DocID(i)); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)

	err = db.View(func(txn *kv.RoTxn) error {
		require.Equal(t, 3, Count(txn.Bucket(DB)))
		matches := PrefixSearchExternalIDs(txn.Bucket(DB), "alpha-")
		require.Len(t, matches, 2)
		return nil
	})
	require.NoError(t, err)
}
