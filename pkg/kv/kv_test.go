package kv

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func openTest(t *testing.T) *DB {
	t.Helper()
	db, err := Open(t.TempDir(), []string{"main", "docs"})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestPutGetDelete(t *testing.T) {
	db := openTest(t)

	require.NoError(t, db.Update(func(txn *Txn) error {
		return txn.Bucket("main").Put([]byte("a"), []byte("1"))
	}))

	require.NoError(t, db.View(func(txn *RoTxn) error {
		require.Equal(t, []byte("1"), txn.Bucket("main").Get([]byte("a")))
		return nil
	}))

	require.NoError(t, db.Update(func(txn *Txn) error {
		return txn.Bucket("main").Delete([]byte("a"))
	}))

	require.NoError(t, db.View(func(txn *RoTxn) error {
		require.Nil(t, txn.Bucket("main").Get([]byte("a")))
		return nil
	}))
}

func TestPrefixAndRangeIter(t *testing.T) {
	db := openTest(t)

	keys := []string{"a/1", "a/2", "a/3", "b/1"}
	require.NoError(t, db.Update(func(txn *Txn) error {
		b := txn.Bucket("main")
		for _, k := range keys {
			if err := b.Put([]byte(k), []byte("v")); err != nil {
				return err
			}
		}
		return nil
	}))

	require.NoError(t, db.View(func(txn *RoTxn) error {
		it := txn.Bucket("main").PrefixIter([]byte("a/"))
		var got []string
		for it.Valid() {
			got = append(got, string(it.Key()))
			it.Next()
		}
		require.Equal(t, []string{"a/1", "a/2", "a/3"}, got)
		return nil
	}))

	require.NoError(t, db.View(func(txn *RoTxn) error {
		it := txn.Bucket("main").RangeIter([]byte("a/2"), []byte("b/"))
		var got []string
		for it.Valid() {
			got = append(got, string(it.Key()))
			it.Next()
		}
		require.Equal(t, []string{"a/2", "a/3"}, got)
		return nil
	}))
}

func TestGetLowerAndGreaterThan(t *testing.T) {
	db := openTest(t)

	require.NoError(t, db.Update(func(txn *Txn) error {
		b := txn.Bucket("main")
		for _, k := range []string{"10", "20", "30"} {
			if err := b.Put([]byte(k), []byte("v")); err != nil {
				return err
			}
		}
		return nil
	}))

	require.NoError(t, db.View(func(txn *RoTxn) error {
		b := txn.Bucket("main")

		k, _, ok := b.GetLowerThan([]byte("20"))
		require.True(t, ok)
		require.Equal(t, "10", string(k))

		k, _, ok = b.GetLowerThan([]byte("05"))
		require.False(t, ok)

		k, _, ok = b.GetGreaterThan([]byte("20"))
		require.True(t, ok)
		require.Equal(t, "30", string(k))

		_, _, ok = b.GetGreaterThan([]byte("30"))
		require.False(t, ok)
		return nil
	}))
}

func TestEmptyAndCount(t *testing.T) {
	db := openTest(t)

	require.NoError(t, db.View(func(txn *RoTxn) error {
		require.True(t, txn.Bucket("main").Empty())
		require.Equal(t, 0, txn.Bucket("main").Count())
		return nil
	}))

	require.NoError(t, db.Update(func(txn *Txn) error {
		return txn.Bucket("main").Put([]byte("k"), []byte("v"))
	}))

	require.NoError(t, db.View(func(txn *RoTxn) error {
		require.False(t, txn.Bucket("main").Empty())
		require.Equal(t, 1, txn.Bucket("main").Count())
		return nil
	}))
}

func TestKeyEncodingRoundTrip(t *testing.T) {
	var buf []byte
	buf = PutUint16(buf, 42)
	buf = PutUint32(buf, 1234)
	buf = PrefixString(buf, "hello")

	require.Equal(t, uint16(42), Uint16(buf[0:2]))
	require.Equal(t, uint32(1234), Uint32(buf[2:6]))
	require.Equal(t, uint16(5), Uint16(buf[6:8]))
	require.Equal(t, "hello", string(buf[8:13]))
}
