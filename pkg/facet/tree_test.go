package facet

import (
	"testing"

	"github.com/cuemby/ftscore/pkg/kv"
	"github.com/cuemby/ftscore/pkg/posting"
	"github.com/cuemby/ftscore/pkg/types"
	"github.com/stretchr/testify/require"
)

func openTest(t *testing.T) *kv.DB {
	t.Helper()
	db, err := kv.Open(t.TempDir(), []string{StringDB, NumberDB})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestInsertLevelZeroUnion(t *testing.T) {
	db := openTest(t)
	field := types.FieldID(1)
	params := Params{GroupSize: 4, MaxGroupSize: 8, MinLevelSize: 4}

	require.NoError(t, db.Update(func(txn *kv.Txn) error {
		for i := 0; i < 256; i++ {
			v := types.NewNumberFacetValue(float64(i))
			if err := Insert(txn, field, v, posting.Of(uint32(i)), params); err != nil {
				return err
			}
		}
		return nil
	}))

	require.NoError(t, db.View(func(txn *kv.RoTxn) error {
		u := LevelZeroUnion(txn.Bucket(NumberDB), types.FacetNumber, field)
		require.Equal(t, uint64(256), u.Cardinality())
		return nil
	}))
}

func TestFacetIncrementalConsistencyAfterDelete(t *testing.T) {
	db := openTest(t)
	field := types.FieldID(1)
	params := DefaultParams

	require.NoError(t, db.Update(func(txn *kv.Txn) error {
		for i := 0; i < 256; i++ {
			v := types.NewNumberFacetValue(float64(i))
			if err := Insert(txn, field, v, posting.Of(uint32(i)), params); err != nil {
				return err
			}
		}
		return nil
	}))

	require.NoError(t, db.Update(func(txn *kv.Txn) error {
		for i := 200; i < 256; i++ {
			v := types.NewNumberFacetValue(float64(i))
			if err := Delete(txn, field, v, posting.Of(uint32(i)), params); err != nil {
				return err
			}
		}
		return nil
	}))

	require.NoError(t, db.View(func(txn *kv.RoTxn) error {
		u := LevelZeroUnion(txn.Bucket(NumberDB), types.FacetNumber, field)
		require.Equal(t, uint64(200), u.Cardinality())
		require.True(t, u.Contains(199))
		require.False(t, u.Contains(200))
		return nil
	}))
}

func TestFacetChunkNonMultipleOfGroupSize(t *testing.T) {
	db := openTest(t)
	field := types.FieldID(1)
	params := DefaultParams // GroupSize 4, MinLevelSize 4: 17 >= 4*4 qualifies level 1

	require.NoError(t, db.Update(func(txn *kv.Txn) error {
		for i := 0; i < 17; i++ {
			v := types.NewNumberFacetValue(float64(i))
			if err := Insert(txn, field, v, posting.Of(uint32(i)), params); err != nil {
				return err
			}
		}
		return nil
	}))

	require.NoError(t, db.View(func(txn *kv.RoTxn) error {
		b := txn.Bucket(NumberDB)
		level1 := scanLevel(b, types.FacetNumber, field, 1)
		require.Len(t, level1, 4)

		total := 0
		floor := params.GroupSize / 2
		for i, e := range level1 {
			total += int(e.n.size)
			require.GreaterOrEqualf(t, int(e.n.size), floor, "level-1 node %d below the group-size floor", i)
		}
		require.Equal(t, 17, total)
		require.Equal(t, uint32(5), level1[3].n.size) // trailing group of 1 folded into its predecessor
		return nil
	}))
}

func TestInsertStringFacetOrdering(t *testing.T) {
	db := openTest(t)
	field := types.FieldID(2)
	params := DefaultParams

	words := []string{"banana", "apple", "cherry", "date"}
	require.NoError(t, db.Update(func(txn *kv.Txn) error {
		for i, w := range words {
			v := types.NewStringFacetValue(w)
			if err := Insert(txn, field, v, posting.Of(uint32(i)), params); err != nil {
				return err
			}
		}
		return nil
	}))

	require.NoError(t, db.View(func(txn *kv.RoTxn) error {
		b := txn.Bucket(StringDB)
		entries := scanLevel(b, types.FacetString, field, 0)
		require.Len(t, entries, 4)
		for i := 1; i < len(entries); i++ {
			require.True(t, entries[i-1].value.Less(entries[i].value))
		}
		return nil
	}))
}

func TestInsertSameValueUnionsPosting(t *testing.T) {
	db := openTest(t)
	field := types.FieldID(3)
	params := DefaultParams

	v := types.NewStringFacetValue("red")
	require.NoError(t, db.Update(func(txn *kv.Txn) error {
		if err := Insert(txn, field, v, posting.Of(1), params); err != nil {
			return err
		}
		return Insert(txn, field, v, posting.Of(2), params)
	}))

	require.NoError(t, db.View(func(txn *kv.RoTxn) error {
		u := LevelZeroUnion(txn.Bucket(StringDB), types.FacetString, field)
		require.Equal(t, uint64(2), u.Cardinality())
		require.True(t, u.Contains(1))
		require.True(t, u.Contains(2))
		return nil
	}))
}
