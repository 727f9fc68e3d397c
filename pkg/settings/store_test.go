package settings

import (
	"testing"

	"github.com/cuemby/ftscore/pkg/kv"
	"github.com/stretchr/testify/require"
)

func TestLoadReturnsDefaultWhenNeverSaved(t *testing.T) {
	db, err := kv.Open(t.TempDir(), []string{DB})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, db.View(func(txn *kv.RoTxn) error {
		s, err := Load(txn.Bucket(DB))
		require.NoError(t, err)
		require.Equal(t, Default(), s)
		return nil
	}))
}



func TestSaveLoadRoundTrip(t *testing.T) {
	db, err := kv.Open(t.TempDir(), []string{DB})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	s := Default()
	s.StopWords = []string{"the", "a"}
	s.Synonyms = map[string][]string{"nyc": {"new york"}}
	s.FilterableFields = []string{"price"}

	require.NoError(t, db.Update(func(txn *kv.Txn) error {
		return Save(txn.Bucket(DB), s)
	}))

	require.NoError(t, db.View(func(txn *kv.RoTxn) error {
		loaded, err := Load(txn.Bucket(DB))
		require.NoError(t, err)
		require.Equal(t, s, loaded)
		return nil
	}))
}
