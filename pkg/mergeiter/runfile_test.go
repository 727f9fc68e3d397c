package mergeiter

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRunFileWriteOpenReadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	entries := []Entry{
		{Key: []byte("b"), Value: []byte("2")},
		{Key: []byte("a"), Value: []byte("1")},
		{Key: []byte("c"), Value: []byte("3")},
	}
	rf, err := WriteRun(dir, entries)
	require.NoError(t, err)
	defer rf.Delete()

	rr, err := rf.Open()
	require.NoError(t, err)
	defer rr.Close()

	var keys []string
	for {
		k, v, ok, err := rr.Next()
		require.NoError(t, err)
		if !ok {
			break
		}
		keys = append(keys, string(k)+"="+string(v))
	}
	require.Equal(t, []string{"a=1", "b=2", "c=3"}, keys)
}

func TestRunFileDeleteIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	rf, err := WriteRun(dir, nil)
	require.NoError(t, err)
	require.NoError(t, rf.Delete())
	require.NoError(t, rf.Delete())
}

func TestMergeAcrossRunFiles(t *testing.T) {
	dir := t.TempDir()
	rf1, err := WriteRun(dir, []Entry{{Key: []byte("a"), Value: []byte("1")}, {Key: []byte("c"), Value: []byte("3")}})
	require.NoError(t, err)
	defer rf1.Delete()
	rf2, err := WriteRun(dir, []Entry{{Key: []byte("b"), Value: []byte("2")}})
	require.NoError(t, err)
	defer rf2.Delete()

	r1, err := rf1.Open()
	require.NoError(t, err)
	defer r1.Close()
	r2, err := rf2.Open()
	require.NoError(t, err)
	defer r2.Close()

	m, err := New([]Source{r1, r2})
	require.NoError(t, err)

	var keys []string
	for {
		k, _, ok, err := m.Next()
		require.NoError(t, err)
		if !ok {
			break
		}
		keys = append(keys, string(k))
	}
	require.Equal(t, []string{"a", "b", "c"}, keys)
}
