package mergeiter

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type sliceSource struct {
	entries [][2]string
	pos     int
}

func (s *sliceSource) Next() (key, value []byte, ok bool, err error) {
	if s.pos >= len(s.entries) {
		return nil, nil, false, nil
	}
	e := s.entries[s.pos]
	s.pos++
	return []byte(e[0]), []byte(e[1]), true, nil
}

func TestMergeOrdersAcrossSources(t *testing.T) {
	a := &sliceSource{entries: [][2]string{{"a", "1"}, {"c", "3"}, {"e", "5"}}}
	b := &sliceSource{entries: [][2]string{{"b", "2"}, {"d", "4"}}}

	m, err := New([]Source{a, b})
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
	require.Equal(t, []string{"a", "b", "c", "d", "e"}, keys)
}

func TestMergeEqualKeysPreserveSourceOrder(t *testing.T) {
	a := &sliceSource{entries: [][2]string{{"x", "from-a"}}}
	b := &sliceSource{entries: [][2]string{{"x", "from-b"}}}

	m, err := New([]Source{a, b})
	require.NoError(t, err)

	_, v1, ok, err := m.Next()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "from-a", string(v1))

	_, v2, ok, err := m.Next()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "from-b", string(v2))
}

func TestMergeEmpty(t *testing.T) {
	m, err := New(nil)
	require.NoError(t, err)
	_, _, ok, err := m.Next()
	require.NoError(t, err)
	require.False(t, ok)
}
