package posting

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAddContainsCardinality(t *testing.T) {
	p := New()
	require.True(t, p.IsEmpty())
	p.Add(1)
	p.Add(5)
	p.Add(5)
	require.True(t, p.Contains(1))
	require.True(t, p.Contains(5))
	require.False(t, p.Contains(2))
	require.EqualValues(t, 2, p.Cardinality())
}

func TestUnionIntersectDifference(t *testing.T) {
	a := Of(1, 2, 3)
	b := Of(2, 3, 4)

	u := Union(a, b)
	require.ElementsMatch(t, []uint32{1, 2, 3, 4}, u.ToArray())

	i := Intersect(a, b)
	require.ElementsMatch(t, []uint32{2, 3}, i.ToArray())

	d := Difference(a, b)
	require.ElementsMatch(t, []uint32{1}, d.ToArray())

	// originals untouched
	require.ElementsMatch(t, []uint32{1, 2, 3}, a.ToArray())
	require.ElementsMatch(t, []uint32{2, 3, 4}, b.ToArray())
}

func TestInPlaceOps(t *testing.T) {
	a := Of(1, 2)
	b := Of(2, 3)
	a.UnionInPlace(b)
	require.ElementsMatch(t, []uint32{1, 2, 3}, a.ToArray())

	a.SubtractInPlace(Of(2))
	require.ElementsMatch(t, []uint32{1, 3}, a.ToArray())
}

func TestMarshalRoundTrip(t *testing.T) {
	p := Of(10, 20, 30)
	data, err := p.MarshalBinary()
	require.NoError(t, err)

	got, err := UnmarshalBinary(data)
	require.NoError(t, err)
	require.ElementsMatch(t, p.ToArray(), got.ToArray())
}

func TestUnmarshalEmpty(t *testing.T) {
	got, err := UnmarshalBinary(nil)
	require.NoError(t, err)
	require.True(t, got.IsEmpty())
}

func TestClone(t *testing.T) {
	a := Of(1, 2)
	b := a.Clone()
	b.Add(3)
	require.ElementsMatch(t, []uint32{1, 2}, a.ToArray())
	require.ElementsMatch(t, []uint32{1, 2, 3}, b.ToArray())
}
