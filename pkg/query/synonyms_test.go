package query

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSynonymHeadTiesBreakByDeclarationOrder(t *testing.T) {
	synonyms := map[string][]string{
		"NYC Subway": {"big apple transit"},
		"nyc subway": {"new york subway"},
	}
	tokens := []string{"nyc", "subway"}

	// "NYC Subway" sorts before "nyc subway" byte-wise ('N' < 'n'), so it
	// gets the lower declaration order and should win the tie every time,
	// regardless of the input map's iteration order.
	for i := 0; i < 5; i++ {
		idx, err := buildSynonymIndex(synonyms)
		require.NoError(t, err)
		require.NotNil(t, idx)

		head, found := idx.matchAt(tokens, 0)
		require.True(t, found)
		require.Equal(t, [][]string{{"big", "apple", "transit"}}, head.substitutions)
	}
}
