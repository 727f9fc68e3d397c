package query

import (
	"testing"

	"github.com/cuemby/ftscore/pkg/settings"
	"github.com/cuemby/ftscore/pkg/tokenizer"
	"github.com/stretchr/testify/require"
)

// fakeWords is an in-memory WordSet for tests that don't need a live kv
// transaction.
type fakeWords map[string]bool

func (f fakeWords) Contains(word string) bool { return f[word] }

func newTestTokenizer() *tokenizer.Tokenizer {
	return tokenizer.New(nil)
}

func TestExpandAssignsTypoBudgetsByLength(t *testing.T) {
	s := settings.Default()
	s.AuthorizeTypos = true
	s.MinWordLenOneTypo = 5
	s.MinWordLenTwoTypos = 9

	g, err := Expand("ok banana skateboards", newTestTokenizer(), fakeWords{}, s)
	require.NoError(t, err)

	byToken := map[string]Node{}
	for _, n := range g.Nodes {
		if n.Source == SourceToken && len(n.Tokens) == 1 && n.Kind != KindPrefix {
			byToken[n.Tokens[0]] = n
		}
	}

	require.Equal(t, KindExact, byToken["ok"].Kind)
	require.Equal(t, KindTypo, byToken["banana"].Kind)
	require.Equal(t, uint8(1), byToken["banana"].AllowedEdits)
	require.Equal(t, KindTypo, byToken["skateboards"].Kind)
	require.Equal(t, uint8(2), byToken["skateboards"].AllowedEdits)
}

func TestExpandExactWordsOverrideTypoBudget(t *testing.T) {
	s := settings.Default()
	s.AuthorizeTypos = true
	s.MinWordLenOneTypo = 1
	s.MinWordLenTwoTypos = 2
	s.ExactWords = []string{"skateboards"}

	g, err := Expand("skateboards", newTestTokenizer(), fakeWords{}, s)
	require.NoError(t, err)
	require.Len(t, g.Nodes, 2) // exact token node + trailing prefix promotion
	var exact *Node
	for i := range g.Nodes {
		if g.Nodes[i].Kind == KindExact && g.Nodes[i].Source == SourceToken {
			exact = &g.Nodes[i]
		}
	}
	require.NotNil(t, exact)
}

func TestExpandQuotedPhraseGetsNoTypoTolerance(t *testing.T) {
	s := settings.Default()
	s.AuthorizeTypos = true

	g, err := Expand(`find "blue whale" now`, newTestTokenizer(), fakeWords{}, s)
	require.NoError(t, err)

	var phrase *Node
	for i := range g.Nodes {
		if g.Nodes[i].Kind == KindPhrase && g.Nodes[i].Source == SourceToken {
			phrase = &g.Nodes[i]
		}
	}
	require.NotNil(t, phrase)
	require.Equal(t, []string{"blue", "whale"}, phrase.Tokens)

	for _, n := range g.Nodes {
		if n.Start >= phrase.Start && n.End <= phrase.End && n.Kind == KindTypo {
			t.Fatalf("phrase span got a typo node: %+v", n)
		}
	}
}

func TestExpandConcatenatesAdjacentTokens(t *testing.T) {
	s := settings.Default()
	words := fakeWords{"iphone": true, "case": true}

	g, err := Expand("i phone case", newTestTokenizer(), words, s)
	require.NoError(t, err)

	var found bool
	for _, n := range g.Nodes {
		if n.Source == SourceConcat && len(n.Tokens) == 1 && n.Tokens[0] == "iphone" {
			found = true
			require.Equal(t, 0, n.Start)
			require.Equal(t, 2, n.End)
		}
	}
	require.True(t, found, "expected a concat node for i+phone")
}

func TestExpandSplitsSingleToken(t *testing.T) {
	s := settings.Default()
	words := fakeWords{"iphone": true, "case": true}

	g, err := Expand("iphonecase", newTestTokenizer(), words, s)
	require.NoError(t, err)

	var found bool
	for _, n := range g.Nodes {
		if n.Source == SourceSplit && len(n.Tokens) == 2 && n.Tokens[0] == "iphone" && n.Tokens[1] == "case" {
			found = true
		}
	}
	require.True(t, found, "expected a split node for iphonecase -> iphone+case")
}

func TestExpandSubstitutesSynonyms(t *testing.T) {
	s := settings.Default()
	s.Synonyms = map[string][]string{
		"nyc subway": {"new york subway"},
	}

	g, err := Expand("nyc subway", newTestTokenizer(), fakeWords{}, s)
	require.NoError(t, err)

	var found bool
	for _, n := range g.Nodes {
		if n.Kind == KindSynonym {
			found = true
			require.Equal(t, []string{"new", "york", "subway"}, n.Tokens)
			require.Equal(t, 0, n.Start)
			require.Equal(t, 2, n.End)
		}
	}
	require.True(t, found, "expected a synonym node for nyc subway -> new york subway")
}

func TestExpandPromotesFinalTokenToPrefix(t *testing.T) {
	s := settings.Default()
	words := fakeWords{"banana": true}

	g, err := Expand("ban", newTestTokenizer(), words, s)
	require.NoError(t, err)

	var found bool
	for _, n := range g.Nodes {
		if n.Kind == KindPrefix {
			found = true
		}
	}
	require.True(t, found, "expected the final token to be promoted to a prefix node")
}

func TestExpandNoPrefixWhenFinalTokenIsKnown(t *testing.T) {
	s := settings.Default()
	words := fakeWords{"banana": true}

	g, err := Expand("banana", newTestTokenizer(), words, s)
	require.NoError(t, err)

	for _, n := range g.Nodes {
		require.NotEqual(t, KindPrefix, n.Kind)
	}
}

func TestExpandBoundsOverflowPreservingSoleCoverage(t *testing.T) {
	s := settings.Default()
	s.MaxQueryTreeNodes = 1
	s.Synonyms = map[string][]string{
		"ok": {"fine"},
	}

	g, err := Expand("ok", newTestTokenizer(), fakeWords{}, s)
	require.NoError(t, err)

	// Even with a cap of one, the only reading covering [0,1) must survive.
	require.NotEmpty(t, g.Nodes)
	for _, n := range g.Nodes {
		require.Equal(t, 0, n.Start)
		require.Equal(t, 1, n.End)
	}
}

func TestExpandEmptyQueryReturnsEmptyGraph(t *testing.T) {
	s := settings.Default()
	g, err := Expand("", newTestTokenizer(), fakeWords{}, s)
	require.NoError(t, err)
	require.Empty(t, g.Nodes)
}
