package tokenizer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTokenizeBasicText(t *testing.T) {
	tok := New(nil)
	toks := tok.Tokenize(0, 0, "iphone from apple")
	require.Len(t, toks, 3)
	require.Equal(t, "iphone", toks[0].Surface)
	require.Equal(t, "from", toks[1].Surface)
	require.Equal(t, "apple", toks[2].Surface)
	require.EqualValues(t, 0, toks[0].Position.WordIndex())
	require.EqualValues(t, 1, toks[1].Position.WordIndex())
	require.EqualValues(t, 2, toks[2].Position.WordIndex())
}

func TestTokenizeNumericField(t *testing.T) {
	tok := New(nil)
	toks := tok.Tokenize(1, 0, "29.990")
	require.Len(t, toks, 1)
	require.Equal(t, "29.99", toks[0].Surface)
}

func TestTokenizeStopWords(t *testing.T) {
	tok := New([]string{"from"})
	toks := tok.Tokenize(0, 0, "iphone from apple")
	require.Len(t, toks, 3)
	require.False(t, toks[0].IsStop)
	require.True(t, toks[1].IsStop)
	require.False(t, toks[2].IsStop)
}

func TestNormalizeIdempotent(t *testing.T) {
	s := "MiXeD Case"
	require.Equal(t, Normalize(s), Normalize(Normalize(s)))
}

func TestTokenizeCrossFieldPositionsDiffer(t *testing.T) {
	tok := New(nil)
	a := tok.Tokenize(0, 0, "apple")[0].Position
	b := tok.Tokenize(1, 1, "apple")[0].Position
	require.NotEqual(t, a, b)
}
