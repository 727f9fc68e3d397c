package query

import "github.com/cuemby/ftscore/pkg/tokenizer"

// concatPairs returns one Node per adjacent token pair whose
// concatenated surface form exists in words, the concatenation pass of
// §4.9 step 3 ("i phone" -> "iphone").
func concatPairs(tokens []string, words WordSet) []Node {
	var out []Node
	for i := 0; i+1 < len(tokens); i++ {
		joined := tokenizer.Normalize(tokens[i] + tokens[i+1])
		if !words.Contains(joined) {
			continue
		}
		out = append(out, Node{
			Kind:   KindExact,
			Source: SourceConcat,
			Tokens: []string{joined},
			Start:  i,
			End:    i + 2,
		})
	}
	return out
}
