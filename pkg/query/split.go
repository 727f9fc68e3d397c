package query

// splitBisections returns one Node per way a single token can be cut
// into two known words, the split pass of §4.9 step 4
// ("iphonecase" -> "iphone" + "case"). Every bi-split that yields two
// recognized words contributes a separate Phrase(left, right) branch.
// Every cut point that leaves both halves non-empty is tried, including
// the ones that leave a single rune on either side.
func splitBisections(tokens []string, words WordSet) []Node {
	var out []Node
	for i, t := range tokens {
		runes := []rune(t)
		for cut := 1; cut < len(runes); cut++ {
			left := string(runes[:cut])
			right := string(runes[cut:])
			if !words.Contains(left) || !words.Contains(right) {
				continue
			}
			out = append(out, Node{
				Kind:   KindPhrase,
				Source: SourceSplit,
				Tokens: []string{left, right},
				Start:  i,
				End:    i + 1,
			})
		}
	}
	return out
}
