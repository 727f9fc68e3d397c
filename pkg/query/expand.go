package query

import (
	"fmt"

	"github.com/cuemby/ftscore/pkg/settings"
	"github.com/cuemby/ftscore/pkg/tokenizer"
)

// Expand runs the full §4.9 pipeline over q and returns the resulting
// query graph. words answers vocabulary-membership checks for the
// concatenation, split and final-token-prefix passes; it is typically
// backed by the live word_docids database (NewWordSet).
func Expand(q string, tok *tokenizer.Tokenizer, words WordSet, s settings.Settings) (*Graph, error) {
	segments := splitPhrases(q)

	var tokens []string
	var phraseRanges [][2]int
	for si, seg := range segments {
		segTokens := tok.Tokenize(0, 0, seg.text)
		start := len(tokens)
		for ti, t := range segTokens {
			trailing := si == len(segments)-1 && ti == len(segTokens)-1
			if t.IsStop && !(seg.phrase) && !trailing {
				// stop words are only retained when they are the query's
				// trailing token, a potential prefix (§4.9 step 1); mid-query
				// stop words outside a quoted phrase are dropped.
				continue
			}
			tokens = append(tokens, t.Surface)
		}
		if seg.phrase && len(segTokens) > 0 {
			phraseRanges = append(phraseRanges, [2]int{start, len(tokens)})
		}
	}
	if len(tokens) == 0 {
		return &Graph{}, nil
	}

	inPhrase := make([]bool, len(tokens))
	for _, r := range phraseRanges {
		for i := r[0]; i < r[1]; i++ {
			inPhrase[i] = true
		}
	}

	var nodes []Node

	// Quoted phrases: one Phrase node per span, no typo tolerance, no
	// split/concat expansion (§11).
	for _, r := range phraseRanges {
		nodes = append(nodes, Node{
			Kind:   KindPhrase,
			Source: SourceToken,
			Tokens: append([]string(nil), tokens[r[0]:r[1]]...),
			Start:  r[0],
			End:    r[1],
		})
	}

	// Step 2: per-token typo/exact baseline, skipped for tokens already
	// covered by a quoted phrase.
	for i, t := range tokens {
		if inPhrase[i] {
			continue
		}
		budget := editBudget(t, s)
		if budget == 0 {
			nodes = append(nodes, Node{Kind: KindExact, Source: SourceToken, Tokens: []string{t}, Start: i, End: i + 1})
		} else {
			nodes = append(nodes, Node{Kind: KindTypo, Source: SourceToken, Tokens: []string{t}, AllowedEdits: budget, Start: i, End: i + 1})
		}
	}

	if words != nil {
		// Step 3: concatenation.
		for _, n := range concatPairs(tokens, words) {
			if inPhrase[n.Start] || inPhrase[n.End-1] {
				continue
			}
			nodes = append(nodes, n)
		}
		// Step 4: split.
		for _, n := range splitBisections(tokens, words) {
			if inPhrase[n.Start] {
				continue
			}
			nodes = append(nodes, n)
		}
	}

	// Step 5: synonyms, via the FST-backed head index.
	idx, err := buildSynonymIndex(s.Synonyms)
	if err != nil {
		return nil, fmt.Errorf("query: expand: %w", err)
	}
	if idx != nil {
		for i := range tokens {
			if inPhrase[i] {
				continue
			}
			head, ok := idx.matchAt(tokens, i)
			if !ok {
				continue
			}
			end := i + len(head.head)
			overlapsPhrase := false
			for j := i; j < end; j++ {
				if inPhrase[j] {
					overlapsPhrase = true
					break
				}
			}
			if overlapsPhrase {
				continue
			}
			for _, sub := range head.substitutions {
				nodes = append(nodes, Node{
					Kind:   KindSynonym,
					Source: SourceSynonym,
					Tokens: append([]string(nil), sub...),
					Start:  i,
					End:    end,
				})
			}
		}
	}

	// Step 6: the final token becomes a Prefix unless it already has an
	// exact match in the word set.
	last := len(tokens) - 1
	if !inPhrase[last] && words != nil && !words.Contains(tokens[last]) {
		nodes = append(nodes, Node{Kind: KindPrefix, Source: SourceToken, Tokens: []string{tokens[last]}, Start: last, End: last + 1})
	}

	max := s.MaxQueryTreeNodes
	if max <= 0 {
		max = settings.DefaultMaxQueryTreeNodes
	}
	nodes = bound(nodes, max)

	return &Graph{Nodes: nodes, NumTokens: len(tokens)}, nil
}
