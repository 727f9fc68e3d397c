package eval

import (
	"github.com/cuemby/ftscore/pkg/invindex"
	"github.com/cuemby/ftscore/pkg/kv"
	"github.com/cuemby/ftscore/pkg/posting"
	"github.com/cuemby/ftscore/pkg/query"
	"github.com/cuemby/ftscore/pkg/types"
)

// nodeMatch is one graph node resolved against the live index: the
// documents it matches, and the per-document edit cost a typo node
// incurred (0 for every other kind).
type nodeMatch struct {
	node    query.Node
	docs    *posting.Posting
	editsOf map[types.DocID]int // only populated for KindTypo
}

// resolveNode finds every document a node matches. vocab is the full
// word list, computed once per Evaluate call and reused by every typo
// node; it is nil when the graph holds no Typo or Prefix node.
func resolveNode(wordsB *kv.RoBucket, prefixB *kv.RoBucket, n query.Node, vocab []string) (nodeMatch, error) {
	switch n.Kind {
	case query.KindExact:
		p, err := invindex.WordPosting(wordsB, n.Tokens[0])
		return nodeMatch{node: n, docs: p}, err

	case query.KindTypo:
		return resolveTypoNode(wordsB, n, vocab)

	case query.KindPrefix:
		p, err := invindex.PrefixPosting(prefixB, n.Tokens[0])
		if err != nil {
			return nodeMatch{}, err
		}
		if p.IsEmpty() && vocab != nil {
			p = scanPrefix(wordsB, n.Tokens[0], vocab)
		}
		return nodeMatch{node: n, docs: p}, nil

	default: // KindPhrase, KindSynonym: intersection of every constituent word's posting
		var acc *posting.Posting
		for _, tok := range n.Tokens {
			p, err := invindex.WordPosting(wordsB, tok)
			if err != nil {
				return nodeMatch{}, err
			}
			if acc == nil {
				acc = p
			} else {
				acc = posting.Intersect(acc, p)
			}
		}
		if acc == nil {
			acc = posting.New()
		}
		return nodeMatch{node: n, docs: acc}, nil
	}
}

func resolveTypoNode(wordsB *kv.RoBucket, n query.Node, vocab []string) (nodeMatch, error) {
	word := n.Tokens[0]
	exact, err := invindex.WordPosting(wordsB, word)
	if err != nil {
		return nodeMatch{}, err
	}
	edits := map[types.DocID]int{}
	for _, id := range exact.ToArray() {
		edits[id] = 0
	}
	acc := exact.Clone()
	for _, candidate := range vocab {
		if candidate == word {
			continue
		}
		d := editDistance(word, candidate, int(n.AllowedEdits))
		if d > int(n.AllowedEdits) {
			continue
		}
		p, err := invindex.WordPosting(wordsB, candidate)
		if err != nil {
			return nodeMatch{}, err
		}
		for _, id := range p.ToArray() {
			if prev, ok := edits[id]; !ok || d < prev {
				edits[id] = d
			}
		}
		acc.UnionInPlace(p)
	}
	return nodeMatch{node: n, docs: acc, editsOf: edits}, nil
}

func scanPrefix(wordsB *kv.RoBucket, prefix string, vocab []string) *posting.Posting {
	acc := posting.New()
	for _, w := range vocab {
		if len(w) >= len(prefix) && w[:len(prefix)] == prefix {
			p, err := invindex.WordPosting(wordsB, w)
			if err == nil {
				acc.UnionInPlace(p)
			}
		}
	}
	return acc
}
