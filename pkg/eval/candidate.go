package eval

import (
	"github.com/cuemby/ftscore/pkg/invindex"
	"github.com/cuemby/ftscore/pkg/kv"
	"github.com/cuemby/ftscore/pkg/query"
	"github.com/cuemby/ftscore/pkg/types"
)

// matchedWord is one query-graph node's contribution to a document's
// stats: the representative position it matched at, plus enough of the
// node's identity to probe word_pair_proximity_docids directly instead
// of recomputing proximity from raw positions. surface/literal are only
// meaningful for nodes whose Tokens are guaranteed to be the literal
// indexed word in this document — Exact/Phrase/Synonym nodes resolve via
// exact WordPosting intersection, so Tokens is trustworthy; Typo/Prefix
// nodes resolve against whichever indexed word happened to match this
// document, which resolveNode never records, so their surface is not.
type matchedWord struct {
	start    int
	position types.Position
	surface  string
	literal  bool
}

// stats is the per-document aggregate the built-in criteria read from.
// It is an independent, per-position aggregation rather than a search
// over every non-overlapping combination of graph nodes a document could
// satisfy (milli itself fans out over that combinatorial tree); each
// token position contributes its best-matching node once, which keeps
// the ranking direction each criterion promises (§4.10) while staying
// tractable to compute in one pass. Documented as a deliberate
// simplification in DESIGN.md.
type stats struct {
	matchedPositions  map[int]bool // token Start positions this document matched
	typoSum           int
	exactCount        int
	attributeMin      uint16
	hasAttribute      bool
	matchedWords      []matchedWord // one entry per matched node, for the proximity pass
	fieldMatches      map[types.FieldID]int
	exactFieldMatches int // count of fieldMatches entries whose field was matched in full
}

func (s *stats) words() int { return len(s.matchedPositions) }

// buildStats resolves every node in g against the live word databases
// and folds the results into one stats entry per matched document.
// fieldOf maps a position's Attribute() back to the field it came from
// (the same Searchable ordering the indexer assigned attr from), and
// wordCountB is field_id_word_count_docids, read here to credit a
// document whose field was matched in its entirety rather than partially.
func buildStats(wordsB, prefixB, positionsB, wordCountB *kv.RoBucket, fieldOf []types.FieldID, g *query.Graph, vocab []string) (map[types.DocID]*stats, error) {
	out := map[types.DocID]*stats{}

	for _, n := range g.Nodes {
		m, err := resolveNode(wordsB, prefixB, n, vocab)
		if err != nil {
			return nil, err
		}
		literal := n.Kind == query.KindExact || n.Kind == query.KindPhrase || n.Kind == query.KindSynonym
		for _, id := range m.docs.ToArray() {
			st, ok := out[id]
			if !ok {
				st = &stats{matchedPositions: map[int]bool{}, fieldMatches: map[types.FieldID]int{}}
				out[id] = st
			}
			if st.matchedPositions[n.Start] {
				// the first node resolved for a position wins (expansion emits
				// the typed token's own reading before concat, split, synonym
				// and prefix alternatives); every later node starting at the
				// same position is skipped so it is never double-counted
				// toward "words".
				continue
			}
			st.matchedPositions[n.Start] = true

			edits := 0
			if m.editsOf != nil {
				edits = m.editsOf[id]
			}
			st.typoSum += edits
			if edits == 0 && n.Kind != query.KindPrefix {
				st.exactCount++
			}

			for _, tok := range n.Tokens {
				ps, err := invindex.Positions(positionsB, tok, id)
				if err != nil || len(ps) == 0 {
					continue
				}
				p := ps[0]
				attr := p.Attribute()
				if !st.hasAttribute || attr < st.attributeMin {
					st.attributeMin = attr
					st.hasAttribute = true
				}
				st.matchedWords = append(st.matchedWords, matchedWord{start: n.Start, position: p, surface: tok, literal: literal})
				if int(attr) < len(fieldOf) {
					st.fieldMatches[fieldOf[attr]]++
				}
				break // one representative token's positions per node is enough for attribute/proximity
			}
		}
	}

	if wordCountB != nil {
		for id, st := range out {
			for field, count := range st.fieldMatches {
				p, err := invindex.FieldWordCountPosting(wordCountB, field, uint32(count))
				if err != nil {
					return nil, err
				}
				if p.Contains(id) {
					st.exactFieldMatches++
				}
			}
		}
	}
	return out, nil
}

// proximitySum sums, over every adjacent pair of a document's matched
// nodes (sorted by query Start), the smallest proximity-posting distance
// between them — lower is better, matching §4.10. A pair is resolved
// through word_pair_proximity_docids, built only from literal indexed
// surface words, whenever both sides are a literal (Exact/Phrase/
// Synonym) match; Typo/Prefix-involving pairs fall back to the clipped
// position arithmetic used before this database existed, since their
// Tokens entry is not necessarily the word that actually matched.
func proximitySum(proximityB *kv.RoBucket, docID types.DocID, st *stats) int {
	if len(st.matchedWords) < 2 {
		return 0
	}
	words := append([]matchedWord(nil), st.matchedWords...)
	sortMatchedWords(words)
	sum := 0
	for i := 1; i < len(words); i++ {
		sum += int(pairProximity(proximityB, docID, words[i-1], words[i]))
	}
	return sum
}

// pairProximity finds the proximity between a and b. When both are
// literal surface matches it probes word_pair_proximity_docids at
// increasing distance and takes the first one docID belongs to,
// treating an unmatched probe as ProximityDifferentAttribute — the
// pair was either never indexed within window (too far apart) or never
// built at all (different fields), both worse than any stored distance.
// Otherwise it falls back to raw position arithmetic.
func pairProximity(proximityB *kv.RoBucket, docID types.DocID, a, b matchedWord) uint8 {
	if proximityB == nil || !a.literal || !b.literal {
		return types.ProximityBetween(a.position, b.position)
	}
	first, second := a.surface, b.surface
	for d := uint8(1); d <= types.MaxProximity; d++ {
		p, err := invindex.PairProximityPosting(proximityB, first, second, d)
		if err != nil {
			continue
		}
		if p.Contains(docID) {
			return d
		}
	}
	return types.ProximityDifferentAttribute
}

func sortMatchedWords(ws []matchedWord) {
	for i := 1; i < len(ws); i++ {
		for j := i; j > 0 && ws[j].start < ws[j-1].start; j-- {
			ws[j], ws[j-1] = ws[j-1], ws[j]
		}
	}
}
