package invindex

import (
	"fmt"

	"github.com/cuemby/ftscore/pkg/kv"
	"github.com/cuemby/ftscore/pkg/posting"
	"github.com/cuemby/ftscore/pkg/types"
)

// WordPosting returns the posting of documents containing word exactly,
// or an empty posting if the word was never indexed.
func WordPosting(b *kv.RoBucket, word string) (*posting.Posting, error) {
	return postingAt(b, wordKey(word))
}

// PrefixPosting returns the posting of documents containing some word
// carrying prefix, resolved from the precomputed word_prefix_docids
// database (built only for prefixes whose cardinality passed
// Params.PrefixThreshold). Callers that need exactness for a short or
// rare prefix should fall back to AllWords and a manual scan.
func PrefixPosting(b *kv.RoBucket, prefix string) (*posting.Posting, error) {
	return postingAt(b, prefixKey(prefix))
}

func postingAt(b *kv.RoBucket, key []byte) (*posting.Posting, error) {
	raw := b.Get(key)
	if raw == nil {
		return posting.New(), nil
	}
	p, err := posting.UnmarshalBinary(raw)
	if err != nil {
		return nil, fmt.Errorf("invindex: decode posting: %w", err)
	}
	return p, nil
}

// Positions returns the positions at which word occurs in doc.
func Positions(b *kv.RoBucket, word string, doc types.DocID) ([]types.Position, error) {
	raw := b.Get(wordDocidKey(word, doc))
	if raw == nil {
		return nil, nil
	}
	return decodePositions(raw)
}

// PairProximityPosting returns the posting of documents in which a and b
// co-occur at exactly the given clipped proximity.
func PairProximityPosting(b *kv.RoBucket, a, b2 string, proximity uint8) (*posting.Posting, error) {
	return postingAt(b, pairProximityKey(a, b2, proximity))
}

// FieldWordCountPosting returns the posting of documents whose field has
// exactly count indexed words. The words criterion uses this to tell a
// document whose matched field was covered in full from one that only
// partially matched a longer field.
func FieldWordCountPosting(b *kv.RoBucket, field types.FieldID, count uint32) (*posting.Posting, error) {
	return postingAt(b, fieldWordCountKey(field, count))
}

// AllWords returns every distinct indexed word, ascending. The typo
// criterion's candidate search scans this rather than walking an edit-
// distance automaton, a correctness-first tradeoff documented in
// DESIGN.md; acceptable because it only runs once per typo-tolerant
// graph node, not once per document.
func AllWords(b *kv.RoBucket) []string {
	var out []string
	for it := b.PrefixIter(nil); it.Valid(); it.Next() {
		out = append(out, string(it.Key()))
	}
	return out
}
