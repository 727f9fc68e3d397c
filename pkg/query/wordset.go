package query

import (
	"github.com/cuemby/ftscore/pkg/invindex"
	"github.com/cuemby/ftscore/pkg/kv"
)

// WordSet answers whether a normalized surface form occurs anywhere in
// the index, the membership test the concatenation and split passes
// need (§4.9 steps 3-4).
type WordSet interface {
	Contains(word string) bool
}

// kvWordSet answers WordSet directly against the live word_docids
// database, avoiding a second in-memory copy of the vocabulary.
type kvWordSet struct {
	b *kv.RoBucket
}

// NewWordSet adapts the inverted index's word postings database into a
// WordSet, for a caller that already holds a read transaction.
func NewWordSet(txn *kv.RoTxn) WordSet {
	return kvWordSet{b: txn.Bucket(invindex.WordDocidsDB)}
}

func (s kvWordSet) Contains(word string) bool {
	return s.b.Get([]byte(word)) != nil
}
