package invindex

import (
	"github.com/cuemby/ftscore/pkg/kv"
	"github.com/cuemby/ftscore/pkg/types"
)

// Logical databases this layer owns.
const (
	WordDocidsDB              = "word_docids"
	WordDocidPositionsDB      = "docid_word_positions"
	WordPairProximityDB       = "word_pair_proximity_docids"
	WordPrefixPairProximityDB = "word_prefix_pair_proximity_docids"
	FieldWordCountDB          = "field_id_word_count_docids"
	FieldDocidFacetValuesDB   = "field_id_docid_facet_values"
	WordPrefixDocidsDB        = "word_prefix_docids"
)

// Databases lists every logical database this layer owns, for the
// caller that opens the kv.DB alongside the other layers'.
//
// WordPrefixPairProximityDB is declared for schema completeness but is
// never populated by Build: computing prefix-pair proximity would
// require re-running the full pair-proximity pass once per qualifying
// prefix rather than once per word, which is not worth the build-time
// cost this layer targets. See DESIGN.md.
func Databases() []string {
	return []string{
		WordDocidsDB,
		WordDocidPositionsDB,
		WordPairProximityDB,
		WordPrefixPairProximityDB,
		FieldWordCountDB,
		FieldDocidFacetValuesDB,
		WordPrefixDocidsDB,
	}
}

func wordKey(word string) []byte { return []byte(word) }

func wordDocidKey(word string, doc types.DocID) []byte {
	buf := kv.PrefixString(nil, word)
	return kv.PutUint32(buf, doc)
}

func pairProximityKey(a, b string, proximity uint8) []byte {
	buf := kv.PrefixString(nil, a)
	buf = kv.PrefixString(buf, b)
	return append(buf, proximity)
}

func fieldWordCountKey(field types.FieldID, count uint32) []byte {
	buf := kv.PutUint16(nil, field)
	return kv.PutUint32(buf, count)
}

func fieldDocidKey(field types.FieldID, doc types.DocID) []byte {
	buf := kv.PutUint16(nil, field)
	return kv.PutUint32(buf, doc)
}

func prefixKey(prefix string) []byte { return []byte(prefix) }
