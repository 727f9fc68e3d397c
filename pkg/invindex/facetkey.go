package invindex

import (
	"math"

	"github.com/cuemby/ftscore/pkg/kv"
	"github.com/cuemby/ftscore/pkg/types"
)

// facetEntryKey builds the (field, value) key used by the facet-entry run
// files this layer merges before handing the result to facet.Insert. It
// uses the same sign-flipped float encoding and raw string bytes
// pkg/facet's own node keys use (key.go in that package), so a
// value's byte order matches its logical order; kept as a small, separate
// copy here since the field's facet kind is resolved by the caller from
// FieldInfo.Facets rather than stored in the key itself.
func facetEntryKey(field types.FieldID, v types.FacetValue) []byte {
	buf := kv.PutUint16(nil, field)
	if v.Kind == types.FacetString {
		return append(buf, []byte(v.Str)...)
	}
	return kv.PutUint64(buf, orderedFloatBits(v.Number))
}

func orderedFloatBits(f float64) uint64 {
	bits := math.Float64bits(f)
	if bits&(1<<63) != 0 {
		return ^bits
	}
	return bits | (1 << 63)
}

// decodeFacetEntryKey recovers the (field, value) pair from a key built by
// facetEntryKey, given the field's facet kind.
func decodeFacetEntryKey(kind types.FacetKind, k []byte) (types.FieldID, types.FacetValue) {
	field := kv.Uint16(k[:2])
	rest := k[2:]
	if kind == types.FacetNumber {
		bits := kv.Uint64(rest[:8])
		if bits&(1<<63) != 0 {
			bits &^= 1 << 63
		} else {
			bits = ^bits
		}
		return field, types.NewNumberFacetValue(math.Float64frombits(bits))
	}
	return field, types.NewStringFacetValue(string(rest))
}
