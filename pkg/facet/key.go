package facet

import (
	"math"

	"github.com/cuemby/ftscore/pkg/kv"
	"github.com/cuemby/ftscore/pkg/types"
)

// StringDB and NumberDB are the logical databases holding every level of
// the facet tree for, respectively, string-kind and number-kind fields.
const (
	StringDB = "facet_id_string_docids"
	NumberDB = "facet_id_f64_docids"
)

// dbFor returns the logical database name for a facet kind.
func dbFor(kind types.FacetKind) string {
	if kind == types.FacetNumber {
		return NumberDB
	}
	return StringDB
}

// valueBytes renders a facet value into the byte form used as the tail of
// a node key. String values are their raw normalized bytes, so
// lexicographic key order matches string order directly. Number values use
// a sign/exponent-flipped big-endian encoding so that lexicographic byte
// order matches IEEE-754 numeric order including negatives.
func valueBytes(v types.FacetValue) []byte {
	if v.Kind == types.FacetString {
		return []byte(v.Str)
	}
	return kv.PutUint64(nil, orderedFloatBits(v.Number))
}

// orderedFloatBits maps a float64's bit pattern so that unsigned integer
// (and therefore big-endian byte) order matches float order: for
// non-negative floats it flips the sign bit; for negative floats it
// inverts every bit.
func orderedFloatBits(f float64) uint64 {
	bits := math.Float64bits(f)
	if bits&(1<<63) != 0 {
		return ^bits
	}
	return bits | (1 << 63)
}

// key builds a node key: field_id:u16_be || level:u8 || value_bytes.
func key(field types.FieldID, level uint8, v types.FacetValue) []byte {
	buf := kv.PutUint16(nil, field)
	buf = append(buf, level)
	return append(buf, valueBytes(v)...)
}

// levelPrefix builds the key prefix shared by every node at one
// (field, level), used to scan a level in value order.
func levelPrefix(field types.FieldID, level uint8) []byte {
	buf := kv.PutUint16(nil, field)
	return append(buf, level)
}

// decodeStringValue recovers the string value from a node key's tail,
// given the fixed 3-byte field/level prefix.
func decodeStringValue(k []byte) types.FacetValue {
	return types.NewStringFacetValue(string(k[3:]))
}

// decodeNumberValue recovers the number value from a node key's tail.
func decodeNumberValue(k []byte) types.FacetValue {
	bits := kv.Uint64(k[3:11])
	if bits&(1<<63) != 0 {
		bits &^= 1 << 63
	} else {
		bits = ^bits
	}
	return types.NewNumberFacetValue(math.Float64frombits(bits))
}

func decodeValue(kind types.FacetKind, k []byte) types.FacetValue {
	if kind == types.FacetNumber {
		return decodeNumberValue(k)
	}
	return decodeStringValue(k)
}
