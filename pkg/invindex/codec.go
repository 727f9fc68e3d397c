package invindex

import (
	"fmt"
	"math"

	"github.com/cuemby/ftscore/pkg/kv"
	"github.com/cuemby/ftscore/pkg/posting"
	"github.com/cuemby/ftscore/pkg/types"
)

// combineFunc merges two values staged for the same key, the per-structure
// combine the spec names for the merge pass (§4.6).
type combineFunc func(a, b []byte) ([]byte, error)

func unionPostings(a, b []byte) ([]byte, error) {
	pa, err := posting.UnmarshalBinary(a)
	if err != nil {
		return nil, fmt.Errorf("invindex: decode posting: %w", err)
	}
	pb, err := posting.UnmarshalBinary(b)
	if err != nil {
		return nil, fmt.Errorf("invindex: decode posting: %w", err)
	}
	pa.UnionInPlace(pb)
	return pa.MarshalBinary()
}

func encodePositions(positions []types.Position) []byte {
	buf := kv.PutUint32(nil, uint32(len(positions)))
	for _, p := range positions {
		buf = kv.PutUint32(buf, uint32(p))
	}
	return buf
}

func decodePositions(data []byte) ([]types.Position, error) {
	if len(data) < 4 {
		return nil, fmt.Errorf("invindex: truncated position list: %w", types.ErrMalformedInput)
	}
	n := kv.Uint32(data[:4])
	data = data[4:]
	if uint32(len(data)) < n*4 {
		return nil, fmt.Errorf("invindex: truncated position list: %w", types.ErrMalformedInput)
	}
	out := make([]types.Position, n)
	for i := range out {
		out[i] = types.Position(kv.Uint32(data[i*4 : i*4+4]))
	}
	return out, nil
}

// appendPositions concatenates two position lists without deduplication;
// dedup happens at query time (§4.6).
func appendPositions(a, b []byte) ([]byte, error) {
	pa, err := decodePositions(a)
	if err != nil {
		return nil, err
	}
	pb, err := decodePositions(b)
	if err != nil {
		return nil, err
	}
	return encodePositions(append(pa, pb...)), nil
}

func encodeFacetValues(vs []types.FacetValue) []byte {
	buf := kv.PutUint32(nil, uint32(len(vs)))
	for _, v := range vs {
		if v.Kind == types.FacetNumber {
			buf = append(buf, byte(types.FacetNumber))
			buf = kv.PutUint64(buf, orderedFloatBits(v.Number))
			continue
		}
		buf = append(buf, byte(types.FacetString))
		buf = kv.PrefixString(buf, v.Str)
	}
	return buf
}

func decodeFacetValues(data []byte) ([]types.FacetValue, error) {
	if len(data) < 4 {
		return nil, fmt.Errorf("invindex: truncated facet value set: %w", types.ErrMalformedInput)
	}
	n := kv.Uint32(data[:4])
	data = data[4:]
	out := make([]types.FacetValue, 0, n)
	for i := uint32(0); i < n; i++ {
		if len(data) < 1 {
			return nil, fmt.Errorf("invindex: truncated facet value set: %w", types.ErrMalformedInput)
		}
		kind := types.FacetKind(data[0])
		data = data[1:]
		if kind == types.FacetNumber {
			if len(data) < 8 {
				return nil, fmt.Errorf("invindex: truncated facet value set: %w", types.ErrMalformedInput)
			}
			bits := kv.Uint64(data[:8])
			data = data[8:]
			if bits&(1<<63) != 0 {
				bits &^= 1 << 63
			} else {
				bits = ^bits
			}
			out = append(out, types.NewNumberFacetValue(math.Float64frombits(bits)))
			continue
		}
		if len(data) < 2 {
			return nil, fmt.Errorf("invindex: truncated facet value set: %w", types.ErrMalformedInput)
		}
		ln := kv.Uint16(data[:2])
		data = data[2:]
		if uint16(len(data)) < ln {
			return nil, fmt.Errorf("invindex: truncated facet value set: %w", types.ErrMalformedInput)
		}
		out = append(out, types.NewStringFacetValue(string(data[:ln])))
		data = data[ln:]
	}
	return out, nil
}

// appendFacetValues unions two documents' facet value sets; duplicates
// across a merge are harmless since distinct lookups only test membership.
func appendFacetValues(a, b []byte) ([]byte, error) {
	va, err := decodeFacetValues(a)
	if err != nil {
		return nil, err
	}
	vb, err := decodeFacetValues(b)
	if err != nil {
		return nil, err
	}
	return encodeFacetValues(append(va, vb...)), nil
}
