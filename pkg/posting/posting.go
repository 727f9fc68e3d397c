// Package posting implements the Posting primitive: a compressed bitmap of
// internal document ids with union, intersection, difference and
// cardinality all guaranteed to be at worst linear in input size. It is a
// thin, domain-typed wrapper around a Roaring bitmap so the rest of the
// engine never imports the bitmap library directly.
package posting

import (
	"bytes"

	"github.com/RoaringBitmap/roaring"
)

// Posting is a set of internal document ids.
type Posting struct {
	bm *roaring.Bitmap
}

// New returns an empty posting.
func New() *Posting {
	return &Posting{bm: roaring.New()}
}

// Of builds a posting containing exactly the given ids.
func Of(ids ...uint32) *Posting {
	p := New()
	p.bm.AddMany(ids)
	return p
}

// Add inserts id into the posting.
func (p *Posting) Add(id uint32) { p.bm.Add(id) }

// AddMany inserts every id in ids into the posting.
func (p *Posting) AddMany(ids []uint32) { p.bm.AddMany(ids) }

// Remove deletes id from the posting, if present.
func (p *Posting) Remove(id uint32) { p.bm.Remove(id) }

// Contains reports whether id is a member.
func (p *Posting) Contains(id uint32) bool { return p.bm.Contains(id) }

// Cardinality returns the number of members.
func (p *Posting) Cardinality() uint64 { return p.bm.GetCardinality() }

// IsEmpty reports whether the posting has no members.
func (p *Posting) IsEmpty() bool { return p.bm.IsEmpty() }

// Clone returns an independent copy.
func (p *Posting) Clone() *Posting { return &Posting{bm: p.bm.Clone()} }

// ToArray returns the members in ascending order.
func (p *Posting) ToArray() []uint32 { return p.bm.ToArray() }

// Iterator returns an ascending iterator over the members.
func (p *Posting) Iterator() roaring.IntIterable { return p.bm.Iterator() }

// Union returns the union of postings, without modifying any of them.
func Union(ps ...*Posting) *Posting {
	bms := make([]*roaring.Bitmap, len(ps))
	for i, p := range ps {
		bms[i] = p.bm
	}
	return &Posting{bm: roaring.FastOr(bms...)}
}

// Intersect returns a ∩ b, without modifying either.
func Intersect(a, b *Posting) *Posting {
	return &Posting{bm: roaring.And(a.bm, b.bm)}
}

// Difference returns a \ b (members of a not present in b), without
// modifying either.
func Difference(a, b *Posting) *Posting {
	return &Posting{bm: roaring.AndNot(a.bm, b.bm)}
}

// UnionInPlace merges other's members into p.
func (p *Posting) UnionInPlace(other *Posting) {
	p.bm.Or(other.bm)
}

// SubtractInPlace removes other's members from p.
func (p *Posting) SubtractInPlace(other *Posting) {
	p.bm.AndNot(other.bm)
}

// MarshalBinary serializes the posting to its Roaring on-disk format, the
// form stored verbatim as KV values.
func (p *Posting) MarshalBinary() ([]byte, error) {
	return p.bm.ToBytes()
}

// UnmarshalBinary decodes a posting previously produced by MarshalBinary.
func UnmarshalBinary(data []byte) (*Posting, error) {
	bm := roaring.New()
	if len(data) == 0 {
		return &Posting{bm: bm}, nil
	}
	if _, err := bm.ReadFrom(bytes.NewReader(data)); err != nil {
		return nil, err
	}
	return &Posting{bm: bm}, nil
}
