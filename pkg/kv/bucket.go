package kv

import (
	"bytes"

	bolt "go.etcd.io/bbolt"
)

// RoBucket is the read-only view over one logical database.
type RoBucket struct {
	b *bolt.Bucket
}

// Get returns the value for key, or nil if it is absent. The returned
// slice is only valid for the lifetime of the enclosing transaction;
// callers that retain it past the transaction must copy it.
func (b *RoBucket) Get(key []byte) []byte {
	return b.b.Get(key)
}

// Empty reports whether the database currently holds no keys, the signal
// the inverted-index merger uses to pick append-only bulk load over
// get-merge-put.
func (b *RoBucket) Empty() bool {
	k, _ := b.b.Cursor().First()
	return k == nil
}

// Count reports the number of keys currently stored.
func (b *RoBucket) Count() int {
	return b.b.Stats().KeyN
}

// ForEach visits every key/value pair in ascending key order.
func (b *RoBucket) ForEach(fn func(k, v []byte) error) error {
	return b.b.ForEach(fn)
}

// PrefixIter returns an iterator over every key sharing prefix, in
// ascending order.
func (b *RoBucket) PrefixIter(prefix []byte) *Iterator {
	c := b.b.Cursor()
	k, v := c.Seek(prefix)
	return &Iterator{c: c, prefix: append([]byte(nil), prefix...), k: k, v: v}
}

// RangeIter returns an iterator over [start, end) in ascending key order.
// A nil end means "to the end of the database".
func (b *RoBucket) RangeIter(start, end []byte) *Iterator {
	c := b.b.Cursor()
	k, v := c.Seek(start)
	return &Iterator{c: c, end: end, k: k, v: v}
}

// GetLowerThan returns the last key strictly less than key, along with its
// value, and whether such an entry exists.
func (b *RoBucket) GetLowerThan(key []byte) (k, v []byte, ok bool) {
	c := b.b.Cursor()
	ck, cv := c.Seek(key)
	if ck == nil {
		// key is past the end; the last entry in the bucket qualifies.
		ck, cv = c.Last()
	} else if bytes.Equal(ck, key) {
		ck, cv = c.Prev()
	} else {
		ck, cv = c.Prev()
	}
	if ck == nil {
		return nil, nil, false
	}
	return ck, cv, true
}

// GetGreaterThan returns the first key strictly greater than key, along
// with its value, and whether such an entry exists.
func (b *RoBucket) GetGreaterThan(key []byte) (k, v []byte, ok bool) {
	c := b.b.Cursor()
	ck, cv := c.Seek(key)
	if ck != nil && bytes.Equal(ck, key) {
		ck, cv = c.Next()
	}
	if ck == nil {
		return nil, nil, false
	}
	return ck, cv, true
}

// GetLowerThanOrEqual returns the last key less than or equal to key, along
// with its value, and whether such an entry exists.
func (b *RoBucket) GetLowerThanOrEqual(key []byte) (k, v []byte, ok bool) {
	c := b.b.Cursor()
	ck, cv := c.Seek(key)
	if ck != nil && bytes.Equal(ck, key) {
		return ck, cv, true
	}
	return b.GetLowerThan(key)
}

// Bucket is the read-write view over one logical database.
type Bucket struct {
	b *bolt.Bucket
}

// Get, Empty, Count, ForEach, PrefixIter, RangeIter, GetLowerThan and
// GetGreaterThan all read through the same cursor semantics as RoBucket.
func (b *Bucket) Get(key []byte) []byte { return (&RoBucket{b.b}).Get(key) }
func (b *Bucket) Empty() bool           { return (&RoBucket{b.b}).Empty() }
func (b *Bucket) Count() int            { return (&RoBucket{b.b}).Count() }
func (b *Bucket) ForEach(fn func(k, v []byte) error) error {
	return (&RoBucket{b.b}).ForEach(fn)
}
func (b *Bucket) PrefixIter(prefix []byte) *Iterator { return (&RoBucket{b.b}).PrefixIter(prefix) }
func (b *Bucket) RangeIter(start, end []byte) *Iterator {
	return (&RoBucket{b.b}).RangeIter(start, end)
}
func (b *Bucket) GetLowerThan(key []byte) ([]byte, []byte, bool) {
	return (&RoBucket{b.b}).GetLowerThan(key)
}
func (b *Bucket) GetGreaterThan(key []byte) ([]byte, []byte, bool) {
	return (&RoBucket{b.b}).GetGreaterThan(key)
}
func (b *Bucket) GetLowerThanOrEqual(key []byte) ([]byte, []byte, bool) {
	return (&RoBucket{b.b}).GetLowerThanOrEqual(key)
}

// Put inserts or overwrites key with value.
func (b *Bucket) Put(key, value []byte) error {
	return b.b.Put(key, value)
}

// Delete removes key. Deleting an absent key is not an error.
func (b *Bucket) Delete(key []byte) error {
	return b.b.Delete(key)
}

// SetFillPercent tunes the page fill factor used by subsequent Puts; the
// inverted-index bulk loader sets this to 1.0 when it knows it is
// appending strictly-ascending keys into an empty database, trading
// future random-insert headroom for page density.
func (b *Bucket) SetFillPercent(pct float64) {
	b.b.FillPercent = pct
}

// AsRo returns a read-only view over the same underlying database,
// letting a write-transaction caller reuse helpers written against
// RoBucket without a second lookup.
func (b *Bucket) AsRo() *RoBucket { return &RoBucket{b: b.b} }

// Clear removes every key in the database, the starting point a settings
// reindex uses before rebuilding a search structure from scratch.
func (b *Bucket) Clear() error {
	c := b.b.Cursor()
	for k, _ := c.First(); k != nil; k, _ = c.Next() {
		if err := c.Delete(); err != nil {
			return err
		}
	}
	return nil
}

// Iterator walks a bucket in ascending key order within an optional bound.
type Iterator struct {
	c      *bolt.Cursor
	prefix []byte
	end    []byte
	k, v   []byte
}

// Valid reports whether the iterator currently points at an in-range entry.
func (it *Iterator) Valid() bool {
	if it.k == nil {
		return false
	}
	if it.prefix != nil && !bytes.HasPrefix(it.k, it.prefix) {
		return false
	}
	if it.end != nil && bytes.Compare(it.k, it.end) >= 0 {
		return false
	}
	return true
}

// Key returns the current key. Only valid when Valid() is true.
func (it *Iterator) Key() []byte { return it.k }

// Value returns the current value. Only valid when Valid() is true.
func (it *Iterator) Value() []byte { return it.v }

// Next advances the iterator and reports whether it landed on an in-range
// entry.
func (it *Iterator) Next() bool {
	it.k, it.v = it.c.Next()
	return it.Valid()
}
