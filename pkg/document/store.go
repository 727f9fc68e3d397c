package document

import (
	"fmt"
	"regexp"
	"sort"

	"github.com/cuemby/ftscore/pkg/kv"
	"github.com/cuemby/ftscore/pkg/types"
)

// DB is the logical database documents, the external-id map and the
// internal id counter all live in.
const DB = "documents"

var (
	docPrefix     = []byte("doc/")
	extPrefix     = []byte("ext/")
	intPrefix     = []byte("int/")
	keyNextDocID  = []byte("counter/next_doc_id")
	externalIDPat = regexp.MustCompile(`^[A-Za-z0-9_-]{1,511}$`)
)

// ValidateExternalID reports whether ext matches the primary-key value
// grammar `[A-Za-z0-9_-]{1,511}`.
func ValidateExternalID(ext types.ExternalID) bool {
	return externalIDPat.MatchString(string(ext))
}

func docKey(id types.DocID) []byte {
	return append(append([]byte{}, docPrefix...), kv.PutUint32(nil, id)...)
}

func intKey(id types.DocID) []byte {
	return append(append([]byte{}, intPrefix...), kv.PutUint32(nil, id)...)
}

func extKey(ext types.ExternalID) []byte {
	return kv.PrefixString(append([]byte{}, extPrefix...), string(ext))
}

// PutDocument stores rec under id, overwriting any existing record.
func PutDocument(b *kv.Bucket, id types.DocID, rec *Record) error {
	data, err := rec.MarshalBinary()
	if err != nil {
		return fmt.Errorf("document: marshal %d: %w", id, err)
	}
	if err := b.Put(docKey(id), data); err != nil {
		return fmt.Errorf("document: put %d: %w", id, err)
	}
	return nil
}

// GetDocument returns the record stored for id.
func GetDocument(b *kv.RoBucket, id types.DocID) (*Record, bool, error) {
	data := b.Get(docKey(id))
	if data == nil {
		return nil, false, nil
	}
	rec, err := UnmarshalRecord(data)
	if err != nil {
		return nil, false, err
	}
	return rec, true, nil
}

// DeleteDocument removes the record for id and, if ext is non-empty, its
// external-id mapping in both directions, all within the caller's
// transaction.
func DeleteDocument(b *kv.Bucket, id types.DocID, ext types.ExternalID) error {
	if err := b.Delete(docKey(id)); err != nil {
		return fmt.Errorf("document: delete %d: %w", id, err)
	}
	if ext != "" {
		if err := b.Delete(extKey(ext)); err != nil {
			return fmt.Errorf("document: delete external mapping %q: %w", ext, err)
		}
		if err := b.Delete(intKey(id)); err != nil {
			return fmt.Errorf("document: delete internal mapping %d: %w", id, err)
		}
	}
	return nil
}

// ExternalToInternal resolves ext to its internal document id, if mapped.
func ExternalToInternal(b *kv.RoBucket, ext types.ExternalID) (types.DocID, bool) {
	v := b.Get(extKey(ext))
	if v == nil {
		return 0, false
	}
	return kv.Uint32(v), true
}

// InternalToExternal resolves id to its external document id, if mapped.
func InternalToExternal(b *kv.RoBucket, id types.DocID) (types.ExternalID, bool) {
	v := b.Get(intKey(id))
	if v == nil {
		return "", false
	}
	return types.ExternalID(v), true
}

// PutExternalMapping records the bidirectional ext <-> id mapping,
// overwriting any previous mapping for either side.
func PutExternalMapping(b *kv.Bucket, ext types.ExternalID, id types.DocID) error {
	if err := b.Put(extKey(ext), kv.PutUint32(nil, id)); err != nil {
		return fmt.Errorf("document: put external mapping %q: %w", ext, err)
	}
	if err := b.Put(intKey(id), []byte(ext)); err != nil {
		return fmt.Errorf("document: put internal mapping %d: %w", id, err)
	}
	return nil
}

// NextDocID allocates and persists a fresh, never-reused internal
// document id.
func NextDocID(b *kv.Bucket) (types.DocID, error) {
	var next types.DocID
	if v := b.Get(keyNextDocID); v != nil {
		next = kv.Uint32(v)
	}
	if err := b.Put(keyNextDocID, kv.PutUint32(nil, next+1)); err != nil {
		return 0, fmt.Errorf("document: persist doc id counter: %w", err)
	}
	return next, nil
}

// PeekNextDocID returns the next id that would be allocated, without
// persisting anything. The transform uses this to plan id assignment
// for a whole batch before any of it becomes a persistent side effect;
// the caller that consumes the transform's output is responsible for
// calling SetNextDocID with the final counter value once it applies
// that output.
func PeekNextDocID(b *kv.RoBucket) types.DocID {
	if v := b.Get(keyNextDocID); v != nil {
		return kv.Uint32(v)
	}
	return 0
}

// SetNextDocID persists next as the counter value, advancing it past
// every id a prior PeekNextDocID-based plan allocated.
func SetNextDocID(b *kv.Bucket, next types.DocID) error {
	if err := b.Put(keyNextDocID, kv.PutUint32(nil, next)); err != nil {
		return fmt.Errorf("document: persist doc id counter: %w", err)
	}
	return nil
}

// Count returns the number of documents currently stored.
func Count(b *kv.RoBucket) int {
	n := 0
	for it := b.PrefixIter(docPrefix); it.Valid(); it.Next() {
		n++
	}
	return n
}

// AllDocIDs returns the internal id of every currently stored document,
// ascending. The evaluator uses this as its NOT universe: the full
// candidate set a negated filter subtracts matches from.
func AllDocIDs(b *kv.RoBucket) []types.DocID {
	var out []types.DocID
	for it := b.PrefixIter(docPrefix); it.Valid(); it.Next() {
		out = append(out, kv.Uint32(it.Key()[len(docPrefix):]))
	}
	return out
}

// PrefixSearchExternalIDs returns every external id with the given
// prefix, in ascending order, the ordered prefix-searchable map required
// by §3.
func PrefixSearchExternalIDs(b *kv.RoBucket, prefix string) []types.ExternalID {
	var out []types.ExternalID
	// extKey encodes a u16 length prefix ahead of the bytes, so a byte-prefix
	// scan over "extPrefix + prefix" only matches keys of exactly len(prefix)
	// bytes; scan all external keys and filter instead.
	for it := b.PrefixIter(extPrefix); it.Valid(); it.Next() {
		ext := decodeExtKey(it.Key())
		if len(ext) >= len(prefix) && string(ext[:len(prefix)]) == prefix {
			out = append(out, ext)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func decodeExtKey(k []byte) types.ExternalID {
	rest := k[len(extPrefix):]
	if len(rest) < 2 {
		return ""
	}
	n := kv.Uint16(rest[:2])
	if int(n) > len(rest)-2 {
		return ""
	}
	return types.ExternalID(rest[2 : 2+int(n)])
}
