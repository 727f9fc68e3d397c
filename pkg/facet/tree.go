package facet

import (
	"fmt"
	"sort"

	"github.com/cuemby/ftscore/pkg/kv"
	"github.com/cuemby/ftscore/pkg/posting"
	"github.com/cuemby/ftscore/pkg/types"
)

// Params bounds the facet tree's shape, read once per write transaction
// and held fixed for its duration (§5).
type Params struct {
	GroupSize    int // node count a new level groups children into
	MaxGroupSize int // an insert-time hint for how large a group may grow
	MinLevelSize int // a level with fewer nodes than this does not exist
}

// DefaultParams matches the bounds milli itself uses for its facet levels.
var DefaultParams = Params{GroupSize: 4, MaxGroupSize: 8, MinLevelSize: 4}

// node is one facet-tree entry as stored on disk: size is the number of
// level-(L-1) children it summarizes (always 1 at level 0), posting is the
// union of every document id reachable under it.
type node struct {
	size    uint32
	posting *posting.Posting
}

func encodeNode(n node) []byte {
	buf := kv.PutUint32(nil, n.size)
	pb, err := n.posting.MarshalBinary()
	if err != nil {
		panic(fmt.Sprintf("facet: marshal posting: %v", err))
	}
	return append(buf, pb...)
}

func decodeNode(data []byte) (node, error) {
	if len(data) < 4 {
		return node{}, fmt.Errorf("facet: truncated node: %w", types.ErrMalformedInput)
	}
	size := kv.Uint32(data[:4])
	p, err := posting.UnmarshalBinary(data[4:])
	if err != nil {
		return node{}, fmt.Errorf("facet: decode node posting: %w", err)
	}
	return node{size: size, posting: p}, nil
}

// reader is the read surface shared by kv.Bucket and kv.RoBucket, letting
// the tree-walking helpers below run unchanged under a write or a
// read-only transaction.
type reader interface {
	Get(key []byte) []byte
	PrefixIter(prefix []byte) *kv.Iterator
}

func getNode(b reader, field types.FieldID, level uint8, v types.FacetValue) (node, bool, error) {
	raw := b.Get(key(field, level, v))
	if raw == nil {
		return node{}, false, nil
	}
	n, err := decodeNode(raw)
	return n, true, err
}

func putNode(b *kv.Bucket, field types.FieldID, level uint8, v types.FacetValue, n node) error {
	return b.Put(key(field, level, v), encodeNode(n))
}

func deleteNode(b *kv.Bucket, field types.FieldID, level uint8, v types.FacetValue) error {
	return b.Delete(key(field, level, v))
}

// entryAt describes one node read off a level scan, used by rebuilds.
type entryAt struct {
	value types.FacetValue
	n     node
}

func scanLevel(b reader, kind types.FacetKind, field types.FieldID, level uint8) []entryAt {
	var out []entryAt
	it := b.PrefixIter(levelPrefix(field, level))
	for it.Valid() {
		n, err := decodeNode(it.Value())
		if err == nil {
			out = append(out, entryAt{value: decodeValue(kind, it.Key()), n: n})
		}
		it.Next()
	}
	return out
}

func collectPostings(group []entryAt) []*posting.Posting {
	out := make([]*posting.Posting, len(group))
	for i, e := range group {
		out[i] = e.n.posting
	}
	return out
}

// LevelZeroUnion returns the union of every level-0 posting for
// (field, kind): the invariant checked by §8, that it equals every
// document id holding a value of that field/kind.
func LevelZeroUnion(b *kv.RoBucket, kind types.FacetKind, field types.FieldID) *posting.Posting {
	return posting.Union(collectPostings(scanLevel(b, kind, field, 0))...)
}

// Distribution returns every distinct value stored at level 0 for
// (field, kind), ascending, each paired with its document count, capped
// at maxValues entries (§11's max_values_per_facet protecting memory on
// high-cardinality fields). maxValues <= 0 means unlimited.
func Distribution(b *kv.RoBucket, kind types.FacetKind, field types.FieldID, maxValues int) []ValueCount {
	entries := scanLevel(b, kind, field, 0)
	sort.Slice(entries, func(i, j int) bool { return entries[i].value.Less(entries[j].value) })
	if maxValues > 0 && len(entries) > maxValues {
		entries = entries[:maxValues]
	}
	out := make([]ValueCount, len(entries))
	for i, e := range entries {
		out[i] = ValueCount{Value: e.value, Count: e.n.posting.Cardinality()}
	}
	return out
}

// ValueCount is one entry of a facet distribution: a distinct value and
// the number of documents carrying it.
type ValueCount struct {
	Value types.FacetValue
	Count uint64
}

// MatchingUnion returns the union of every level-0 posting for
// (field, kind) whose value satisfies pred, the direct level-0 scan the
// filter evaluator's comparison and range atoms resolve against. A real
// deployment would walk higher tree levels to prune non-matching
// subtrees before touching level 0; this always touches every distinct
// value once, favoring the simpler, obviously-correct implementation
// over the pruning walk at the dataset sizes this engine targets (see
// DESIGN.md).
func MatchingUnion(b *kv.RoBucket, kind types.FacetKind, field types.FieldID, pred func(types.FacetValue) bool) *posting.Posting {
	var matched []*posting.Posting
	for _, e := range scanLevel(b, kind, field, 0) {
		if pred(e.value) {
			matched = append(matched, e.n.posting)
		}
	}
	return posting.Union(matched...)
}

// KindOf reports which facet domain field was actually populated into,
// by probing for any level-0 entry in each database. A field with no
// entries in either (never indexed, or indexed but empty) reports false;
// the caller (the filter evaluator) then has no postings to resolve
// against regardless of which kind it assumes.
func KindOf(txn interface {
	Bucket(name string) *kv.RoBucket
}, field types.FieldID) (types.FacetKind, bool) {
	if it := txn.Bucket(StringDB).PrefixIter(levelPrefix(field, 0)); it.Valid() {
		return types.FacetString, true
	}
	if it := txn.Bucket(NumberDB).PrefixIter(levelPrefix(field, 0)); it.Valid() {
		return types.FacetNumber, true
	}
	return types.FacetString, false
}

// Insert unions docids into the facet tree for (field, value): upserts the
// level-0 entry, then rebuilds every level above it from scratch so every
// §3 invariant holds without tracking incremental node-boundary surgery.
func Insert(txn *kv.Txn, field types.FieldID, v types.FacetValue, docids *posting.Posting, p Params) error {
	kind := v.Kind
	b := txn.Bucket(dbFor(kind))

	existing, ok, err := getNode(b, field, 0, v)
	if err != nil {
		return err
	}
	if ok {
		existing.posting.UnionInPlace(docids)
	} else {
		existing = node{size: 1, posting: docids.Clone()}
	}
	if err := putNode(b, field, 0, v, existing); err != nil {
		return err
	}

	return rebuildHigherLevels(b, kind, field, p)
}

// Delete subtracts docids from the facet tree for (field, value), removing
// the level-0 entry once its posting empties, then rebuilds higher levels.
func Delete(txn *kv.Txn, field types.FieldID, v types.FacetValue, docids *posting.Posting, p Params) error {
	kind := v.Kind
	b := txn.Bucket(dbFor(kind))

	n, ok, err := getNode(b, field, 0, v)
	if err != nil || !ok {
		return err
	}
	n.posting.SubtractInPlace(docids)
	if n.posting.IsEmpty() {
		if err := deleteNode(b, field, 0, v); err != nil {
			return err
		}
	} else if err := putNode(b, field, 0, v, n); err != nil {
		return err
	}

	return rebuildHigherLevels(b, kind, field, p)
}

// rebuildHigherLevels reconstructs every level ≥ 1 for field from level 0
// upward: each level is cleared and, when its children now number at
// least GroupSize*MinLevelSize, rebuilt by chunking them into groups of
// GroupSize consecutive entries — see DESIGN.md for why this whole-level
// rebuild replaces the spec's node-boundary split/merge pointer surgery
// at this scale. A level with too few children to qualify is simply left
// absent, which also collapses every level above it.
func rebuildHigherLevels(b *kv.Bucket, kind types.FacetKind, field types.FieldID, p Params) error {
	top := findTopLevel(b, kind, field)
	for lvl := uint8(1); lvl <= top; lvl++ {
		for _, e := range scanLevel(b, kind, field, lvl) {
			if err := deleteNode(b, field, lvl, e.value); err != nil {
				return err
			}
		}
	}

	level := uint8(1)
	for {
		children := scanLevel(b, kind, field, level-1)
		if len(children) < p.GroupSize*p.MinLevelSize {
			return nil
		}
		for _, group := range chunkChildren(children, p.GroupSize) {
			n := node{size: uint32(len(group)), posting: posting.Union(collectPostings(group)...)}
			if err := putNode(b, field, level, group[0].value, n); err != nil {
				return err
			}
		}
		level++
		if level > 250 {
			return fmt.Errorf("facet: level depth exceeded")
		}
	}
}

// chunkChildren splits children into groups of groupSize consecutive
// entries. A trailing group smaller than groupSize/2 violates §3
// invariant (iii)'s lower bound on a node's size, so instead of being
// left on its own it is folded into the group before it.
func chunkChildren(children []entryAt, groupSize int) [][]entryAt {
	var groups [][]entryAt
	for i := 0; i < len(children); i += groupSize {
		end := i + groupSize
		if end > len(children) {
			end = len(children)
		}
		groups = append(groups, children[i:end])
	}
	floor := groupSize / 2
	if floor < 1 {
		floor = 1
	}
	if n := len(groups); n > 1 && len(groups[n-1]) < floor {
		merged := append(append([]entryAt(nil), groups[n-2]...), groups[n-1]...)
		groups[n-2] = merged
		groups = groups[:n-1]
	}
	return groups
}

func findTopLevel(b *kv.Bucket, kind types.FacetKind, field types.FieldID) uint8 {
	top := uint8(0)
	for lvl := uint8(1); lvl < 250; lvl++ {
		if len(scanLevel(b, kind, field, lvl)) == 0 {
			break
		}
		top = lvl
	}
	return top
}
