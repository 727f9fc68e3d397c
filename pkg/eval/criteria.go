package eval

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cuemby/ftscore/pkg/facet"
	"github.com/cuemby/ftscore/pkg/kv"
	"github.com/cuemby/ftscore/pkg/schema"
	"github.com/cuemby/ftscore/pkg/settings"
	"github.com/cuemby/ftscore/pkg/types"
)

// criterion partitions a candidate set into best-first buckets for one
// ranking dimension. Exactly one of numKey/facetOf is set.
type criterion struct {
	name      string
	ascending bool // true: the lower/earlier bucket is better
	numKey    func(id types.DocID) float64
	facetOf   func(id types.DocID) (types.FacetValue, bool)
}

// buildCriteria resolves the configured criterion order (typo, words,
// proximity, attribute, exactness, asc(field)/desc(field)) into
// evaluable criterion values, reading per-document aggregates out of
// stats and, for user sort criteria, the live facet tree.
func buildCriteria(names []string, st map[types.DocID]*stats, proximityB *kv.RoBucket, txn *kv.RoTxn, sch *schema.Schema, s settings.Settings) ([]criterion, error) {
	var out []criterion
	for _, name := range names {
		switch name {
		case "typo":
			out = append(out, criterion{name: name, ascending: true, numKey: func(id types.DocID) float64 {
				if v, ok := st[id]; ok {
					return float64(v.typoSum)
				}
				return 0
			}})
		case "words":
			out = append(out, criterion{name: name, ascending: false, numKey: func(id types.DocID) float64 {
				if v, ok := st[id]; ok {
					// exactFieldMatches only breaks ties within a words() bucket —
					// field_id_word_count_docids credits a field matched in full,
					// never enough to outweigh one additional matched token.
					return float64(v.words()) + float64(v.exactFieldMatches)/1e6
				}
				return 0
			}})
		case "proximity":
			out = append(out, criterion{name: name, ascending: true, numKey: func(id types.DocID) float64 {
				if v, ok := st[id]; ok {
					return float64(proximitySum(proximityB, id, v))
				}
				return 0
			}})
		case "attribute":
			out = append(out, criterion{name: name, ascending: true, numKey: func(id types.DocID) float64 {
				if v, ok := st[id]; ok && v.hasAttribute {
					return float64(v.attributeMin)
				}
				return float64(^uint16(0))
			}})
		case "exactness":
			out = append(out, criterion{name: name, ascending: false, numKey: func(id types.DocID) float64 {
				if v, ok := st[id]; ok {
					return float64(v.exactCount)
				}
				return 0
			}})
		default:
			c, err := userSortCriterion(name, txn, sch, s)
			if err != nil {
				return nil, err
			}
			out = append(out, c)
		}
	}
	return out, nil
}

func userSortCriterion(name string, txn *kv.RoTxn, sch *schema.Schema, s settings.Settings) (criterion, error) {
	var field string
	var ascending bool
	switch {
	case strings.HasPrefix(name, "asc(") && strings.HasSuffix(name, ")"):
		field, ascending = name[4:len(name)-1], true
	case strings.HasPrefix(name, "desc(") && strings.HasSuffix(name, ")"):
		field, ascending = name[5:len(name)-1], false
	default:
		return criterion{}, fmt.Errorf("unrecognized criterion %q: %w", name, types.ErrInvalidSort)
	}
	if !isSortable(field, s.SortableFields) {
		return criterion{}, fmt.Errorf("field %q is not sortable: %w", field, types.ErrSortFieldNotSortable)
	}
	fieldID, ok := sch.IDOf(field)
	if !ok {
		return criterion{}, fmt.Errorf("field %q is not sortable: %w", field, types.ErrSortFieldNotSortable)
	}
	kind, _ := facet.KindOf(txn, fieldID)
	b := txn.Bucket(facetDBFor(kind))

	return criterion{
		name:      name,
		ascending: ascending,
		facetOf: func(id types.DocID) (types.FacetValue, bool) {
			return docFacetValue(b, kind, fieldID, id)
		},
	}, nil
}

func isSortable(field string, sortable []string) bool {
	for _, f := range sortable {
		if f == field {
			return true
		}
	}
	return false
}

// docFacetValue finds the facet value id carries for (field, kind) by
// scanning level 0, returning the first (smallest) value whose posting
// contains id. Values are few and level 0 is already an in-memory scan
// elsewhere in this package (facet.Distribution), so this pays the same
// cost rather than introducing a second index structure.
func docFacetValue(b *kv.RoBucket, kind types.FacetKind, field types.FieldID, id types.DocID) (types.FacetValue, bool) {
	var found types.FacetValue
	ok := false
	for _, vc := range facet.Distribution(b, kind, field, 0) {
		if facet.MatchingUnion(b, kind, field, func(v types.FacetValue) bool { return v.Equal(vc.Value) }).Contains(id) {
			found, ok = vc.Value, true
			break
		}
	}
	return found, ok
}

// partition groups ids into best-first buckets for c, preserving no
// particular order within a bucket (the caller sorts leaves ascending by
// doc id once recursion bottoms out).
func partition(ids []types.DocID, c criterion) [][]types.DocID {
	if c.numKey != nil {
		return partitionNumeric(ids, c)
	}
	return partitionFacet(ids, c)
}

func partitionNumeric(ids []types.DocID, c criterion) [][]types.DocID {
	groups := map[float64][]types.DocID{}
	for _, id := range ids {
		k := c.numKey(id)
		groups[k] = append(groups[k], id)
	}
	keys := make([]float64, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Float64s(keys)
	if !c.ascending {
		for i, j := 0, len(keys)-1; i < j; i, j = i+1, j-1 {
			keys[i], keys[j] = keys[j], keys[i]
		}
	}
	out := make([][]types.DocID, 0, len(keys))
	for _, k := range keys {
		out = append(out, groups[k])
	}
	return out
}

func partitionFacet(ids []types.DocID, c criterion) [][]types.DocID {
	type entry struct {
		v  types.FacetValue
		ok bool
	}
	groups := map[string][]types.DocID{}
	values := map[string]entry{}
	for _, id := range ids {
		v, ok := c.facetOf(id)
		key := "\x00missing"
		if ok {
			key = v.String() + "\x01" + v.Kind.String()
		}
		groups[key] = append(groups[key], id)
		values[key] = entry{v: v, ok: ok}
	}
	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		vi, vj := values[keys[i]], values[keys[j]]
		if !vi.ok || !vj.ok {
			return vi.ok && !vj.ok
		}
		if c.ascending {
			return vi.v.Less(vj.v)
		}
		return vj.v.Less(vi.v)
	})
	out := make([][]types.DocID, 0, len(keys))
	for _, k := range keys {
		out = append(out, groups[k])
	}
	return out
}
