package engine

import (
	"github.com/cuemby/ftscore/pkg/document"
	"github.com/cuemby/ftscore/pkg/facet"
	"github.com/cuemby/ftscore/pkg/kv"
	"github.com/cuemby/ftscore/pkg/schema"
	"github.com/cuemby/ftscore/pkg/settings"
	"github.com/cuemby/ftscore/pkg/types"
)

func facetDBForKind(kind types.FacetKind) string {
	if kind == types.FacetNumber {
		return facet.NumberDB
	}
	return facet.StringDB
}

// IndexUID implements metrics.StatsSource.
func (idx *Index) IndexUID() string { return idx.uid }

// DocumentCount implements metrics.StatsSource.
func (idx *Index) DocumentCount() (int, error) {
	var n int
	err := idx.db.View(func(txn *kv.RoTxn) error {
		n = document.Count(txn.Bucket(document.DB))
		return nil
	})
	return n, err
}

// FieldCount implements metrics.StatsSource.
func (idx *Index) FieldCount() (int, error) {
	var n int
	err := idx.db.View(func(txn *kv.RoTxn) error {
		sch, err := schema.Load(txn.Bucket(schema.MainDB))
		if err != nil {
			return err
		}
		n = sch.FieldCount()
		return nil
	})
	return n, err
}

// FacetNodeCounts implements metrics.StatsSource, counting level-0
// distinct values per filterable/sortable field as a stand-in for the
// full tree's node count (the tree's own level sizes are an internal
// rebalancing detail; level-0 cardinality is what Distribution and every
// filter atom actually scan against).
func (idx *Index) FacetNodeCounts() (map[string]int, error) {
	out := map[string]int{}
	err := idx.db.View(func(txn *kv.RoTxn) error {
		sch, err := schema.Load(txn.Bucket(schema.MainDB))
		if err != nil {
			return err
		}
		s, err := settings.Load(txn.Bucket(settings.DB))
		if err != nil {
			return err
		}
		for _, name := range append(append([]string(nil), s.FilterableFields...), s.SortableFields...) {
			id, ok := sch.IDOf(name)
			if !ok {
				continue
			}
			kind, populated := facet.KindOf(txn, id)
			if !populated {
				continue
			}
			b := txn.Bucket(facetDBForKind(kind))
			out[name] = len(facet.Distribution(b, kind, id, 0))
		}
		return nil
	})
	return out, err
}
