package eval

import (
	"github.com/cuemby/ftscore/pkg/facet"
	"github.com/cuemby/ftscore/pkg/kv"
	"github.com/cuemby/ftscore/pkg/schema"
	"github.com/cuemby/ftscore/pkg/settings"
	"github.com/cuemby/ftscore/pkg/types"
)

// applyDistinct walks ranked in rank order, keeping the first document to
// carry each distinct value of field and dropping every later one that
// shares it, stopping once limit distinct documents have been kept or
// ranked is exhausted (§4.10).
func applyDistinct(txn *kv.RoTxn, sch *schema.Schema, s settings.Settings, field string, ranked []types.DocID, limit int) ([]types.DocID, error) {
	fieldID, ok := sch.IDOf(field)
	if !ok {
		return ranked, nil
	}
	kind, populated := facet.KindOf(txn, fieldID)
	if !populated {
		if limit > 0 && len(ranked) > limit {
			return ranked[:limit], nil
		}
		return ranked, nil
	}
	b := txn.Bucket(facetDBFor(kind))

	seen := map[string]bool{}
	var out []types.DocID
	for _, id := range ranked {
		if limit > 0 && len(out) >= limit {
			break
		}
		v, ok := docFacetValue(b, kind, fieldID, id)
		if !ok {
			out = append(out, id)
			continue
		}
		key := v.String() + "\x01" + v.Kind.String()
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, id)
	}
	return out, nil
}
