package settings

import (
	"context"
	"fmt"
	"sort"

	"github.com/cuemby/ftscore/pkg/document"
	"github.com/cuemby/ftscore/pkg/facet"
	"github.com/cuemby/ftscore/pkg/invindex"
	"github.com/cuemby/ftscore/pkg/kv"
	"github.com/cuemby/ftscore/pkg/schema"
	"github.com/cuemby/ftscore/pkg/tokenizer"
	"github.com/cuemby/ftscore/pkg/transform"
	"github.com/cuemby/ftscore/pkg/types"
)

// BuildFieldInfo derives the L6 FieldInfo a reindex runs under from the
// resolved settings and schema: searchable field order fixes attribute
// numbering (invindex.FieldInfo.Searchable), and every filterable or
// sortable field becomes a facet of the kind its current values imply.
func BuildFieldInfo(sch *schema.Schema, s Settings, facetKinds map[types.FieldID]types.FacetKind) invindex.FieldInfo {
	fi := invindex.FieldInfo{Facets: map[types.FieldID]types.FacetKind{}}

	searchableNames := s.SearchableFields
	if len(searchableNames) == 0 {
		for _, f := range sortedFields(sch) {
			searchableNames = append(searchableNames, f.Name)
		}
	}
	for _, name := range searchableNames {
		if id, ok := sch.IDOf(name); ok {
			fi.Searchable = append(fi.Searchable, id)
		}
	}

	for _, name := range append(append([]string(nil), s.FilterableFields...), s.SortableFields...) {
		id, ok := sch.IDOf(name)
		if !ok {
			continue
		}
		if _, already := fi.Facets[id]; already {
			continue
		}
		kind, ok := facetKinds[id]
		if !ok {
			kind = types.FacetString
		}
		fi.Facets[id] = kind
	}
	return fi
}

func sortedFields(sch *schema.Schema) []schema.Field {
	fields := sch.Iter()
	sort.Slice(fields, func(i, j int) bool { return fields[i].ID < fields[j].ID })
	return fields
}

// Reindex clears every L6/L7 structure and rebuilds it from the
// documents currently on disk, in primary-key (external id) order, under
// the field classification fi derives. It is the operation §4.8 triggers
// whenever Apply reports ReindexRequired.
func Reindex(ctx context.Context, txn *kv.Txn, tok *tokenizer.Tokenizer, fi invindex.FieldInfo, facetParams facet.Params) (*invindex.Report, error) {
	for _, name := range invindex.Databases() {
		if err := txn.Bucket(name).Clear(); err != nil {
			return nil, fmt.Errorf("settings: clear %s: %w", name, err)
		}
	}
	for _, name := range []string{facet.StringDB, facet.NumberDB} {
		if err := txn.Bucket(name).Clear(); err != nil {
			return nil, fmt.Errorf("settings: clear %s: %w", name, err)
		}
	}

	docs, err := allDocumentsByPrimaryKey(txn)
	if err != nil {
		return nil, err
	}

	p := invindex.DefaultParams
	p.FacetParams = facetParams
	return invindex.Build(ctx, txn, tok, fi, docs, p)
}

// allDocumentsByPrimaryKey reads every stored document and its record,
// sorted by external id, matching §4.8's "clear-then-re-insert in
// primary-key order".
func allDocumentsByPrimaryKey(txn *kv.Txn) ([]transform.OutputDocument, error) {
	b := txn.Bucket(document.DB).AsRo()
	exts := document.PrefixSearchExternalIDs(b, "")
	sort.Slice(exts, func(i, j int) bool { return exts[i] < exts[j] })

	docs := make([]transform.OutputDocument, 0, len(exts))
	for _, ext := range exts {
		id, ok := document.ExternalToInternal(b, ext)
		if !ok {
			continue
		}
		rec, ok, err := document.GetDocument(b, id)
		if err != nil {
			return nil, fmt.Errorf("settings: reindex: load document %d: %w", id, err)
		}
		if !ok {
			continue
		}
		docs = append(docs, transform.OutputDocument{InternalID: id, ExternalID: ext, Record: rec, IsNew: true})
	}
	return docs, nil
}
