package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/cuemby/ftscore/pkg/document"
	"github.com/cuemby/ftscore/pkg/facet"
	"github.com/cuemby/ftscore/pkg/invindex"
	"github.com/cuemby/ftscore/pkg/kv"
	"github.com/cuemby/ftscore/pkg/log"
	"github.com/cuemby/ftscore/pkg/metrics"
	"github.com/cuemby/ftscore/pkg/schema"
	"github.com/cuemby/ftscore/pkg/settings"
	"github.com/cuemby/ftscore/pkg/transform"
	"github.com/cuemby/ftscore/pkg/types"
)

// roView adapts a write *kv.Txn to the read-only Bucket surface
// facet.KindOf expects, so the write path can ask "what kind is this
// field already populated as" without facet growing a second, txn-typed
// entry point.
type roView struct{ txn *kv.Txn }

func (v roView) Bucket(name string) *kv.RoBucket { return v.txn.Bucket(name).AsRo() }

// AddDocuments runs the transform over opts.Data, persists the resulting
// documents and schema, and folds them into the inverted index and facet
// tree (§4.5, §4.6, §4.7). It is the add_documents command.
func (idx *Index) AddDocuments(ctx context.Context, opts transform.Options) (*types.IndexingReport, error) {
	timer := metrics.NewTimer()
	var report types.IndexingReport
	outcome := "success"

	err := idx.db.Update(func(txn *kv.Txn) error {
		sch, err := schema.Load(txn.Bucket(schema.MainDB).AsRo())
		if err != nil {
			return err
		}
		if opts.MaxRunSize <= 0 {
			opts.MaxRunSize = idx.transformRun
		}
		if opts.TempDir == "" {
			opts.TempDir = idx.params.TempDir
		}
		out, err := transform.Apply(txn.Bucket(document.DB).AsRo(), sch, opts)
		if err != nil {
			return err
		}
		if err := sch.Save(txn.Bucket(schema.MainDB)); err != nil {
			return err
		}
		for _, d := range out.Documents {
			if err := document.PutDocument(txn.Bucket(document.DB), d.InternalID, d.Record); err != nil {
				return err
			}
			if d.ExternalID != "" {
				if err := document.PutExternalMapping(txn.Bucket(document.DB), d.ExternalID, d.InternalID); err != nil {
					return err
				}
			}
		}
		if err := document.SetNextDocID(txn.Bucket(document.DB), out.NextDocID); err != nil {
			return err
		}

		s, err := settings.Load(txn.Bucket(settings.DB).AsRo())
		if err != nil {
			return err
		}
		fi := settings.BuildFieldInfo(sch, s, idx.facetKinds(txn, sch, s))
		if _, err := invindex.Build(ctx, txn, idx.tok, fi, out.Documents, idx.params); err != nil {
			return err
		}

		report = out.Report
		return nil
	})
	if err != nil {
		outcome = "error"
	}
	metrics.IndexingRunsTotal.WithLabelValues(idx.uid, outcome).Inc()
	timer.ObserveDurationVec(metrics.IndexingDuration, idx.uid, "add_documents")
	if err != nil {
		return nil, fmt.Errorf("engine: add documents to %s: %w", idx.uid, err)
	}
	log.WithIndex(idx.uid).Info().Str("report", report.String()).Msg("documents added")
	return &report, nil
}

// facetKinds resolves which facet domain each currently filterable or
// sortable field already holds data in, falling back to string for a
// field with no facet entries yet (a brand-new filterable field picks up
// whichever kind its first indexed value implies, same as §4.7's own
// lazily-created tree).
func (idx *Index) facetKinds(txn *kv.Txn, sch *schema.Schema, s settings.Settings) map[types.FieldID]types.FacetKind {
	out := map[types.FieldID]types.FacetKind{}
	view := roView{txn: txn}
	for _, name := range append(append([]string(nil), s.FilterableFields...), s.SortableFields...) {
		id, ok := sch.IDOf(name)
		if !ok {
			continue
		}
		if kind, populated := facet.KindOf(view, id); populated {
			out[id] = kind
		}
	}
	return out
}

// ClearDocuments removes every document and rebuilds an empty index
// (§6's clear_documents).
func (idx *Index) ClearDocuments(ctx context.Context) error {
	return idx.db.Update(func(txn *kv.Txn) error {
		if err := txn.Bucket(document.DB).Clear(); err != nil {
			return fmt.Errorf("engine: clear documents: %w", err)
		}
		sch, err := schema.Load(txn.Bucket(schema.MainDB).AsRo())
		if err != nil {
			return err
		}
		s, err := settings.Load(txn.Bucket(settings.DB).AsRo())
		if err != nil {
			return err
		}
		fi := settings.BuildFieldInfo(sch, s, nil)
		_, err = settings.Reindex(ctx, txn, idx.tok, fi, idx.params.FacetParams)
		return err
	})
}

// DeleteDocuments removes the documents named by ids (external ids) and
// rebuilds the inverted index and facet tree from whatever remains.
// Deletion is reindex-cost rather than an incremental per-posting
// subtraction: no layer below exposes "remove doc X from every word
// posting it appears in", only facet.Delete does targeted removal, so a
// full settings.Reindex is the simplest operation that is provably
// consistent afterwards (§6's delete_documents).
func (idx *Index) DeleteDocuments(ctx context.Context, ids []types.ExternalID) (int, error) {
	var removed int
	err := idx.db.Update(func(txn *kv.Txn) error {
		b := txn.Bucket(document.DB)
		ro := b.AsRo()
		for _, ext := range ids {
			internalID, ok := document.ExternalToInternal(ro, ext)
			if !ok {
				continue
			}
			if err := document.DeleteDocument(b, internalID, ext); err != nil {
				return err
			}
			removed++
		}
		if removed == 0 {
			return nil
		}
		sch, err := schema.Load(txn.Bucket(schema.MainDB).AsRo())
		if err != nil {
			return err
		}
		s, err := settings.Load(txn.Bucket(settings.DB).AsRo())
		if err != nil {
			return err
		}
		fi := settings.BuildFieldInfo(sch, s, nil)
		_, err = settings.Reindex(ctx, txn, idx.tok, fi, idx.params.FacetParams)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("engine: delete documents from %s: %w", idx.uid, err)
	}
	return removed, nil
}

// UpdateSettings applies patch (§4.8) and, if it requires one, runs a
// full reindex before the new settings become visible to readers.
func (idx *Index) UpdateSettings(ctx context.Context, patch settings.Patch) (settings.Result, error) {
	var res settings.Result
	err := idx.db.Update(func(txn *kv.Txn) error {
		sch, err := schema.Load(txn.Bucket(schema.MainDB).AsRo())
		if err != nil {
			return err
		}
		cur, err := settings.Load(txn.Bucket(settings.DB).AsRo())
		if err != nil {
			return err
		}
		documentsExist := document.Count(txn.Bucket(document.DB).AsRo()) > 0
		res, err = settings.Apply(sch, cur, patch, documentsExist)
		if err != nil {
			return err
		}
		if err := sch.Save(txn.Bucket(schema.MainDB)); err != nil {
			return err
		}
		if err := settings.Save(txn.Bucket(settings.DB), res.Settings); err != nil {
			return err
		}
		if res.ReindexRequired {
			start := time.Now()
			fi := settings.BuildFieldInfo(sch, res.Settings, idx.facetKinds(txn, sch, res.Settings))
			if _, err := settings.Reindex(ctx, txn, idx.tok, fi, idx.params.FacetParams); err != nil {
				return err
			}
			metrics.ReindexRunsTotal.Inc()
			log.WithIndex(idx.uid).Info().Dur("took", time.Since(start)).Strs("reason", res.ReindexReason).Msg("settings reindex")
		}
		return nil
	})
	if err != nil {
		return settings.Result{}, fmt.Errorf("engine: update settings for %s: %w", idx.uid, err)
	}
	return res, nil
}
