package engine

import (
	"context"
	"fmt"

	"github.com/cuemby/ftscore/pkg/document"
	"github.com/cuemby/ftscore/pkg/eval"
	"github.com/cuemby/ftscore/pkg/kv"
	"github.com/cuemby/ftscore/pkg/log"
	"github.com/cuemby/ftscore/pkg/metrics"
	"github.com/cuemby/ftscore/pkg/schema"
	"github.com/cuemby/ftscore/pkg/settings"
	"github.com/cuemby/ftscore/pkg/types"
)

// Search runs req against the current committed state (§6's
// RoTxn.search). It opens its own read transaction, so callers never
// block a concurrent write and never see one half-applied.
func (idx *Index) Search(ctx context.Context, req eval.Request) (*eval.Result, error) {
	timer := metrics.NewTimer()
	outcome := "success"

	var res *eval.Result
	err := idx.db.View(func(txn *kv.RoTxn) error {
		sch, err := schema.Load(txn.Bucket(schema.MainDB))
		if err != nil {
			return err
		}
		s, err := settings.Load(txn.Bucket(settings.DB))
		if err != nil {
			return err
		}
		res, err = eval.Evaluate(ctx, txn, idx.tok, sch, s, req)
		return err
	})
	if err != nil {
		outcome = "error"
	}
	metrics.SearchRequestsTotal.WithLabelValues(idx.uid, outcome).Inc()
	timer.ObserveDurationVec(metrics.SearchDuration, idx.uid)
	if err != nil {
		return nil, fmt.Errorf("engine: search %s: %w", idx.uid, err)
	}
	log.WithIndex(idx.uid).Debug().Str("q", req.Query).Int("hits", len(res.DocIDs)).Msg("search")
	return res, nil
}

// Schema returns a snapshot of the index's current field schema.
func (idx *Index) Schema() (*schema.Schema, error) {
	var sch *schema.Schema
	err := idx.db.View(func(txn *kv.RoTxn) error {
		var err error
		sch, err = schema.Load(txn.Bucket(schema.MainDB))
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("engine: load schema for %s: %w", idx.uid, err)
	}
	return sch, nil
}

// Settings returns the index's current, committed settings.
func (idx *Index) Settings() (settings.Settings, error) {
	var s settings.Settings
	err := idx.db.View(func(txn *kv.RoTxn) error {
		var err error
		s, err = settings.Load(txn.Bucket(settings.DB))
		return err
	})
	if err != nil {
		return settings.Settings{}, fmt.Errorf("engine: load settings for %s: %w", idx.uid, err)
	}
	return s, nil
}

// DocumentByID resolves a document's internal id directly to its
// stored record, skipping the external-id lookup GetDocuments does.
// Search results are already internal ids, so callers rendering hits
// use this instead of round-tripping through an external id.
func (idx *Index) DocumentByID(id types.DocID) (*document.Record, bool, error) {
	var rec *document.Record
	var ok bool
	err := idx.db.View(func(txn *kv.RoTxn) error {
		var err error
		rec, ok, err = document.GetDocument(txn.Bucket(document.DB), id)
		return err
	})
	if err != nil {
		return nil, false, fmt.Errorf("engine: get document %d from %s: %w", id, idx.uid, err)
	}
	return rec, ok, nil
}

// GetResult is one retrieved document: its external id and its full
// stored record, with no displayed-fields filtering applied.
type GetResult struct {
	ExternalID types.ExternalID
	Record     *document.Record
}

// GetDocuments resolves each requested external id to its stored record
// (§6's RoTxn.get_documents). Ids that do not resolve are silently
// omitted rather than erroring, matching a batch "get what you can" read.
func (idx *Index) GetDocuments(ids []types.ExternalID) ([]GetResult, error) {
	var out []GetResult
	err := idx.db.View(func(txn *kv.RoTxn) error {
		b := txn.Bucket(document.DB)
		for _, ext := range ids {
			internalID, ok := document.ExternalToInternal(b, ext)
			if !ok {
				continue
			}
			rec, ok, err := document.GetDocument(b, internalID)
			if err != nil {
				return err
			}
			if !ok {
				continue
			}
			out = append(out, GetResult{ExternalID: ext, Record: rec})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("engine: get documents from %s: %w", idx.uid, err)
	}
	return out, nil
}
