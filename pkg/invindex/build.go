package invindex

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/cuemby/ftscore/pkg/kv"
	"github.com/cuemby/ftscore/pkg/mergeiter"
	"github.com/cuemby/ftscore/pkg/tokenizer"
	"github.com/cuemby/ftscore/pkg/transform"
	"github.com/cuemby/ftscore/pkg/types"
)

// FieldInfo classifies the fields one Build call indexes. Searchable
// fixes the tokenizer's per-document attribute numbering to its index in
// this slice, not the field id itself, so cross-field position
// arithmetic stays stable as fields are added to the schema over time.
// Facets names which fields get a facet-tree/distinct entry and in which
// domain.
type FieldInfo struct {
	Searchable []types.FieldID
	Facets     map[types.FieldID]types.FacetKind
}

// Report summarizes one Build call, the L6 counterpart to
// transform.Output's IndexingReport.
type Report struct {
	DocumentsIndexed int
	FacetEntries     int
	PrefixWords      int
}

// Build partitions docs into Params.Parallelism chunks, tokenizes and
// accumulates each concurrently via an errgroup.Group (§5), then merges
// every target structure and persists it into txn. It is the single
// point where L6 touches the write transaction; workers never see it.
func Build(ctx context.Context, txn *kv.Txn, tok *tokenizer.Tokenizer, fields FieldInfo, docs []transform.OutputDocument, p Params) (*Report, error) {
	if len(docs) == 0 {
		return &Report{}, nil
	}

	chunks := partition(docs, p.Parallelism)
	results := make([]*chunkResult, len(chunks))

	g, gctx := errgroup.WithContext(ctx)
	for i, chunk := range chunks {
		i, chunk := i, chunk
		g.Go(func() error {
			r, err := processChunk(gctx, tok, fields, p, chunk)
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		cleanupResults(results)
		return nil, fmt.Errorf("invindex: build: %w", err)
	}

	if err := mergeWords(txn.Bucket(WordDocidsDB), collectRuns(results, func(r *chunkResult) []*mergeiter.RunFile { return r.wordRuns })); err != nil {
		return nil, err
	}
	if err := mergePositions(txn.Bucket(WordDocidPositionsDB), collectRuns(results, func(r *chunkResult) []*mergeiter.RunFile { return r.positionRuns })); err != nil {
		return nil, err
	}
	if err := mergePostingDB(txn.Bucket(WordPairProximityDB), collectRuns(results, func(r *chunkResult) []*mergeiter.RunFile { return r.proximityRuns })); err != nil {
		return nil, err
	}
	if err := mergePostingDB(txn.Bucket(FieldWordCountDB), collectRuns(results, func(r *chunkResult) []*mergeiter.RunFile { return r.wordCountRuns })); err != nil {
		return nil, err
	}
	if err := mergeDistinct(txn.Bucket(FieldDocidFacetValuesDB), collectRuns(results, func(r *chunkResult) []*mergeiter.RunFile { return r.distinctRuns })); err != nil {
		return nil, err
	}
	nFacets, err := mergeFacets(txn, fields.Facets, collectRuns(results, func(r *chunkResult) []*mergeiter.RunFile { return r.facetRuns }), p.FacetParams)
	if err != nil {
		return nil, err
	}

	nPrefix, err := buildPrefixPostings(txn.Bucket(WordDocidsDB), txn.Bucket(WordPrefixDocidsDB), len(docs), p)
	if err != nil {
		return nil, err
	}

	return &Report{DocumentsIndexed: len(docs), FacetEntries: nFacets, PrefixWords: nPrefix}, nil
}

// partition splits docs round-robin into at most t chunks, which keeps
// chunk sizes balanced without requiring docs to be pre-sorted.
func partition(docs []transform.OutputDocument, t int) [][]transform.OutputDocument {
	if t < 1 {
		t = 1
	}
	if t > len(docs) {
		t = len(docs)
	}
	slots := make([][]transform.OutputDocument, t)
	for i, doc := range docs {
		slots[i%t] = append(slots[i%t], doc)
	}
	var out [][]transform.OutputDocument
	for _, c := range slots {
		if len(c) > 0 {
			out = append(out, c)
		}
	}
	return out
}

func collectRuns(results []*chunkResult, pick func(*chunkResult) []*mergeiter.RunFile) []*mergeiter.RunFile {
	var out []*mergeiter.RunFile
	for _, r := range results {
		if r == nil {
			continue
		}
		out = append(out, pick(r)...)
	}
	return out
}

func cleanupResults(results []*chunkResult) {
	for _, r := range results {
		if r == nil {
			continue
		}
		groups := [][]*mergeiter.RunFile{r.wordRuns, r.positionRuns, r.proximityRuns, r.wordCountRuns, r.facetRuns, r.distinctRuns}
		for _, runs := range groups {
			for _, rf := range runs {
				rf.Delete()
			}
		}
	}
}
