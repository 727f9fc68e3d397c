package eval

import (
	"context"
	"fmt"
	"strings"

	"github.com/cuemby/ftscore/pkg/document"
	"github.com/cuemby/ftscore/pkg/invindex"
	"github.com/cuemby/ftscore/pkg/kv"
	"github.com/cuemby/ftscore/pkg/posting"
	"github.com/cuemby/ftscore/pkg/query"
	"github.com/cuemby/ftscore/pkg/schema"
	"github.com/cuemby/ftscore/pkg/settings"
	"github.com/cuemby/ftscore/pkg/tokenizer"
	"github.com/cuemby/ftscore/pkg/types"
)

// Request is one search call's parameters, the evaluator's half of
// SearchRequest (§6); attribute retrieval/highlighting is resolved by
// the caller once it has the ranked ids, not by this package.
type Request struct {
	Query    string
	Offset   int
	Limit    int
	Filter   string   // raw filter expression, parsed with ParseFilter
	Sort     []string // "field:asc" / "field:desc", applied after the configured criteria
	Distinct string   // overrides settings.DistinctField when non-empty
}

// Result is one search call's outcome.
type Result struct {
	DocIDs  []types.DocID
	Total   int
	Partial bool // true if Result was cut short by ctx cancellation/deadline
}

// Evaluate runs the full §4.10 pipeline: expand the query, resolve every
// graph node against the live postings, apply an optional filter,
// bucket-sort descend the configured criteria, then apply distinct and
// paging.
func Evaluate(ctx context.Context, txn *kv.RoTxn, tok *tokenizer.Tokenizer, sch *schema.Schema, s settings.Settings, req Request) (*Result, error) {
	wordsB := txn.Bucket(invindex.WordDocidsDB)
	prefixB := txn.Bucket(invindex.WordPrefixDocidsDB)
	positionsB := txn.Bucket(invindex.WordDocidPositionsDB)
	wordCountB := txn.Bucket(invindex.FieldWordCountDB)
	proximityB := txn.Bucket(invindex.WordPairProximityDB)
	docsB := txn.Bucket(document.DB)
	fieldOf := settings.BuildFieldInfo(sch, s, nil).Searchable

	var g *query.Graph
	var err error
	if strings.TrimSpace(req.Query) == "" {
		g = &query.Graph{}
	} else {
		g, err = query.Expand(req.Query, tok, query.NewWordSet(txn), s)
		if err != nil {
			return nil, fmt.Errorf("eval: expand query: %w", err)
		}
	}

	var vocab []string
	if needsVocab(g) {
		vocab = invindex.AllWords(wordsB)
	}

	st, err := buildStats(wordsB, prefixB, positionsB, wordCountB, fieldOf, g, vocab)
	if err != nil {
		return nil, fmt.Errorf("eval: resolve query graph: %w", err)
	}

	var candidateIDs []types.DocID
	if len(g.Nodes) == 0 {
		for _, id := range document.AllDocIDs(docsB) {
			candidateIDs = append(candidateIDs, id)
		}
	} else {
		for id := range st {
			candidateIDs = append(candidateIDs, id)
		}
	}

	if req.Filter != "" {
		node, err := ParseFilter(req.Filter)
		if err != nil {
			return nil, err
		}
		universe := posting.Of(document.AllDocIDs(docsB)...)
		matched, err := EvalFilter(txn, sch, s, node, universe)
		if err != nil {
			return nil, err
		}
		candidateIDs = intersectIDs(candidateIDs, matched)
	}

	criteriaNames := append([]string(nil), s.Criteria...)
	for _, sortSpec := range req.Sort {
		c, err := translateSort(sortSpec)
		if err != nil {
			return nil, err
		}
		criteriaNames = append(criteriaNames, c)
	}
	criteria, err := buildCriteria(criteriaNames, st, proximityB, txn, sch, s)
	if err != nil {
		return nil, err
	}

	distinctField := s.DistinctField
	if req.Distinct != "" {
		distinctField = req.Distinct
	}

	needed := req.Offset + req.Limit
	if distinctField != "" {
		// distinct can drop ranked documents, so rank the full candidate set
		// before paging rather than risk under-filling the page.
		needed = len(candidateIDs)
	}
	if needed <= 0 {
		needed = req.Limit
	}

	ranked, partial := rankDocs(ctx, candidateIDs, criteria, 0, needed)

	if distinctField != "" {
		if !isFilterable(distinctField, s.FilterableFields) {
			return nil, fmt.Errorf("distinct field %q is not filterable: %w", distinctField, types.ErrDistinctFieldNotFilterable)
		}
		ranked, err = applyDistinct(txn, sch, s, distinctField, ranked, req.Offset+req.Limit)
		if err != nil {
			return nil, err
		}
	}

	total := len(ranked)
	page := pageOf(ranked, req.Offset, req.Limit)

	return &Result{DocIDs: page, Total: total, Partial: partial}, nil
}

func needsVocab(g *query.Graph) bool {
	for _, n := range g.Nodes {
		if n.Kind == query.KindTypo || n.Kind == query.KindPrefix {
			return true
		}
	}
	return false
}

func intersectIDs(ids []types.DocID, matched *posting.Posting) []types.DocID {
	var out []types.DocID
	for _, id := range ids {
		if matched.Contains(id) {
			out = append(out, id)
		}
	}
	return out
}

func pageOf(ids []types.DocID, offset, limit int) []types.DocID {
	if offset >= len(ids) {
		return nil
	}
	end := offset + limit
	if limit <= 0 || end > len(ids) {
		end = len(ids)
	}
	return ids[offset:end]
}

func translateSort(spec string) (string, error) {
	parts := strings.SplitN(spec, ":", 2)
	if len(parts) != 2 {
		return "", fmt.Errorf("sort entry %q must be field:asc or field:desc: %w", spec, types.ErrInvalidSort)
	}
	switch parts[1] {
	case "asc":
		return "asc(" + parts[0] + ")", nil
	case "desc":
		return "desc(" + parts[0] + ")", nil
	default:
		return "", fmt.Errorf("sort entry %q must end in :asc or :desc: %w", spec, types.ErrInvalidSort)
	}
}
