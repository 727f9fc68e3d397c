package eval

import (
	"fmt"
	"strconv"

	"github.com/cuemby/ftscore/pkg/facet"
	"github.com/cuemby/ftscore/pkg/kv"
	"github.com/cuemby/ftscore/pkg/posting"
	"github.com/cuemby/ftscore/pkg/schema"
	"github.com/cuemby/ftscore/pkg/settings"
	"github.com/cuemby/ftscore/pkg/tokenizer"
	"github.com/cuemby/ftscore/pkg/types"
)

// EvalFilter resolves a parsed filter tree into the posting of documents
// it matches, consulting the facet tree for each atom's comparisons
// (§4.10). universe is the full candidate set a NOT subtracts from.
func EvalFilter(txn *kv.RoTxn, sch *schema.Schema, s settings.Settings, node *filterNode, universe *posting.Posting) (*posting.Posting, error) {
	switch node.kind {
	case filterAnd:
		l, err := EvalFilter(txn, sch, s, node.children[0], universe)
		if err != nil {
			return nil, err
		}
		r, err := EvalFilter(txn, sch, s, node.children[1], universe)
		if err != nil {
			return nil, err
		}
		return posting.Intersect(l, r), nil
	case filterOr:
		l, err := EvalFilter(txn, sch, s, node.children[0], universe)
		if err != nil {
			return nil, err
		}
		r, err := EvalFilter(txn, sch, s, node.children[1], universe)
		if err != nil {
			return nil, err
		}
		return posting.Union(l, r), nil
	case filterNot:
		inner, err := EvalFilter(txn, sch, s, node.children[0], universe)
		if err != nil {
			return nil, err
		}
		return posting.Difference(universe, inner), nil
	default:
		return evalAtom(txn, sch, s, node)
	}
}

func evalAtom(txn *kv.RoTxn, sch *schema.Schema, s settings.Settings, node *filterNode) (*posting.Posting, error) {
	if !isFilterable(node.field, s.FilterableFields) {
		return nil, fmt.Errorf("field %q is not filterable: %w", node.field, types.ErrFilterFieldNotFilterable)
	}
	field, ok := sch.IDOf(node.field)
	if !ok {
		return posting.New(), nil
	}
	kind, populated := facet.KindOf(txn, field)
	if !populated {
		return posting.New(), nil
	}
	b := txn.Bucket(facetDBFor(kind))

	if node.op == opExists {
		return facet.LevelZeroUnion(b, kind, field), nil
	}

	if node.op == opIn {
		var parts []*posting.Posting
		for _, lit := range node.values {
			v, err := literalToValue(kind, lit)
			if err != nil {
				return nil, err
			}
			parts = append(parts, facet.MatchingUnion(b, kind, field, func(cand types.FacetValue) bool { return cand.Equal(v) }))
		}
		return posting.Union(parts...), nil
	}

	if node.op == opRange {
		lo, err := literalToValue(kind, node.value)
		if err != nil {
			return nil, err
		}
		hi, err := literalToValue(kind, node.value2)
		if err != nil {
			return nil, err
		}
		return facet.MatchingUnion(b, kind, field, func(cand types.FacetValue) bool {
			return !cand.Less(lo) && !hi.Less(cand)
		}), nil
	}

	target, err := literalToValue(kind, node.value)
	if err != nil {
		return nil, err
	}
	pred, err := comparisonPredicate(node.op, target)
	if err != nil {
		return nil, err
	}
	return facet.MatchingUnion(b, kind, field, pred), nil
}

func comparisonPredicate(op filterOp, target types.FacetValue) (func(types.FacetValue) bool, error) {
	switch op {
	case opEq:
		return func(v types.FacetValue) bool { return v.Equal(target) }, nil
	case opNeq:
		return func(v types.FacetValue) bool { return !v.Equal(target) }, nil
	case opLt:
		return func(v types.FacetValue) bool { return v.Less(target) }, nil
	case opLte:
		return func(v types.FacetValue) bool { return v.Less(target) || v.Equal(target) }, nil
	case opGt:
		return func(v types.FacetValue) bool { return target.Less(v) }, nil
	case opGte:
		return func(v types.FacetValue) bool { return target.Less(v) || v.Equal(target) }, nil
	default:
		return nil, fmt.Errorf("unsupported filter operator: %w", types.ErrInvalidFilter)
	}
}

func literalToValue(kind types.FacetKind, lit string) (types.FacetValue, error) {
	if kind == types.FacetNumber {
		n, err := strconv.ParseFloat(lit, 64)
		if err != nil {
			return types.FacetValue{}, fmt.Errorf("%q is not a number: %w", lit, types.ErrInvalidFilter)
		}
		return types.NewNumberFacetValue(n), nil
	}
	return types.NewStringFacetValue(tokenizer.Normalize(lit)), nil
}

func isFilterable(field string, filterable []string) bool {
	for _, f := range filterable {
		if f == field {
			return true
		}
	}
	return false
}

func facetDBFor(kind types.FacetKind) string {
	if kind == types.FacetNumber {
		return facet.NumberDB
	}
	return facet.StringDB
}
