package invindex

import (
	"encoding/json"
	"strconv"

	"github.com/cuemby/ftscore/pkg/tokenizer"
	"github.com/cuemby/ftscore/pkg/types"
)

// decodeJSONValue decodes one record field's raw, self-describing bytes
// (§3) into a generic Go value ready for text/facet extraction.
func decodeJSONValue(raw []byte) (interface{}, error) {
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	return v, nil
}

// searchableText flattens a decoded field value into the strings handed
// to the tokenizer: a string as itself, a number in canonical decimal
// form (the tokenizer canonicalizes it again, idempotently), a bool as
// "true"/"false", and an array by flattening its elements in order.
// Objects are not indexed at this field: nested object fields already
// appear as their own dotted flat field ids (§4.2).
func searchableText(v interface{}) []string {
	switch t := v.(type) {
	case string:
		return []string{t}
	case float64:
		return []string{strconv.FormatFloat(t, 'f', -1, 64)}
	case bool:
		return []string{strconv.FormatBool(t)}
	case []interface{}:
		var out []string
		for _, e := range t {
			out = append(out, searchableText(e)...)
		}
		return out
	default:
		return nil
	}
}

// facetValues extracts every facet value of the given kind present in a
// decoded field value. A string field normalizes through the same
// tokenizer lowercasing documents and queries both use; a bool coerces to
// the strings "true"/"false" (§3); an array contributes one value per
// element.
func facetValues(v interface{}, kind types.FacetKind) []types.FacetValue {
	switch t := v.(type) {
	case string:
		if kind == types.FacetString {
			return []types.FacetValue{types.NewStringFacetValue(tokenizer.Normalize(t))}
		}
	case float64:
		if kind == types.FacetNumber {
			return []types.FacetValue{types.NewNumberFacetValue(t)}
		}
	case bool:
		if kind == types.FacetString {
			return []types.FacetValue{types.NewStringFacetValue(strconv.FormatBool(t))}
		}
	case []interface{}:
		var out []types.FacetValue
		for _, e := range t {
			out = append(out, facetValues(e, kind)...)
		}
		return out
	}
	return nil
}
