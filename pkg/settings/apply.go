package settings

import (
	"fmt"
	"sort"

	"github.com/cuemby/ftscore/pkg/schema"
	"github.com/cuemby/ftscore/pkg/tokenizer"
	"github.com/cuemby/ftscore/pkg/types"
)

// Result reports what Apply resolved and whether the caller must now
// reindex (§4.8).
type Result struct {
	Settings         Settings
	ReindexRequired  bool
	ReindexReason    []string
	NewlyFacetFields []string
}

// Apply resolves patch against current in the fixed six-group order
// §4.8 requires, validating as it goes. documentsExist gates the primary
// key immutability check; sch is mutated in place when the primary key
// changes, matching schema.SetPrimaryKey's own contract.
func Apply(sch *schema.Schema, current Settings, patch Patch, documentsExist bool) (Result, error) {
	next := current

	// Group 1: displayed_fields, projection only.
	applyStrings(&next.DisplayedFields, patch.DisplayedFields, nil)

	// Group 2: facet-materializing fields and distinct.
	prevFilterable := append([]string(nil), current.FilterableFields...)
	prevSortable := append([]string(nil), current.SortableFields...)
	applyStrings(&next.FilterableFields, patch.FilterableFields, nil)
	applyStrings(&next.SortableFields, patch.SortableFields, nil)
	if patch.DistinctField.IsReset() {
		next.DistinctField = ""
	} else if v, ok := patch.DistinctField.Get(); ok {
		next.DistinctField = v
	}
	if v, ok := patch.MaxValuesPerFacet.Get(); ok {
		next.MaxValuesPerFacet = v
	} else if patch.MaxValuesPerFacet.IsReset() {
		next.MaxValuesPerFacet = DefaultMaxValuesPerFacet
	}

	// Group 3: criteria and the immutable primary key.
	if patch.Criteria.IsReset() {
		next.Criteria = append([]string(nil), DefaultCriteria...)
	} else if v, ok := patch.Criteria.Get(); ok {
		next.Criteria = append([]string(nil), v...)
	}
	if v, ok := patch.PrimaryKey.Get(); ok {
		if err := sch.SetPrimaryKey(v, documentsExist); err != nil {
			return Result{}, err
		}
		next.PrimaryKey = v
	}

	// Group 4: typo tolerance thresholds.
	if patch.AuthorizeTypos.IsReset() {
		next.AuthorizeTypos = true
	} else if v, ok := patch.AuthorizeTypos.Get(); ok {
		next.AuthorizeTypos = v
	}
	oneTypo := patch.MinWordLenOneTypo.OrDefault(DefaultMinWordLenOneTypo)
	if patch.MinWordLenOneTypo.IsNotSet() {
		oneTypo = current.MinWordLenOneTypo
	}
	twoTypos := patch.MinWordLenTwoTypos.OrDefault(DefaultMinWordLenTwoTypos)
	if patch.MinWordLenTwoTypos.IsNotSet() {
		twoTypos = current.MinWordLenTwoTypos
	}
	if !patch.MinWordLenOneTypo.IsNotSet() || !patch.MinWordLenTwoTypos.IsNotSet() {
		if oneTypo > twoTypos {
			return Result{}, fmt.Errorf("one-typo length %d exceeds two-typo length %d: %w", oneTypo, twoTypos, types.ErrInvalidMinTypoWordLen)
		}
		next.MinWordLenOneTypo = oneTypo
		next.MinWordLenTwoTypos = twoTypos
	}

	// Group 5: exact words/attributes, normalized through the tokenizer.
	prevExactAttributes := append([]string(nil), current.ExactAttributes...)
	applyNormalizedStrings(&next.ExactWords, patch.ExactWords)
	applyNormalizedStrings(&next.ExactAttributes, patch.ExactAttributes)

	// Group 6: stop words, synonyms, searchable fields.
	prevStopWords := append([]string(nil), current.StopWords...)
	prevSearchable := append([]string(nil), current.SearchableFields...)
	applyNormalizedStrings(&next.StopWords, patch.StopWords)
	applyStrings(&next.SearchableFields, patch.SearchableFields, nil)
	synonymsChanged := false
	if patch.Synonyms.IsReset() {
		synonymsChanged = len(current.Synonyms) > 0
		next.Synonyms = nil
	} else if v, ok := patch.Synonyms.Get(); ok {
		next.Synonyms = normalizeSynonyms(v)
		synonymsChanged = !synonymsEqual(current.Synonyms, next.Synonyms)
	}

	newlyFaceted := diffAdded(prevFilterable, next.FilterableFields)
	newlyFaceted = append(newlyFaceted, diffAdded(prevSortable, next.SortableFields)...)

	var reasons []string
	if !stringSetEqual(prevStopWords, next.StopWords) {
		reasons = append(reasons, "stop_words")
	}
	if synonymsChanged {
		reasons = append(reasons, "synonyms")
	}
	if !stringSetEqual(prevSearchable, next.SearchableFields) {
		reasons = append(reasons, "searchable_fields")
	}
	if !stringSetEqual(prevExactAttributes, next.ExactAttributes) {
		reasons = append(reasons, "exact_attributes")
	}
	if len(newlyFaceted) > 0 {
		reasons = append(reasons, "newly_faceted_fields")
	}

	return Result{
		Settings:         next,
		ReindexRequired:  len(reasons) > 0,
		ReindexReason:    reasons,
		NewlyFacetFields: newlyFaceted,
	}, nil
}

func applyStrings(dst *[]string, f Field[[]string], def []string) {
	if f.IsReset() {
		*dst = append([]string(nil), def...)
		return
	}
	if v, ok := f.Get(); ok {
		*dst = append([]string(nil), v...)
	}
}

func applyNormalizedStrings(dst *[]string, f Field[[]string]) {
	if f.IsReset() {
		*dst = nil
		return
	}
	v, ok := f.Get()
	if !ok {
		return
	}
	out := make([]string, len(v))
	for i, s := range v {
		out[i] = tokenizer.Normalize(s)
	}
	*dst = out
}

func normalizeSynonyms(in map[string][]string) map[string][]string {
	if in == nil {
		return nil
	}
	out := make(map[string][]string, len(in))
	for head, alts := range in {
		normAlts := make([]string, len(alts))
		for i, a := range alts {
			normAlts[i] = tokenizer.Normalize(a)
		}
		out[tokenizer.Normalize(head)] = normAlts
	}
	return out
}

// stringSetEqual compares two string slices as sets (order-insensitive),
// matching that the settings patch may resubmit the same fields in a
// different order without triggering a spurious reindex.
func stringSetEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	sa := append([]string(nil), a...)
	sb := append([]string(nil), b...)
	sort.Strings(sa)
	sort.Strings(sb)
	for i := range sa {
		if sa[i] != sb[i] {
			return false
		}
	}
	return true
}

func synonymsEqual(a, b map[string][]string) bool {
	if len(a) != len(b) {
		return false
	}
	for head, alts := range a {
		other, ok := b[head]
		if !ok || !stringSetEqual(alts, other) {
			return false
		}
	}
	return true
}

// diffAdded returns every element of next absent from prev.
func diffAdded(prev, next []string) []string {
	seen := make(map[string]struct{}, len(prev))
	for _, p := range prev {
		seen[p] = struct{}{}
	}
	var out []string
	for _, n := range next {
		if _, ok := seen[n]; !ok {
			out = append(out, n)
		}
	}
	return out
}
