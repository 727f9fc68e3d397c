package query

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/blevesearch/vellum"
	"github.com/cuemby/ftscore/pkg/tokenizer"
)

// synonymHead is one recorded substitution: head is the normalized,
// possibly multi-token phrase a query span must match in sequence;
// substitutions are the alternative phrases it expands to. order is its
// declaration rank, used to break ties between two heads of equal
// length (see buildSynonymIndex).
type synonymHead struct {
	head          []string
	substitutions [][]string
	order         int
}

// synonymIndex is an FST-backed ordered set keyed on a head's first
// token (§4.9 step 5, "looked up through an FST-like ordered-set index
// keyed on the head's first token"), so a query position only ever
// probes the heads that could possibly start there instead of scanning
// every recorded synonym.
type synonymIndex struct {
	fst     *vellum.FST
	buckets [][]synonymHead // fst value is an index into buckets
}

// buildSynonymIndex normalizes and indexes every synonym recorded in
// settings, grouping heads by their first token and building one FST
// over those first tokens (vellum requires keys inserted in
// lexicographic order). Settings.Synonyms is a plain Go map, so it
// carries no declaration order of its own; the head's literal text,
// sorted lexicographically, is the only reproducible surrogate for it,
// and becomes each synonymHead's order so two heads tokenizing to the
// same sequence (e.g. "New York" and "new-york") break ties the same
// way on every run instead of following map iteration.
func buildSynonymIndex(synonyms map[string][]string) (*synonymIndex, error) {
	if len(synonyms) == 0 {
		return nil, nil
	}

	headTexts := make([]string, 0, len(synonyms))
	for headText := range synonyms {
		headTexts = append(headTexts, headText)
	}
	sort.Strings(headTexts)

	grouped := map[string][]synonymHead{}
	for order, headText := range headTexts {
		subs := synonyms[headText]
		headTokens := tokenizer.New(nil).Tokenize(0, 0, headText)
		if len(headTokens) == 0 {
			continue
		}
		head := make([]string, len(headTokens))
		for i, t := range headTokens {
			head[i] = t.Surface
		}
		var substitutions [][]string
		for _, sub := range subs {
			subTokens := tokenizer.New(nil).Tokenize(0, 0, sub)
			if len(subTokens) == 0 {
				continue
			}
			words := make([]string, len(subTokens))
			for i, t := range subTokens {
				words[i] = t.Surface
			}
			substitutions = append(substitutions, words)
		}
		if len(substitutions) == 0 {
			continue
		}
		first := head[0]
		grouped[first] = append(grouped[first], synonymHead{head: head, substitutions: substitutions, order: order})
	}
	if len(grouped) == 0 {
		return nil, nil
	}

	keys := make([]string, 0, len(grouped))
	for k := range grouped {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var buf bytes.Buffer
	builder, err := vellum.New(&buf, nil)
	if err != nil {
		return nil, fmt.Errorf("query: build synonym fst: %w", err)
	}
	buckets := make([][]synonymHead, 0, len(keys))
	for _, k := range keys {
		if err := builder.Insert([]byte(k), uint64(len(buckets))); err != nil {
			return nil, fmt.Errorf("query: insert synonym fst key %q: %w", k, err)
		}
		buckets = append(buckets, grouped[k])
	}
	if err := builder.Close(); err != nil {
		return nil, fmt.Errorf("query: close synonym fst: %w", err)
	}

	fst, err := vellum.Load(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("query: load synonym fst: %w", err)
	}
	return &synonymIndex{fst: fst, buckets: buckets}, nil
}

// headsStartingWith returns every recorded synonym head whose first
// token equals first, or nil if none is indexed.
func (idx *synonymIndex) headsStartingWith(first string) []synonymHead {
	if idx == nil {
		return nil
	}
	v, exists, err := idx.fst.Get([]byte(first))
	if err != nil || !exists {
		return nil
	}
	return idx.buckets[v]
}

// matchAt reports the longest recorded head matching tokens starting at
// pos, and its substitutions, for the maximal-window rule in §4.9 step
// 5. Ties between two equal-length heads (possible when distinct
// declared heads tokenize to the same sequence) are broken by
// declaration order: (-len(window), order).
func (idx *synonymIndex) matchAt(tokens []string, pos int) (synonymHead, bool) {
	if idx == nil {
		return synonymHead{}, false
	}
	candidates := idx.headsStartingWith(tokens[pos])
	var best synonymHead
	found := false
	for _, c := range candidates {
		if pos+len(c.head) > len(tokens) {
			continue
		}
		match := true
		for i, w := range c.head {
			if tokens[pos+i] != w {
				match = false
				break
			}
		}
		if match && (!found || betterHead(c, best)) {
			best = c
			found = true
		}
	}
	return best, found
}

// betterHead reports whether c should win over best under
// (-len(window), order): a longer head always wins; among equal-length
// heads, the one declared earlier (lower order) wins.
func betterHead(c, best synonymHead) bool {
	if len(c.head) != len(best.head) {
		return len(c.head) > len(best.head)
	}
	return c.order < best.order
}
