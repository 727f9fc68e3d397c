package invindex

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/cuemby/ftscore/pkg/facet"
	"github.com/cuemby/ftscore/pkg/kv"
	"github.com/cuemby/ftscore/pkg/mergeiter"
	"github.com/cuemby/ftscore/pkg/posting"
	"github.com/cuemby/ftscore/pkg/types"
)

// mergeGroups drains every run file via a k-way merge, folding
// consecutive equal-key entries together with combine, and calls emit
// once per distinct key in ascending order. Every run file is deleted on
// return regardless of outcome (§4.6, "the transform temp file is
// explicitly unlinked on success and on failure").
func mergeGroups(runs []*mergeiter.RunFile, combine combineFunc, emit func(key, value []byte) error) error {
	defer func() {
		for _, rf := range runs {
			rf.Delete()
		}
	}()
	if len(runs) == 0 {
		return nil
	}

	sources := make([]mergeiter.Source, len(runs))
	readers := make([]*mergeiter.RunReader, len(runs))
	defer func() {
		for _, rr := range readers {
			if rr != nil {
				rr.Close()
			}
		}
	}()
	for i, rf := range runs {
		rr, err := rf.Open()
		if err != nil {
			return err
		}
		readers[i] = rr
		sources[i] = rr
	}

	merger, err := mergeiter.New(sources)
	if err != nil {
		return err
	}

	var curKey, curValue []byte
	haveGroup := false
	flush := func() error {
		if !haveGroup {
			return nil
		}
		return emit(curKey, curValue)
	}
	for {
		k, v, ok, err := merger.Next()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		if haveGroup && bytes.Equal(k, curKey) {
			merged, err := combine(curValue, v)
			if err != nil {
				return err
			}
			curValue = merged
			continue
		}
		if err := flush(); err != nil {
			return err
		}
		curKey = append([]byte(nil), k...)
		curValue = append([]byte(nil), v...)
		haveGroup = true
	}
	return flush()
}

// persistEntry merges value into whatever is already stored under key in
// b (get-merge-put); used once b already holds entries from a prior
// Build or incremental update.
func persistEntry(b *kv.Bucket, combine combineFunc, key, value []byte) error {
	if existing := b.Get(key); existing != nil {
		merged, err := combine(existing, value)
		if err != nil {
			return err
		}
		value = merged
	}
	return b.Put(key, value)
}

// mergeAndPersist merges runs and writes the result into b: append-only
// bulk load (with FillPercent raised to 1.0, since the merge delivers
// strictly ascending keys) when b starts out empty, else get-merge-put
// per key (§4.6).
func mergeAndPersist(b *kv.Bucket, runs []*mergeiter.RunFile, combine combineFunc) error {
	bulk := b.Empty()
	if bulk {
		b.SetFillPercent(1.0)
	}
	return mergeGroups(runs, combine, func(key, value []byte) error {
		if bulk {
			return b.Put(key, value)
		}
		return persistEntry(b, combine, key, value)
	})
}

func mergeWords(b *kv.Bucket, runs []*mergeiter.RunFile) error {
	return mergeAndPersist(b, runs, unionPostings)
}

func mergePositions(b *kv.Bucket, runs []*mergeiter.RunFile) error {
	return mergeAndPersist(b, runs, appendPositions)
}

func mergePostingDB(b *kv.Bucket, runs []*mergeiter.RunFile) error {
	return mergeAndPersist(b, runs, unionPostings)
}

func mergeDistinct(b *kv.Bucket, runs []*mergeiter.RunFile) error {
	return mergeAndPersist(b, runs, appendFacetValues)
}

// mergeFacets merges the (field, value) -> posting run files and hands
// each merged group to facet.Insert, rather than writing the facet
// databases directly: the facet tree's higher levels must be rebuilt by
// the same code path an incremental update uses (§4.6, §4.7). Returns
// the number of distinct (field, value) entries inserted.
func mergeFacets(txn *kv.Txn, fieldKinds map[types.FieldID]types.FacetKind, runs []*mergeiter.RunFile, p facet.Params) (int, error) {
	count := 0
	err := mergeGroups(runs, unionPostings, func(key, value []byte) error {
		field := kv.Uint16(key[:2])
		kind, ok := fieldKinds[field]
		if !ok {
			return nil
		}
		_, fv := decodeFacetEntryKey(kind, key)
		docids, err := posting.UnmarshalBinary(value)
		if err != nil {
			return fmt.Errorf("invindex: decode facet posting: %w", err)
		}
		count++
		return facet.Insert(txn, field, fv, docids, p)
	})
	return count, err
}

// buildPrefixPostings derives word_prefix_docids from the just-merged
// word_docids database: any word whose posting cardinality exceeds
// PrefixThreshold*totalDocs contributes its first 1..MaxPrefixLength
// runes to the corresponding prefix posting.
func buildPrefixPostings(words, prefixes *kv.Bucket, totalDocs int, p Params) (int, error) {
	if totalDocs == 0 {
		return 0, nil
	}
	threshold := p.PrefixThreshold * float64(totalDocs)

	acc := map[string]*posting.Posting{}
	for it := words.PrefixIter(nil); it.Valid(); it.Next() {
		word := string(it.Key())
		pst, err := posting.UnmarshalBinary(it.Value())
		if err != nil {
			return 0, fmt.Errorf("invindex: decode word posting %q: %w", word, err)
		}
		if float64(pst.Cardinality()) <= threshold {
			continue
		}
		runes := []rune(word)
		maxLen := p.MaxPrefixLength
		if maxLen > len(runes) {
			maxLen = len(runes)
		}
		for l := 1; l <= maxLen; l++ {
			prefix := string(runes[:l])
			existing, ok := acc[prefix]
			if !ok {
				existing = posting.New()
				acc[prefix] = existing
			}
			existing.UnionInPlace(pst)
		}
	}

	keys := make([]string, 0, len(acc))
	for k := range acc {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	bulk := prefixes.Empty()
	if bulk {
		prefixes.SetFillPercent(1.0)
	}
	for _, k := range keys {
		data, err := acc[k].MarshalBinary()
		if err != nil {
			return 0, err
		}
		if bulk {
			if err := prefixes.Put(prefixKey(k), data); err != nil {
				return 0, err
			}
			continue
		}
		if err := persistEntry(prefixes, unionPostings, prefixKey(k), data); err != nil {
			return 0, err
		}
	}
	return len(acc), nil
}
