package invindex

import (
	"context"
	"fmt"

	"github.com/cuemby/ftscore/pkg/mergeiter"
	"github.com/cuemby/ftscore/pkg/posting"
	"github.com/cuemby/ftscore/pkg/tokenizer"
	"github.com/cuemby/ftscore/pkg/transform"
	"github.com/cuemby/ftscore/pkg/types"
)

// chunkResult holds every run file one worker produced, grouped by
// target structure.
type chunkResult struct {
	wordRuns      []*mergeiter.RunFile
	positionRuns  []*mergeiter.RunFile
	proximityRuns []*mergeiter.RunFile
	wordCountRuns []*mergeiter.RunFile
	facetRuns     []*mergeiter.RunFile
	distinctRuns  []*mergeiter.RunFile
}

// processChunk tokenizes every document in docs and spills the target
// structures to sorted run files, checking ctx at each document boundary
// so a sibling worker's failure stops this one promptly (§5).
func processChunk(ctx context.Context, tok *tokenizer.Tokenizer, fields FieldInfo, p Params, docs []transform.OutputDocument) (*chunkResult, error) {
	words, err := newSpiller(p.TempDir, p.CacheCapacity, p.PendingBatch, unionPostings)
	if err != nil {
		return nil, err
	}
	positions, err := newSpiller(p.TempDir, p.CacheCapacity, p.PendingBatch, appendPositions)
	if err != nil {
		return nil, err
	}
	proximity, err := newSpiller(p.TempDir, p.CacheCapacity, p.PendingBatch, unionPostings)
	if err != nil {
		return nil, err
	}
	wordCount, err := newSpiller(p.TempDir, p.CacheCapacity, p.PendingBatch, unionPostings)
	if err != nil {
		return nil, err
	}
	facetEntries, err := newSpiller(p.TempDir, p.CacheCapacity, p.PendingBatch, unionPostings)
	if err != nil {
		return nil, err
	}
	distinct, err := newSpiller(p.TempDir, p.CacheCapacity, p.PendingBatch, appendFacetValues)
	if err != nil {
		return nil, err
	}

	for _, doc := range docs {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		if err := indexDocument(doc, tok, fields, words, positions, proximity, wordCount, facetEntries, distinct); err != nil {
			return nil, err
		}
	}

	wordRuns, err := words.finish()
	if err != nil {
		return nil, err
	}
	positionRuns, err := positions.finish()
	if err != nil {
		return nil, err
	}
	proximityRuns, err := proximity.finish()
	if err != nil {
		return nil, err
	}
	wordCountRuns, err := wordCount.finish()
	if err != nil {
		return nil, err
	}
	facetRuns, err := facetEntries.finish()
	if err != nil {
		return nil, err
	}
	distinctRuns, err := distinct.finish()
	if err != nil {
		return nil, err
	}

	return &chunkResult{
		wordRuns:      wordRuns,
		positionRuns:  positionRuns,
		proximityRuns: proximityRuns,
		wordCountRuns: wordCountRuns,
		facetRuns:     facetRuns,
		distinctRuns:  distinctRuns,
	}, nil
}

func indexDocument(doc transform.OutputDocument, tok *tokenizer.Tokenizer, fields FieldInfo, words, positions, proximity, wordCount, facetEntries, distinct *spiller) error {
	docPostingBytes, err := posting.Of(doc.InternalID).MarshalBinary()
	if err != nil {
		return fmt.Errorf("invindex: marshal doc posting: %w", err)
	}

	for attr, fieldID := range fields.Searchable {
		raw, ok := doc.Record.Get(fieldID)
		if !ok {
			continue
		}
		v, err := decodeJSONValue(raw)
		if err != nil {
			continue
		}

		if err := indexSearchableField(fieldID, uint16(attr), v, tok, doc.InternalID, docPostingBytes, words, positions, proximity, wordCount); err != nil {
			return err
		}
	}

	for fieldID, kind := range fields.Facets {
		raw, ok := doc.Record.Get(fieldID)
		if !ok {
			continue
		}
		v, err := decodeJSONValue(raw)
		if err != nil {
			continue
		}
		values := facetValues(v, kind)
		if len(values) == 0 {
			continue
		}
		for _, fv := range values {
			if err := facetEntries.add(facetEntryKey(fieldID, fv), docPostingBytes); err != nil {
				return err
			}
		}
		if err := distinct.add(fieldDocidKey(fieldID, doc.InternalID), encodeFacetValues(values)); err != nil {
			return err
		}
	}
	return nil
}

// indexSearchableField tokenizes one field's text and folds every
// occurrence into the word, position and pair-proximity accumulators.
// Proximity pairs are only built within a window of types.MaxProximity
// tokens: pairs further apart than that would clip to the same distance
// bucket as a pair exactly at the window edge, so extending the window
// further only grows the index without adding distinguishing
// information.
func indexSearchableField(fieldID types.FieldID, attr uint16, v interface{}, tok *tokenizer.Tokenizer, docID types.DocID, docPostingBytes []byte, words, positions, proximity, wordCount *spiller) error {
	text := searchableText(v)
	if len(text) == 0 {
		return nil
	}
	var fieldTokens []types.Token
	for _, s := range text {
		fieldTokens = append(fieldTokens, tok.Tokenize(fieldID, attr, s)...)
	}

	wordCountN := 0
	for i, t := range fieldTokens {
		if t.IsStop {
			continue
		}
		wordCountN++
		if err := words.add(wordKey(t.Surface), docPostingBytes); err != nil {
			return err
		}
		if err := positions.add(wordDocidKey(t.Surface, docID), encodePositions([]types.Position{t.Position})); err != nil {
			return err
		}
		for j := i + 1; j < len(fieldTokens) && j-i <= types.MaxProximity; j++ {
			other := fieldTokens[j]
			if other.IsStop {
				continue
			}
			d := types.ProximityBetween(t.Position, other.Position)
			if d == 0 || d > types.MaxProximity {
				continue
			}
			if err := proximity.add(pairProximityKey(t.Surface, other.Surface, d), docPostingBytes); err != nil {
				return err
			}
		}
	}
	if wordCountN == 0 {
		return nil
	}
	return wordCount.add(fieldWordCountKey(fieldID, uint32(wordCountN)), docPostingBytes)
}
