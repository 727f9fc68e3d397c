package tokenizer

import (
	"strconv"
	"strings"

	"github.com/blevesearch/segment"
	"github.com/cuemby/ftscore/pkg/types"
)

// Tokenizer produces position-tagged token streams from field values. It
// holds the current stop-word set; settings changes replace it wholesale
// (L8 rebuilds the Tokenizer rather than mutating one in place, so a
// worker holding a reference never observes a mid-operation change).
type Tokenizer struct {
	stopWords map[string]struct{}
}

// New builds a Tokenizer with the given normalized stop words.
func New(stopWords []string) *Tokenizer {
	t := &Tokenizer{stopWords: make(map[string]struct{}, len(stopWords))}
	for _, w := range stopWords {
		t.stopWords[Normalize(w)] = struct{}{}
	}
	return t
}

// Normalize applies the same lowercasing every surface form passes
// through before comparison or storage. It is idempotent:
// Normalize(Normalize(s)) == Normalize(s).
func Normalize(s string) string {
	return strings.ToLower(s)
}

// Tokenize splits value into a finite stream of tokens tagged with
// attribute and a per-call, zero-based intra-attribute word index.
// Numeric values collapse to a single token whose surface is the
// canonical decimal form of the number; text is split on Unicode word
// boundaries (UAX #29) via blevesearch/segment, lowercased, and checked
// against the stop-word set last, per the tokenizer contract (§4.4).
func (t *Tokenizer) Tokenize(fieldID types.FieldID, attribute uint16, value string) []types.Token {
	if canon, ok := canonicalNumber(value); ok {
		pos := types.NewPosition(attribute, 0)
		return []types.Token{{
			FieldID:  fieldID,
			Position: pos,
			Surface:  canon,
			IsWord:   true,
			IsStop:   false,
		}}
	}

	seg := segment.NewWordSegmenter(strings.NewReader(value))
	var tokens []types.Token
	var wordIndex uint16
	for seg.Segment() {
		if seg.Type() == segment.None {
			continue
		}
		raw := string(seg.Bytes())
		surface := raw
		if seg.Type() == segment.Number {
			if canon, ok := canonicalNumber(raw); ok {
				surface = canon
			}
		} else {
			surface = Normalize(raw)
		}
		_, isStop := t.stopWords[surface]
		tokens = append(tokens, types.Token{
			FieldID:  fieldID,
			Position: types.NewPosition(attribute, wordIndex),
			Surface:  surface,
			IsWord:   true,
			IsStop:   isStop,
		})
		wordIndex++
	}
	return tokens
}

// canonicalNumber reports whether s parses as a finite number and, if
// so, its canonical non-exponential decimal form.
func canonicalNumber(s string) (string, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return "", false
	}
	return strconv.FormatFloat(f, 'f', -1, 64), true
}
