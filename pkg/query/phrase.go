package query

import "strings"

// segment is one span of the raw query string: either free text, which
// the rest of expansion tokenizes and fans out over, or a quoted phrase,
// which becomes a single Phrase node with no typo tolerance and no
// split/concat expansion (§11).
type segment struct {
	text   string
	phrase bool
}

// splitPhrases scans q for `"..."` spans and returns the alternating
// sequence of free-text and phrase segments, in order. An unterminated
// trailing quote is treated as a phrase running to the end of the
// string, matching how a user's query editor shows it rather than
// silently dropping the dangling quote.
func splitPhrases(q string) []segment {
	var out []segment
	for len(q) > 0 {
		i := strings.IndexByte(q, '"')
		if i < 0 {
			out = append(out, segment{text: q})
			break
		}
		if i > 0 {
			out = append(out, segment{text: q[:i]})
		}
		rest := q[i+1:]
		j := strings.IndexByte(rest, '"')
		if j < 0 {
			out = append(out, segment{text: rest, phrase: true})
			break
		}
		out = append(out, segment{text: rest[:j], phrase: true})
		q = rest[j+1:]
	}
	return out
}
