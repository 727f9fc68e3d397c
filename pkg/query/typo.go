package query

import "github.com/cuemby/ftscore/pkg/settings"

// editBudget assigns the 0/1/2 typo budget §4.9 step 2 describes, then
// forces it to 0 for exact words (§11): a word's own length decides the
// default budget, but an exact-words entry always overrides it to 0
// regardless of length. Per-attribute exact overrides (IsExactAttribute)
// are resolved at evaluation time against the field a candidate match
// actually occurred in, since one query graph is shared across every
// searchable field.
func editBudget(word string, s settings.Settings) uint8 {
	if !s.AuthorizeTypos || isExactWord(word, s.ExactWords) {
		return 0
	}
	n := len([]rune(word))
	if n < int(s.MinWordLenOneTypo) {
		return 0
	}
	if n < int(s.MinWordLenTwoTypos) {
		return 1
	}
	return 2
}

func isExactWord(word string, exactWords []string) bool {
	for _, w := range exactWords {
		if w == word {
			return true
		}
	}
	return false
}

// IsExactAttribute reports whether name is configured as an exact
// attribute, consulted by the evaluator (L10) per candidate field
// rather than by expansion itself (§11).
func IsExactAttribute(name string, exactAttributes []string) bool {
	for _, a := range exactAttributes {
		if a == name {
			return true
		}
	}
	return false
}
