package eval

import (
	"fmt"
	"strings"

	"github.com/cuemby/ftscore/pkg/types"
)

type tokenKind uint8

const (
	tokEOF tokenKind = iota
	tokIdent
	tokString
	tokLParen
	tokRParen
	tokLBracket
	tokRBracket
	tokComma
	tokOp // = != < <= > >=
)

type filterToken struct {
	kind tokenKind
	text string
}

// lexFilter splits a filter expression into tokens. Bareword identifiers
// (field names, keywords, unquoted literals) run until whitespace or a
// delimiter; quoted strings use either ' or " and support no escapes
// beyond the closing quote itself, matching the tokenizer's own treatment
// of quoted phrases.
func lexFilter(src string) ([]filterToken, error) {
	var out []filterToken
	i := 0
	for i < len(src) {
		c := src[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case c == '(':
			out = append(out, filterToken{kind: tokLParen, text: "("})
			i++
		case c == ')':
			out = append(out, filterToken{kind: tokRParen, text: ")"})
			i++
		case c == '[':
			out = append(out, filterToken{kind: tokLBracket, text: "["})
			i++
		case c == ']':
			out = append(out, filterToken{kind: tokRBracket, text: "]"})
			i++
		case c == ',':
			out = append(out, filterToken{kind: tokComma, text: ","})
			i++
		case c == '\'' || c == '"':
			j := strings.IndexByte(src[i+1:], c)
			if j < 0 {
				return nil, fmt.Errorf("unterminated string literal: %w", types.ErrInvalidFilter)
			}
			out = append(out, filterToken{kind: tokString, text: src[i+1 : i+1+j]})
			i = i + 1 + j + 1
		case c == '!' || c == '<' || c == '>' || c == '=':
			if i+1 < len(src) && src[i+1] == '=' {
				out = append(out, filterToken{kind: tokOp, text: src[i : i+2]})
				i += 2
			} else {
				out = append(out, filterToken{kind: tokOp, text: src[i : i+1]})
				i++
			}
		default:
			j := i
			for j < len(src) && !strings.ContainsRune(" \t\n\r()[],!<>=", rune(src[j])) {
				j++
			}
			if j == i {
				return nil, fmt.Errorf("unexpected character %q: %w", src[i], types.ErrInvalidFilter)
			}
			out = append(out, filterToken{kind: tokIdent, text: src[i:j]})
			i = j
		}
	}
	out = append(out, filterToken{kind: tokEOF})
	return out, nil
}
