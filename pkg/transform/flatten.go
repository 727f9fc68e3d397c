package transform

import (
	"encoding/json"
	"sort"

	"github.com/cuemby/ftscore/pkg/schema"
)

// leaf is one flattened (dotted-path, raw-JSON-value) pair.
type leaf struct {
	path  string
	value json.RawMessage
}

// flatten walks a JSON object recursively, materializing nested objects
// as distinct dotted field paths (§4.2); arrays and scalars are kept as
// the verbatim value of their own leaf, not expanded further.
func flatten(fields map[string]json.RawMessage) []leaf {
	var out []leaf
	var walk func(prefix string, obj map[string]json.RawMessage)
	walk = func(prefix string, obj map[string]json.RawMessage) {
		names := make([]string, 0, len(obj))
		for name := range obj {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			raw := obj[name]
			path := name
			if prefix != "" {
				path = schema.JoinPath([]string{prefix, name})
			}
			var nested map[string]json.RawMessage
			if looksLikeObject(raw) && json.Unmarshal(raw, &nested) == nil {
				walk(path, nested)
				continue
			}
			out = append(out, leaf{path: path, value: raw})
		}
	}
	walk("", fields)
	return out
}

func looksLikeObject(raw json.RawMessage) bool {
	for _, b := range raw {
		switch b {
		case ' ', '\t', '\n', '\r':
			continue
		case '{':
			return true
		default:
			return false
		}
	}
	return false
}
