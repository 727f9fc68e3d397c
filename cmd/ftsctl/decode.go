package main

import (
	"encoding/json"

	"github.com/cuemby/ftscore/pkg/document"
	"github.com/cuemby/ftscore/pkg/schema"
)

// decodeRecord turns a stored record's raw per-field JSON bytes back
// into a plain map, keyed by field name, for display. A field whose
// name no longer resolves (deleted from the schema after indexing) is
// skipped rather than erroring.
func decodeRecord(sch *schema.Schema, rec *document.Record) map[string]interface{} {
	out := map[string]interface{}{}
	for _, f := range rec.Fields() {
		name, ok := sch.NameOf(f.ID)
		if !ok {
			continue
		}
		var v interface{}
		if err := json.Unmarshal(f.Value, &v); err != nil {
			continue
		}
		out[name] = v
	}
	return out
}
