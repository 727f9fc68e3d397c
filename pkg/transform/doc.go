// Package transform implements the bulk-document transform (L5): it turns
// a batch of incoming records (JSON, NDJSON or CSV) into a sorted,
// deduplicated stream of (internal_id, packed_record) pairs, choosing
// replace-vs-merge semantics per primary key and assigning fresh internal
// ids for previously unseen external ids.
//
// Apply is a pure computation: it reads the current schema and document
// store state but writes nothing. The caller — the top-level indexing
// transaction — applies the returned Output by persisting the schema,
// the document records, the external-id mappings and the document id
// counter, then hands the same Output to the inverted-index builder
// (pkg/invindex). This mirrors §4.5's "a transform produces no
// persistent side effects until L6 consumes it."
package transform
