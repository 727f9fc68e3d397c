// Package document implements the document store (L3): the map from
// internal document id to a packed field-id -> raw-bytes record, and the
// external-id <-> internal-id map that lets callers address a document by
// its user-facing primary key value.
//
// All functions here take an explicit bucket from an open pkg/kv
// transaction; the package holds no state of its own so every mutation
// is visible to the caller's commit/abort exactly like the underlying
// store.
package document
