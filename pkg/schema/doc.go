// Package schema implements the bidirectional mapping between user-facing
// field names and the stable, dense small integers ("field ids") every
// other layer indexes by, plus the index's primary-key bookkeeping.
//
// A Schema is loaded once per transaction from the "main" database and
// mutated in place; callers persist it by calling Save before commit, the
// same pattern the document store (pkg/document) uses for its counters.
package schema
