/*
Package types defines the value types shared by every layer of the
indexing and query pipeline — field and document identifiers, the
position-tagged Token and DocIndex posting primitives, FacetValue, and the
sentinel errors each layer wraps to report its failure kind.

These are plain values with no storage or indexing behavior of their own;
that behavior lives in kv, schema, document, tokenizer, transform,
invindex, facet, settings, query and eval.
*/
package types
