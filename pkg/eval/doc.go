// Package eval implements the ranked evaluator (§4.10): it turns a query
// graph plus an optional filter, sort and distinct configuration into an
// ordered list of internal document ids via a bucket-sort descent over
// the configured criteria.
package eval
