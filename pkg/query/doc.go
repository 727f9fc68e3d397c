/*
Package query expands a raw query string into a query graph: a set of
alternative ways the evaluator may read the same span of the original
query, ordered by how much it trusts each alternative.

Expansion runs the fixed pipeline §4.9 describes: tokenize (honoring
quoted phrases), assign each token a typo-edit budget, try concatenating
adjacent tokens, try splitting single tokens into two known words,
substitute synonym heads through an FST-backed ordered-set lookup, and
finally decide whether the last token should also match as a prefix.
Every stage can only add alternative branches; none of them removes a
token the caller actually typed. The whole expansion is bounded by
max_query_tree_nodes, trimming the lowest-priority branches first when
it overflows.
*/
package query
