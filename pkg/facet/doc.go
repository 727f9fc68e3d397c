// Package facet implements the per-field, per-type facet tree (L7): a
// B-tree-like layered structure mapping facet values to document-id
// postings, built in bulk at level 0 by the inverted-index builder
// (pkg/invindex) and maintained incrementally thereafter by Insert and
// Delete. See the data-model invariants: level 0 holds one node per
// distinct value; level L+1 groups consecutive level-L nodes, each
// carrying the union of its children's postings; node sizes on levels
// ≥ 1 stay within [group_size/2, max_group_size), splitting and
// collapsing levels as values come and go.
package facet
