// Package invindex implements the inverted index builder (L6): from a
// batch of transformed documents it produces word postings, per-document
// position lists, word-pair proximity postings, field word-count
// postings, facet level-0 entries (handed to pkg/facet), distinct-support
// facet value sets, and prefix-word postings.
//
// Build fans a batch out across a bounded worker pool (golang.org/x/sync/
// errgroup); each worker tokenizes its chunk and accumulates into
// LRU-bounded maps (hashicorp/golang-lru) that spill to sorted run files
// on eviction. A single coordinator then k-way merges every structure's
// run files (pkg/mergeiter) and persists the result, the only point at
// which this layer touches the write transaction.
package invindex
