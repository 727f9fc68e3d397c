// Package mergeiter implements the k-way streaming merge used by both the
// transform's external sort (L5) and the inverted-index builder's run-file
// merge (L6): a min-heap over one cursor per source, pulled by the caller
// with Next, never buffering more than one pending entry per source.
//
// This is a pull iterator, not a goroutine/channel pipeline — the design
// note on coroutine-style streaming merges calls for exactly that: "a
// min-heap of (current_key, current_value, source_cursor); no suspension;
// the caller drives with next()".
package mergeiter
