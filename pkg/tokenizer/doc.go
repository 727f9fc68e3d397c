// Package tokenizer implements the tokenizer interface (L4): it turns one
// field's raw text value into a finite, restartable stream of
// position-tagged tokens, applying Unicode word segmentation, lowercase
// normalization, stop-word marking and numeric canonicalization.
//
// Word boundaries are found with blevesearch/segment's UAX#29
// implementation rather than a hand-rolled splitter, the same library the
// rest of the bleve-family indexers in this corpus use for their unicode
// analyzer.
package tokenizer
