package invindex

import "github.com/cuemby/ftscore/pkg/facet"

// Params bounds one Build call's parallelism, memory footprint and
// prefix-postings policy (§4.6, §5).
type Params struct {
	Parallelism     int // T, the number of chunk workers
	CacheCapacity   int // per-structure LRU entries a worker holds before spilling
	PendingBatch    int // evicted entries buffered before a run file is written
	TempDir         string
	MaxPrefixLength int     // longest word prefix indexed
	PrefixThreshold float64 // a word qualifies once its posting exceeds threshold*total_docs
	FacetParams     facet.Params
}

// DefaultParams matches milli's own defaults for prefix indexing and the
// facet tree's shape.
var DefaultParams = Params{
	Parallelism:     4,
	CacheCapacity:   4096,
	PendingBatch:    2000,
	MaxPrefixLength: 4,
	PrefixThreshold: 0.1,
	FacetParams:     facet.DefaultParams,
}
