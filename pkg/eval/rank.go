package eval

import (
	"context"
	"sort"

	"github.com/cuemby/ftscore/pkg/types"
)

// rankDocs descends the criteria stack (§4.10's bucket-sort descent):
// at each level it partitions the current candidates into best-first
// buckets for criteria[idx] and recurses into each bucket in order,
// giving each a share of the still-needed result count, until either the
// criteria run out or a bucket is small enough to flush as-is in
// ascending doc-id order. ctx is polled once per criterion boundary
// (§5); a full 4,096-document intra-criterion check is not implemented,
// since the per-criterion partition pass here is already a single
// in-memory map build rather than the streaming scan the budget figure
// assumes.
func rankDocs(ctx context.Context, ids []types.DocID, criteria []criterion, idx int, needed int) ([]types.DocID, bool) {
	if idx >= len(criteria) || len(ids) <= needed {
		out := append([]types.DocID(nil), ids...)
		sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
		return out, false
	}
	select {
	case <-ctx.Done():
		out := append([]types.DocID(nil), ids...)
		sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
		if len(out) > needed {
			out = out[:needed]
		}
		return out, true
	default:
	}

	buckets := partition(ids, criteria[idx])
	var out []types.DocID
	var partial bool
	for _, bucket := range buckets {
		if len(out) >= needed {
			break
		}
		remaining := needed - len(out)
		sub, p := rankDocs(ctx, bucket, criteria, idx+1, remaining)
		out = append(out, sub...)
		if p {
			partial = true
			break
		}
	}
	return out, partial
}
