package mergeiter

import (
	"bytes"
	"container/heap"
)

// Source is one sorted run a Merger pulls from. Next returns ok=false once
// exhausted; a non-nil err aborts the merge.
type Source interface {
	Next() (key, value []byte, ok bool, err error)
}

type item struct {
	key, value []byte
	sourceIdx  int
}

type itemHeap []item

func (h itemHeap) Len() int { return len(h) }
func (h itemHeap) Less(i, j int) bool {
	c := bytes.Compare(h[i].key, h[j].key)
	if c != 0 {
		return c < 0
	}
	// stable tie-break: earlier source first, preserving declaration order
	// for equal keys the way a single-threaded sort would.
	return h[i].sourceIdx < h[j].sourceIdx
}
func (h itemHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *itemHeap) Push(x interface{}) { *h = append(*h, x.(item)) }
func (h *itemHeap) Pop() interface{} {
	old := *h
	n := len(old)
	it := old[n-1]
	*h = old[:n-1]
	return it
}

// Merger merges any number of ascending-key sources into one ascending-key
// stream. Equal keys from different sources are both emitted, in source
// order; callers that need per-key combining group consecutive
// equal-key results themselves.
type Merger struct {
	sources []Source
	h       itemHeap
	err     error
}

// New builds a Merger and primes it by pulling one entry from every
// source.
func New(sources []Source) (*Merger, error) {
	m := &Merger{sources: sources}
	heap.Init(&m.h)
	for i, s := range sources {
		if err := m.pull(i, s); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Merger) pull(idx int, s Source) error {
	k, v, ok, err := s.Next()
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	heap.Push(&m.h, item{key: k, value: v, sourceIdx: idx})
	return nil
}

// Next returns the next entry in ascending key order, or ok=false once
// every source is exhausted.
func (m *Merger) Next() (key, value []byte, ok bool, err error) {
	if m.err != nil {
		return nil, nil, false, m.err
	}
	if m.h.Len() == 0 {
		return nil, nil, false, nil
	}
	top := heap.Pop(&m.h).(item)
	if err := m.pull(top.sourceIdx, m.sources[top.sourceIdx]); err != nil {
		m.err = err
		return nil, nil, false, err
	}
	return top.key, top.value, true, nil
}
