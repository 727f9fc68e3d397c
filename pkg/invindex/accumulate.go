package invindex

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru"

	"github.com/cuemby/ftscore/pkg/mergeiter"
)

// spiller accumulates (key, value) pairs for one target structure inside
// one chunk worker, bounded by an LRU cache: once the cache is full the
// oldest entry is evicted into a pending batch, which is flushed to a
// sorted run file once it grows past pendingBatch entries. finish flushes
// whatever remains and returns every run file this spiller produced.
type spiller struct {
	dir          string
	combine      combineFunc
	cache        *lru.Cache
	pending      []mergeiter.Entry
	pendingBatch int
	runs         []*mergeiter.RunFile
	err          error
}

func newSpiller(dir string, capacity, pendingBatch int, combine combineFunc) (*spiller, error) {
	s := &spiller{dir: dir, combine: combine, pendingBatch: pendingBatch}
	cache, err := lru.NewWithEvict(capacity, s.onEvict)
	if err != nil {
		return nil, fmt.Errorf("invindex: create accumulator cache: %w", err)
	}
	s.cache = cache
	return s, nil
}

func (s *spiller) onEvict(key, value interface{}) {
	s.pending = append(s.pending, mergeiter.Entry{Key: []byte(key.(string)), Value: value.([]byte)})
}

// add merges value into whatever is already staged in the cache for key.
func (s *spiller) add(key []byte, value []byte) error {
	if s.err != nil {
		return s.err
	}
	k := string(key)
	if existing, ok := s.cache.Get(k); ok {
		merged, err := s.combine(existing.([]byte), value)
		if err != nil {
			s.err = err
			return err
		}
		value = merged
	}
	s.cache.Add(k, value)
	if len(s.pending) >= s.pendingBatch {
		if err := s.flush(); err != nil {
			s.err = err
			return err
		}
	}
	return nil
}

func (s *spiller) flush() error {
	if len(s.pending) == 0 {
		return nil
	}
	rf, err := mergeiter.WriteRun(s.dir, s.pending)
	if err != nil {
		return fmt.Errorf("invindex: spill run file: %w", err)
	}
	s.runs = append(s.runs, rf)
	s.pending = nil
	return nil
}

// finish flushes every remaining cache entry and pending batch.
func (s *spiller) finish() ([]*mergeiter.RunFile, error) {
	if s.err != nil {
		return nil, s.err
	}
	for _, k := range s.cache.Keys() {
		v, ok := s.cache.Peek(k)
		if !ok {
			continue
		}
		s.pending = append(s.pending, mergeiter.Entry{Key: []byte(k.(string)), Value: v.([]byte)})
	}
	if err := s.flush(); err != nil {
		return nil, err
	}
	return s.runs, nil
}
