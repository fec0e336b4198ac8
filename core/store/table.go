package store

import (
	"slices"
	"sync"
)

const numShards = 64

type shard[K ~int64, V any] struct {
	mu sync.RWMutex
	m  map[K]V
}

// table is a handle-keyed map split across independently locked shards so
// workers on different buckets rarely contend.
type table[K ~int64, V any] struct {
	shards [numShards]shard[K, V]
}

func newTable[K ~int64, V any]() *table[K, V] {
	t := &table[K, V]{}
	for i := range t.shards {
		t.shards[i].m = make(map[K]V)
	}
	return t
}

func (t *table[K, V]) shard(k K) *shard[K, V] {
	return &t.shards[uint64(k)%numShards]
}

func (t *table[K, V]) get(k K) (V, bool) {
	s := t.shard(k)
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.m[k]
	return v, ok
}

func (t *table[K, V]) set(k K, v V) {
	s := t.shard(k)
	s.mu.Lock()
	s.m[k] = v
	s.mu.Unlock()
}

func (t *table[K, V]) delete(k K) (V, bool) {
	s := t.shard(k)
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.m[k]
	if ok {
		delete(s.m, k)
	}
	return v, ok
}

func (t *table[K, V]) len() int {
	n := 0
	for i := range t.shards {
		s := &t.shards[i]
		s.mu.RLock()
		n += len(s.m)
		s.mu.RUnlock()
	}
	return n
}

// keys returns every key in ascending order.
func (t *table[K, V]) keys() []K {
	out := make([]K, 0, t.len())
	for i := range t.shards {
		s := &t.shards[i]
		s.mu.RLock()
		for k := range s.m {
			out = append(out, k)
		}
		s.mu.RUnlock()
	}
	slices.Sort(out)
	return out
}

// each calls fn for every entry. fn must not call back into the table.
func (t *table[K, V]) each(fn func(K, V)) {
	for i := range t.shards {
		s := &t.shards[i]
		s.mu.RLock()
		for k, v := range s.m {
			fn(k, v)
		}
		s.mu.RUnlock()
	}
}
