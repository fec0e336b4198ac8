package store

import (
	"slices"
	"sync"
)

type bucket struct {
	mu  sync.Mutex
	ids []ItemID
}

// bucketIndex maps bucket keys to ordered item handles. The map lock is
// always taken before a bucket lock. Appends and in-place edits hold the map
// read lock for their whole duration so pruning, which needs the write lock,
// never detaches a bucket that is being written.
type bucketIndex struct {
	mu      sync.RWMutex
	buckets map[string]*bucket
	keys    *table[ItemID, string]
}

func newBucketIndex() *bucketIndex {
	return &bucketIndex{
		buckets: make(map[string]*bucket),
		keys:    newTable[ItemID, string](),
	}
}

func (x *bucketIndex) add(key string, id ItemID) {
	x.keys.set(id, key)

	x.mu.RLock()
	if b, ok := x.buckets[key]; ok {
		b.mu.Lock()
		b.ids = append(b.ids, id)
		b.mu.Unlock()
		x.mu.RUnlock()
		return
	}
	x.mu.RUnlock()

	x.mu.Lock()
	defer x.mu.Unlock()
	b, ok := x.buckets[key]
	if !ok {
		b = &bucket{}
		x.buckets[key] = b
	}
	b.mu.Lock()
	b.ids = append(b.ids, id)
	b.mu.Unlock()
}

func (x *bucketIndex) keyOf(id ItemID) (string, bool) {
	return x.keys.get(id)
}

// forget drops the handle-to-key entry without touching the bucket list.
func (x *bucketIndex) forget(id ItemID) {
	x.keys.delete(id)
}

func (x *bucketIndex) remove(id ItemID) {
	key, ok := x.keys.delete(id)
	if !ok {
		return
	}

	empty := false
	x.mu.RLock()
	if b, ok := x.buckets[key]; ok {
		b.mu.Lock()
		if i := slices.Index(b.ids, id); i >= 0 {
			b.ids = slices.Delete(b.ids, i, i+1)
		}
		empty = len(b.ids) == 0
		b.mu.Unlock()
	}
	x.mu.RUnlock()

	if empty {
		x.prune(key)
	}
}

func (x *bucketIndex) prune(key string) {
	x.mu.Lock()
	defer x.mu.Unlock()
	b, ok := x.buckets[key]
	if !ok {
		return
	}
	b.mu.Lock()
	empty := len(b.ids) == 0
	b.mu.Unlock()
	if empty {
		delete(x.buckets, key)
	}
}

// snapshot returns a copy of the handles in a bucket.
func (x *bucketIndex) snapshot(key string) []ItemID {
	x.mu.RLock()
	defer x.mu.RUnlock()
	b, ok := x.buckets[key]
	if !ok {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.ids)
}

// replace swaps the ordered handle list of an existing bucket.
func (x *bucketIndex) replace(key string, ids []ItemID) {
	x.mu.RLock()
	if b, ok := x.buckets[key]; ok {
		b.mu.Lock()
		b.ids = ids
		b.mu.Unlock()
	}
	x.mu.RUnlock()

	if len(ids) == 0 {
		x.prune(key)
	}
}

// drop removes a bucket and returns the handles it held.
func (x *bucketIndex) drop(key string) []ItemID {
	x.mu.Lock()
	b, ok := x.buckets[key]
	if ok {
		delete(x.buckets, key)
	}
	x.mu.Unlock()
	if !ok {
		return nil
	}

	b.mu.Lock()
	ids := b.ids
	b.ids = nil
	b.mu.Unlock()
	for _, id := range ids {
		x.keys.delete(id)
	}
	return ids
}

func (x *bucketIndex) list() []string {
	x.mu.RLock()
	defer x.mu.RUnlock()
	out := make([]string, 0, len(x.buckets))
	for k := range x.buckets {
		out = append(out, k)
	}
	return out
}

func (x *bucketIndex) len() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.buckets)
}
