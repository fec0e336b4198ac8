package store

import (
	"fmt"
	"slices"
	"strings"

	"dat-manager/core/hash"
	"dat-manager/core/natural"
)

// SortedBuckets returns every bucket key in natural order.
func (s *Store) SortedBuckets() []string {
	keys := s.index.list()
	slices.SortFunc(keys, natural.Compare)
	return keys
}

// BucketCount returns the number of non-empty buckets.
func (s *Store) BucketCount() int {
	return s.index.len()
}

// ItemsInBucket returns the ordered handles of a bucket. A missing key
// yields nil. With filterRemoved, marked items are left out.
func (s *Store) ItemsInBucket(key string, filterRemoved bool) []ItemID {
	ids := s.index.snapshot(key)
	if !filterRemoved {
		return ids
	}
	out := ids[:0]
	for _, id := range ids {
		if item, ok := s.items.get(id); ok && !item.Remove {
			out = append(out, id)
		}
	}
	return out
}

// BucketOf returns the key of the bucket holding an item.
func (s *Store) BucketOf(id ItemID) (string, bool) {
	return s.index.keyOf(id)
}

// RemoveBucket deletes a bucket and every item in it. It returns the number
// of items removed.
func (s *Store) RemoveBucket(key string) int {
	n := 0
	for _, id := range s.index.drop(key) {
		if s.detach(id) {
			n++
		}
	}
	return n
}

// bucketKey computes the key of an item under the given key type.
func (s *Store) bucketKey(id ItemID, key KeyType, lowercase, norename bool) string {
	if kind, ok := key.HashKind(); ok {
		item, found := s.items.get(id)
		if !found {
			return hash.Zeroes(kind)
		}
		if v := item.Hashes.Get(kind); v != "" {
			return v
		}
		return hash.Zeroes(kind)
	}

	name := "Default"
	if mid, ok := s.itemMachine.get(id); ok {
		if m, ok := s.machines.get(mid); ok && m.Name != "" {
			name = m.Name
		}
	}
	if !norename {
		index := 0
		if sid, ok := s.itemSource.get(id); ok {
			if src, ok := s.sources.get(sid); ok {
				index = src.Index
			}
		}
		name = fmt.Sprintf("%010d-%s", index, name)
	}
	if lowercase {
		name = strings.ToLower(name)
	}
	return name
}
