package store

import (
	"dat-manager/core/hash"
	"dat-manager/core/models"
)

// Duplicates returns the live items equal to item. Unless sorted is set and
// the store is already bucketed by a hash key, the store is first rebucketed
// by BestAvailableKeyType without merging.
func (s *Store) Duplicates(item *models.Item, sorted bool) []ItemID {
	if item == nil {
		return nil
	}
	if _, hashed := s.bucketedBy.HashKind(); !sorted || !hashed {
		s.BucketBy(s.BestAvailableKeyType(), DedupeNone, s.lowercase, s.norename)
	}

	kind, _ := s.bucketedBy.HashKind()
	key := item.Hashes.Get(kind)
	if key == "" {
		key = hash.Zeroes(kind)
	}

	var out []ItemID
	for _, id := range s.ItemsInBucket(key, true) {
		if other, ok := s.items.get(id); ok && other.Equal(item) {
			out = append(out, id)
		}
	}
	return out
}

// HasDuplicates reports whether any live item equals item.
func (s *Store) HasDuplicates(item *models.Item, sorted bool) bool {
	return len(s.Duplicates(item, sorted)) > 0
}
