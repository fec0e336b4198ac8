package store

import (
	"sync/atomic"

	"dat-manager/core/hash"
	"dat-manager/core/models"
)

// BucketBy regroups the store under key and runs the ordering passes.
//
// Items are rekeyed when key differs from the current key type, or, for
// machine keys, when lowercase or norename change. If dedupe differs from
// the mode of the previous call every bucket is sorted and merged under the
// new mode; otherwise every bucket is only sorted. KeyNone keeps the
// current grouping.
func (s *Store) BucketBy(key KeyType, dedupe Dedupe, lowercase, norename bool) {
	defer mon.Task()(nil)(nil)
	s.pass.Lock()
	defer s.pass.Unlock()

	s.bucketBy(key, dedupe, lowercase, norename)
}

func (s *Store) bucketBy(key KeyType, dedupe Dedupe, lowercase, norename bool) {
	if key != KeyNone {
		if key != s.bucketedBy || (key == KeyMachine && (lowercase != s.lowercase || norename != s.norename)) {
			s.rekey(key, lowercase, norename)
		}
		s.bucketedBy = key
	}
	s.lowercase, s.norename = lowercase, norename

	if dedupe != s.dedupedBy {
		s.dedupe(dedupe, norename)
	} else {
		s.sort(norename)
	}
	mon.IntVal("store_buckets").Observe(int64(s.index.len()))
}

// rekey builds a fresh bucket index in parallel and swaps it in. The order
// inside each new bucket depends on scheduling until the next sort.
func (s *Store) rekey(key KeyType, lowercase, norename bool) {
	old := s.index
	next := newBucketIndex()
	s.eachBucket(func(k string) {
		for _, id := range old.snapshot(k) {
			next.add(s.bucketKey(id, key, lowercase, norename), id)
		}
	})
	s.index = next
}

func (s *Store) sort(norename bool) {
	s.eachBucket(func(key string) {
		s.sortBucket(key, norename)
	})
}

func (s *Store) dedupe(mode Dedupe, norename bool) {
	s.dedupedBy = mode
	merge := mode == DedupeFull || (mode == DedupeGame && s.bucketedBy == KeyMachine)

	var merged atomic.Int64
	s.eachBucket(func(key string) {
		sorted := s.sortBucket(key, norename)
		if merge {
			merged.Add(int64(s.mergeBucket(key, sorted)))
		}
	})
	mon.Meter("store_merged_items").Mark64(merged.Load())
}

// BestAvailableKeyType returns the strongest hash kind carried by every
// hashed item that is not Nodump, falling back to CRC. An empty store
// yields CRC.
func (s *Store) BestAvailableKeyType() KeyType {
	if s.stats.Total() == 0 {
		return KeyCRC
	}
	hashed := s.stats.ItemCount(models.TypeDisk) +
		s.stats.ItemCount(models.TypeMedia) +
		s.stats.ItemCount(models.TypeRom) -
		s.stats.StatusCount(models.StatusNodump)

	for _, k := range []hash.Kind{hash.SHA512, hash.SHA384, hash.SHA256, hash.SHA1, hash.MD5, hash.MD4, hash.MD2} {
		if hashed == s.stats.HashCount(k) {
			return HashKey(k)
		}
	}
	return KeyCRC
}
