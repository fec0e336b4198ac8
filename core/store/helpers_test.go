package store

import (
	"testing"

	"dat-manager/core/hash"
	"dat-manager/core/models"

	"go.uber.org/zap/zaptest"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return New(zaptest.NewLogger(t), 4)
}

func rom(name string, hashes map[hash.Kind]string) *models.Item {
	it := &models.Item{Type: models.TypeRom, Name: name, Status: models.StatusGood}
	for k, v := range hashes {
		it.SetHash(k, v)
	}
	return it
}

func crcRom(name, crc string) *models.Item {
	return rom(name, map[hash.Kind]string{hash.CRC: crc})
}

// names returns the item names of a bucket in order.
func names(s *Store, key string) []string {
	var out []string
	for _, id := range s.ItemsInBucket(key, true) {
		it, _ := s.GetItem(id)
		out = append(out, it.Name)
	}
	return out
}

// arrangement captures every bucket with its ordered item names.
func arrangement(s *Store) map[string][]string {
	out := make(map[string][]string)
	for _, key := range s.SortedBuckets() {
		out[key] = names(s, key)
	}
	return out
}
