package store

import (
	"fmt"
	"sync"
	"testing"

	"dat-manager/core/hash"
	"dat-manager/core/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdd_Normalization(t *testing.T) {
	t.Run("no size and no hashes is left alone", func(t *testing.T) {
		s := newTestStore(t)
		it := &models.Item{Type: models.TypeRom, Name: "a"}
		s.Add(it, 0, 0)
		assert.Nil(t, it.Size)
		assert.True(t, it.Hashes.Empty())
		assert.Equal(t, models.StatusNone, it.Status)
	})

	t.Run("zero size becomes canonical empty file", func(t *testing.T) {
		s := newTestStore(t)
		it := &models.Item{Type: models.TypeRom, Name: "a", Size: models.Size(0), Status: models.StatusGood}
		s.Add(it, 0, 0)
		for _, k := range models.TypeRom.Hashes() {
			assert.Equal(t, hash.EmptyFile(k), it.Hashes.Get(k), k.String())
		}
		assert.Equal(t, models.StatusGood, it.Status)
	})

	t.Run("empty crc without size becomes canonical empty file", func(t *testing.T) {
		s := newTestStore(t)
		it := crcRom("a", "00000000")
		s.Add(it, 0, 0)
		require.NotNil(t, it.Size)
		assert.Equal(t, int64(0), *it.Size)
		assert.Equal(t, hash.EmptyFile(hash.SHA1), it.Hashes.Get(hash.SHA1))
	})

	t.Run("file gets only its own kinds", func(t *testing.T) {
		s := newTestStore(t)
		it := &models.Item{Type: models.TypeFile, Name: "f", Size: models.Size(0)}
		s.Add(it, 0, 0)
		assert.Equal(t, hash.EmptyFile(hash.SHA256), it.Hashes.Get(hash.SHA256))
		assert.Empty(t, it.Hashes.Get(hash.SHA512))
	})

	t.Run("sized item without hashes becomes nodump", func(t *testing.T) {
		s := newTestStore(t)
		it := &models.Item{Type: models.TypeRom, Name: "a", Size: models.Size(1024)}
		s.Add(it, 0, 0)
		assert.Equal(t, models.StatusNodump, it.Status)
	})

	t.Run("disk is not normalized", func(t *testing.T) {
		s := newTestStore(t)
		it := &models.Item{Type: models.TypeDisk, Name: "d"}
		s.Add(it, 0, 0)
		assert.Equal(t, models.StatusNone, it.Status)
	})
}

func TestStore_Relations(t *testing.T) {
	s := newTestStore(t)
	m := s.AddMachine(models.Machine{Name: "Game"})
	src := s.AddSource(models.Source{Index: 3, Name: "a.dat"})
	id := s.Add(crcRom("a.bin", "11111111"), m, src)

	gotM, ok := s.MachineOf(id)
	require.True(t, ok)
	assert.Equal(t, m, gotM)

	ref, ok := s.Ref(id)
	require.True(t, ok)
	assert.Equal(t, "Game", ref.Machine.Name)
	assert.Equal(t, 3, ref.Source.Index)

	byName, ok := s.MachineByName("Game")
	assert.True(t, ok)
	assert.Equal(t, m, byName)
	_, ok = s.MachineByName("missing")
	assert.False(t, ok)

	assert.True(t, s.Remove(id))
	assert.False(t, s.Remove(id))
	_, ok = s.MachineOf(id)
	assert.False(t, ok)
	_, ok = s.SourceOf(id)
	assert.False(t, ok)
	assert.Empty(t, s.SortedBuckets())
	assert.Equal(t, int64(0), s.Statistics().Total())
}

func TestStore_LookupMiss(t *testing.T) {
	s := newTestStore(t)
	assert.Nil(t, s.ItemsInBucket("nope", true))
	_, ok := s.GetItem(42)
	assert.False(t, ok)
	_, ok = s.Ref(42)
	assert.False(t, ok)
	assert.False(t, s.Update(42, func(*models.Item) {}))
	assert.Equal(t, 0, s.RemoveBucket("nope"))
}

func TestStore_MarkAndClear(t *testing.T) {
	s := newTestStore(t)
	m := s.AddMachine(models.Machine{Name: "Game"})
	a := s.Add(crcRom("a", "11111111"), m, 0)
	b := s.Add(crcRom("b", "22222222"), m, 0)
	s.Add(crcRom("c", "33333333"), m, 0)

	assert.True(t, s.MarkRemoved(a))
	assert.True(t, s.MarkRemoved(a))
	assert.Equal(t, int64(2), s.Statistics().Total())

	key, ok := s.BucketOf(b)
	require.True(t, ok)
	assert.Len(t, s.ItemsInBucket(key, true), 2)
	assert.Len(t, s.ItemsInBucket(key, false), 3)

	assert.Equal(t, 1, s.ClearMarked())
	assert.Equal(t, 2, s.Len())
	assert.Equal(t, int64(2), s.Statistics().Total())

	before := s.Stats()
	s.RecomputeStatistics()
	assert.Equal(t, before, s.Stats())
}

func TestStore_Update(t *testing.T) {
	s := newTestStore(t)
	id := s.Add(crcRom("a", "11111111"), 0, 0)

	s.Update(id, func(it *models.Item) {
		it.SetHash(hash.SHA1, "da39a3ee5e6b4b0d3255bfef95601890afd80709")
		it.Status = models.StatusVerified
	})
	assert.Equal(t, int64(1), s.Statistics().HashCount(hash.SHA1))
	assert.Equal(t, int64(1), s.Statistics().StatusCount(models.StatusVerified))
	assert.Equal(t, int64(0), s.Statistics().StatusCount(models.StatusGood))
}

func TestStore_RemoveMachines(t *testing.T) {
	s := newTestStore(t)
	keep := s.AddMachine(models.Machine{Name: "Keep"})
	drop := s.AddMachine(models.Machine{Name: "Drop"})
	s.Add(crcRom("a", "11111111"), keep, 0)
	s.Add(crcRom("b", "22222222"), drop, 0)
	s.Add(crcRom("c", "33333333"), drop, 0)
	s.BucketBy(KeyMachine, DedupeNone, false, true)
	require.Equal(t, []string{"Drop", "Keep"}, s.SortedBuckets())

	assert.Equal(t, 2, s.RemoveMachine(drop))
	_, ok := s.GetMachine(drop)
	assert.False(t, ok)
	assert.Equal(t, 1, s.Len())
	assert.Equal(t, int64(1), s.Statistics().Total())
	assert.Equal(t, []string{"Keep"}, s.SortedBuckets())
	assert.Nil(t, s.ItemsInBucket("Drop", false))
	assert.Equal(t, 1, s.BucketCount())
}

func TestStore_RemoveKeepsBucketsConsistent(t *testing.T) {
	s := newTestStore(t)
	m := s.AddMachine(models.Machine{Name: "Game"})
	a := s.Add(crcRom("a", "11111111"), m, 0)
	b := s.Add(crcRom("b", "22222222"), m, 0)

	key, ok := s.BucketOf(a)
	require.True(t, ok)

	require.True(t, s.Remove(a))
	assert.Equal(t, []ItemID{b}, s.ItemsInBucket(key, false))
	_, ok = s.BucketOf(a)
	assert.False(t, ok)

	require.True(t, s.Remove(b))
	assert.Nil(t, s.ItemsInBucket(key, false))
	assert.Empty(t, s.SortedBuckets())
	assert.Equal(t, 0, s.BucketCount())
}

func TestStore_RemoveBucket(t *testing.T) {
	s := newTestStore(t)
	m := s.AddMachine(models.Machine{Name: "Game"})
	s.Add(crcRom("a", "11111111"), m, 0)
	s.Add(crcRom("b", "22222222"), m, 0)
	s.BucketBy(KeyMachine, DedupeNone, false, true)

	assert.Equal(t, 2, s.RemoveBucket("Game"))
	assert.Equal(t, 0, s.Len())
	assert.Equal(t, 0, s.BucketCount())
}

func TestStore_ConcurrentAdd(t *testing.T) {
	s := newTestStore(t)
	m := s.AddMachine(models.Machine{Name: "Game"})

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				s.Add(crcRom("a", "11111111"), m, 0)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 400, s.Len())
	assert.Equal(t, int64(400), s.Statistics().Total())

	s.BucketBy(KeyCRC, DedupeFull, false, false)
	assert.Equal(t, 1, s.Len())
	assert.Equal(t, int64(1), s.Statistics().Total())
}

func TestStore_AddDuringBucketBy(t *testing.T) {
	s := newTestStore(t)
	m := s.AddMachine(models.Machine{Name: "Game"})
	for i := 0; i < 50; i++ {
		s.Add(crcRom(fmt.Sprintf("seed%02d", i), fmt.Sprintf("%08x", i)), m, 0)
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 50; i++ {
			s.Add(crcRom(fmt.Sprintf("late%02d", i), fmt.Sprintf("%08x", 100+i)), m, 0)
		}
	}()
	go func() {
		defer wg.Done()
		s.BucketBy(KeyCRC, DedupeNone, false, true)
		s.BucketBy(KeyMachine, DedupeNone, false, true)
	}()
	wg.Wait()

	total := 0
	for _, key := range s.SortedBuckets() {
		for _, id := range s.ItemsInBucket(key, false) {
			got, ok := s.BucketOf(id)
			require.True(t, ok)
			assert.Equal(t, key, got)
			total++
		}
	}
	assert.Equal(t, 100, s.Len())
	assert.Equal(t, 100, total)
}
