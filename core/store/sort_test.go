package store

import (
	"testing"

	"dat-manager/core/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSort_Order(t *testing.T) {
	s := newTestStore(t)
	m := s.AddMachine(models.Machine{Name: "M"})
	for _, name := range []string{"dir\\b.bin", "a.bin", "10.bin", "dir/a.bin", "2.bin"} {
		s.Add(rom(name, nil), m, 0)
	}
	s.Add(&models.Item{Type: models.TypeDisk, Name: "z"}, m, 0)

	s.BucketBy(KeyMachine, DedupeNone, false, true)

	assert.Equal(t, []string{"z", "2.bin", "10.bin", "a.bin", "dir/a.bin", "dir\\b.bin"}, names(s, "M"))
}

func TestSort_SourceIndex(t *testing.T) {
	s := newTestStore(t)
	m1 := s.AddMachine(models.Machine{Name: "M"})
	m2 := s.AddMachine(models.Machine{Name: "M"})
	late := s.AddSource(models.Source{Index: 1})
	early := s.AddSource(models.Source{Index: 0})
	a := s.Add(crcRom("a", "12345678"), m1, late)
	b := s.Add(crcRom("a", "12345678"), m2, early)

	s.BucketBy(KeyCRC, DedupeNone, false, false)
	assert.Equal(t, []ItemID{b, a}, s.ItemsInBucket("12345678", true))

	s.BucketBy(KeyCRC, DedupeNone, false, true)
	assert.Equal(t, []ItemID{a, b}, s.ItemsInBucket("12345678", true))
}

func TestResolveNames(t *testing.T) {
	setup := func(t *testing.T, items ...*models.Item) *Store {
		s := newTestStore(t)
		m := s.AddMachine(models.Machine{Name: "M"})
		for _, it := range items {
			s.Add(it, m, 0)
		}
		s.BucketBy(KeyMachine, DedupeNone, false, true)
		return s
	}

	t.Run("renames by strongest hash", func(t *testing.T) {
		s := setup(t, crcRom("Foo", "00000001"), crcRom("Foo", "00000002"))
		s.ResolveNames("M")
		assert.Equal(t, []string{"Foo", "Foo_00000002"}, names(s, "M"))
	})

	t.Run("drops exact duplicate", func(t *testing.T) {
		s := setup(t, crcRom("Foo", "00000001"), crcRom("Foo", "00000001"))
		kept := s.ResolveNames("M")
		require.Len(t, kept, 1)
		assert.Equal(t, []string{"Foo"}, names(s, "M"))
		assert.Equal(t, 1, s.Len())
		assert.Equal(t, int64(1), s.Statistics().Total())
	})

	t.Run("escalates repeated renames", func(t *testing.T) {
		s := setup(t, crcRom("Foo", "00000001"), crcRom("Foo", "00000002"), crcRom("Foo", "00000002"))
		s.ResolveNames("M")
		assert.Equal(t, []string{"Foo", "Foo_00000002", "Foo_00000002_1"}, names(s, "M"))
	})

	t.Run("falls back to numeric suffix", func(t *testing.T) {
		nd := &models.Item{Type: models.TypeRom, Name: "Foo", Status: models.StatusNodump}
		s := setup(t, crcRom("Foo", "00000001"), nd)
		s.ResolveNames("M")
		assert.Equal(t, []string{"Foo", "Foo_1"}, names(s, "M"))
	})

	t.Run("distinct names untouched", func(t *testing.T) {
		s := setup(t, crcRom("Bar", "00000001"), crcRom("Foo", "00000001"))
		s.ResolveNames("M")
		assert.Equal(t, []string{"Bar", "Foo"}, names(s, "M"))
	})

	t.Run("missing bucket", func(t *testing.T) {
		s := setup(t)
		assert.Empty(t, s.ResolveNames("nope"))
	})
}
