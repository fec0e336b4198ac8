package datjson

import (
	"bytes"
	"strings"
	"testing"

	"dat-manager/core/hash"
	"dat-manager/core/models"
	"dat-manager/core/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const sample = `{
  "header": {"name": "Test Set", "version": "1"},
  "machines": [
    {"name": "gameb", "cloneof": "gamea", "items": [
      {"type": "rom", "name": "b.bin", "size": "0x10", "crc": "BBBBBBBB"}
    ]},
    {"name": "gamea", "description": "Game A", "items": [
      {"type": "rom", "name": "a.bin", "size": 16, "crc": "aaaaaaaa", "extra": {"offset": 4}},
      {"type": "widget", "name": "w"},
      {"type": "disk", "name": "a.chd", "sha1": "0123456789abcdef0123456789abcdef01234567", "status": "good"}
    ]}
  ]
}`

func TestRead(t *testing.T) {
	s := store.New(zaptest.NewLogger(t), 2)

	header, res, err := Read(strings.NewReader(sample), s, models.Source{Index: 0}, zaptest.NewLogger(t))
	require.NoError(t, err)

	assert.Equal(t, "Test Set", header.Name)
	assert.Equal(t, LoadResult{Machines: 2, Items: 3, Skipped: 1}, res)
	assert.Equal(t, 3, s.Len())

	mid, ok := s.MachineByName("gameb")
	require.True(t, ok)
	m, _ := s.GetMachine(mid)
	assert.Equal(t, "gamea", m.CloneOf)

	var found bool
	for _, id := range s.Items() {
		it, _ := s.GetItem(id)
		switch it.Name {
		case "b.bin":
			require.NotNil(t, it.Size)
			assert.Equal(t, int64(16), *it.Size)
			assert.Equal(t, "bbbbbbbb", it.Hashes.Get(hash.CRC))
		case "a.bin":
			found = true
			assert.Equal(t, "4", it.Extra["offset"])
		case "a.chd":
			assert.Nil(t, it.Size)
			assert.Equal(t, models.StatusGood, it.Status)
		}
	}
	assert.True(t, found)
}

func TestRead_SourceNameDefaultsToHeader(t *testing.T) {
	s := store.New(zaptest.NewLogger(t), 2)

	_, _, err := Read(strings.NewReader(sample), s, models.Source{Index: 3}, nil)
	require.NoError(t, err)

	ref, ok := s.Ref(s.Items()[0])
	require.True(t, ok)
	assert.Equal(t, "Test Set", ref.Source.Name)
	assert.Equal(t, 3, ref.Source.Index)
}

func TestDecode_Malformed(t *testing.T) {
	_, err := Decode(strings.NewReader(`{"machines": [`))
	require.Error(t, err)
	assert.True(t, Error.Has(err))
}

func TestWrite(t *testing.T) {
	s := store.New(zaptest.NewLogger(t), 2)
	_, _, err := Read(strings.NewReader(sample), s, models.Source{}, nil)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, s, Header{Name: "Out"}, zaptest.NewLogger(t)))

	doc, err := Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, "Out", doc.Header.Name)
	require.Len(t, doc.Machines, 2)

	// machines come out in name order, items in type order
	assert.Equal(t, "gamea", doc.Machines[0].Name)
	assert.Equal(t, "Game A", doc.Machines[0].Description)
	require.Len(t, doc.Machines[0].Items, 2)
	assert.Equal(t, "disk", doc.Machines[0].Items[0].Type)
	assert.Equal(t, "a.bin", doc.Machines[0].Items[1].Name)
	assert.Equal(t, "aaaaaaaa", doc.Machines[0].Items[1].CRC)
	assert.Equal(t, "gamea", doc.Machines[1].CloneOf)
}

func TestWrite_ResolvesCollisions(t *testing.T) {
	s := store.New(zaptest.NewLogger(t), 2)
	doc := &Document{Machines: []Machine{{
		Name: "game",
		Items: []Item{
			{Type: "rom", Name: "x.bin", CRC: "11111111"},
			{Type: "rom", Name: "x.bin", CRC: "11111111"},
			{Type: "rom", Name: "x.bin", CRC: "22222222"},
		},
	}}}
	Load(doc, s, models.Source{}, nil)

	out := Build(s, Header{})
	require.Len(t, out.Machines, 1)

	var got []string
	for _, it := range out.Machines[0].Items {
		got = append(got, it.Name)
	}
	assert.Equal(t, []string{"x.bin", "x.bin_22222222"}, got)
}

func TestWrite_SkipsMarked(t *testing.T) {
	s := store.New(zaptest.NewLogger(t), 2)
	doc := &Document{Machines: []Machine{
		{Name: "keep", Items: []Item{{Type: "rom", Name: "k", CRC: "11111111"}}},
		{Name: "drop", Items: []Item{{Type: "rom", Name: "d", CRC: "22222222"}}},
	}}
	Load(doc, s, models.Source{}, nil)

	for _, id := range s.Items() {
		if it, _ := s.GetItem(id); it.Name == "d" {
			s.MarkRemoved(id)
		}
	}

	out := Build(s, Header{})
	require.Len(t, out.Machines, 1)
	assert.Equal(t, "keep", out.Machines[0].Name)
}
