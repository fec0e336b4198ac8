package store

import (
	"cmp"
	"slices"
	"strconv"
	"strings"

	"dat-manager/core/models"
	"dat-manager/core/natural"

	"go.uber.org/zap"
)

type sortEntry struct {
	id      ItemID
	machine string
	typ     models.ItemType
	dir     string
	file    string
	source  int
}

// cleanPath strips characters that cannot appear in a path and unifies
// separators.
func cleanPath(name string) string {
	name = strings.Map(func(r rune) rune {
		switch {
		case r < 0x20, r == '"', r == '<', r == '>', r == '|':
			return -1
		case r == '\\':
			return '/'
		}
		return r
	}, name)
	return name
}

func splitPath(name string) (dir, file string) {
	name = cleanPath(name)
	if i := strings.LastIndexByte(name, '/'); i >= 0 {
		return name[:i], name[i+1:]
	}
	return "", name
}

func (s *Store) sortEntry(id ItemID) (sortEntry, bool) {
	ref, ok := s.Ref(id)
	if !ok {
		return sortEntry{}, false
	}
	e := sortEntry{id: id, typ: ref.Item.Type, source: -1}
	if ref.Machine != nil {
		e.machine = ref.Machine.Name
	}
	if ref.Source != nil {
		e.source = ref.Source.Index
	}
	e.dir, e.file = splitPath(ref.Item.Name)
	return e, true
}

func compareEntries(a, b sortEntry, norename bool) int {
	if c := natural.Compare(a.machine, b.machine); c != 0 {
		return c
	}
	if c := cmp.Compare(a.typ, b.typ); c != 0 {
		return c
	}
	if c := natural.Compare(a.dir, b.dir); c != 0 {
		return c
	}
	if c := natural.Compare(a.file, b.file); c != 0 {
		return c
	}
	if !norename {
		if c := cmp.Compare(a.source, b.source); c != 0 {
			return c
		}
	}
	return cmp.Compare(a.id, b.id)
}

// sortBucket orders one bucket by machine, type, directory, file name and,
// unless norename, source index.
func (s *Store) sortBucket(key string, norename bool) []ItemID {
	ids := s.index.snapshot(key)
	entries := make([]sortEntry, 0, len(ids))
	for _, id := range ids {
		if e, ok := s.sortEntry(id); ok {
			entries = append(entries, e)
		}
	}
	slices.SortFunc(entries, func(a, b sortEntry) int {
		return compareEntries(a, b, norename)
	})

	sorted := make([]ItemID, len(entries))
	for i, e := range entries {
		sorted[i] = e.id
	}
	s.index.replace(key, sorted)
	return sorted
}

// ResolveNames sorts a bucket and disambiguates items whose names collide.
// Exact duplicates of the preceding kept item are removed from the store;
// other collisions are renamed with a suffix taken from their strongest
// hash. It returns the kept handles in order.
func (s *Store) ResolveNames(key string) []ItemID {
	sorted := s.sortBucket(key, s.norename)

	var (
		out         = make([]ItemID, 0, len(sorted))
		marked      []ItemID
		last        models.Ref
		haveLast    bool
		lastRenamed string
		lastID      int
		dropped     int
	)
	for _, id := range sorted {
		ref, ok := s.Ref(id)
		if !ok {
			continue
		}
		if ref.Item.Remove {
			marked = append(marked, id)
			continue
		}
		if !haveLast {
			out = append(out, id)
			last, haveLast = ref, true
			continue
		}

		if models.DuplicateStatus(ref, last).Has(models.DupeAll) {
			s.log.Debug("dropping exact duplicate",
				zap.String("item", ref.Item.Name), zap.String("machine", machineName(ref)))
			s.detach(id)
			dropped++
			continue
		}

		if ref.Item.Name != last.Item.Name {
			out = append(out, id)
			last = ref
			lastRenamed, lastID = "", 0
			continue
		}

		newName := ref.Item.Name + renameSuffix(ref.Item)
		switch {
		case lastRenamed == "":
			lastRenamed, lastID = newName, 1
		case newName == lastRenamed:
			newName += "_" + strconv.Itoa(lastID)
			lastID++
		default:
			lastRenamed, lastID = newName, 1
		}
		s.log.Debug("renaming colliding item",
			zap.String("item", ref.Item.Name), zap.String("renamed", newName), zap.String("machine", machineName(ref)))
		s.Update(id, func(it *models.Item) { it.Name = newName })
		out = append(out, id)
	}

	if dropped > 0 {
		mon.Meter("store_resolved_duplicates").Mark(dropped)
	}
	s.index.replace(key, append(slices.Clone(out), marked...))
	return out
}

func renameSuffix(item *models.Item) string {
	if k, ok := item.Hashes.Strongest(); ok {
		return "_" + item.Hashes.Get(k)
	}
	return "_1"
}

func machineName(ref models.Ref) string {
	if ref.Machine == nil {
		return ""
	}
	return ref.Machine.Name
}
