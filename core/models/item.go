package models

import (
	"maps"

	"dat-manager/core/hash"
)

// Item is a single cataloged piece of content.
type Item struct {
	Type   ItemType
	Name   string
	Size   *int64
	Hashes hash.Set
	Status Status

	// Remove marks the item for removal by the next compaction.
	Remove bool
	// Dupe is set by the merge engine on items that absorbed a duplicate.
	Dupe DupeType

	// Extra carries dialect attributes the core never inspects.
	Extra map[string]string
}

// Size returns a pointer to n, for populating Item.Size.
func Size(n int64) *int64 {
	return &n
}

// SetHash stores raw under kind k when the item type supports it.
func (i *Item) SetHash(k hash.Kind, raw string) {
	if i.Type.Supports(k) {
		i.Hashes.Put(k, raw)
	}
}

// IsNodump reports whether the item is flagged as not dumped.
func (i *Item) IsNodump() bool {
	return i.Status == StatusNodump
}

// Clone returns a deep copy of the item.
func (i *Item) Clone() *Item {
	c := *i
	if i.Size != nil {
		c.Size = Size(*i.Size)
	}
	if i.Extra != nil {
		c.Extra = maps.Clone(i.Extra)
	}
	return &c
}

func sizeCompatible(a, b *int64) bool {
	return a == nil || b == nil || *a == *b
}

// Equal reports whether two items describe the same content.
//
// Items of different kinds never match. Two Nodump items with the same name
// and no hashes match; a Nodump item never matches one that is not Nodump.
// Otherwise sizes must be compatible and every hash kind present on both
// sides must agree. Items sharing no hash kind fall back to name equality.
func (i *Item) Equal(o *Item) bool {
	if i == nil || o == nil || i.Type != o.Type {
		return false
	}
	if !i.Type.HasHashes() {
		return i.Name == o.Name
	}

	in, on := i.IsNodump(), o.IsNodump()
	if in != on {
		return false
	}
	if in && i.Name == o.Name && i.Hashes.Empty() && o.Hashes.Empty() {
		return true
	}

	if !sizeCompatible(i.Size, o.Size) {
		return false
	}
	equal, shared := i.Hashes.ConditionalEqual(&o.Hashes)
	if !equal {
		return false
	}
	if !shared {
		return i.Name == o.Name
	}
	return true
}

// FillMissing copies the size and any hashes o has and i lacks. It returns
// true when anything changed.
func (i *Item) FillMissing(o *Item) bool {
	if i.Type != o.Type {
		return false
	}
	changed := false
	if i.Size == nil && o.Size != nil {
		i.Size = Size(*o.Size)
		changed = true
	}
	if i.Hashes.FillMissing(&o.Hashes) > 0 {
		changed = true
	}
	return changed
}

// Machine is a named set grouping items.
type Machine struct {
	Name        string
	Description string

	// CloneOf, RomOf and SampleOf are weak references by name.
	CloneOf  string
	RomOf    string
	SampleOf string

	Extra map[string]string
}

// Clone returns a deep copy of the machine.
func (m *Machine) Clone() *Machine {
	c := *m
	if m.Extra != nil {
		c.Extra = maps.Clone(m.Extra)
	}
	return &c
}

// StripRelations clears the clone, rom and sample parent references.
func (m *Machine) StripRelations() {
	m.CloneOf = ""
	m.RomOf = ""
	m.SampleOf = ""
}

// Source identifies the input an item was read from. Lower indices take
// precedence.
type Source struct {
	Index int
	Name  string
}

// Ref bundles an item with its owning machine and source.
type Ref struct {
	Item    *Item
	Machine *Machine
	Source  *Source
}

func (r Ref) machineName() string {
	if r.Machine == nil {
		return ""
	}
	return r.Machine.Name
}

func (r Ref) sourceIndex() int {
	if r.Source == nil {
		return -1
	}
	return r.Source.Index
}

// DuplicateStatus classifies candidate against saved. It returns 0 when the
// items are not equal.
func DuplicateStatus(candidate, saved Ref) DupeType {
	if candidate.Item == nil || saved.Item == nil || !saved.Item.Equal(candidate.Item) {
		return 0
	}

	var d DupeType
	if saved.Item.Dupe.Has(DupeExternal) || saved.sourceIndex() != candidate.sourceIndex() {
		d = DupeExternal
	} else {
		d = DupeInternal
	}

	if saved.machineName() == candidate.machineName() && saved.Item.Name == candidate.Item.Name {
		d |= DupeAll
	} else {
		d |= DupeHash
	}
	return d
}
