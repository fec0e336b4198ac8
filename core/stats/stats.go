package stats

import (
	"sync/atomic"

	"dat-manager/core/hash"
	"dat-manager/core/models"
)

// Aggregator tracks counters for the items currently held by a store.
type Aggregator struct {
	total    atomic.Int64
	size     atomic.Int64
	types    [models.NumItemTypes]atomic.Int64
	statuses [models.NumStatuses]atomic.Int64
	hashes   [hash.NumKinds]atomic.Int64
}

// New returns an empty aggregator.
func New() *Aggregator {
	return &Aggregator{}
}

// AddItem counts an item.
func (a *Aggregator) AddItem(item *models.Item) {
	a.apply(item, 1)
}

// RemoveItem uncounts an item previously passed to AddItem.
func (a *Aggregator) RemoveItem(item *models.Item) {
	a.apply(item, -1)
}

func (a *Aggregator) apply(item *models.Item, delta int64) {
	if item == nil {
		return
	}
	a.total.Add(delta)
	if t := int(item.Type); t >= 0 && t < models.NumItemTypes {
		a.types[t].Add(delta)
	}
	if item.Type.HasStatus() {
		if s := int(item.Status); s >= 0 && s < models.NumStatuses {
			a.statuses[s].Add(delta)
		}
	}
	if item.Size != nil {
		a.size.Add(delta * *item.Size)
	}
	for _, k := range item.Hashes.Present() {
		a.hashes[k].Add(delta)
	}
}

// Reset zeroes every counter.
func (a *Aggregator) Reset() {
	a.total.Store(0)
	a.size.Store(0)
	for i := range a.types {
		a.types[i].Store(0)
	}
	for i := range a.statuses {
		a.statuses[i].Store(0)
	}
	for i := range a.hashes {
		a.hashes[i].Store(0)
	}
}

// Total returns the number of counted items.
func (a *Aggregator) Total() int64 {
	return a.total.Load()
}

// TotalSize returns the summed size of counted items.
func (a *Aggregator) TotalSize() int64 {
	return a.size.Load()
}

// ItemCount returns the number of items of type t.
func (a *Aggregator) ItemCount(t models.ItemType) int64 {
	if int(t) < 0 || int(t) >= models.NumItemTypes {
		return 0
	}
	return a.types[t].Load()
}

// StatusCount returns the number of items with status s.
func (a *Aggregator) StatusCount(s models.Status) int64 {
	if int(s) < 0 || int(s) >= models.NumStatuses {
		return 0
	}
	return a.statuses[s].Load()
}

// HashCount returns the number of items carrying hash kind k.
func (a *Aggregator) HashCount(k hash.Kind) int64 {
	if !k.Valid() {
		return 0
	}
	return a.hashes[k].Load()
}

// Snapshot is a point-in-time copy of the counters. Zero counters are
// omitted from the maps.
type Snapshot struct {
	Total     int64            `json:"total"`
	TotalSize int64            `json:"total_size"`
	Items     map[string]int64 `json:"items"`
	Statuses  map[string]int64 `json:"statuses"`
	Hashes    map[string]int64 `json:"hashes"`
}

// Snapshot copies the current counters.
func (a *Aggregator) Snapshot() Snapshot {
	snap := Snapshot{
		Total:     a.Total(),
		TotalSize: a.TotalSize(),
		Items:     make(map[string]int64),
		Statuses:  make(map[string]int64),
		Hashes:    make(map[string]int64),
	}
	for _, t := range models.ItemTypes {
		if n := a.ItemCount(t); n != 0 {
			snap.Items[t.String()] = n
		}
	}
	for s := models.StatusNone; int(s) < models.NumStatuses; s++ {
		if n := a.StatusCount(s); n != 0 {
			name := s.String()
			if name == "" {
				name = "none"
			}
			snap.Statuses[name] = n
		}
	}
	for _, k := range hash.Kinds {
		if n := a.HashCount(k); n != 0 {
			snap.Hashes[k.String()] = n
		}
	}
	return snap
}
