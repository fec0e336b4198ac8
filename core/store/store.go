package store

import (
	"runtime"
	"sync"
	"sync/atomic"

	"dat-manager/core/hash"
	"dat-manager/core/models"
	"dat-manager/core/stats"

	"github.com/spacemonkeygo/monkit/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var mon = monkit.Package()

// ItemID is the handle of an item. Zero is never assigned.
type ItemID int64

// MachineID is the handle of a machine. Zero means no machine.
type MachineID int64

// SourceID is the handle of a source. Zero means no source.
type SourceID int64

// Store is the arena+index catalog.
type Store struct {
	log     *zap.Logger
	workers int
	stats   *stats.Aggregator

	nextItem    atomic.Int64
	nextMachine atomic.Int64
	nextSource  atomic.Int64

	items    *table[ItemID, *models.Item]
	machines *table[MachineID, *models.Machine]
	sources  *table[SourceID, *models.Source]

	itemMachine *table[ItemID, MachineID]
	itemSource  *table[ItemID, SourceID]

	index *bucketIndex

	// pass serializes whole-store passes. Add and Remove hold it shared
	// since passes swap index and the bucketing fields below.
	pass       sync.RWMutex
	bucketedBy KeyType
	dedupedBy  Dedupe
	lowercase  bool
	norename   bool
}

// New creates an empty store. workers bounds per-bucket parallelism; zero
// or less uses GOMAXPROCS.
func New(log *zap.Logger, workers int) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Store{
		log:         log,
		workers:     workers,
		stats:       stats.New(),
		items:       newTable[ItemID, *models.Item](),
		machines:    newTable[MachineID, *models.Machine](),
		sources:     newTable[SourceID, *models.Source](),
		itemMachine: newTable[ItemID, MachineID](),
		itemSource:  newTable[ItemID, SourceID](),
		index:       newBucketIndex(),
	}
}

// AddMachine registers a machine and returns its handle.
func (s *Store) AddMachine(m models.Machine) MachineID {
	id := MachineID(s.nextMachine.Add(1))
	s.machines.set(id, &m)
	return id
}

// AddSource registers a source and returns its handle.
func (s *Store) AddSource(src models.Source) SourceID {
	id := SourceID(s.nextSource.Add(1))
	s.sources.set(id, &src)
	return id
}

// Add normalizes item, stores it under the current bucketing key and
// returns its handle. The store takes ownership of item. Concurrent Adds
// are safe; an Add that overlaps a whole-store pass waits for it.
func (s *Store) Add(item *models.Item, machine MachineID, source SourceID) ItemID {
	if item == nil {
		return 0
	}
	s.pass.RLock()
	defer s.pass.RUnlock()
	s.normalize(item, machine)

	id := ItemID(s.nextItem.Add(1))
	s.items.set(id, item)
	if machine != 0 {
		s.itemMachine.set(id, machine)
	}
	if source != 0 {
		s.itemSource.set(id, source)
	}
	if !item.Remove {
		s.stats.AddItem(item)
	}

	key := s.bucketedBy
	if key == KeyNone {
		key = KeyMachine
	}
	s.index.add(s.bucketKey(id, key, s.lowercase, s.norename), id)
	return id
}

func (s *Store) normalize(item *models.Item, machine MachineID) {
	if !item.Type.HasSize() {
		return
	}

	fields := func() []zap.Field {
		name := ""
		if m, ok := s.machines.get(machine); ok {
			name = m.Name
		}
		return []zap.Field{zap.String("item", item.Name), zap.String("machine", name)}
	}

	switch {
	case item.Size == nil && item.Hashes.Empty():
		s.log.Debug("incomplete item information", fields()...)

	case (item.Size == nil || *item.Size == 0) && item.Hashes.IsEmptyFile():
		item.Size = models.Size(0)
		for _, k := range item.Type.Hashes() {
			item.Hashes.Put(k, hash.EmptyFile(k))
		}
		s.log.Debug("normalized empty file", fields()...)

	case item.Size != nil && *item.Size > 0 && item.Hashes.Empty():
		if item.Type.HasStatus() {
			item.Status = models.StatusNodump
		}
		s.log.Warn("sized item has no hashes, marking nodump", fields()...)
	}
}

// Remove deletes an item and its relations. It reports whether the item
// existed.
func (s *Store) Remove(id ItemID) bool {
	s.pass.RLock()
	defer s.pass.RUnlock()
	return s.remove(id)
}

func (s *Store) remove(id ItemID) bool {
	if _, ok := s.items.get(id); !ok {
		return false
	}
	s.index.remove(id)
	return s.detach(id)
}

// detach deletes an item and its relations but leaves its handle in the
// bucket list for the caller to rewrite.
func (s *Store) detach(id ItemID) bool {
	item, ok := s.items.delete(id)
	if !ok {
		return false
	}
	s.itemMachine.delete(id)
	s.itemSource.delete(id)
	s.index.forget(id)
	if !item.Remove {
		s.stats.RemoveItem(item)
	}
	return true
}

// Update applies fn to an item while keeping statistics in step. fn must not
// change the fields the current bucket key is derived from.
func (s *Store) Update(id ItemID, fn func(*models.Item)) bool {
	item, ok := s.items.get(id)
	if !ok {
		return false
	}
	if !item.Remove {
		s.stats.RemoveItem(item)
	}
	fn(item)
	if !item.Remove {
		s.stats.AddItem(item)
	}
	return true
}

// MarkRemoved flags an item for the next compaction.
func (s *Store) MarkRemoved(id ItemID) bool {
	return s.Update(id, func(it *models.Item) { it.Remove = true })
}

// ClearMarked physically removes every marked item and returns how many
// were removed.
func (s *Store) ClearMarked() int {
	defer mon.Task()(nil)(nil)
	s.pass.Lock()
	defer s.pass.Unlock()

	var removed atomic.Int64
	s.eachBucket(func(key string) {
		ids := s.index.snapshot(key)
		keep := ids[:0]
		for _, id := range ids {
			item, ok := s.items.get(id)
			if ok && item.Remove {
				s.detach(id)
				removed.Add(1)
				continue
			}
			keep = append(keep, id)
		}
		s.index.replace(key, keep)
	})

	n := int(removed.Load())
	mon.Meter("store_cleared_items").Mark(n)
	return n
}

// GetItem returns the stored item. Callers must treat it as read-only and
// mutate through Update.
func (s *Store) GetItem(id ItemID) (*models.Item, bool) {
	return s.items.get(id)
}

// GetMachine returns a machine by handle.
func (s *Store) GetMachine(id MachineID) (*models.Machine, bool) {
	return s.machines.get(id)
}

// GetSource returns a source by handle.
func (s *Store) GetSource(id SourceID) (*models.Source, bool) {
	return s.sources.get(id)
}

// MachineOf returns the machine an item belongs to.
func (s *Store) MachineOf(id ItemID) (MachineID, bool) {
	return s.itemMachine.get(id)
}

// SourceOf returns the source an item was read from.
func (s *Store) SourceOf(id ItemID) (SourceID, bool) {
	return s.itemSource.get(id)
}

// Ref resolves an item together with its machine and source.
func (s *Store) Ref(id ItemID) (models.Ref, bool) {
	item, ok := s.items.get(id)
	if !ok {
		return models.Ref{}, false
	}
	ref := models.Ref{Item: item}
	if mid, ok := s.itemMachine.get(id); ok {
		ref.Machine, _ = s.machines.get(mid)
	}
	if sid, ok := s.itemSource.get(id); ok {
		ref.Source, _ = s.sources.get(sid)
	}
	return ref, true
}

// MachineByName returns the lowest-handle machine with the given name.
func (s *Store) MachineByName(name string) (MachineID, bool) {
	for _, id := range s.machines.keys() {
		if m, ok := s.machines.get(id); ok && m.Name == name {
			return id, true
		}
	}
	return 0, false
}

// UpdateMachine applies fn to a machine record.
func (s *Store) UpdateMachine(id MachineID, fn func(*models.Machine)) bool {
	m, ok := s.machines.get(id)
	if !ok {
		return false
	}
	fn(m)
	return true
}

// Items returns every item handle in ascending order.
func (s *Store) Items() []ItemID {
	return s.items.keys()
}

// Machines returns every machine handle in ascending order.
func (s *Store) Machines() []MachineID {
	return s.machines.keys()
}

// RemoveMachines deletes the given machines and every item they own. It
// returns the number of items removed.
func (s *Store) RemoveMachines(ids ...MachineID) int {
	if len(ids) == 0 {
		return 0
	}
	s.pass.Lock()
	defer s.pass.Unlock()

	doomed := make(map[MachineID]struct{}, len(ids))
	for _, id := range ids {
		doomed[id] = struct{}{}
	}

	var owned []ItemID
	s.itemMachine.each(func(item ItemID, m MachineID) {
		if _, ok := doomed[m]; ok {
			owned = append(owned, item)
		}
	})
	for _, item := range owned {
		s.remove(item)
	}
	for id := range doomed {
		s.machines.delete(id)
	}
	return len(owned)
}

// RemoveMachine deletes one machine and its items.
func (s *Store) RemoveMachine(id MachineID) int {
	return s.RemoveMachines(id)
}

// RecomputeStatistics rebuilds the counters from the live items.
func (s *Store) RecomputeStatistics() {
	s.stats.Reset()
	s.items.each(func(_ ItemID, item *models.Item) {
		if !item.Remove {
			s.stats.AddItem(item)
		}
	})
}

// Statistics exposes the live aggregator.
func (s *Store) Statistics() *stats.Aggregator {
	return s.stats
}

// Stats returns a snapshot of the counters.
func (s *Store) Stats() stats.Snapshot {
	return s.stats.Snapshot()
}

// Len returns the number of stored items, marked ones included.
func (s *Store) Len() int {
	return s.items.len()
}

// BucketedBy returns the current bucketing key type.
func (s *Store) BucketedBy() KeyType {
	s.pass.RLock()
	defer s.pass.RUnlock()
	return s.bucketedBy
}

// DedupedBy returns the dedupe mode of the last pass.
func (s *Store) DedupedBy() Dedupe {
	s.pass.RLock()
	defer s.pass.RUnlock()
	return s.dedupedBy
}

// EachBucket runs fn once per bucket on the worker pool and waits. Buckets
// are disjoint, so fn may mutate items of its own bucket.
func (s *Store) EachBucket(fn func(key string)) {
	s.eachBucket(fn)
}

func (s *Store) eachBucket(fn func(key string)) {
	var g errgroup.Group
	g.SetLimit(s.workers)
	for _, key := range s.index.list() {
		g.Go(func() error {
			fn(key)
			return nil
		})
	}
	_ = g.Wait()
}
