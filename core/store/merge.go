package store

import (
	"dat-manager/core/models"
)

// mergeBucket collapses equal items of an already sorted bucket into the
// first occurrence. Nodump and marked items pass through untouched. It
// returns the number of items merged away.
func (s *Store) mergeBucket(key string, ids []ItemID) int {
	type saved struct {
		id  ItemID
		ref models.Ref
	}

	out := make([]ItemID, 0, len(ids))
	candidates := make([]saved, 0, len(ids))
	merged := 0

	for _, id := range ids {
		ref, ok := s.Ref(id)
		if !ok {
			continue
		}
		if ref.Item.Remove || ref.Item.IsNodump() {
			out = append(out, id)
			continue
		}

		match := -1
		for i := range candidates {
			if candidates[i].ref.Item.Equal(ref.Item) {
				match = i
				break
			}
		}
		if match < 0 {
			out = append(out, id)
			candidates = append(candidates, saved{id: id, ref: ref})
			continue
		}

		s.absorb(candidates[match].id, candidates[match].ref, id, ref)
		// Provenance may have moved the saved item to another machine.
		candidates[match].ref, _ = s.Ref(candidates[match].id)
		s.detach(id)
		merged++
	}

	s.index.replace(key, out)
	return merged
}

// absorb folds candidate into saved: missing hashes and size are copied,
// the duplicate classification is recorded and provenance is applied.
func (s *Store) absorb(savedID ItemID, savedRef models.Ref, candID ItemID, candRef models.Ref) {
	dupe := models.DuplicateStatus(candRef, savedRef)
	s.Update(savedID, func(it *models.Item) {
		it.FillMissing(candRef.Item)
		it.Dupe = dupe
	})

	candMachine, hasMachine := s.itemMachine.get(candID)
	adopt := func() {
		if hasMachine {
			s.itemMachine.set(savedID, candMachine)
		} else {
			s.itemMachine.delete(savedID)
		}
		s.Update(savedID, func(it *models.Item) { it.Name = candRef.Item.Name })
	}

	// Both rules are checked against the saved item's original machine and
	// source. When both fire the second write wins.
	if candRef.Source != nil && savedRef.Source != nil && candRef.Source.Index < savedRef.Source.Index {
		adopt()
	}
	if savedRef.Machine != nil && candRef.Machine != nil && candRef.Machine.Name != "" &&
		(savedRef.Machine.CloneOf == candRef.Machine.Name || savedRef.Machine.RomOf == candRef.Machine.Name) {
		adopt()
	}
}
