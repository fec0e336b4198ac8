package store

import (
	"path"
	"strings"

	"dat-manager/core/models"
)

// OneItemPerGame moves every item into its own machine named after the
// original machine and the item's path without extension. Machine
// records are copied per item; the originals are deleted once nothing
// refers to them. Items keep only their base file name.
func (s *Store) OneItemPerGame() {
	defer mon.Task()(nil)(nil)
	s.pass.Lock()
	defer s.pass.Unlock()

	orphaned := make(map[MachineID]struct{})
	for _, id := range s.items.keys() {
		item, ok := s.items.get(id)
		if !ok || item.Name == "" {
			continue
		}

		full := cleanPath(item.Name)
		base := path.Base(full)
		stem := strings.TrimSuffix(full, path.Ext(base))

		var split *models.Machine
		if mid, ok := s.itemMachine.get(id); ok {
			if m, ok := s.machines.get(mid); ok {
				split = m.Clone()
				orphaned[mid] = struct{}{}
			}
		}
		if split == nil {
			split = &models.Machine{Name: "Default"}
		}
		split.Name = split.Name + "/" + stem
		if split.Description != "" {
			split.Description = split.Name
		}

		s.itemMachine.set(id, s.AddMachine(*split))
		s.Update(id, func(it *models.Item) { it.Name = base })
	}

	s.itemMachine.each(func(_ ItemID, m MachineID) {
		delete(orphaned, m)
	})
	for id := range orphaned {
		s.machines.delete(id)
	}

	if _, hashed := s.bucketedBy.HashKind(); !hashed {
		s.rekey(KeyMachine, s.lowercase, s.norename)
		s.sort(s.norename)
	}
}
