package filter

import (
	"regexp"
	"slices"
	"strings"

	"dat-manager/core/models"
	"dat-manager/core/store"

	"go.uber.org/zap"
)

// RegionResult summarizes a one-game-per-region pass.
type RegionResult struct {
	Families        int `json:"families"`
	RemovedMachines int `json:"removed_machines"`
	RemovedItems    int `json:"removed_items"`
}

// OneGamePerRegion keeps one machine per parent/clone family, preferring the
// first region in priority order that appears in parentheses in a member's
// name and falling back to the parent. Every other family member is removed
// with its items. Clone, rom and sample references are stripped from the
// machines that remain.
func OneGamePerRegion(s *store.Store, regions []string, log *zap.Logger) RegionResult {
	if log == nil {
		log = zap.NewNop()
	}

	s.BucketBy(store.KeyMachine, s.DedupedBy(), false, true)

	families, parents := familyMap(s)
	patterns := make([]*regexp.Regexp, 0, len(regions))
	for _, region := range regions {
		region = strings.TrimSpace(region)
		if region == "" {
			continue
		}
		patterns = append(patterns, regexp.MustCompile(`(?i)\(.*`+regexp.QuoteMeta(region)+`.*\)`))
	}

	byName := make(map[string][]store.MachineID)
	for _, id := range s.Machines() {
		if m, ok := s.GetMachine(id); ok {
			name := strings.ToLower(m.Name)
			byName[name] = append(byName[name], id)
		}
	}

	var doomed []store.MachineID
	for _, parent := range parents {
		members := families[parent]
		selected := selectMember(parent, members, patterns)
		log.Debug("family resolved",
			zap.String("parent", parent), zap.String("selected", selected), zap.Int("members", len(members)))
		for _, member := range members {
			if member != selected {
				doomed = append(doomed, byName[member]...)
			}
		}
	}

	result := RegionResult{Families: len(parents), RemovedMachines: len(doomed)}
	result.RemovedItems = s.RemoveMachines(doomed...)

	for _, id := range s.Machines() {
		s.UpdateMachine(id, (*models.Machine).StripRelations)
	}

	log.Info("region filter applied",
		zap.Strings("regions", regions),
		zap.Int("families", result.Families),
		zap.Int("removed_machines", result.RemovedMachines),
		zap.Int("removed_items", result.RemovedItems))
	return result
}

// familyMap groups lowercased machine names under their lowercased parent,
// taking the machine of the first item in every bucket.
func familyMap(s *store.Store) (map[string][]string, []string) {
	families := make(map[string][]string)
	var parents []string
	for _, key := range s.SortedBuckets() {
		ids := s.ItemsInBucket(key, false)
		if len(ids) == 0 {
			continue
		}
		ref, ok := s.Ref(ids[0])
		if !ok || ref.Machine == nil {
			continue
		}

		name := strings.ToLower(ref.Machine.Name)
		parent := name
		switch {
		case ref.Machine.CloneOf != "":
			parent = strings.ToLower(ref.Machine.CloneOf)
		case ref.Machine.RomOf != "":
			parent = strings.ToLower(ref.Machine.RomOf)
		}

		if _, ok := families[parent]; !ok {
			parents = append(parents, parent)
		}
		if !slices.Contains(families[parent], name) {
			families[parent] = append(families[parent], name)
		}
	}
	return families, parents
}

func selectMember(parent string, members []string, patterns []*regexp.Regexp) string {
	for _, re := range patterns {
		for _, member := range members {
			if re.MatchString(member) {
				return member
			}
		}
	}
	return parent
}
