package filter

import (
	"fmt"
	"regexp"
	"slices"
	"sync/atomic"

	"dat-manager/core/models"
	"dat-manager/core/store"
)

// Predicate reports whether an item should be kept.
type Predicate func(ref models.Ref) bool

// Run applies keep to every live item, bucket by bucket in parallel, and
// marks the failing ones removed. It returns the number of items marked.
func Run(s *store.Store, keep Predicate) int {
	if keep == nil {
		return 0
	}
	var marked atomic.Int64
	s.EachBucket(func(key string) {
		for _, id := range s.ItemsInBucket(key, true) {
			ref, ok := s.Ref(id)
			if !ok || keep(ref) {
				continue
			}
			if s.MarkRemoved(id) {
				marked.Add(1)
			}
		}
	})
	return int(marked.Load())
}

// ByType keeps items of the listed types.
func ByType(types ...models.ItemType) Predicate {
	return func(ref models.Ref) bool {
		return slices.Contains(types, ref.Item.Type)
	}
}

// ByStatus keeps items with one of the listed statuses. Types without a
// status always pass.
func ByStatus(statuses ...models.Status) Predicate {
	return func(ref models.Ref) bool {
		if !ref.Item.Type.HasStatus() {
			return true
		}
		return slices.Contains(statuses, ref.Item.Status)
	}
}

// ByMachineName keeps items whose machine name matches pattern.
func ByMachineName(pattern string) (Predicate, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid machine pattern %q: %w", pattern, err)
	}
	return func(ref models.Ref) bool {
		return ref.Machine != nil && re.MatchString(ref.Machine.Name)
	}, nil
}

// All keeps items every predicate keeps.
func All(preds ...Predicate) Predicate {
	return func(ref models.Ref) bool {
		for _, p := range preds {
			if p != nil && !p(ref) {
				return false
			}
		}
		return true
	}
}

// Not inverts a predicate.
func Not(p Predicate) Predicate {
	return func(ref models.Ref) bool {
		return !p(ref)
	}
}
