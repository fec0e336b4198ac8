package reconcile

import (
	"context"
	"sort"

	"dat-manager/core/store"

	"gorm.io/gorm"
)

// Reconcile compares the live items of s with the rows of runID. Results
// are sorted by key.
func Reconcile(ctx context.Context, s *store.Store, db *gorm.DB, cache *Cache, runID string) ([]Result, error) {
	results, _, err := reconcile(ctx, s, db, cache, runID)
	return results, err
}

type indices struct {
	catalog Index
	export  Index
}

func reconcile(ctx context.Context, s *store.Store, db *gorm.DB, cache *Cache, runID string) ([]Result, *indices, error) {
	if cache == nil {
		cache = NewCache(0)
	}
	export, err := cache.Get(ctx, db, runID)
	if err != nil {
		return nil, nil, err
	}
	catalog, _ := CatalogIndex(s)

	union := make(map[string]struct{}, len(catalog)+len(export))
	for key := range catalog {
		union[key] = struct{}{}
	}
	for key := range export {
		union[key] = struct{}{}
	}

	results := make([]Result, 0, len(union))
	for key := range union {
		results = append(results, buildResult(key, catalog, export))
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].Key < results[j].Key
	})
	return results, &indices{catalog: catalog, export: export}, nil
}

func buildResult(key string, catalog, export Index) Result {
	c, inCatalog := catalog[key]
	e, inExport := export[key]

	res := Result{
		Key:            key,
		CatalogPresent: inCatalog,
		ExportPresent:  inExport,
		Mismatch:       []string{},
	}
	switch {
	case inCatalog:
		res.Machine, res.Name = c.MachineName, c.Name
	case inExport:
		res.Machine, res.Name = e.MachineName, e.Name
	}
	if inCatalog && inExport {
		res.Mismatch = compareRecords(c, e)
	}
	return res
}
