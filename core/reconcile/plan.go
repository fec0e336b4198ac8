package reconcile

import (
	"context"
	"fmt"

	"dat-manager/core/database"
	"dat-manager/core/store"

	"gorm.io/gorm"
)

// ReconcileWithPlan reconciles s against runID and plans the actions opts
// allows. It does not execute them; use ApplyPlan for that.
func ReconcileWithPlan(ctx context.Context, s *store.Store, db *gorm.DB, cache *Cache, runID string, opts Options) (*Plan, error) {
	results, idx, err := reconcile(ctx, s, db, cache, runID)
	if err != nil {
		return nil, err
	}

	plan := &Plan{RunID: runID, Results: results}
	plan.Summary, plan.Actions = buildPlanFromResults(results, idx, opts)
	_, plan.machines = CatalogIndex(s)
	return plan, nil
}

func buildPlanFromResults(results []Result, idx *indices, opts Options) (Summary, []Action) {
	summary := Summary{TotalItems: len(results)}
	var actions []Action

	for _, r := range results {
		switch {
		case r.CatalogPresent && !r.ExportPresent:
			summary.MissingExport++
			if opts.DoInsert {
				actions = append(actions, Action{
					Type:   ActionInsertExport,
					Key:    r.Key,
					Reason: "missing in export",
					Record: idx.catalog[r.Key],
				})
				summary.InsertActions++
			}
		case !r.CatalogPresent && r.ExportPresent:
			summary.MissingCatalog++
			if opts.DoPurge {
				actions = append(actions, Action{
					Type:   ActionDeleteExport,
					Key:    r.Key,
					Reason: "missing in catalog",
					Record: idx.export[r.Key],
				})
				summary.PurgeActions++
			}
		case len(r.Mismatch) > 0:
			summary.Mismatches++
			if opts.DoSync {
				rec := *idx.catalog[r.Key]
				rec.ID = idx.export[r.Key].ID
				actions = append(actions, Action{
					Type:   ActionSyncExport,
					Key:    r.Key,
					Reason: fmt.Sprintf("%d field(s) differ", len(r.Mismatch)),
					Record: &rec,
				})
				summary.SyncActions++
			}
		}
	}
	return summary, actions
}

// ApplyPlan executes the actions of plan in one transaction and returns how
// many ran. Nothing runs unless opts is confirmed and not a dry run.
func ApplyPlan(ctx context.Context, db *gorm.DB, cache *Cache, plan *Plan, opts Options, batchSize int) (executed int, err error) {
	if !opts.Confirmed || opts.DryRun || len(plan.Actions) == 0 {
		return 0, nil
	}
	if batchSize <= 0 {
		batchSize = 500
	}

	var (
		inserts   []database.ItemRecord
		deleteIDs []uint
		syncs     []database.ItemRecord
	)
	for _, a := range plan.Actions {
		switch a.Type {
		case ActionInsertExport:
			rec := *a.Record
			rec.ID, rec.RunID = 0, plan.RunID
			inserts = append(inserts, rec)
		case ActionDeleteExport:
			deleteIDs = append(deleteIDs, a.Record.ID)
		case ActionSyncExport:
			rec := *a.Record
			rec.RunID = plan.RunID
			syncs = append(syncs, rec)
		}
	}

	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(deleteIDs) > 0 {
			if err := tx.Delete(&database.ItemRecord{}, deleteIDs).Error; err != nil {
				return fmt.Errorf("failed to delete export items: %w", err)
			}
			executed += len(deleteIDs)
		}

		for i := range syncs {
			rec := &syncs[i]
			err := tx.Model(&database.ItemRecord{ID: rec.ID}).
				Select("Size", "CRC", "MD2", "MD4", "MD5", "SHA1", "SHA256", "SHA384", "SHA512", "SpamSum", "Status", "Dupe").
				Updates(rec).Error
			if err != nil {
				return fmt.Errorf("failed to sync export item %s: %w", ItemKey(rec), err)
			}
			executed++
		}

		if len(inserts) > 0 {
			if err := insertMissingMachines(tx, plan, inserts); err != nil {
				return err
			}
			if err := tx.CreateInBatches(inserts, batchSize).Error; err != nil {
				return fmt.Errorf("failed to insert export items: %w", err)
			}
			executed += len(inserts)
		}

		// Machines left without items.
		orphaned := tx.Model(&database.ItemRecord{}).Select("machine_name").Where("run_id = ?", plan.RunID)
		if err := tx.Where("run_id = ? AND name NOT IN (?)", plan.RunID, orphaned).Delete(&database.MachineRecord{}).Error; err != nil {
			return fmt.Errorf("failed to delete orphaned machines: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	if cache != nil {
		cache.Invalidate(plan.RunID)
	}
	return executed, nil
}

func insertMissingMachines(tx *gorm.DB, plan *Plan, inserts []database.ItemRecord) error {
	var existing []string
	if err := tx.Model(&database.MachineRecord{}).Where("run_id = ?", plan.RunID).Pluck("name", &existing).Error; err != nil {
		return fmt.Errorf("failed to load export machines: %w", err)
	}
	have := make(map[string]bool, len(existing))
	for _, name := range existing {
		have[name] = true
	}

	needed := make(map[string]bool)
	for _, rec := range inserts {
		if !have[rec.MachineName] {
			needed[rec.MachineName] = true
		}
	}

	var machines []database.MachineRecord
	for _, m := range plan.machines {
		if needed[m.Name] {
			m.RunID = plan.RunID
			machines = append(machines, m)
		}
	}
	if len(machines) == 0 {
		return nil
	}
	if err := tx.Create(&machines).Error; err != nil {
		return fmt.Errorf("failed to insert export machines: %w", err)
	}
	return nil
}

// ReconcileAndApply plans and, when opts allow, applies the plan.
func ReconcileAndApply(ctx context.Context, s *store.Store, db *gorm.DB, cache *Cache, runID string, opts Options, batchSize int) (*Plan, int, error) {
	plan, err := ReconcileWithPlan(ctx, s, db, cache, runID, opts)
	if err != nil {
		return nil, 0, err
	}
	executed, err := ApplyPlan(ctx, db, cache, plan, opts, batchSize)
	if err != nil {
		return plan, executed, err
	}
	return plan, executed, nil
}
