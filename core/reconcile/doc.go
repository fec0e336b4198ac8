// Package reconcile compares a processed catalog against an earlier export
// run and brings that run up to date.
//
// Each item is identified by its type, machine name and item name. For every
// key in the union of the catalog and the export, a Result records where the
// item is present and which fields differ. BuildPlan turns results into
// actions:
//
//   - insert_export: the item is in the catalog but not in the run.
//   - delete_export: the item is in the run but no longer in the catalog.
//   - sync_export: the item is in both but its size, hashes or status differ.
//
// ApplyPlan executes the actions inside one transaction, and only when the
// options are confirmed and not a dry run.
//
// Export indices are cached per run ID. Concurrent builds for the same run
// share one load.
package reconcile
