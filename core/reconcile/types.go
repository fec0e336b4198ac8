package reconcile

import (
	"dat-manager/core/database"
)

// Result is the reconciliation outcome for one item key.
type Result struct {
	Key     string `json:"key"`
	Machine string `json:"machine"`
	Name    string `json:"name"`

	CatalogPresent bool `json:"catalog_present"`
	ExportPresent  bool `json:"export_present"`

	// Mismatch describes differing fields, e.g. "crc: catalog=1234abcd export=00000000".
	Mismatch []string `json:"mismatch"`
}

// ActionType represents the type of mutation action.
type ActionType string

const (
	// ActionInsertExport adds a catalog item to the run.
	ActionInsertExport ActionType = "insert_export"
	// ActionDeleteExport removes an item the catalog no longer has.
	ActionDeleteExport ActionType = "delete_export"
	// ActionSyncExport overwrites exported fields from the catalog.
	ActionSyncExport ActionType = "sync_export"
)

// Action represents a planned mutation operation.
type Action struct {
	Type   ActionType `json:"type"`
	Key    string     `json:"key"`
	Reason string     `json:"reason"`

	// Record is the catalog row for insert and sync actions.
	Record *database.ItemRecord `json:"-"`
}

// Plan contains reconciliation results and planned actions.
type Plan struct {
	RunID   string   `json:"run_id"`
	Results []Result `json:"results"`
	Actions []Action `json:"actions"`
	Summary Summary  `json:"summary"`

	machines []database.MachineRecord
}

// Summary provides aggregate counts for a plan.
type Summary struct {
	TotalItems     int `json:"total_items"`
	MissingExport  int `json:"missing_export"`
	MissingCatalog int `json:"missing_catalog"`
	Mismatches     int `json:"mismatches"`
	InsertActions  int `json:"insert_actions"`
	PurgeActions   int `json:"purge_actions"`
	SyncActions    int `json:"sync_actions"`
}

// Options controls which actions are planned and whether they run.
type Options struct {
	// DryRun prevents execution of any mutations if true.
	DryRun bool
	// DoInsert plans inserts for items missing from the run.
	DoInsert bool
	// DoPurge plans deletes for items missing from the catalog.
	DoPurge bool
	// DoSync plans updates for mismatched items.
	DoSync bool
	// Confirmed must be set for ApplyPlan to mutate anything.
	Confirmed bool
}
