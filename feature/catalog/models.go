package catalog

import (
	"dat-manager/core/reconcile"
	"dat-manager/core/stats"
)

// Request describes one processing job. Zero fields fall back to Config.
type Request struct {
	// Inputs are object keys, loaded in order; the position is the source
	// index. When empty every object under Prefix is used.
	Inputs []string `json:"inputs,omitempty"`
	Prefix string   `json:"prefix,omitempty"`
	// Output is the object key of the written document.
	Output string `json:"output,omitempty"`
	Name   string `json:"name,omitempty"`

	// Key is the bucketing key: machine, best, or a hash name such as sha1.
	Key    string `json:"key,omitempty"`
	Dedupe string `json:"dedupe,omitempty"`
	// KeepSources buckets machines per input instead of merging same-named
	// machines across inputs.
	KeepSources bool `json:"keep_sources,omitempty"`

	Types          []string `json:"types,omitempty"`
	Statuses       []string `json:"statuses,omitempty"`
	MachinePattern string   `json:"machine_pattern,omitempty"`
	Regions        []string `json:"regions,omitempty"`
	OneItemPerGame bool     `json:"one_item_per_game,omitempty"`

	Export bool `json:"export,omitempty"`
	// RunID reconciles an earlier export run instead of creating a new one.
	RunID string `json:"run_id,omitempty"`
	// DryRun plans the reconciliation without applying it.
	DryRun bool `json:"dry_run,omitempty"`
}

// Report summarizes a finished job.
type Report struct {
	Inputs          []string       `json:"inputs"`
	Output          string         `json:"output"`
	RunID           string         `json:"run_id,omitempty"`
	Before          stats.Snapshot `json:"before"`
	After           stats.Snapshot `json:"after"`
	Filtered        int            `json:"filtered"`
	Families        int            `json:"families,omitempty"`
	RemovedMachines int            `json:"removed_machines,omitempty"`
	Removed         int            `json:"removed"`
	Buckets         int            `json:"buckets"`
	DurationMS      int64          `json:"duration_ms"`

	Reconcile *reconcile.Summary `json:"reconcile,omitempty"`
	Applied   int                `json:"applied,omitempty"`
}
