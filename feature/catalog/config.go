package catalog

import "strings"

// Config holds processing defaults. Requests may override each of them.
type Config struct {
	// Workers bounds per-bucket parallelism and concurrent input loads.
	Workers int `mapstructure:"workers" default:"4"`
	// Lowercase folds machine bucket keys.
	Lowercase bool `mapstructure:"lowercase" default:"false"`
	// Dedupe is none, full or game.
	Dedupe string `mapstructure:"dedupe" default:"none"`
	// Regions is a comma-separated priority list for 1G1R selection.
	Regions string `mapstructure:"regions" default:""`
	// InputPrefix is listed when a request names no inputs.
	InputPrefix string `mapstructure:"input_prefix" default:"incoming/"`
	// OutputPrefix is where processed documents are written.
	OutputPrefix string `mapstructure:"output_prefix" default:"processed/"`
	// ExportCacheSeconds keeps loaded export runs for reconciliation.
	ExportCacheSeconds int `mapstructure:"export_cache_seconds" default:"300"`
}

// RegionList splits Regions, dropping blanks.
func (c Config) RegionList() []string {
	var out []string
	for _, r := range strings.Split(c.Regions, ",") {
		if r = strings.TrimSpace(r); r != "" {
			out = append(out, r)
		}
	}
	return out
}
