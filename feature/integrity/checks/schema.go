package checks

import (
	"fmt"
	"sort"
	"sync"

	"dat-manager/core/database"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// SchemaReport strictly types the result of an export schema check.
type SchemaReport struct {
	Driver  string                 `json:"driver"`
	Matched bool                   `json:"matched"`
	Tables  map[string]TableReport `json:"tables"`
	Errors  []string               `json:"errors"`
}

type TableReport struct {
	MissingColumns []string `json:"missing_columns"`
	Status         string   `json:"status"` // "ok", "missing", "error"
}

// exportModels are the gorm models written by database.ExportCatalog.
var exportModels = []any{&database.MachineRecord{}, &database.ItemRecord{}}

// CheckExportSchema compares the export tables against the gorm models that
// write them. A table that does not exist yet is reported as missing; the
// next export creates it.
func CheckExportSchema(db *gorm.DB) (*SchemaReport, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}

	report := &SchemaReport{
		Driver:  db.Dialector.Name(),
		Tables:  make(map[string]TableReport),
		Matched: true,
		Errors:  []string{},
	}

	cache := &sync.Map{}
	for _, model := range exportModels {
		sch, err := schema.Parse(model, cache, db.NamingStrategy)
		if err != nil {
			return nil, fmt.Errorf("failed to parse model: %w", err)
		}

		tbl := TableReport{MissingColumns: []string{}, Status: "ok"}
		actual, err := database.GetTableColumns(db, sch.Table)
		if err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("Failed to inspect table %s: %v", sch.Table, err))
			report.Matched = false
			tbl.Status = "error"
			report.Tables[sch.Table] = tbl
			continue
		}
		if len(actual) == 0 {
			report.Matched = false
			tbl.Status = "missing"
			report.Tables[sch.Table] = tbl
			continue
		}

		have := make(map[string]bool, len(actual))
		for _, col := range actual {
			have[col.Field] = true
		}
		for _, field := range sch.Fields {
			if field.DBName == "" {
				continue
			}
			if !have[field.DBName] {
				tbl.MissingColumns = append(tbl.MissingColumns, field.DBName)
				tbl.Status = "error"
				report.Matched = false
			}
		}
		report.Tables[sch.Table] = tbl
	}

	return report, nil
}

// SyncExportSchema creates missing export tables and adds missing columns.
// It returns "table.column" for every column it added; a created table is
// listed as "table".
func SyncExportSchema(db *gorm.DB, logger *zap.Logger) ([]string, error) {
	before, err := CheckExportSchema(db)
	if err != nil {
		return nil, err
	}
	if before.Matched {
		return []string{}, nil
	}

	if err := db.AutoMigrate(exportModels...); err != nil {
		return nil, fmt.Errorf("failed to migrate export tables: %w", err)
	}

	changes := []string{}
	for table, tbl := range before.Tables {
		switch tbl.Status {
		case "missing":
			changes = append(changes, table)
			logger.Info("Created export table", zap.String("table", table))
		default:
			for _, col := range tbl.MissingColumns {
				changes = append(changes, table+"."+col)
				logger.Info("Added export column", zap.String("table", table), zap.String("column", col))
			}
		}
	}
	sort.Strings(changes)
	return changes, nil
}
