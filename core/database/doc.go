// Package database connects to the snapshot database and exports processed
// catalogs into it.
//
// Connect supports MySQL and SQLite through GORM. ExportCatalog writes the
// live items of a store, in writer order, into the dat_machines and
// dat_items tables under a run id. GetTableColumns and VerifySchema inspect
// an existing database so a deployment whose tables were created by hand
// can be checked before an export is attempted.
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    return err
//	}
//	res, err := database.ExportCatalog(ctx, db, s, runID, cfg.Database.BatchSize)
package database
