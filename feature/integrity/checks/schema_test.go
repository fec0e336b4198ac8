package checks

import (
	"testing"

	"dat-manager/core/database"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func memoryDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Connect(database.Config{Driver: database.DriverSQLite, Name: ":memory:"})
	require.NoError(t, err)
	return db
}

func TestCheckExportSchema_NilDB(t *testing.T) {
	report, err := CheckExportSchema(nil)
	assert.Error(t, err)
	assert.Nil(t, report)
}

func TestCheckExportSchema_Migrated(t *testing.T) {
	db := memoryDB(t)
	require.NoError(t, db.AutoMigrate(&database.MachineRecord{}, &database.ItemRecord{}))

	report, err := CheckExportSchema(db)
	require.NoError(t, err)
	assert.True(t, report.Matched)
	assert.Equal(t, "sqlite", report.Driver)
	assert.Equal(t, "ok", report.Tables["dat_machines"].Status)
	assert.Equal(t, "ok", report.Tables["dat_items"].Status)
}

func TestCheckExportSchema_MissingTable(t *testing.T) {
	db := memoryDB(t)
	require.NoError(t, db.AutoMigrate(&database.ItemRecord{}))

	report, err := CheckExportSchema(db)
	require.NoError(t, err)
	assert.False(t, report.Matched)
	assert.Equal(t, "missing", report.Tables["dat_machines"].Status)
	assert.Equal(t, "ok", report.Tables["dat_items"].Status)
}

func TestCheckExportSchema_MissingColumns(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	db, err := gorm.Open(mysql.New(mysql.Config{Conn: sqlDB, SkipInitializeWithVersion: true}), &gorm.Config{})
	require.NoError(t, err)

	machines := sqlmock.NewRows([]string{"Field", "Type", "Null", "Key", "Default", "Extra"})
	for _, col := range []string{"id", "run_id", "name", "description", "clone_of", "rom_of", "sample_of", "created_at"} {
		machines.AddRow(col, "varchar(255)", "YES", "", nil, "")
	}
	mock.ExpectQuery("SHOW COLUMNS FROM `dat_machines`").WillReturnRows(machines)

	items := sqlmock.NewRows([]string{"Field", "Type", "Null", "Key", "Default", "Extra"}).
		AddRow("id", "bigint unsigned", "NO", "PRI", nil, "auto_increment").
		AddRow("run_id", "varchar(36)", "YES", "MUL", nil, "")
	mock.ExpectQuery("SHOW COLUMNS FROM `dat_items`").WillReturnRows(items)

	report, err := CheckExportSchema(db)
	require.NoError(t, err)
	assert.False(t, report.Matched)
	assert.Equal(t, "ok", report.Tables["dat_machines"].Status)

	tbl := report.Tables["dat_items"]
	assert.Equal(t, "error", tbl.Status)
	assert.Contains(t, tbl.MissingColumns, "machine_name")
	assert.Contains(t, tbl.MissingColumns, "sha1")
	assert.NotContains(t, tbl.MissingColumns, "run_id")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSyncExportSchema(t *testing.T) {
	db := memoryDB(t)
	require.NoError(t, db.Exec("CREATE TABLE dat_items (id INTEGER PRIMARY KEY, run_id TEXT, name TEXT)").Error)

	changes, err := SyncExportSchema(db, zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.Contains(t, changes, "dat_machines")
	assert.Contains(t, changes, "dat_items.sha1")
	assert.NotContains(t, changes, "dat_items.name")

	report, err := CheckExportSchema(db)
	require.NoError(t, err)
	assert.True(t, report.Matched)

	changes, err = SyncExportSchema(db, zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.Empty(t, changes)
}
