package reconcile

import (
	"context"
	"fmt"
	"strings"

	"dat-manager/core/database"
	"dat-manager/core/store"

	"gorm.io/gorm"
)

// ItemKey identifies an exported item across runs.
func ItemKey(r *database.ItemRecord) string {
	return r.Type + ":" + r.MachineName + "/" + r.Name
}

// Index maps item keys to rows.
type Index map[string]*database.ItemRecord

// CatalogIndex indexes the live items of s.
func CatalogIndex(s *store.Store) (Index, []database.MachineRecord) {
	machines, items := database.CatalogRecords(s, "")
	idx := make(Index, len(items))
	for i := range items {
		idx[ItemKey(&items[i])] = &items[i]
	}
	return idx, machines
}

// LoadExportIndex reads every item row of runID.
func LoadExportIndex(ctx context.Context, db *gorm.DB, runID string) (Index, error) {
	var rows []database.ItemRecord
	if err := db.WithContext(ctx).Where("run_id = ?", runID).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load export run %s: %w", runID, err)
	}
	idx := make(Index, len(rows))
	for i := range rows {
		idx[ItemKey(&rows[i])] = &rows[i]
	}
	return idx, nil
}

// compareRecords lists the fields where the export differs from the catalog.
func compareRecords(catalog, export *database.ItemRecord) []string {
	var out []string
	field := func(name, c, e string) {
		if !strings.EqualFold(c, e) {
			out = append(out, fmt.Sprintf("%s: catalog=%s export=%s", name, c, e))
		}
	}

	field("size", sizeString(catalog.Size), sizeString(export.Size))
	field("crc", catalog.CRC, export.CRC)
	field("md2", catalog.MD2, export.MD2)
	field("md4", catalog.MD4, export.MD4)
	field("md5", catalog.MD5, export.MD5)
	field("sha1", catalog.SHA1, export.SHA1)
	field("sha256", catalog.SHA256, export.SHA256)
	field("sha384", catalog.SHA384, export.SHA384)
	field("sha512", catalog.SHA512, export.SHA512)
	field("spamsum", catalog.SpamSum, export.SpamSum)
	field("status", catalog.Status, export.Status)
	return out
}

func sizeString(n *int64) string {
	if n == nil {
		return "-"
	}
	return fmt.Sprint(*n)
}
