package database

import (
	"context"
	"fmt"
	"time"

	"dat-manager/core/hash"
	"dat-manager/core/store"

	"gorm.io/gorm"
)

// MachineRecord is one exported machine row.
type MachineRecord struct {
	ID          uint   `gorm:"primaryKey"`
	RunID       string `gorm:"size:36;index"`
	Name        string `gorm:"size:255;index"`
	Description string `gorm:"size:255"`
	CloneOf     string `gorm:"size:255"`
	RomOf       string `gorm:"size:255"`
	SampleOf    string `gorm:"size:255"`
	CreatedAt   time.Time
}

func (MachineRecord) TableName() string { return "dat_machines" }

// ItemRecord is one exported item row.
type ItemRecord struct {
	ID          uint   `gorm:"primaryKey"`
	RunID       string `gorm:"size:36;index"`
	MachineName string `gorm:"size:255;index"`
	Type        string `gorm:"size:16"`
	Name        string `gorm:"size:512"`
	Size        *int64
	CRC         string `gorm:"column:crc;size:8;index"`
	MD2         string `gorm:"column:md2;size:32"`
	MD4         string `gorm:"column:md4;size:32"`
	MD5         string `gorm:"column:md5;size:32"`
	SHA1        string `gorm:"column:sha1;size:40;index"`
	SHA256      string `gorm:"column:sha256;size:64"`
	SHA384      string `gorm:"column:sha384;size:96"`
	SHA512      string `gorm:"column:sha512;size:128"`
	SpamSum     string `gorm:"column:spamsum;size:255"`
	Status      string `gorm:"size:16"`
	Dupe        string `gorm:"size:32"`
	CreatedAt   time.Time
}

func (ItemRecord) TableName() string { return "dat_items" }

var requiredColumns = map[string][]string{
	"dat_machines": {"run_id", "name", "description", "clone_of", "rom_of", "sample_of"},
	"dat_items":    {"run_id", "machine_name", "type", "name", "size", "crc", "md5", "sha1", "sha256", "status"},
}

// ExportResult counts the exported rows.
type ExportResult struct {
	RunID    string `json:"run_id"`
	Machines int    `json:"machines"`
	Items    int    `json:"items"`
}

// ExportCatalog writes the live items of s, in bucket order, together with
// their machines under runID. Everything is inserted in one transaction.
func ExportCatalog(ctx context.Context, db *gorm.DB, s *store.Store, runID string, batchSize int) (*ExportResult, error) {
	if batchSize <= 0 {
		batchSize = 500
	}
	if err := db.WithContext(ctx).AutoMigrate(&MachineRecord{}, &ItemRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate export tables: %w", err)
	}

	machines, items := CatalogRecords(s, runID)

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(machines) > 0 {
			if err := tx.CreateInBatches(machines, batchSize).Error; err != nil {
				return fmt.Errorf("failed to insert machines: %w", err)
			}
		}
		if len(items) > 0 {
			if err := tx.CreateInBatches(items, batchSize).Error; err != nil {
				return fmt.Errorf("failed to insert items: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &ExportResult{RunID: runID, Machines: len(machines), Items: len(items)}, nil
}

// CatalogRecords converts the live items of s, in bucket order, into export
// rows. Machines sharing a name produce one row.
func CatalogRecords(s *store.Store, runID string) ([]MachineRecord, []ItemRecord) {
	var (
		machines []MachineRecord
		items    []ItemRecord
		seen     = make(map[string]bool)
	)
	for _, key := range s.SortedBuckets() {
		for _, id := range s.ItemsInBucket(key, true) {
			ref, ok := s.Ref(id)
			if !ok {
				continue
			}

			rec := ItemRecord{
				RunID:   runID,
				Type:    ref.Item.Type.String(),
				Name:    ref.Item.Name,
				Size:    ref.Item.Size,
				CRC:     ref.Item.Hashes.Get(hash.CRC),
				MD2:     ref.Item.Hashes.Get(hash.MD2),
				MD4:     ref.Item.Hashes.Get(hash.MD4),
				MD5:     ref.Item.Hashes.Get(hash.MD5),
				SHA1:    ref.Item.Hashes.Get(hash.SHA1),
				SHA256:  ref.Item.Hashes.Get(hash.SHA256),
				SHA384:  ref.Item.Hashes.Get(hash.SHA384),
				SHA512:  ref.Item.Hashes.Get(hash.SHA512),
				SpamSum: ref.Item.Hashes.Get(hash.SpamSum),
				Status:  ref.Item.Status.String(),
			}
			if ref.Item.Dupe != 0 {
				rec.Dupe = ref.Item.Dupe.String()
			}
			if ref.Machine != nil {
				rec.MachineName = ref.Machine.Name
				if !seen[ref.Machine.Name] {
					seen[ref.Machine.Name] = true
					machines = append(machines, MachineRecord{
						RunID:       runID,
						Name:        ref.Machine.Name,
						Description: ref.Machine.Description,
						CloneOf:     ref.Machine.CloneOf,
						RomOf:       ref.Machine.RomOf,
						SampleOf:    ref.Machine.SampleOf,
					})
				}
			}
			items = append(items, rec)
		}
	}

	return machines, items
}
