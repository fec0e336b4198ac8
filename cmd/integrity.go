package cmd

import (
	"context"
	"fmt"
	"os"

	"dat-manager/core/config"
	"dat-manager/core/database"
	"dat-manager/core/logger"
	"dat-manager/core/storage"
	"dat-manager/feature/integrity"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var fixFlag bool

// integrityCmd represents the integrity command
var integrityCmd = &cobra.Command{
	Use:   "integrity",
	Short: "Perform integrity checks on storage and the export database",
	Long:  `Checks the storage bucket layout, that every input document decodes, and that the export tables are current.`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) > 0 {
			cmd.Help()
			return
		}
		runIntegrityChecks(cmd.Context(), true, true, true)
	},
}

var structureCmd = &cobra.Command{
	Use:   "structure",
	Short: "Check and fix the input and output folders",
	Run: func(cmd *cobra.Command, args []string) {
		runIntegrityChecks(cmd.Context(), true, false, false)
	},
}

var documentsCmd = &cobra.Command{
	Use:   "documents",
	Short: "Check that every input document decodes",
	Run: func(cmd *cobra.Command, args []string) {
		runIntegrityChecks(cmd.Context(), false, true, false)
	},
}

var schemaCheckCmd = &cobra.Command{
	Use:   "schema",
	Short: "Check and sync the export tables against the export models",
	Run: func(cmd *cobra.Command, args []string) {
		runIntegrityChecks(cmd.Context(), false, false, true)
	},
}

func init() {
	RootCmd.AddCommand(integrityCmd)
	integrityCmd.AddCommand(structureCmd, documentsCmd, schemaCheckCmd)

	integrityCmd.PersistentFlags().BoolVar(&fixFlag, "fix", false, "Create missing folders and migrate the export tables")
}

func runIntegrityChecks(ctx context.Context, runStructure, runDocuments, runSchema bool) {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.LoadConfig(".")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logg, err := logger.New(&cfg.Log)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}

	client, err := storage.NewClient(cfg.Storage)
	if err != nil {
		logg.Fatal("Failed to create storage client", zap.Error(err))
	}

	var db *gorm.DB
	if runSchema {
		if conn, err := database.Connect(cfg.Database); err != nil {
			logg.Warn("Optional database connection failed", zap.Error(err))
		} else {
			db = conn
		}
	}

	svc := integrity.NewService(client, db, integrity.Options{
		Bucket:       cfg.Storage.Bucket,
		InputPrefix:  cfg.Catalog.InputPrefix,
		OutputPrefix: cfg.Catalog.OutputPrefix,
		Workers:      cfg.Catalog.Workers,
	}, logg)

	if runStructure {
		logg.Info("Checking folder structure...")
		missing, err := svc.CheckStructure(ctx)
		if err != nil {
			logg.Fatal("Structure check failed", zap.Error(err))
		}

		if len(missing) == 0 {
			logg.Info("Structure is intact.")
		} else {
			logg.Warn("Missing folders detected", zap.Strings("missing", missing))

			if fixFlag {
				logg.Info("Fixing missing folders...")
				if err := svc.FixStructure(ctx, missing); err != nil {
					logg.Fatal("Failed to fix structure", zap.Error(err))
				}
				logg.Info("Structure fixed successfully.")
			} else {
				logg.Info("Run 'integrity structure --fix' to create missing folders.")
			}
		}
	}

	if runDocuments {
		logg.Info("Checking input documents...", zap.String("prefix", cfg.Catalog.InputPrefix))
		report, err := svc.CheckDocuments(ctx)
		if err != nil {
			logg.Fatal("Document check failed", zap.Error(err))
		}

		for _, doc := range report.Documents {
			if doc.Error != "" {
				logg.Warn("Unreadable document", zap.String("key", doc.Key), zap.String("error", doc.Error))
			} else if doc.UnknownItems > 0 {
				logg.Warn("Document has items of unknown type", zap.String("key", doc.Key), zap.Int("unknown", doc.UnknownItems))
			}
		}
		logg.Info("Document check completed", zap.Int("valid", report.Valid), zap.Int("invalid", report.Invalid))
	}

	if runSchema {
		logg.Info("Checking export schema...", zap.String("driver", cfg.Database.Driver))
		report, err := svc.CheckSchema()
		if err != nil {
			logg.Error("Export schema check failed", zap.Error(err))
			return
		}
		if report.Matched {
			logg.Info("Export schema matches the export models.")
			return
		}
		logg.Warn("Export schema mismatches found")
		for table, tbl := range report.Tables {
			switch tbl.Status {
			case "missing":
				logg.Warn("Table missing; the next export creates it", zap.String("table", table))
			case "error":
				if len(tbl.MissingColumns) > 0 {
					logg.Warn("Missing Columns", zap.String("table", table), zap.Strings("columns", tbl.MissingColumns))
				}
			}
		}
		for _, e := range report.Errors {
			logg.Error("Inspection Error", zap.String("error", e))
		}
		if !fixFlag {
			logg.Info("Run 'integrity schema --fix' to migrate the export tables.")
			return
		}
		changes, err := svc.SyncSchema()
		if err != nil {
			logg.Fatal("Failed to sync export schema", zap.Error(err))
		}
		logg.Info("Export schema synced", zap.Strings("changes", changes))
	}
}
