package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"dat-manager/core/config"
	"dat-manager/core/database"
	"dat-manager/core/logger"
	"dat-manager/core/storage"
	"dat-manager/feature/catalog"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var processReq catalog.Request

// processCmd runs one catalog job without starting the server.
var processCmd = &cobra.Command{
	Use:   "process [input keys...]",
	Short: "Merge and filter DAT documents from storage",
	Long: `Loads the given object keys (or everything under --prefix), merges them in
argument order, applies deduplication, filters and region selection, and writes
the processed document back to storage.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		jsonOutput, _ := cmd.Flags().GetBool("json")
		regions, _ := cmd.Flags().GetString("regions")

		cfg, err := config.LoadConfig(".")
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		logg, err := logger.New(&cfg.Log)
		if err != nil {
			return fmt.Errorf("failed to create logger: %w", err)
		}
		defer logg.Sync()

		client, err := storage.NewClient(cfg.Storage)
		if err != nil {
			return fmt.Errorf("failed to create storage client: %w", err)
		}

		var db *gorm.DB
		if processReq.Export || processReq.RunID != "" {
			if db, err = database.Connect(cfg.Database); err != nil {
				return fmt.Errorf("database connection required for export: %w", err)
			}
		}

		req := processReq
		req.Inputs = args
		if regions != "" {
			req.Regions = catalog.Config{Regions: regions}.RegionList()
		}

		svc := catalog.NewService(cfg.Catalog, catalog.Backends{
			Client:    client,
			Bucket:    cfg.Storage.Bucket,
			Region:    cfg.Storage.Region,
			DB:        db,
			BatchSize: cfg.Database.BatchSize,
		}, logg)

		logg.Info("Processing catalog (this might take a while)...", zap.Strings("inputs", args))
		report, err := svc.Process(ctx, req)
		if err != nil {
			return fmt.Errorf("catalog processing failed: %w", err)
		}

		if jsonOutput {
			data, err := json.MarshalIndent(report, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal JSON: %w", err)
			}
			fmt.Fprintln(os.Stdout, string(data))
			return nil
		}

		fmt.Println("\n=== Catalog Report ===")
		fmt.Printf("Inputs: %s\n", strings.Join(report.Inputs, ", "))
		fmt.Printf("Output: %s\n", report.Output)
		fmt.Printf("Items Before: %d\n", report.Before.Total)
		fmt.Printf("Items After: %d\n", report.After.Total)
		fmt.Printf("Filtered: %d\n", report.Filtered)
		fmt.Printf("Removed: %d\n", report.Removed)
		if report.Families > 0 {
			fmt.Printf("Families: %d (%d machines removed)\n", report.Families, report.RemovedMachines)
		}
		fmt.Printf("Buckets: %d\n", report.Buckets)
		if report.RunID != "" {
			fmt.Printf("Export Run: %s\n", report.RunID)
		}
		if rec := report.Reconcile; rec != nil {
			fmt.Printf("Reconcile: %d missing in export, %d missing in catalog, %d mismatched (%d applied)\n",
				rec.MissingExport, rec.MissingCatalog, rec.Mismatches, report.Applied)
		}
		fmt.Printf("Execution Time: %s\n", (time.Duration(report.DurationMS) * time.Millisecond).String())
		return nil
	},
}

func init() {
	f := processCmd.Flags()
	f.StringVar(&processReq.Prefix, "prefix", "", "list inputs under this prefix when no keys are given")
	f.StringVarP(&processReq.Output, "output", "o", "", "output object key")
	f.StringVar(&processReq.Name, "name", "", "header name of the written document")
	f.StringVar(&processReq.Key, "key", "", "bucket key: machine, best, crc, md5, sha1, ...")
	f.StringVar(&processReq.Dedupe, "dedupe", "", "dedupe mode: none, full or game")
	f.BoolVar(&processReq.KeepSources, "keep-sources", false, "keep same-named machines from different inputs apart")
	f.StringSliceVar(&processReq.Types, "type", nil, "keep only these item types")
	f.StringSliceVar(&processReq.Statuses, "status", nil, "keep only these statuses")
	f.StringVar(&processReq.MachinePattern, "machine", "", "keep only machines matching this regular expression")
	f.String("regions", "", "comma-separated region priority for 1G1R")
	f.BoolVar(&processReq.OneItemPerGame, "one-item-per-game", false, "split every item into its own machine")
	f.BoolVar(&processReq.Export, "export", false, "export the result to the database")
	f.StringVar(&processReq.RunID, "run-id", "", "reconcile into this earlier export run instead of creating a new one")
	f.BoolVar(&processReq.DryRun, "dry-run", false, "plan the reconciliation without applying it")
	f.Bool("json", false, "print the report as JSON")

	RootCmd.AddCommand(processCmd)
}
