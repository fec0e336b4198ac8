package cmd

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"dat-manager/core/config"
	"dat-manager/core/database"
	"dat-manager/core/loader"
	"dat-manager/core/logger"
	"dat-manager/core/middleware/auth"
	"dat-manager/core/middleware/rayid"
	"dat-manager/core/storage"
	"dat-manager/feature/catalog"
	"dat-manager/feature/integrity"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	_ "dat-manager/docs/swagger"
)

// @title DAT Manager API
// @version 1.0
// @description API for processing DAT catalogs.
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the catalog server",
	Long:  `Starts the HTTP server and initializes all enabled features.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.LoadConfig(".")
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}

		logg, err := logger.New(&cfg.Log)
		if err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
		defer logg.Sync()
		zap.ReplaceGlobals(logg)

		// The database only backs exports, so the server runs without it.
		var db *gorm.DB
		if conn, err := database.Connect(cfg.Database); err != nil {
			logg.Warn("Optional database connection failed", zap.Error(err))
		} else {
			db = conn
			logg.Info("Connected to export database", zap.String("driver", cfg.Database.Driver))
			if err := database.VerifySchema(db); err != nil {
				logg.Warn("Export tables will be migrated on next export", zap.Error(err))
			}
		}

		app := fiber.New(fiber.Config{
			DisableStartupMessage: true,
			BodyLimit:             cfg.Server.BodyLimit(),
			ReadTimeout:           cfg.Server.ReadTimeout(),
		})

		client, err := storage.NewClient(cfg.Storage)
		if err != nil {
			logg.Fatal("Failed to create storage client", zap.Error(err))
		}

		mgr := loader.NewManager()
		mgr.Register(catalog.NewFeature(cfg.Catalog, catalog.Backends{
			Client:    client,
			Bucket:    cfg.Storage.Bucket,
			Region:    cfg.Storage.Region,
			DB:        db,
			BatchSize: cfg.Database.BatchSize,
		}, logg))
		mgr.Register(integrity.NewFeature(client, db, integrity.Options{
			Bucket:       cfg.Storage.Bucket,
			InputPrefix:  cfg.Catalog.InputPrefix,
			OutputPrefix: cfg.Catalog.OutputPrefix,
			Workers:      cfg.Catalog.Workers,
		}, logg))

		// RayID first so every later log line carries it.
		app.Use(rayid.New())

		app.Use(func(c *fiber.Ctx) error {
			l := logger.WithRayID(logg, c)
			l.Info("Request started",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.String("ip", c.IP()),
			)
			err := c.Next()
			if err != nil {
				l.Error("Request error", zap.Error(err))
			}
			return err
		})

		app.Get("/swagger/*", swagger.HandlerDefault)

		app.Use(auth.New(auth.Config{
			ApiKey: cfg.Server.ApiKey,
			Skip:   []string{"/catalog/health"},
		}))

		if err := mgr.LoadAll(app); err != nil {
			logg.Fatal("Failed to load features", zap.Error(err))
		}

		go func() {
			logg.Info("Starting server", zap.String("address", cfg.Server.Address()))
			if err := app.Listen(cfg.Server.Address()); err != nil {
				logg.Fatal("Server failed to start", zap.Error(err))
			}
		}()

		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		logg.Info("Shutting down server...")
		_ = app.Shutdown()
	},
}

func init() {
	RootCmd.AddCommand(startCmd)
}
