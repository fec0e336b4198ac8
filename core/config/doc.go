// Package config loads the dat-manager configuration.
//
// Values come from an optional .env file and the process environment, with
// defaults declared on the section structs through `default` tags. Nested
// keys map to environment variables by replacing dots with underscores, so
// catalog.workers is read from CATALOG_WORKERS.
//
// # Sections
//
//   - Server: HTTP listen port and API key
//   - Storage: S3/MinIO endpoint, credentials and bucket
//   - Log: level and encoding
//   - Database: driver and connection settings for snapshot export
//   - Catalog: worker count, dedupe mode, region priority and output prefix
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Catalog.Dedupe)
package config
