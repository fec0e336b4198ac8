// Package storage wraps the MinIO client used to read DAT documents and
// write processed catalogs. It works against AWS S3 and self-hosted MinIO.
//
// The Client interface only carries the calls dat-manager makes, which
// keeps core/storage/mocks small. EnsureBucket and ListKeys are helpers
// built on top of it.
//
//	client, err := storage.NewClient(cfg)
//	keys, err := storage.ListKeys(ctx, client, cfg.Bucket, "incoming/")
package storage
