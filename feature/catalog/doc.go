// Package catalog runs catalog processing jobs: it loads JSON DAT documents
// from object storage, merges them into one store, applies bucketing,
// deduplication, filters and region selection, then writes the result back
// to storage and optionally exports it to the database.
//
// Routes:
//
//	POST /catalog/process
//	GET  /catalog/health
package catalog
