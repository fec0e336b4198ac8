// Package stats aggregates catalog statistics incrementally.
//
// The Aggregator keeps per-type, per-status and per-hash-presence counters
// that are updated on every store mutation. Counters are atomic so bucket
// workers running in parallel can update them without extra locking. Reset
// zeroes everything ahead of an explicit full recomputation.
package stats
