// Package store holds the catalog: items, machines and sources addressed by
// integer handles, the item-to-machine and item-to-source relations, and the
// bucket index that partitions live items under the current grouping key.
//
// Mutations that only touch one bucket (Add, Remove, Update, MarkRemoved)
// are safe to call concurrently from different buckets. Whole-store passes
// (BucketBy, ClearMarked, OneItemPerGame, RemoveMachines) are exclusive and
// must not overlap with other mutations. Per-bucket work inside a pass runs
// on a bounded worker pool.
//
// Statistics are maintained incrementally on every mutation path; marked
// items are excluded from the counters until they are cleared or unmarked.
package store
