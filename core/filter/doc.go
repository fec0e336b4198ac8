// Package filter runs item predicates over a store and implements the
// one-game-per-region pass that keeps a single preferred variant of every
// parent/clone family.
//
// Item predicates never delete anything. Failing items are marked removed
// so a later ClearMarked, or the writer, can drop them.
package filter
