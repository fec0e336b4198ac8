// Package models defines the records the catalog store operates on: items,
// machines and sources, plus the enumerations attached to them.
//
// Items form a closed set of kinds (Rom, Disk, Media, File, Release, ...).
// Only the attributes the bucketing, merge and sort engines depend on are
// typed fields; dialect-specific attributes travel in the Extra side table
// and are never inspected by the core.
//
// # Equality
//
// Item.Equal implements conditional hash equality: two items of the same
// kind match when their sizes are compatible and every hash kind present on
// both sides agrees. Nodump items never match items with a different dump
// status.
package models
