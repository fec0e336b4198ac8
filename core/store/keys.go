package store

import (
	"strings"

	"dat-manager/core/hash"
)

// KeyType selects how items are grouped into buckets.
type KeyType int

const (
	KeyNone KeyType = iota
	KeyMachine
	KeyCRC
	KeyMD2
	KeyMD4
	KeyMD5
	KeySHA1
	KeySHA256
	KeySHA384
	KeySHA512
	KeySpamSum
)

// HashKey returns the key type grouping by hash kind k.
func HashKey(k hash.Kind) KeyType {
	return KeyCRC + KeyType(k)
}

// HashKind returns the hash kind a hash key groups by.
func (k KeyType) HashKind() (hash.Kind, bool) {
	if k < KeyCRC || k > KeySpamSum {
		return 0, false
	}
	return hash.Kind(k - KeyCRC), true
}

func (k KeyType) String() string {
	switch k {
	case KeyNone:
		return "none"
	case KeyMachine:
		return "machine"
	}
	if h, ok := k.HashKind(); ok {
		return h.String()
	}
	return "unknown"
}

// ParseKeyType resolves a key type by name.
func ParseKeyType(name string) (KeyType, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	switch name {
	case "machine", "game":
		return KeyMachine, true
	case "none", "":
		return KeyNone, true
	}
	if h, ok := hash.ParseKind(name); ok {
		return HashKey(h), true
	}
	return KeyNone, false
}

// Dedupe selects which merge pass BucketBy runs.
type Dedupe int

const (
	// DedupeNone sorts buckets without merging.
	DedupeNone Dedupe = iota
	// DedupeFull merges equal items across the whole bucket.
	DedupeFull
	// DedupeGame merges only while bucketed by machine.
	DedupeGame
)

func (d Dedupe) String() string {
	switch d {
	case DedupeFull:
		return "full"
	case DedupeGame:
		return "game"
	}
	return "none"
}

// ParseDedupe resolves a dedupe mode by name.
func ParseDedupe(name string) (Dedupe, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "none":
		return DedupeNone, true
	case "full", "all":
		return DedupeFull, true
	case "game":
		return DedupeGame, true
	}
	return DedupeNone, false
}
