package models

import (
	"strings"

	"dat-manager/core/hash"
)

// ItemType tags the concrete kind of an item. The declaration order is the
// order used when sorting items inside a machine.
type ItemType int

const (
	TypeUnknown ItemType = iota
	TypeArchive
	TypeBiosSet
	TypeDeviceRef
	TypeDisk
	TypeFile
	TypeMedia
	TypeRelease
	TypeRom
	TypeSample

	numItemTypes
)

// ItemTypes lists every known item type.
var ItemTypes = []ItemType{TypeArchive, TypeBiosSet, TypeDeviceRef, TypeDisk, TypeFile, TypeMedia, TypeRelease, TypeRom, TypeSample}

var itemTypeNames = [numItemTypes]string{
	TypeUnknown:   "unknown",
	TypeArchive:   "archive",
	TypeBiosSet:   "biosset",
	TypeDeviceRef: "device_ref",
	TypeDisk:      "disk",
	TypeFile:      "file",
	TypeMedia:     "media",
	TypeRelease:   "release",
	TypeRom:       "rom",
	TypeSample:    "sample",
}

var supportedHashes = [numItemTypes][]hash.Kind{
	TypeDisk:  {hash.MD5, hash.SHA1},
	TypeFile:  {hash.CRC, hash.MD5, hash.SHA1, hash.SHA256},
	TypeMedia: {hash.MD5, hash.SHA1, hash.SHA256, hash.SpamSum},
	TypeRom:   hash.Kinds,
}

// NumItemTypes is the size of arrays indexed by ItemType.
const NumItemTypes = int(numItemTypes)

func (t ItemType) String() string {
	if t < 0 || t >= numItemTypes {
		return itemTypeNames[TypeUnknown]
	}
	return itemTypeNames[t]
}

// ParseItemType resolves a type by name, case-insensitively.
func ParseItemType(name string) ItemType {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "deviceref" {
		return TypeDeviceRef
	}
	for t, n := range itemTypeNames {
		if n == name {
			return ItemType(t)
		}
	}
	return TypeUnknown
}

// Hashes returns the hash kinds this type can carry.
func (t ItemType) Hashes() []hash.Kind {
	if t < 0 || t >= numItemTypes {
		return nil
	}
	return supportedHashes[t]
}

// Supports reports whether the type can carry hash kind k.
func (t ItemType) Supports(k hash.Kind) bool {
	for _, s := range t.Hashes() {
		if s == k {
			return true
		}
	}
	return false
}

// HasHashes reports whether the type carries content hashes at all.
func (t ItemType) HasHashes() bool {
	return len(t.Hashes()) > 0
}

// HasSize reports whether the type carries a byte size.
func (t ItemType) HasSize() bool {
	return t == TypeRom || t == TypeFile
}

// HasStatus reports whether the type carries a dump status.
func (t ItemType) HasStatus() bool {
	return t == TypeRom || t == TypeDisk
}

// Status is the dump status of an item.
type Status int

const (
	StatusNone Status = iota
	StatusGood
	StatusBadDump
	StatusNodump
	StatusVerified

	numStatuses
)

// NumStatuses is the size of arrays indexed by Status.
const NumStatuses = int(numStatuses)

var statusNames = [numStatuses]string{
	StatusNone:     "",
	StatusGood:     "good",
	StatusBadDump:  "baddump",
	StatusNodump:   "nodump",
	StatusVerified: "verified",
}

func (s Status) String() string {
	if s < 0 || s >= numStatuses {
		return ""
	}
	return statusNames[s]
}

// ParseStatus resolves a status by name. Unknown names map to StatusNone.
func ParseStatus(name string) Status {
	name = strings.ToLower(strings.TrimSpace(name))
	switch name {
	case "good":
		return StatusGood
	case "baddump", "bad":
		return StatusBadDump
	case "nodump", "no":
		return StatusNodump
	case "verified":
		return StatusVerified
	}
	return StatusNone
}

// DupeType classifies how a merged item relates to the item it absorbed.
type DupeType uint8

const (
	// DupeInternal marks a duplicate coming from the same source.
	DupeInternal DupeType = 1 << iota
	// DupeExternal marks a duplicate coming from another source.
	DupeExternal
	// DupeAll marks a duplicate with identical machine and item names.
	DupeAll
	// DupeHash marks a duplicate whose content matches under another name.
	DupeHash
)

// Has reports whether every bit of flag is set.
func (d DupeType) Has(flag DupeType) bool {
	return flag != 0 && d&flag == flag
}

func (d DupeType) String() string {
	if d == 0 {
		return "none"
	}
	var parts []string
	if d.Has(DupeInternal) {
		parts = append(parts, "internal")
	}
	if d.Has(DupeExternal) {
		parts = append(parts, "external")
	}
	if d.Has(DupeAll) {
		parts = append(parts, "all")
	}
	if d.Has(DupeHash) {
		parts = append(parts, "hash")
	}
	return strings.Join(parts, "|")
}
