package hash

import (
	"encoding/hex"
	"strings"
)

// Kind identifies a hash algorithm.
type Kind int

const (
	CRC Kind = iota
	MD2
	MD4
	MD5
	SHA1
	SHA256
	SHA384
	SHA512
	SpamSum

	numKinds
)

// NumKinds is the size of arrays indexed by Kind.
const NumKinds = int(numKinds)

// Kinds lists every kind in declaration order.
var Kinds = []Kind{CRC, MD2, MD4, MD5, SHA1, SHA256, SHA384, SHA512, SpamSum}

// Strongest lists the kinds from most to least discriminating.
var Strongest = []Kind{SHA512, SHA384, SHA256, SHA1, MD5, MD4, MD2, CRC, SpamSum}

var kindNames = [numKinds]string{
	CRC:     "crc",
	MD2:     "md2",
	MD4:     "md4",
	MD5:     "md5",
	SHA1:    "sha1",
	SHA256:  "sha256",
	SHA384:  "sha384",
	SHA512:  "sha512",
	SpamSum: "spamsum",
}

// sizes holds the digest length in bytes; zero means variable length.
var sizes = [numKinds]int{
	CRC:    4,
	MD2:    16,
	MD4:    16,
	MD5:    16,
	SHA1:   20,
	SHA256: 32,
	SHA384: 48,
	SHA512: 64,
}

var emptyFile = [numKinds]string{
	CRC:     "00000000",
	MD2:     "8350e5a3e24c153df2275c9f80692773",
	MD4:     "31d6cfe0d16ae931b73c59d7e0c089c0",
	MD5:     "d41d8cd98f00b204e9800998ecf8427e",
	SHA1:    "da39a3ee5e6b4b0d3255bfef95601890afd80709",
	SHA256:  "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855",
	SHA384:  "38b060a751ac96384cd9327eb1b1e36a21fdb71114be07434c0cc7bf63f6e1da274edebfe76f65fbd51ad2f14898b95b",
	SHA512:  "cf83e1357eefb8bdf1542850d66d8007d620e4050b5715dc83f4a921d36ce9ce47d0d13c5d85f2b0ff8318d2877eec2f63b931bd47417a81a538327af927da3e",
	SpamSum: "QXX",
}

// String returns the lowercase name of the kind, e.g. "sha1".
func (k Kind) String() string {
	if k < 0 || k >= numKinds {
		return "unknown"
	}
	return kindNames[k]
}

// Size returns the digest length in bytes, or 0 for variable-length kinds.
func (k Kind) Size() int {
	if k < 0 || k >= numKinds {
		return 0
	}
	return sizes[k]
}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	return k >= 0 && k < numKinds
}

// ParseKind resolves a kind by its name, case-insensitively.
func ParseKind(name string) (Kind, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "crc32" {
		return CRC, true
	}
	for k, n := range kindNames {
		if n == name {
			return Kind(k), true
		}
	}
	return 0, false
}

// Zeroes returns the all-zero digest for k. SpamSum has no fixed width and
// returns the empty-file signature instead.
func Zeroes(k Kind) string {
	if k.Size() == 0 {
		return EmptyFile(k)
	}
	return strings.Repeat("0", k.Size()*2)
}

// EmptyFile returns the digest of zero-length content for k.
func EmptyFile(k Kind) string {
	if !k.Valid() {
		return ""
	}
	return emptyFile[k]
}

// Normalize cleans a raw hash string for the given kind. Fixed-size values
// are lowercased, stripped of a "0x" prefix and left-padded with zeroes;
// values that are not hexadecimal or are too long normalize to "".
func Normalize(k Kind, raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "-" {
		return ""
	}
	if k == SpamSum {
		return raw
	}
	width := k.Size() * 2
	if width == 0 {
		return ""
	}

	raw = strings.ToLower(raw)
	raw = strings.TrimPrefix(raw, "0x")
	if len(raw) > width {
		return ""
	}
	if len(raw) < width {
		raw = strings.Repeat("0", width-len(raw)) + raw
	}
	if _, err := hex.DecodeString(raw); err != nil {
		return ""
	}
	return raw
}
