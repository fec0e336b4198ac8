// Package hash defines the hash kinds a catalog item may carry and the
// normalization rules applied to their textual values.
//
// Every fixed-size kind (CRC32, MD2, MD4, MD5, SHA-1, SHA-256, SHA-384,
// SHA-512) is stored as a lowercase hexadecimal string of exactly twice its
// byte length. SpamSum is a fuzzy hash and is kept verbatim.
//
// # Constants
//
// Two families of constants are exposed per kind:
//   - Zeroes: the all-zero digest, used as the bucketing key of items that
//     lack a given hash.
//   - EmptyFile: the digest of zero-length content, used to normalize
//     canonical empty-file records.
//
// # Usage
//
//	var set hash.Set
//	set.Put(hash.CRC, "0x1234ABCD") // stored as "1234abcd"
//	if set.Has(hash.SHA1) { ... }
package hash
