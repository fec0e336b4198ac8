// Package utils holds loose conversions for values decoded from DAT
// documents, where sizes may arrive as numbers, decimal strings or 0x
// hexadecimal strings.
package utils
