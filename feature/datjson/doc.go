// Package datjson reads and writes catalogs in a JSON DAT layout:
//
//	{
//	  "header": {"name": "...", "description": "...", "version": "..."},
//	  "machines": [
//	    {"name": "...", "cloneof": "...", "items": [
//	      {"type": "rom", "name": "...", "size": 1024, "crc": "...", "sha1": "..."}
//	    ]}
//	  ]
//	}
//
// Sizes are accepted as numbers, decimal strings or 0x hexadecimal strings.
// Items of unknown type are skipped with a warning. Decoding failures are
// wrapped in Error.
package datjson
