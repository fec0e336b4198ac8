package datjson

import (
	"github.com/zeebo/errs"
)

// Error is the class of every decode and encode failure.
var Error = errs.Class("datjson")

// Header describes the document.
type Header struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Version     string `json:"version,omitempty"`
}

// Document is the decoded form of a JSON DAT.
type Document struct {
	Header   Header    `json:"header"`
	Machines []Machine `json:"machines"`
}

// Machine is one set in a document.
type Machine struct {
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	CloneOf     string            `json:"cloneof,omitempty"`
	RomOf       string            `json:"romof,omitempty"`
	SampleOf    string            `json:"sampleof,omitempty"`
	Extra       map[string]string `json:"extra,omitempty"`
	Items       []Item            `json:"items"`
}

// Item is one entry of a machine.
type Item struct {
	Type    string         `json:"type"`
	Name    string         `json:"name"`
	Size    any            `json:"size,omitempty"`
	CRC     string         `json:"crc,omitempty"`
	MD2     string         `json:"md2,omitempty"`
	MD4     string         `json:"md4,omitempty"`
	MD5     string         `json:"md5,omitempty"`
	SHA1    string         `json:"sha1,omitempty"`
	SHA256  string         `json:"sha256,omitempty"`
	SHA384  string         `json:"sha384,omitempty"`
	SHA512  string         `json:"sha512,omitempty"`
	SpamSum string         `json:"spamsum,omitempty"`
	Status  string         `json:"status,omitempty"`
	Dupe    string         `json:"dupe,omitempty"`
	Extra   map[string]any `json:"extra,omitempty"`
}
