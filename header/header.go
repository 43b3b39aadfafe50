// Package header decodes the MDX preamble: a length-prefixed, UTF-16LE
// encoded XML-ish metadata blob that precedes the key-index section.
//
// The blob carries the dictionary's declared text encoding, its
// encryption flag, and the engine version that determines whether the
// rest of the file uses 32-bit (V1) or 64-bit (V2) index integers.
package header

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-mdict/mdx/endian"
	"github.com/go-mdict/mdx/errs"
	"github.com/go-mdict/mdx/internal/binutil"
)

// Version selects the integer width used throughout the key-index and
// record-index sections: 32-bit for V1, 64-bit for V2.
type Version uint8

const (
	// V1 dictionaries were generated by engine versions below 2.0.
	V1 Version = iota + 1
	// V2 dictionaries were generated by engine version 2.0 or later.
	V2
)

func (v Version) String() string {
	switch v {
	case V1:
		return "V1"
	case V2:
		return "V2"
	default:
		return "Unknown"
	}
}

// Header is the immutable metadata extracted once at Open time.
type Header struct {
	Version     Version
	Encoding    string
	Encrypted   string
	Title       string
	Description string
}

// EncryptKeyIndex reports whether the low bit of Encrypted gates key-index
// info-table encryption (the "fast decrypt" descramble in keyindex).
func (h Header) EncryptKeyIndex() bool {
	return h.encryptedBit(0)
}

// EncryptRecords reports the second-lowest bit of Encrypted, the header's
// declared intent for record-block payload encryption. recordblock.Decode
// does not consult this: each block's own enc_word is authoritative over
// whether that block is actually encrypted.
func (h Header) EncryptRecords() bool {
	return h.encryptedBit(1)
}

func (h Header) encryptedBit(bit uint) bool {
	n, err := strconv.Atoi(strings.TrimSpace(h.Encrypted))
	if err != nil {
		return false
	}

	return n&(1<<bit) != 0
}

// dictAttrs mirrors the self-closing <Dictionary .../> (or <Library_Data
// .../>) element every MDX file opens with. encoding/xml on a single
// attribute-only element is the natural stdlib port of the original
// hand-rolled attribute walk; no third-party XML library in this module's
// dependency set improves on it for a fixed, closed attribute set.
type dictAttrs struct {
	XMLName                  xml.Name `xml:""`
	Encoding                 string   `xml:"Encoding,attr"`
	Encrypted                string   `xml:"Encrypted,attr"`
	GeneratedByEngineVersion string   `xml:"GeneratedByEngineVersion,attr"`
	Title                    string   `xml:"Title,attr"`
	Description              string   `xml:"Description,attr"`
}

// Parse reads the header section from the start of an MDX file and
// returns the populated Header along with the remainder of the file
// (the start of the key-block header).
//
// The section is: a big-endian uint32 byte length, that many bytes of
// UTF-16LE-encoded XML attributes, then a 4-byte adler32 checksum of the
// XML bytes (not verified here, matching the reference implementation).
func Parse(data []byte) (Header, []byte, error) {
	c := binutil.NewCursor(data)

	length, err := c.ReadUint32(endian.GetBigEndianEngine(), "header_length")
	if err != nil {
		return Header{}, nil, err
	}

	xmlBytes, err := c.Take(int(length), "header_xml")
	if err != nil {
		return Header{}, nil, fmt.Errorf("%w: declared header length %d exceeds available data", errs.ErrInvalidHeader, length)
	}

	if err := c.Skip(4); err != nil {
		return Header{}, nil, fmt.Errorf("%w: missing header checksum", errs.ErrInvalidHeader)
	}

	text, err := binutil.DecodeUTF16LE(xmlBytes)
	if err != nil {
		return Header{}, nil, fmt.Errorf("%w: %v", errs.ErrInvalidHeader, err)
	}

	var attrs dictAttrs
	if err := xml.Unmarshal([]byte(text), &attrs); err != nil {
		return Header{}, nil, fmt.Errorf("%w: %v", errs.ErrInvalidHeader, err)
	}

	h := Header{
		Version:     resolveVersion(attrs.GeneratedByEngineVersion),
		Encoding:    attrs.Encoding,
		Encrypted:   attrs.Encrypted,
		Title:       attrs.Title,
		Description: attrs.Description,
	}
	if h.Encoding == "" {
		h.Encoding = "UTF-8"
	}
	if h.Encrypted == "" {
		h.Encrypted = "0"
	}

	return h, c.Rest(), nil
}

// resolveVersion maps GeneratedByEngineVersion to a Version: engine
// version >= 2.0 means V2 index integer widths, anything else (including
// a missing or unparsable attribute) means V1.
func resolveVersion(raw string) Version {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return V1
	}

	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return V1
	}
	if f >= 2.0 {
		return V2
	}

	return V1
}
