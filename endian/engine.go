// Package endian provides the byte-order primitive shared by every binary
// decoder in this module.
//
// MDX mixes byte orders within a single file: header and index-section
// integers are big-endian, while the record-block framing word is
// little-endian. Rather than hand-rolling two read paths, every decoder
// asks for an EndianEngine and reads through it, so the choice of byte
// order is a value, not a code path.
package endian

import "encoding/binary"

// EndianEngine combines ByteOrder and AppendByteOrder from encoding/binary
// into a single interface for convenient byte order operations.
//
// binary.BigEndian and binary.LittleEndian both satisfy this interface, so
// no adapter type is needed.
type EndianEngine interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

// GetLittleEndianEngine returns the little-endian engine used for the
// record-block framing word (enc_word).
func GetLittleEndianEngine() EndianEngine {
	return binary.LittleEndian
}

// GetBigEndianEngine returns the big-endian engine used for every header
// and index-section integer.
func GetBigEndianEngine() EndianEngine {
	return binary.BigEndian
}
