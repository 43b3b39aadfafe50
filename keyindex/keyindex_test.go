package keyindex

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/go-mdict/mdx/header"
	"github.com/go-mdict/mdx/internal/crypt"
)

func putU32(buf []byte, v uint32) []byte {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, v)

	return append(buf, b...)
}

func putU16(buf []byte, v uint16) []byte {
	b := make([]byte, 2)
	binary.BigEndian.PutUint16(b, v)

	return append(buf, b...)
}

// keyBlockSpec describes one key block's entries for buildKeyIndex.
type keyBlockSpec struct {
	entries []Entry
}

func framedBlock(payload []byte) []byte {
	encWord := make([]byte, 4)
	binary.LittleEndian.PutUint32(encWord, 0) // comp_method none, enc_method none

	out := append([]byte{}, encWord...)
	out = append(out, 0, 0, 0, 0) // checksum, unverified
	out = append(out, payload...)

	return out
}

// buildKeyIndex constructs a V1, unencrypted key-index section from specs.
func buildKeyIndex(specs []keyBlockSpec) []byte {
	var infoRows []byte
	var blockBytes []byte
	var totalEntries uint32

	for _, spec := range specs {
		var body []byte
		for _, e := range spec.entries {
			body = putU32(body, uint32(e.RecordStartInDeBuf))
			body = append(body, []byte(e.Text)...)
			body = append(body, 0)
		}
		block := framedBlock(body)
		blockBytes = append(blockBytes, block...)

		first, last := "", ""
		if len(spec.entries) > 0 {
			first = spec.entries[0].Text
			last = spec.entries[len(spec.entries)-1].Text
		}

		infoRows = putU32(infoRows, uint32(len(spec.entries)))
		infoRows = putU16(infoRows, uint16(len(first)))
		infoRows = append(infoRows, []byte(first)...)
		infoRows = putU16(infoRows, uint16(len(last)))
		infoRows = append(infoRows, []byte(last)...)
		infoRows = putU32(infoRows, uint32(len(block)))
		infoRows = putU32(infoRows, uint32(len(body)))

		totalEntries += uint32(len(spec.entries))
	}

	infoBytes := framedBlock(infoRows)

	var out []byte
	out = putU32(out, uint32(len(specs)))
	out = putU32(out, totalEntries)
	out = putU32(out, uint32(len(infoBytes)))
	out = putU32(out, uint32(len(blockBytes)))
	out = append(out, infoBytes...)
	out = append(out, blockBytes...)

	return out
}

func TestDecodeUnencrypted(t *testing.T) {
	specs := []keyBlockSpec{
		{entries: []Entry{{Text: "a", RecordStartInDeBuf: 0}, {Text: "b", RecordStartInDeBuf: 6}}},
		{entries: []Entry{{Text: "c", RecordStartInDeBuf: 12}}},
	}
	data := buildKeyIndex(specs)
	data = append(data, 0xFE, 0xED) // tail (record-index section)

	h := header.Header{Version: header.V1, Encoding: "UTF-8", Encrypted: "0"}

	entries, rest, err := Decode(data, h)
	require.NoError(t, err)
	require.Equal(t, []Entry{
		{Text: "a", RecordStartInDeBuf: 0},
		{Text: "b", RecordStartInDeBuf: 6},
		{Text: "c", RecordStartInDeBuf: 12},
	}, entries)
	require.Equal(t, []byte{0xFE, 0xED}, rest)
}

func TestDecodeEncryptedInfoTable(t *testing.T) {
	specs := []keyBlockSpec{
		{entries: []Entry{{Text: "x", RecordStartInDeBuf: 0}}},
	}
	data := buildKeyIndex(specs)

	// Re-encrypt the info table bytes in place, matching what Decode expects
	// to find: the raw key_block_info bytes scrambled with fast-XOR, keyed
	// from Ripemd128(header-prefix || salt).
	h := header.Header{Version: header.V1, Encoding: "UTF-8", Encrypted: "1"}

	var rawHeaderPrefix [4]byte
	copy(rawHeaderPrefix[:], data)
	key := crypt.Ripemd128Sum(append(append([]byte{}, rawHeaderPrefix[:]...), fastDecryptSalt[:]...))

	// Locate the info bytes span within data: 16 bytes of stage-A header
	// (4 uint32 fields, V1 has no checksum), then key_block_info_len bytes.
	infoLen := binary.BigEndian.Uint32(data[8:12])
	infoStart := 16
	infoEnd := infoStart + int(infoLen)

	plain := append([]byte{}, data[infoStart:infoEnd]...)
	cipher := make([]byte, len(plain))
	for i, p := range plain {
		swapped := p ^ byte(i&0xFF) ^ key[i%16]
		cipher[i] = (swapped >> 4) | (swapped << 4)
	}
	copy(data[infoStart:infoEnd], cipher)

	entries, _, err := Decode(data, h)
	require.NoError(t, err)
	require.Equal(t, []Entry{{Text: "x", RecordStartInDeBuf: 0}}, entries)
}

func TestDecodeEntryOverrunIsFatal(t *testing.T) {
	specs := []keyBlockSpec{
		{entries: []Entry{{Text: "a", RecordStartInDeBuf: 0}, {Text: "b", RecordStartInDeBuf: 2}}},
	}
	data := buildKeyIndex(specs)

	// Understate num_entries in the stage-A header to trigger the overrun check.
	binary.BigEndian.PutUint32(data[4:8], 1)

	h := header.Header{Version: header.V1, Encoding: "UTF-8", Encrypted: "0"}
	_, _, err := Decode(data, h)
	require.Error(t, err)
}
