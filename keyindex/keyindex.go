// Package keyindex decodes the MDX key-index section: the three-stage
// pipeline (block header, block-info table, block bodies) that yields the
// ordered Entry list consumed by the record-offset builder.
//
// Stage A reads the section's own header tuple. Stage B reads a table
// describing each key block's compressed/decompressed size (optionally
// fast-XOR descrambled first). Stage C decompresses each key block in
// turn and parses its (record_start_in_de_buf, headword) pairs.
package keyindex

import (
	"fmt"

	"github.com/go-mdict/mdx/charset"
	"github.com/go-mdict/mdx/compress"
	"github.com/go-mdict/mdx/endian"
	"github.com/go-mdict/mdx/errs"
	"github.com/go-mdict/mdx/header"
	"github.com/go-mdict/mdx/internal/binutil"
	"github.com/go-mdict/mdx/internal/crypt"
)

// Entry is one (headword, logical record offset) pair decoded from a key
// block. RecordStartInDeBuf is an offset into the virtual stream formed
// by concatenating every decompressed record block end to end.
type Entry struct {
	Text               string
	RecordStartInDeBuf uint64
}

// blockInfo is one key block's size-table row (stage B).
type blockInfo struct {
	entriesInBlock uint64
	csize          uint64
	dsize          uint64
}

// fastDecryptSalt is appended to the raw 4-byte key-block-header prefix to
// derive the RIPEMD-128 key used to descramble the info table, per
// spec §4.3.
var fastDecryptSalt = [4]byte{0x95, 0x36, 0x00, 0x00}

// Decode runs all three stages and returns the ordered Entry list plus the
// remainder of the file (the start of the record-index section).
//
// rawHeaderPrefix is the first 4 bytes of data as they appeared before any
// of it was consumed elsewhere; it is the raw material for the fast-decrypt
// key when the key-index-encrypted bit is set.
func Decode(data []byte, h header.Header) ([]Entry, []byte, error) {
	eng := endian.GetBigEndianEngine()
	width := widthFor(h.Version)

	var rawHeaderPrefix [4]byte
	copy(rawHeaderPrefix[:], data)

	c := binutil.NewCursor(data)

	numKeyBlocks, err := readUint(c, eng, width, "num_key_blocks")
	if err != nil {
		return nil, nil, err
	}
	numEntries, err := readUint(c, eng, width, "num_entries")
	if err != nil {
		return nil, nil, err
	}
	keyBlockInfoLen, err := readUint(c, eng, width, "key_block_info_len")
	if err != nil {
		return nil, nil, err
	}
	keyBlocksLen, err := readUint(c, eng, width, "key_blocks_len")
	if err != nil {
		return nil, nil, err
	}
	if h.Version == header.V2 {
		if err := c.Skip(4); err != nil { // trailing checksum, unverified
			return nil, nil, fmt.Errorf("%w: missing key block header checksum", errs.ErrInvalidKeyBlockHeader)
		}
	}

	infoBytes, err := c.Take(int(keyBlockInfoLen), "key_block_info")
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", errs.ErrInvalidKeyBlockHeader, err)
	}

	blocks, err := decodeBlockInfo(infoBytes, h, width, numKeyBlocks, rawHeaderPrefix)
	if err != nil {
		return nil, nil, err
	}

	keyBlocksBytes, err := c.Take(int(keyBlocksLen), "key_blocks")
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", errs.ErrInvalidKeyBlockHeader, err)
	}

	entries, err := decodeBlockBodies(keyBlocksBytes, h, width, blocks)
	if err != nil {
		return nil, nil, err
	}
	if uint64(len(entries)) != numEntries {
		return nil, nil, fmt.Errorf("%w: header declares %d entries, decoded %d", errs.ErrKeyBlockEntryOverrun, numEntries, len(entries))
	}

	return entries, c.Rest(), nil
}

func widthFor(v header.Version) int {
	if v == header.V2 {
		return 8
	}

	return 4
}

func readUint(c *binutil.Cursor, eng endian.EndianEngine, width int, field string) (uint64, error) {
	if width == 8 {
		return c.ReadUint64(eng, field)
	}
	v, err := c.ReadUint32(eng, field)

	return uint64(v), err
}

// decodeBlockInfo implements stage B: optional fast-XOR descramble, then
// one shared-framing compressed payload (8-byte prefix + Decompressor,
// same shape as a record block) containing the per-block size rows.
func decodeBlockInfo(raw []byte, h header.Header, width int, numKeyBlocks uint64, rawHeaderPrefix [4]byte) ([]blockInfo, error) {
	payload := raw
	if h.EncryptKeyIndex() {
		key := crypt.Ripemd128Sum(append(append([]byte{}, rawHeaderPrefix[:]...), fastDecryptSalt[:]...))
		payload = crypt.FastXORDecrypt(raw, key)
	}

	c := binutil.NewCursor(payload)
	eng := endian.GetLittleEndianEngine()

	compWord, err := c.ReadUint32(eng, "key_block_info_comp_word")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrInvalidKeyBlockHeader, err)
	}
	if err := c.Skip(4); err != nil { // adler32 checksum, unverified
		return nil, fmt.Errorf("%w: missing key block info checksum", errs.ErrInvalidKeyBlockHeader)
	}

	decompressor, err := compress.GetDecompressor(compress.Method(compWord & 0xF))
	if err != nil {
		return nil, err
	}
	decompressed, err := decompressor.Decompress(c.Rest(), c.Len())
	if err != nil {
		return nil, err
	}

	return parseBlockInfoRows(decompressed, h, width, numKeyBlocks)
}

func parseBlockInfoRows(data []byte, h header.Header, width int, numKeyBlocks uint64) ([]blockInfo, error) {
	eng := endian.GetBigEndianEngine()
	c := binutil.NewCursor(data)
	name, err := charset.Normalize(h.Encoding)
	if err != nil {
		return nil, err
	}

	blocks := make([]blockInfo, 0, numKeyBlocks)
	for i := uint64(0); i < numKeyBlocks; i++ {
		entriesInBlock, err := readUint(c, eng, width, "entries_in_block")
		if err != nil {
			return nil, err
		}
		if _, err := readLengthPrefixedText(c, eng, name); err != nil { // first_headword
			return nil, err
		}
		if _, err := readLengthPrefixedText(c, eng, name); err != nil { // last_headword
			return nil, err
		}
		csize, err := readUint(c, eng, width, "key_block_csize")
		if err != nil {
			return nil, err
		}
		dsize, err := readUint(c, eng, width, "key_block_dsize")
		if err != nil {
			return nil, err
		}

		blocks = append(blocks, blockInfo{entriesInBlock: entriesInBlock, csize: csize, dsize: dsize})
	}

	return blocks, nil
}

func readLengthPrefixedText(c *binutil.Cursor, eng endian.EndianEngine, name charset.Name) (string, error) {
	n, err := c.ReadUint16(eng, "headword_len")
	if err != nil {
		return "", err
	}
	b, err := c.Take(int(n), "headword_text")
	if err != nil {
		return "", err
	}

	return charset.Decode(name, b, false)
}

// decodeBlockBodies implements stage C: decompress each key block (same
// 8-byte framing as record blocks, no encryption at this layer) and parse
// its NUL-terminated (record_start_in_de_buf, headword) pairs. A block may
// yield fewer entries than entriesInBlock declares only if the remainder
// is zero padding.
func decodeBlockBodies(data []byte, h header.Header, width int, blocks []blockInfo) ([]Entry, error) {
	name, err := charset.Normalize(h.Encoding)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0)
	c := binutil.NewCursor(data)

	for idx, b := range blocks {
		raw, err := c.Take(int(b.csize), fmt.Sprintf("key_block[%d]", idx))
		if err != nil {
			return nil, err
		}

		decompressed, err := decodeFramedBlock(raw, int(b.dsize))
		if err != nil {
			return nil, err
		}

		got, err := parseEntries(decompressed, width, name, int(b.entriesInBlock))
		if err != nil {
			return nil, fmt.Errorf("key block %d: %w", idx, err)
		}
		entries = append(entries, got...)
	}

	return entries, nil
}

// decodeFramedBlock strips the shared 8-byte (comp_word, checksum) prefix
// used by both key blocks and record blocks, then decompresses.
func decodeFramedBlock(raw []byte, dsize int) ([]byte, error) {
	c := binutil.NewCursor(raw)
	eng := endian.GetLittleEndianEngine()

	compWord, err := c.ReadUint32(eng, "key_block_comp_word")
	if err != nil {
		return nil, err
	}
	if err := c.Skip(4); err != nil {
		return nil, fmt.Errorf("%w: missing key block checksum", errs.ErrInvalidKeyBlockHeader)
	}

	decompressor, err := compress.GetDecompressor(compress.Method(compWord & 0xF))
	if err != nil {
		return nil, err
	}

	return decompressor.Decompress(c.Rest(), dsize)
}

// parseEntries walks decompressed bytes as a sequence of (offset, NUL
// terminated headword) pairs, tolerating fewer than declared entries when
// the remainder is all zero padding.
func parseEntries(data []byte, width int, name charset.Name, declared int) ([]Entry, error) {
	eng := endian.GetBigEndianEngine()
	c := binutil.NewCursor(data)

	entries := make([]Entry, 0, declared)
	for c.Len() > 0 {
		if isZeroPadding(c.Rest()) {
			break
		}

		offset, err := readUint(c, eng, width, "record_start_in_de_buf")
		if err != nil {
			return nil, err
		}

		text, err := readNulTerminated(c, name)
		if err != nil {
			return nil, err
		}

		entries = append(entries, Entry{Text: text, RecordStartInDeBuf: offset})
	}

	if len(entries) > declared {
		return nil, fmt.Errorf("%w: declared %d entries, found %d", errs.ErrKeyBlockEntryOverrun, declared, len(entries))
	}

	return entries, nil
}

func isZeroPadding(b []byte) bool {
	for _, v := range b {
		if v != 0 {
			return false
		}
	}

	return true
}

// readNulTerminated reads headword text up to the terminator code unit for
// name: a single zero byte for single-byte-ish encodings, a zero code unit
// (two zero bytes) for UTF-16.
func readNulTerminated(c *binutil.Cursor, name charset.Name) (string, error) {
	step := 1
	if name == charset.UTF16 {
		step = 2
	}

	rest := c.Rest()
	end := -1
	for i := 0; i+step <= len(rest); i += step {
		if allZero(rest[i : i+step]) {
			end = i
			break
		}
	}
	if end < 0 {
		return "", fmt.Errorf("%w: unterminated headword", errs.ErrInvalidKeyBlockHeader)
	}

	b, err := c.Take(end, "headword_text")
	if err != nil {
		return "", err
	}
	if err := c.Skip(step); err != nil { // consume the terminator
		return "", err
	}

	return charset.Decode(name, b, true)
}

func allZero(b []byte) bool {
	for _, v := range b {
		if v != 0 {
			return false
		}
	}

	return true
}
