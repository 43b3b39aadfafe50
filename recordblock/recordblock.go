// Package recordblock decodes the MDX record-index section (the
// (csize, dsize) size table for every record block) and provides the
// on-demand decoder that decrypts, decompresses, and slices out one
// definition from a single block.
package recordblock

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

// BlockSize is one record block's compressed and decompressed size, as
// read from the record-index section's size table.
type BlockSize struct {
	CSize uint64
	DSize uint64
}

// DecodeIndex parses the record-index header tuple
// (num_record_blocks, num_entries, record_info_len, record_buf_len) and
// exactly num_record_blocks (csize, dsize) pairs. The remainder of data,
// after the size table, is the record-block buffer and is returned
// unparsed for the caller to retain verbatim.
func DecodeIndex(data []byte, v header.Version) ([]BlockSize, []byte, error) {
	eng := endian.GetBigEndianEngine()
	width := 4
	if v == header.V2 {
		width = 8
	}

	c := binutil.NewCursor(data)

	numRecordBlocks, err := readUint(c, eng, width, "num_record_blocks")
	if err != nil {
		return nil, nil, err
	}
	if _, err := readUint(c, eng, width, "num_entries"); err != nil {
		return nil, nil, err
	}
	recordInfoLen, err := readUint(c, eng, width, "record_info_len")
	if err != nil {
		return nil, nil, err
	}
	if _, err := readUint(c, eng, width, "record_buf_len"); err != nil {
		return nil, nil, err
	}

	wantLen := numRecordBlocks * uint64(2*width)
	if recordInfoLen != wantLen {
		return nil, nil, fmt.Errorf("%w: record_info_len %d, expected %d for %d blocks", errs.ErrInvalidRecordIndex, recordInfoLen, wantLen, numRecordBlocks)
	}

	sizes := make([]BlockSize, 0, numRecordBlocks)
	for i := uint64(0); i < numRecordBlocks; i++ {
		csize, err := readUint(c, eng, width, "record_csize")
		if err != nil {
			return nil, nil, err
		}
		dsize, err := readUint(c, eng, width, "record_dsize")
		if err != nil {
			return nil, nil, err
		}
		sizes = append(sizes, BlockSize{CSize: csize, DSize: dsize})
	}

	return sizes, c.Rest(), nil
}

func readUint(c *binutil.Cursor, eng endian.EndianEngine, width int, field string) (uint64, error) {
	if width == 8 {
		return c.ReadUint64(eng, field)
	}
	v, err := c.ReadUint32(eng, field)

	return uint64(v), err
}

// Decode decrypts and decompresses one record block and returns its full
// decompressed payload. buf must start at block_start_in_buf and contain
// at least csize bytes (the 8-byte prefix plus the encrypted/compressed
// payload). enc_method and comp_method are read entirely from the block's
// own enc_word; the format is per-block authoritative, so no header-level
// flag gates or overrides what a block declares about itself.
//
// This is pure over its inputs; it is safe to call concurrently on
// disjoint blocks sharing the same read-only buf, per spec §4.6/§5.
func Decode(buf []byte, csize, dsize uint64) ([]byte, error) {
	if uint64(len(buf)) < csize {
		return nil, fmt.Errorf("%w: block needs %d bytes, buffer has %d", errs.ErrTruncatedInput, csize, len(buf))
	}

	c := binutil.NewCursor(buf[:csize])
	eng := endian.GetLittleEndianEngine()

	encWord, err := c.ReadUint32(eng, "enc_word")
	if err != nil {
		return nil, err
	}
	checksum, err := c.Take(4, "checksum")
	if err != nil {
		return nil, err
	}

	compMethod := compress.Method(encWord & 0xF)
	encMethod := (encWord >> 4) & 0xF

	payload := c.Rest()

	plain, err := decrypt(payload, encMethod, checksum)
	if err != nil {
		return nil, err
	}

	decompressor, err := compress.GetDecompressor(compMethod)
	if err != nil {
		return nil, err
	}

	return decompressor.Decompress(plain, int(dsize))
}

func decrypt(payload []byte, method uint32, checksum []byte) ([]byte, error) {
	switch method {
	case 0:
		return payload, nil
	case 1:
		var cs [4]byte
		copy(cs[:], checksum)
		key := crypt.Ripemd128Sum(cs[:])

		return crypt.FastXORDecrypt(payload, key), nil
	case 2:
		var cs [4]byte
		copy(cs[:], checksum)
		key := crypt.Ripemd128Sum(cs[:])

		return crypt.Salsa20Decrypt(payload, key), nil
	default:
		return nil, fmt.Errorf("%w: enc_method %d", errs.ErrUnsupportedEncryption, method)
	}
}

// Extract slices [start, end) out of a decompressed block payload and
// decodes it with the given encoding, lossily: invalid byte sequences are
// replaced rather than rejected, per spec §4.6-6 and §9.
func Extract(decompressed []byte, start, end uint64, encoding string) (string, error) {
	if end > uint64(len(decompressed)) || start > end {
		return "", fmt.Errorf("%w: record bounds [%d,%d) outside block of %d bytes", errs.ErrOffsetMisalignment, start, end, len(decompressed))
	}

	name, err := charset.Normalize(encoding)
	if err != nil {
		return "", err
	}

	return charset.Decode(name, decompressed[start:end], false)
}
