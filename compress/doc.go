// Package compress provides the block decompression codecs for the mdx
// module.
//
// A key-block or record-block's 8-byte prefix carries a comp_method
// nibble with exactly three defined values, and this package supplies
// one Decompressor per value:
//
//   - None (0): the payload is already the decompressed bytes.
//   - LZO (1): LZO1X-compressed, decoded by a hand-written decoder (see
//     lzo.go) since no pure-Go LZO implementation exists in this
//     module's dependency set.
//   - Zlib (2): zlib-wrapped DEFLATE, decoded via klauspost/compress,
//     a drop-in replacement for the standard library's compress/zlib.
//
// GetDecompressor is the only entry point callers need; it dispatches
// on the Method read from the block prefix and returns
// errs.ErrUnsupportedCompression for anything else (MDX defines no other
// comp_method values, unlike formats that reserve a wider space for
// future algorithms).
//
// # Decompressed size
//
// Every Decompress call is given dsize, the exact decompressed length
// already known from the block's size table. LZO uses it to preallocate
// its scratch buffer and zlib to preallocate its output buffer; the no-op
// codec ignores it. No codec checks the decompressed length against dsize.
package compress
