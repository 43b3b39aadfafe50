// Package errs defines the sentinel errors returned by every decoding
// layer of the mdx module.
//
// Callers should compare against these with errors.Is; every error raised
// during parsing wraps one of them with context via fmt.Errorf("%w: ...").
package errs

import "errors"

var (
	// ErrTruncatedInput is returned when a decoder reaches the end of its
	// input slice before a fixed-width or length-prefixed field is complete.
	ErrTruncatedInput = errors.New("mdx: truncated input")

	// ErrInvalidUTF16 is returned when a UTF-16LE byte run has an odd
	// length or contains an unpaired surrogate.
	ErrInvalidUTF16 = errors.New("mdx: invalid utf-16 sequence")

	// ErrInvalidHeader is returned when the header preamble's declared
	// length does not match the data available, or a required attribute
	// is missing.
	ErrInvalidHeader = errors.New("mdx: invalid header")

	// ErrMissingAttribute is returned when a required header attribute is
	// absent from the metadata blob.
	ErrMissingAttribute = errors.New("mdx: missing required header attribute")

	// ErrInvalidKeyBlockHeader is returned when the key-block header
	// tuple cannot be parsed for the declared version.
	ErrInvalidKeyBlockHeader = errors.New("mdx: invalid key block header")

	// ErrKeyBlockEntryOverrun is returned when a key block yields more
	// entries than its declared entries_in_block count, with no trailing
	// zero padding to explain the discrepancy.
	ErrKeyBlockEntryOverrun = errors.New("mdx: key block entry count overrun")

	// ErrInvalidRecordIndex is returned when record_info_len does not
	// equal num_record_blocks times the per-version tuple width.
	ErrInvalidRecordIndex = errors.New("mdx: invalid record index")

	// ErrOffsetMisalignment is returned by the record-offset builder when
	// the number of drained entries does not match the entry list length,
	// or an entry's bounds fall outside its block.
	ErrOffsetMisalignment = errors.New("mdx: record offset misalignment")

	// ErrUnsupportedCompression is returned for a comp_method value
	// outside {none, LZO, zlib}.
	ErrUnsupportedCompression = errors.New("mdx: unsupported compression method")

	// ErrUnsupportedEncryption is returned for an enc_method value outside
	// {none, fast-XOR, Salsa20}.
	ErrUnsupportedEncryption = errors.New("mdx: unsupported encryption method")

	// ErrUnsupportedCharset is returned when the header's declared
	// encoding has no registered decoder.
	ErrUnsupportedCharset = errors.New("mdx: unsupported charset")

	// ErrDecompression is returned when LZO or zlib rejects a block's
	// payload.
	ErrDecompression = errors.New("mdx: decompression failed")

	// ErrTextDecode is returned when headword bytes are not valid in the
	// header's declared encoding. Definition bytes never produce this
	// error; they are decoded lossily by design.
	ErrTextDecode = errors.New("mdx: text decode failed")
)
