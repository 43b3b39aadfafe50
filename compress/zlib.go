package compress

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"

	"github.com/go-mdict/mdx/errs"
)

// ZlibDecompressor handles comp_method=2, a zlib-wrapped (raw DEFLATE plus
// zlib header/checksum) block payload.
//
// It uses klauspost/compress/zlib, a drop-in replacement for the standard
// library's compress/zlib with a faster inflate implementation; this
// module already depends on klauspost/compress for that reason.
type ZlibDecompressor struct{}

var _ Decompressor = ZlibDecompressor{}

// Decompress inflates a zlib-wrapped payload. dsize is used only to
// preallocate the output buffer; the actual decompressed length is
// whatever the stream produces.
func (ZlibDecompressor) Decompress(data []byte, dsize int) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: zlib header: %v", errs.ErrDecompression, err)
	}
	defer r.Close()

	out := bytes.NewBuffer(make([]byte, 0, dsize))
	if _, err := io.Copy(out, r); err != nil {
		return nil, fmt.Errorf("%w: zlib inflate: %v", errs.ErrDecompression, err)
	}

	return out.Bytes(), nil
}
