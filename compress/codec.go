package compress

import (
	"fmt"

	"github.com/go-mdict/mdx/errs"
)

// Method identifies a block's compression method, read from the low
// nibble of the block's enc_word framing field.
type Method uint8

const (
	MethodNone Method = 0
	MethodLZO  Method = 1
	MethodZlib Method = 2
)

func (m Method) String() string {
	switch m {
	case MethodNone:
		return "None"
	case MethodLZO:
		return "LZO"
	case MethodZlib:
		return "Zlib"
	default:
		return "Unknown"
	}
}

// Decompressor decompresses one block's payload to its known decompressed
// size.
//
// dsize is the exact decompressed length asserted by the record/key-block
// size table; LZO and zlib use it to size their output buffer. No
// implementation checks the decompressed length against it.
type Decompressor interface {
	Decompress(data []byte, dsize int) ([]byte, error)
}

// GetDecompressor returns the Decompressor for the given comp_method.
func GetDecompressor(method Method) (Decompressor, error) {
	switch method {
	case MethodNone:
		return NoOpDecompressor{}, nil
	case MethodLZO:
		return LZODecompressor{}, nil
	case MethodZlib:
		return ZlibDecompressor{}, nil
	default:
		return nil, fmt.Errorf("%w: %d", errs.ErrUnsupportedCompression, method)
	}
}
