package compress

import (
	"fmt"

	"github.com/go-mdict/mdx/errs"
	"github.com/go-mdict/mdx/internal/pool"
)

// lzoM2MaxOffset bounds the short "M1" back-reference that always follows
// a literal run; it is fixed by the LZO1X block grammar, not configurable.
const lzoM2MaxOffset = 0x0800

var lzoScratchPool = pool.NewByteBufferPool(pool.BlobBufferDefaultSize, pool.BlobBufferMaxThreshold)

// LZODecompressor handles comp_method=1.
//
// No pure-Go LZO library appears anywhere in this module's dependency
// set, so this decodes the LZO1X block grammar directly: a leading
// literal-run opcode, then a stream of opcodes each encoding either a
// literal run or a back-reference (distance, length) pair, terminated
// by a reserved zero-distance match that signals end of stream. The
// reference decoder this grammar comes from is minilzo; the grammar
// itself is public and stable across LZO implementations.
type LZODecompressor struct{}

var _ Decompressor = LZODecompressor{}

func (LZODecompressor) Decompress(data []byte, dsize int) ([]byte, error) {
	if dsize == 0 {
		return []byte{}, nil
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty lzo block", errs.ErrDecompression)
	}

	scratch := lzoScratchPool.Get()
	defer lzoScratchPool.Put(scratch)
	scratch.Reset()
	scratch.Grow(dsize)

	out, err := lzo1xDecompress(data, scratch.B[:0])
	if err != nil {
		return nil, err
	}

	owned := make([]byte, len(out))
	copy(owned, out)

	return owned, nil
}

// lzo1xDecoder holds the cursor state shared by the closures below; it
// exists only to keep lzo1xDecompress's body short.
type lzo1xDecoder struct {
	src []byte
	dst []byte
	ip  int
}

func (d *lzo1xDecoder) overrun(n int) error {
	if d.ip+n > len(d.src) {
		return fmt.Errorf("%w: lzo input overrun", errs.ErrDecompression)
	}
	return nil
}

func (d *lzo1xDecoder) readByte() (int, error) {
	if err := d.overrun(1); err != nil {
		return 0, err
	}
	b := int(d.src[d.ip])
	d.ip++
	return b, nil
}

func (d *lzo1xDecoder) copyLiteral(n int) error {
	if err := d.overrun(n); err != nil {
		return err
	}
	d.dst = append(d.dst, d.src[d.ip:d.ip+n]...)
	d.ip += n
	return nil
}

// copyMatch copies n bytes from dist bytes behind the current output
// position, one at a time so overlapping runs (distance < n) repeat.
func (d *lzo1xDecoder) copyMatch(dist, n int) error {
	pos := len(d.dst) - dist
	if pos < 0 {
		return fmt.Errorf("%w: lzo back-reference before start of output", errs.ErrDecompression)
	}
	for i := 0; i < n; i++ {
		d.dst = append(d.dst, d.dst[pos+i])
	}
	return nil
}

// readExtendedLen implements the "while next==0 add 255; then add the
// first nonzero byte" extension used whenever a fixed-width length field
// saturates at zero.
func (d *lzo1xDecoder) readExtendedLen(base int) (int, error) {
	total := base
	for {
		b, err := d.readByte()
		if err != nil {
			return 0, err
		}
		if b != 0 {
			return total + b, nil
		}
		total += 255
	}
}

// afterLiteral reads the opcode that always follows a literal run. It is
// either a short M1 back-reference (op<16) or a general match (op>=16);
// a literal run is never immediately followed by another literal run.
func (d *lzo1xDecoder) afterLiteral() (eof bool, err error) {
	op, err := d.readByte()
	if err != nil {
		return false, err
	}
	if op >= 16 {
		return d.handleMatch(op)
	}

	b, err := d.readByte()
	if err != nil {
		return false, err
	}
	dist := 1 + lzoM2MaxOffset + (op >> 2) + (b << 2)
	if err := d.copyMatch(dist, 3); err != nil {
		return false, err
	}

	return false, d.copyTrailingLiteral(b)
}

// copyTrailingLiteral copies the 0-3 literal bytes that the low 2 bits of
// the last opcode byte consumed (lastByte) say follow every match.
func (d *lzo1xDecoder) copyTrailingLiteral(lastByte int) error {
	n := lastByte & 3
	if n == 0 {
		return nil
	}
	return d.copyLiteral(n)
}

// handleMatch decodes a general (non-M1) back-reference opcode and
// copies it, reporting eof=true when it is the reserved end-of-stream
// marker (a distance-16..31 opcode whose computed distance is zero).
func (d *lzo1xDecoder) handleMatch(op int) (eof bool, err error) {
	var dist, length, lastByte int

	switch {
	case op >= 64:
		length = (op >> 5) - 1 + 2
		b, e := d.readByte()
		if e != nil {
			return false, e
		}
		dist = 1 + ((op >> 2) & 7) + (b << 3)
		lastByte = b

	case op >= 32:
		length = op & 31
		if length == 0 {
			length, err = d.readExtendedLen(31)
			if err != nil {
				return false, err
			}
		}
		length += 2
		b0, e := d.readByte()
		if e != nil {
			return false, e
		}
		b1, e := d.readByte()
		if e != nil {
			return false, e
		}
		dist = 1 + (b0 >> 2) + (b1 << 6)
		lastByte = b1

	default: // 16 <= op < 32
		length = op & 7
		high := (op & 8) << 11
		if length == 0 {
			length, err = d.readExtendedLen(7)
			if err != nil {
				return false, err
			}
		}
		length += 2
		b0, e := d.readByte()
		if e != nil {
			return false, e
		}
		b1, e := d.readByte()
		if e != nil {
			return false, e
		}
		raw := high + (b0 >> 2) + (b1 << 6)
		if raw == 0 {
			return true, nil
		}
		dist = raw + 0x4000
		lastByte = b1
	}

	if err := d.copyMatch(dist, length); err != nil {
		return false, err
	}

	return false, d.copyTrailingLiteral(lastByte)
}

// lzo1xDecompress decodes src into dst (dst supplies only spare capacity)
// and returns the filled slice.
func lzo1xDecompress(src []byte, dst []byte) ([]byte, error) {
	d := &lzo1xDecoder{src: src, dst: dst}

	if len(src) > 0 && src[0] > 17 {
		first, err := d.readByte()
		if err != nil {
			return nil, err
		}
		if err := d.copyLiteral(first - 17); err != nil {
			return nil, err
		}
		eof, err := d.afterLiteral()
		if err != nil {
			return nil, err
		}
		if eof {
			return d.dst, nil
		}
	}

	for {
		op, err := d.readByte()
		if err != nil {
			return nil, err
		}

		if op >= 16 {
			eof, err := d.handleMatch(op)
			if err != nil {
				return nil, err
			}
			if eof {
				return d.dst, nil
			}
			continue
		}

		length := op
		if length == 0 {
			length, err = d.readExtendedLen(15)
			if err != nil {
				return nil, err
			}
		}
		length += 3
		if err := d.copyLiteral(length); err != nil {
			return nil, err
		}

		eof, err := d.afterLiteral()
		if err != nil {
			return nil, err
		}
		if eof {
			return d.dst, nil
		}
	}
}
