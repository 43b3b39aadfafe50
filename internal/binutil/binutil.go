// Package binutil provides the primitive binary decoders shared by every
// layer of the mdx parser: fixed-width integer reads through an
// endian.EndianEngine, and a strict UTF-16LE byte-run decoder.
//
// These are intentionally the smallest possible leaves in the decode
// pipeline — header, keyindex, and recordblock all build on top of Cursor
// rather than reimplementing bounds-checked reads.
package binutil

import (
	"fmt"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/go-mdict/mdx/endian"
	"github.com/go-mdict/mdx/errs"
)

// Cursor is a bounds-checked reader over a byte slice. Every Read* method
// advances the cursor and returns errs.ErrTruncatedInput (wrapped with
// context) if the requested width exceeds what remains.
type Cursor struct {
	data []byte
	pos  int
}

// NewCursor creates a Cursor positioned at the start of data.
func NewCursor(data []byte) *Cursor {
	return &Cursor{data: data}
}

// Pos returns the current read offset.
func (c *Cursor) Pos() int { return c.pos }

// Len returns the number of unread bytes remaining.
func (c *Cursor) Len() int { return len(c.data) - c.pos }

// Rest returns the unread remainder of the underlying slice without
// advancing the cursor.
func (c *Cursor) Rest() []byte { return c.data[c.pos:] }

// Skip advances the cursor by n bytes.
func (c *Cursor) Skip(n int) error {
	if c.Len() < n {
		return fmt.Errorf("%w: skip %d bytes, %d remaining", errs.ErrTruncatedInput, n, c.Len())
	}
	c.pos += n

	return nil
}

// Take reads the next n bytes without interpreting them, advancing the
// cursor.
func (c *Cursor) Take(n int, field string) ([]byte, error) {
	if c.Len() < n {
		return nil, fmt.Errorf("%w: field %q needs %d bytes, %d remaining", errs.ErrTruncatedInput, field, n, c.Len())
	}
	b := c.data[c.pos : c.pos+n]
	c.pos += n

	return b, nil
}

// ReadUint16 reads a uint16 in the given byte order.
func (c *Cursor) ReadUint16(engine endian.EndianEngine, field string) (uint16, error) {
	b, err := c.Take(2, field)
	if err != nil {
		return 0, err
	}

	return engine.Uint16(b), nil
}

// ReadUint32 reads a uint32 in the given byte order.
func (c *Cursor) ReadUint32(engine endian.EndianEngine, field string) (uint32, error) {
	b, err := c.Take(4, field)
	if err != nil {
		return 0, err
	}

	return engine.Uint32(b), nil
}

// ReadUint64 reads a uint64 in the given byte order.
func (c *Cursor) ReadUint64(engine endian.EndianEngine, field string) (uint64, error) {
	b, err := c.Take(8, field)
	if err != nil {
		return 0, err
	}

	return engine.Uint64(b), nil
}

// DecodeUTF16LE decodes a little-endian UTF-16 byte run into a string.
//
// It fails rather than substitutes: an odd byte length or an unpaired
// surrogate both return errs.ErrInvalidUTF16. Callers that need lossy
// behavior (definition text, per the asymmetry documented in the charset
// package) must not use this function.
func DecodeUTF16LE(b []byte) (string, error) {
	if len(b)%2 != 0 {
		return "", fmt.Errorf("%w: odd byte length %d", errs.ErrInvalidUTF16, len(b))
	}

	units := make([]uint16, len(b)/2)
	for i := range units {
		units[i] = uint16(b[2*i]) | uint16(b[2*i+1])<<8
	}

	runes := make([]rune, 0, len(units))
	for i := 0; i < len(units); i++ {
		r := rune(units[i])
		switch {
		case utf16.IsSurrogate(r):
			if i+1 >= len(units) {
				return "", fmt.Errorf("%w: unpaired surrogate at unit %d", errs.ErrInvalidUTF16, i)
			}
			dec := utf16.DecodeRune(r, rune(units[i+1]))
			if dec == utf8.RuneError {
				return "", fmt.Errorf("%w: unpaired surrogate at unit %d", errs.ErrInvalidUTF16, i)
			}
			runes = append(runes, dec)
			i++
		default:
			runes = append(runes, r)
		}
	}

	return string(runes), nil
}
