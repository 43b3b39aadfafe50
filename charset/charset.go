// Package charset decodes headword and definition text in the encoding
// a header declares, with two decode modes: strict (used for headwords,
// where silent corruption would cause lookup mismatches) and lossy
// (used for definitions, where legacy/garbage bytes are common and
// users expect a rendered replacement character rather than an error).
package charset

import (
	"fmt"
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"

	"github.com/go-mdict/mdx/errs"
	"github.com/go-mdict/mdx/internal/binutil"
)

// Name identifies one of the text encodings an MDX header may declare.
type Name string

const (
	UTF8  Name = "UTF-8"
	UTF16 Name = "UTF-16"
	GBK   Name = "GBK"
	BIG5  Name = "BIG5"
)

// Normalize maps a header's raw Encoding attribute value to a known
// Name, tolerating the casing and aliasing real dictionaries use.
func Normalize(raw string) (Name, error) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "", "UTF-8", "UTF8":
		return UTF8, nil
	case "UTF-16", "UTF16", "UTF-16LE":
		return UTF16, nil
	case "GBK", "GB2312", "GB18030":
		return GBK, nil
	case "BIG5", "BIG-5":
		return BIG5, nil
	default:
		return "", fmt.Errorf("%w: %q", errs.ErrUnsupportedCharset, raw)
	}
}

// Decode converts b from the named encoding to a Go string. In strict
// mode, invalid byte sequences are a hard error; in lossy mode they are
// replaced with U+FFFD and decoding always succeeds.
func Decode(name Name, b []byte, strict bool) (string, error) {
	switch name {
	case UTF8:
		return decodeUTF8(b, strict)
	case UTF16:
		return decodeUTF16(b, strict)
	case GBK:
		return decodeViaEncoding(simplifiedchinese.GBK, b, strict)
	case BIG5:
		return decodeViaEncoding(traditionalchinese.Big5, b, strict)
	default:
		return "", fmt.Errorf("%w: %q", errs.ErrUnsupportedCharset, name)
	}
}

func decodeUTF8(b []byte, strict bool) (string, error) {
	if !strict {
		return strings.ToValidUTF8(string(b), string(utf8.RuneError)), nil
	}
	if !utf8.Valid(b) {
		return "", fmt.Errorf("%w: invalid UTF-8 headword", errs.ErrTextDecode)
	}
	return string(b), nil
}

func decodeUTF16(b []byte, strict bool) (string, error) {
	if strict {
		return binutil.DecodeUTF16LE(b)
	}

	if len(b)%2 != 0 {
		b = b[:len(b)-1]
	}
	units := make([]uint16, len(b)/2)
	for i := range units {
		units[i] = uint16(b[2*i]) | uint16(b[2*i+1])<<8
	}
	return string(utf16.Decode(units)), nil
}

// decodeViaEncoding runs b through a golang.org/x/text Encoding. Strict
// mode rejects any byte sequence the decoder cannot map; lossy mode lets
// the decoder substitute U+FFFD, which is its default behavior.
func decodeViaEncoding(enc encoding.Encoding, b []byte, strict bool) (string, error) {
	out, err := enc.NewDecoder().Bytes(b)
	if err != nil {
		return "", fmt.Errorf("%w: %v", errs.ErrTextDecode, err)
	}
	s := string(out)
	if strict && strings.ContainsRune(s, utf8.RuneError) {
		return "", fmt.Errorf("%w: invalid byte sequence for declared charset", errs.ErrTextDecode)
	}
	return s, nil
}
