package charset

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		raw  string
		want Name
	}{
		{"", UTF8},
		{"UTF-8", UTF8},
		{"utf8", UTF8},
		{"UTF-16", UTF16},
		{"utf-16le", UTF16},
		{"GBK", GBK},
		{"gb2312", GBK},
		{"BIG5", BIG5},
		{"Big-5", BIG5},
	}
	for _, tt := range tests {
		got, err := Normalize(tt.raw)
		require.NoError(t, err)
		require.Equal(t, tt.want, got)
	}
}

func TestNormalizeUnsupported(t *testing.T) {
	_, err := Normalize("SHIFT-JIS")
	require.Error(t, err)
}

func TestDecodeUTF8(t *testing.T) {
	s, err := Decode(UTF8, []byte("café"), true)
	require.NoError(t, err)
	require.Equal(t, "café", s)
}

func TestDecodeUTF8StrictInvalid(t *testing.T) {
	_, err := Decode(UTF8, []byte{0xff, 0xfe}, true)
	require.Error(t, err)
}

func TestDecodeUTF8LossyInvalid(t *testing.T) {
	s, err := Decode(UTF8, []byte{'a', 0xff, 'b'}, false)
	require.NoError(t, err)
	require.Contains(t, s, "�")
}

func encodeUTF16LE(s string) []byte {
	var out []byte
	for _, r := range s {
		if r <= 0xFFFF {
			out = append(out, byte(r), byte(r>>8))
			continue
		}
		r -= 0x10000
		hi := 0xD800 + (r >> 10)
		lo := 0xDC00 + (r & 0x3FF)
		out = append(out, byte(hi), byte(hi>>8), byte(lo), byte(lo>>8))
	}
	return out
}

func TestDecodeUTF16StrictRoundTrip(t *testing.T) {
	b := encodeUTF16LE("café")
	s, err := Decode(UTF16, b, true)
	require.NoError(t, err)
	require.Equal(t, "café", s)
}

func TestDecodeUTF16StrictUnpairedSurrogate(t *testing.T) {
	b := []byte{0x00, 0xD8, 'x', 0x00} // lone high surrogate followed by 'x'
	_, err := Decode(UTF16, b, true)
	require.Error(t, err)
}

func TestDecodeUTF16LossyOddLength(t *testing.T) {
	b := append(encodeUTF16LE("hi"), 0x41)
	s, err := Decode(UTF16, b, false)
	require.NoError(t, err)
	require.Equal(t, "hi", s)
}

func TestDecodeGBKRoundTrip(t *testing.T) {
	// 0xD6D0 0xCEC4 is the GBK encoding of "中文".
	b := []byte{0xD6, 0xD0, 0xCE, 0xC4}
	s, err := Decode(GBK, b, true)
	require.NoError(t, err)
	require.Equal(t, "中文", s)
}

func TestDecodeBIG5RoundTrip(t *testing.T) {
	// 0xA4 0xA4 is the Big5 encoding of "中".
	b := []byte{0xA4, 0xA4}
	s, err := Decode(BIG5, b, true)
	require.NoError(t, err)
	require.Equal(t, "中", s)
}

func TestDecodeUnsupportedCharsetName(t *testing.T) {
	_, err := Decode(Name("SHIFT-JIS"), []byte("x"), true)
	require.Error(t, err)
}
