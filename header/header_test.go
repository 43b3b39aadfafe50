package header

import (
	"encoding/binary"
	"testing"
	"unicode/utf16"

	"github.com/stretchr/testify/require"
)

func encodeUTF16LE(s string) []byte {
	units := utf16.Encode([]rune(s))
	out := make([]byte, len(units)*2)
	for i, u := range units {
		binary.LittleEndian.PutUint16(out[2*i:], u)
	}

	return out
}

func buildHeaderBlob(xmlText string, tail []byte) []byte {
	xmlBytes := encodeUTF16LE(xmlText)

	buf := make([]byte, 4)
	binary.BigEndian.PutUint32(buf, uint32(len(xmlBytes)))
	buf = append(buf, xmlBytes...)
	buf = append(buf, 0, 0, 0, 0) // adler32 checksum, unverified
	buf = append(buf, tail...)

	return buf
}

func TestParseV2Encrypted(t *testing.T) {
	xmlText := `<Dictionary GeneratedByEngineVersion="2.0" Encrypted="2" Encoding="UTF-8" Title="T" Description="D"/>`
	data := buildHeaderBlob(xmlText, []byte{0xAA, 0xBB})

	h, rest, err := Parse(data)
	require.NoError(t, err)
	require.Equal(t, V2, h.Version)
	require.Equal(t, "UTF-8", h.Encoding)
	require.Equal(t, "2", h.Encrypted)
	require.Equal(t, "T", h.Title)
	require.Equal(t, "D", h.Description)
	require.False(t, h.EncryptKeyIndex())
	require.True(t, h.EncryptRecords())
	require.Equal(t, []byte{0xAA, 0xBB}, rest)
}

func TestParseV1Default(t *testing.T) {
	xmlText := `<Dictionary Encrypted="0" Encoding="UTF-16"/>`
	data := buildHeaderBlob(xmlText, nil)

	h, _, err := Parse(data)
	require.NoError(t, err)
	require.Equal(t, V1, h.Version)
	require.Equal(t, "UTF-16", h.Encoding)
	require.False(t, h.EncryptKeyIndex())
	require.False(t, h.EncryptRecords())
}

func TestParseMissingEncodingDefaultsUTF8(t *testing.T) {
	xmlText := `<Dictionary GeneratedByEngineVersion="1.2"/>`
	data := buildHeaderBlob(xmlText, nil)

	h, _, err := Parse(data)
	require.NoError(t, err)
	require.Equal(t, "UTF-8", h.Encoding)
	require.Equal(t, V1, h.Version)
}

func TestParseBothEncryptedBits(t *testing.T) {
	xmlText := `<Dictionary Encrypted="3" Encoding="UTF-8"/>`
	data := buildHeaderBlob(xmlText, nil)

	h, _, err := Parse(data)
	require.NoError(t, err)
	require.True(t, h.EncryptKeyIndex())
	require.True(t, h.EncryptRecords())
}

func TestParseTruncated(t *testing.T) {
	data := []byte{0x00, 0x00, 0x00, 0x10, 0x01, 0x02}
	_, _, err := Parse(data)
	require.Error(t, err)
}

func TestParseInvalidXML(t *testing.T) {
	data := buildHeaderBlob("not xml at all <<<", nil)
	_, _, err := Parse(data)
	require.Error(t, err)
}
