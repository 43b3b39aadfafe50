package crypt

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRipemd128Sum(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", "cdf26213a150dc3ecb610f18f6b38b46"},
		{"a", "86be7afa339d0fc7cfc785e72f578d33"},
		{"abc", "c14a12199c66e4ba84636b0f69144c77"},
		{"message digest", "9e327b3d6e523062afc1132d7df9d1b8"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			sum := Ripemd128Sum([]byte(tt.input))
			require.Equal(t, tt.want, hex.EncodeToString(sum[:]))
		})
	}
}

func TestFastXORRoundTrip(t *testing.T) {
	key := Ripemd128Sum([]byte{0x01, 0x02, 0x03, 0x04})
	plaintext := []byte("the quick brown fox jumps over the lazy dog, 0123456789")

	ciphertext := make([]byte, len(plaintext))
	for i, p := range plaintext {
		swapped := p ^ byte(i&0xFF) ^ key[i%16]
		ciphertext[i] = (swapped >> 4) | (swapped << 4)
	}

	got := FastXORDecrypt(ciphertext, key)
	require.Equal(t, plaintext, got)
}

func TestFastXOREmpty(t *testing.T) {
	key := Ripemd128Sum([]byte{0, 0, 0, 0})
	require.Empty(t, FastXORDecrypt(nil, key))
}

func TestSalsa20RoundTrip(t *testing.T) {
	digest := Ripemd128Sum([]byte{0xAA, 0xBB, 0xCC, 0xDD})
	plaintext := []byte("definition text protected by salsa20 stream cipher")

	ciphertext := Salsa20Decrypt(plaintext, digest) // XOR cipher: same op encrypts
	recovered := Salsa20Decrypt(ciphertext, digest)

	require.Equal(t, plaintext, recovered)
	require.NotEqual(t, plaintext, ciphertext)
}
