// Package crypt implements the two independent encryption primitives MDX
// record blocks and key-block info tables may use: the custom fast-XOR
// cipher and Salsa20 (both keyed from a RIPEMD-128 digest of the block's
// checksum bytes, but applied at different layers — see spec §9).
package crypt

// FastXORDecrypt reverses the MDX "fast decrypt" cipher: each ciphertext
// byte has its nibbles swapped, then is XORed with its own position
// (mod 256) XORed with a key byte selected by position mod 16.
//
// p[i] = ((c[i] >> 4) | (c[i] << 4)) XOR ((i & 0xFF) XOR key[i mod 16])
func FastXORDecrypt(ciphertext []byte, key [16]byte) []byte {
	out := make([]byte, len(ciphertext))
	for i, c := range ciphertext {
		swapped := (c >> 4) | (c << 4)
		out[i] = swapped ^ byte(i&0xFF) ^ key[i%16]
	}

	return out
}
