package crypt

import "golang.org/x/crypto/salsa20"

// Salsa20Decrypt decrypts ciphertext with the Salsa20 stream cipher using
// an all-zero 8-byte nonce, as MDX record blocks do.
//
// MDX's cipher key is a 16-byte RIPEMD-128 digest, but golang.org/x/crypto's
// Salsa20 only accepts 32-byte keys (it implements the "expand 32-byte k"
// variant). Every MDX implementation this format was observed from derives
// the 32-byte key by duplicating the digest (key = digest || digest); that
// convention is reproduced here rather than inventing a different key
// schedule.
func Salsa20Decrypt(ciphertext []byte, digest [16]byte) []byte {
	var key [32]byte
	copy(key[:16], digest[:])
	copy(key[16:], digest[:])

	var nonce [8]byte // all-zero, per spec §4.6-4

	out := make([]byte, len(ciphertext))
	salsa20.XORKeyStream(out, ciphertext, nonce[:], &key)

	return out
}
