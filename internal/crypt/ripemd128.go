package crypt

import "math/bits"

// RIPEMD-128 (Dobbertin, Bosselaers, Preneel). golang.org/x/crypto only
// ships the 160-bit variant, and no verified third-party Go package in
// this module's dependency set implements RIPEMD-128 (see DESIGN.md), so
// it is implemented here directly from the public specification, in the
// two-parallel-line block-transform shape golang.org/x/crypto/ripemd160
// uses for its own digest. MDX only ever hashes a 4-byte checksum, so this
// is a one-shot function rather than a streaming hash.Hash implementation.

var ripemd128ZL = [64]uint{
	0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15,
	7, 4, 13, 1, 10, 6, 15, 3, 12, 0, 9, 5, 2, 14, 11, 8,
	3, 10, 14, 4, 9, 15, 8, 1, 2, 7, 0, 6, 13, 11, 5, 12,
	1, 9, 11, 10, 0, 8, 12, 4, 13, 3, 7, 15, 14, 5, 6, 2,
}

var ripemd128ZR = [64]uint{
	5, 14, 7, 0, 9, 2, 11, 4, 13, 6, 15, 8, 1, 10, 3, 12,
	6, 11, 3, 7, 0, 13, 5, 10, 14, 15, 8, 12, 4, 9, 1, 2,
	15, 5, 1, 3, 7, 14, 6, 9, 11, 8, 12, 2, 10, 0, 4, 13,
	8, 6, 4, 1, 3, 11, 15, 0, 5, 12, 2, 13, 9, 7, 10, 14,
}

var ripemd128SL = [64]uint{
	11, 14, 15, 12, 5, 8, 7, 9, 11, 13, 14, 15, 6, 7, 9, 8,
	7, 6, 8, 13, 11, 9, 7, 15, 7, 12, 15, 9, 11, 7, 13, 12,
	11, 13, 6, 7, 14, 9, 13, 15, 14, 8, 13, 6, 5, 12, 7, 5,
	11, 12, 14, 15, 14, 15, 9, 8, 9, 14, 5, 6, 8, 6, 5, 12,
}

var ripemd128SR = [64]uint{
	8, 9, 9, 11, 13, 15, 15, 5, 7, 7, 8, 11, 14, 14, 12, 6,
	9, 13, 15, 7, 12, 8, 9, 11, 7, 7, 12, 7, 6, 15, 13, 11,
	9, 7, 15, 11, 8, 6, 6, 14, 12, 13, 5, 14, 13, 13, 7, 5,
	15, 5, 8, 11, 14, 14, 6, 14, 6, 9, 12, 9, 12, 5, 15, 8,
}

var ripemd128KL = [4]uint32{0x00000000, 0x5a827999, 0x6ed9eba1, 0x8f1bbcdc}
var ripemd128KR = [4]uint32{0x50a28be6, 0x5c4dd124, 0x6d703ef3, 0x00000000}

func rmd128f(round int, x, y, z uint32) uint32 {
	switch round {
	case 0:
		return x ^ y ^ z
	case 1:
		return (x & y) | (^x & z)
	case 2:
		return (x | ^y) ^ z
	default:
		return (x & z) | (y & ^z)
	}
}

// ripemd128Block runs the compression function over one 64-byte block,
// updating state in place.
func ripemd128Block(state *[4]uint32, block []byte) {
	var x [16]uint32
	for i := range x {
		x[i] = uint32(block[4*i]) | uint32(block[4*i+1])<<8 | uint32(block[4*i+2])<<16 | uint32(block[4*i+3])<<24
	}

	a, b, c, d := state[0], state[1], state[2], state[3]
	aa, bb, cc, dd := state[0], state[1], state[2], state[3]

	for j := 0; j < 64; j++ {
		round := j / 16
		t := bits.RotateLeft32(a+rmd128f(round, b, c, d)+x[ripemd128ZL[j]]+ripemd128KL[round], int(ripemd128SL[j]))
		a, d, c, b = d, c, b, t

		rround := 3 - round
		tt := bits.RotateLeft32(aa+rmd128f(rround, bb, cc, dd)+x[ripemd128ZR[j]]+ripemd128KR[round], int(ripemd128SR[j]))
		aa, dd, cc, bb = dd, cc, bb, tt
	}

	t := state[1] + c + dd
	state[1] = state[2] + d + aa
	state[2] = state[3] + a + bb
	state[3] = state[0] + b + cc
	state[0] = t
}

// Ripemd128Sum computes the RIPEMD-128 digest of data, as used to derive
// the fast-XOR and Salsa20 cipher keys from a record block's 4-byte
// checksum prefix.
func Ripemd128Sum(data []byte) [16]byte {
	state := [4]uint32{0x67452301, 0xefcdab89, 0x98badcfe, 0x10325476}

	length := uint64(len(data))
	padded := make([]byte, 0, len(data)+72)
	padded = append(padded, data...)
	padded = append(padded, 0x80)
	for len(padded)%64 != 56 {
		padded = append(padded, 0x00)
	}
	bitLen := length * 8
	for i := 0; i < 8; i++ {
		padded = append(padded, byte(bitLen>>(8*uint(i))))
	}

	for off := 0; off < len(padded); off += 64 {
		ripemd128Block(&state, padded[off:off+64])
	}

	var out [16]byte
	for i, s := range state {
		out[4*i] = byte(s)
		out[4*i+1] = byte(s >> 8)
		out[4*i+2] = byte(s >> 16)
		out[4*i+3] = byte(s >> 24)
	}

	return out
}
