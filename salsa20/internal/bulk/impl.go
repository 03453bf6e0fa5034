// Copyright (C) 2019 Yawning Angel
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

// Package bulk provides the interleaved multi-block Salsa backend.  Unlike
// ChaCha, the Salsa counter words sit in the middle of the state, so there
// is no counter-independent first-round work to hoist; the wide backend
// instead computes two blocks per pass with the pipelines interleaved.
package bulk

import (
	"encoding/binary"
	"math/bits"

	"github.com/RustCrypto/stream-ciphers-sub000/salsa20/internal/api"
	"github.com/RustCrypto/stream-ciphers-sub000/salsa20/internal/ref"
)

// Wide computes two blocks per pass.
var Wide api.Implementation = &implWide{}

// quarterRound shuffles the bits of 4 state words.  Salsa rotates by
// (7, 9, 13, 18) and, unlike ChaCha, feeds the sum through XOR only.
func quarterRound(a, b, c, d uint32) (uint32, uint32, uint32, uint32) {
	b ^= bits.RotateLeft32(a+d, 7)
	c ^= bits.RotateLeft32(b+a, 9)
	d ^= bits.RotateLeft32(c+b, 13)
	a ^= bits.RotateLeft32(d+c, 18)
	return a, b, c, d
}

// storeBlock serializes one block of keystream, XORing it into src when src
// is not nil.
func storeBlock(dst, src []byte, v *[api.StateSize]uint32) {
	_ = dst[api.BlockSize-1] // Force bounds check elimination.
	if src != nil {
		_ = src[api.BlockSize-1]
		for i, w := range v {
			binary.LittleEndian.PutUint32(dst[i*4:], binary.LittleEndian.Uint32(src[i*4:])^w)
		}
	} else {
		for i, w := range v {
			binary.LittleEndian.PutUint32(dst[i*4:], w)
		}
	}
}

type implWide struct{}

func (impl *implWide) Name() string {
	return "wide2"
}

func (impl *implWide) ParallelBlocks() int {
	return 2
}

func (impl *implWide) Blocks(x *[api.StateSize]uint32, dst, src []byte, nrBlocks, rounds int) {
	n := 0
	for ; n+2 <= nrBlocks; n += 2 {
		ctr := uint64(x[9])<<32 | uint64(x[8])
		bLo, bHi := uint32(ctr+1), uint32((ctr+1)>>32)

		a0, a1, a2, a3 := x[0], x[1], x[2], x[3]
		a4, a5, a6, a7 := x[4], x[5], x[6], x[7]
		a8, a9, a10, a11 := x[8], x[9], x[10], x[11]
		a12, a13, a14, a15 := x[12], x[13], x[14], x[15]

		b0, b1, b2, b3 := x[0], x[1], x[2], x[3]
		b4, b5, b6, b7 := x[4], x[5], x[6], x[7]
		b8, b9, b10, b11 := bLo, bHi, x[10], x[11]
		b12, b13, b14, b15 := x[12], x[13], x[14], x[15]

		for i := rounds; i > 0; i -= 2 {
			// Column round, both blocks.
			a0, a4, a8, a12 = quarterRound(a0, a4, a8, a12)
			b0, b4, b8, b12 = quarterRound(b0, b4, b8, b12)
			a5, a9, a13, a1 = quarterRound(a5, a9, a13, a1)
			b5, b9, b13, b1 = quarterRound(b5, b9, b13, b1)
			a10, a14, a2, a6 = quarterRound(a10, a14, a2, a6)
			b10, b14, b2, b6 = quarterRound(b10, b14, b2, b6)
			a15, a3, a7, a11 = quarterRound(a15, a3, a7, a11)
			b15, b3, b7, b11 = quarterRound(b15, b3, b7, b11)

			// Row round, both blocks.
			a0, a1, a2, a3 = quarterRound(a0, a1, a2, a3)
			b0, b1, b2, b3 = quarterRound(b0, b1, b2, b3)
			a5, a6, a7, a4 = quarterRound(a5, a6, a7, a4)
			b5, b6, b7, b4 = quarterRound(b5, b6, b7, b4)
			a10, a11, a8, a9 = quarterRound(a10, a11, a8, a9)
			b10, b11, b8, b9 = quarterRound(b10, b11, b8, b9)
			a15, a12, a13, a14 = quarterRound(a15, a12, a13, a14)
			b15, b12, b13, b14 = quarterRound(b15, b12, b13, b14)
		}

		outA := [api.StateSize]uint32{
			a0 + x[0], a1 + x[1], a2 + x[2], a3 + x[3],
			a4 + x[4], a5 + x[5], a6 + x[6], a7 + x[7],
			a8 + x[8], a9 + x[9], a10 + x[10], a11 + x[11],
			a12 + x[12], a13 + x[13], a14 + x[14], a15 + x[15],
		}
		outB := [api.StateSize]uint32{
			b0 + x[0], b1 + x[1], b2 + x[2], b3 + x[3],
			b4 + x[4], b5 + x[5], b6 + x[6], b7 + x[7],
			b8 + bLo, b9 + bHi, b10 + x[10], b11 + x[11],
			b12 + x[12], b13 + x[13], b14 + x[14], b15 + x[15],
		}
		storeBlock(dst, src, &outA)
		if src != nil {
			storeBlock(dst[api.BlockSize:], src[api.BlockSize:], &outB)
			src = src[2*api.BlockSize:]
		} else {
			storeBlock(dst[api.BlockSize:], nil, &outB)
		}
		dst = dst[2*api.BlockSize:]

		ctr += 2
		x[8] = uint32(ctr)
		x[9] = uint32(ctr >> 32)
	}

	if n < nrBlocks {
		ref.Impl.Blocks(x, dst, src, nrBlocks-n, rounds)
	}
}

func (impl *implWide) HSalsa(key, nonce, dst []byte, rounds int) {
	ref.Impl.HSalsa(key, nonce, dst, rounds)
}
