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

// Package ref provides the portable Salsa backend.
package ref

import (
	"encoding/binary"
	"math/bits"

	"github.com/RustCrypto/stream-ciphers-sub000/salsa20/internal/api"
)

// Impl is the portable scalar implementation, always present as the
// selection of last resort (exposed for testing).
var Impl api.Implementation = &implRef{}

// Register appends the implementation to the provided slice, and returns
// the new slice.
func Register(impls []api.Implementation) []api.Implementation {
	return append(impls, Impl)
}

type implRef struct{}

func (impl *implRef) Name() string {
	return "ref"
}

func (impl *implRef) ParallelBlocks() int {
	return 1
}

func (impl *implRef) Blocks(x *[api.StateSize]uint32, dst, src []byte, nrBlocks, rounds int) {
	for n := 0; n < nrBlocks; n++ {
		x0, x1, x2, x3 := x[0], x[1], x[2], x[3]
		x4, x5, x6, x7 := x[4], x[5], x[6], x[7]
		x8, x9, x10, x11 := x[8], x[9], x[10], x[11]
		x12, x13, x14, x15 := x[12], x[13], x[14], x[15]

		for i := rounds; i > 0; i -= 2 {
			// Column round.
			u := x0 + x12
			x4 ^= bits.RotateLeft32(u, 7)
			u = x4 + x0
			x8 ^= bits.RotateLeft32(u, 9)
			u = x8 + x4
			x12 ^= bits.RotateLeft32(u, 13)
			u = x12 + x8
			x0 ^= bits.RotateLeft32(u, 18)

			u = x5 + x1
			x9 ^= bits.RotateLeft32(u, 7)
			u = x9 + x5
			x13 ^= bits.RotateLeft32(u, 9)
			u = x13 + x9
			x1 ^= bits.RotateLeft32(u, 13)
			u = x1 + x13
			x5 ^= bits.RotateLeft32(u, 18)

			u = x10 + x6
			x14 ^= bits.RotateLeft32(u, 7)
			u = x14 + x10
			x2 ^= bits.RotateLeft32(u, 9)
			u = x2 + x14
			x6 ^= bits.RotateLeft32(u, 13)
			u = x6 + x2
			x10 ^= bits.RotateLeft32(u, 18)

			u = x15 + x11
			x3 ^= bits.RotateLeft32(u, 7)
			u = x3 + x15
			x7 ^= bits.RotateLeft32(u, 9)
			u = x7 + x3
			x11 ^= bits.RotateLeft32(u, 13)
			u = x11 + x7
			x15 ^= bits.RotateLeft32(u, 18)

			// Row round.
			u = x0 + x3
			x1 ^= bits.RotateLeft32(u, 7)
			u = x1 + x0
			x2 ^= bits.RotateLeft32(u, 9)
			u = x2 + x1
			x3 ^= bits.RotateLeft32(u, 13)
			u = x3 + x2
			x0 ^= bits.RotateLeft32(u, 18)

			u = x5 + x4
			x6 ^= bits.RotateLeft32(u, 7)
			u = x6 + x5
			x7 ^= bits.RotateLeft32(u, 9)
			u = x7 + x6
			x4 ^= bits.RotateLeft32(u, 13)
			u = x4 + x7
			x5 ^= bits.RotateLeft32(u, 18)

			u = x10 + x9
			x11 ^= bits.RotateLeft32(u, 7)
			u = x11 + x10
			x8 ^= bits.RotateLeft32(u, 9)
			u = x8 + x11
			x9 ^= bits.RotateLeft32(u, 13)
			u = x9 + x8
			x10 ^= bits.RotateLeft32(u, 18)

			u = x15 + x14
			x12 ^= bits.RotateLeft32(u, 7)
			u = x12 + x15
			x13 ^= bits.RotateLeft32(u, 9)
			u = x13 + x12
			x14 ^= bits.RotateLeft32(u, 13)
			u = x14 + x13
			x15 ^= bits.RotateLeft32(u, 18)
		}

		// Feed forward the input state.
		x0 += x[0]
		x1 += x[1]
		x2 += x[2]
		x3 += x[3]
		x4 += x[4]
		x5 += x[5]
		x6 += x[6]
		x7 += x[7]
		x8 += x[8]
		x9 += x[9]
		x10 += x[10]
		x11 += x[11]
		x12 += x[12]
		x13 += x[13]
		x14 += x[14]
		x15 += x[15]

		_ = dst[api.BlockSize-1] // Force bounds check elimination.

		if src != nil {
			_ = src[api.BlockSize-1] // Force bounds check elimination.
			binary.LittleEndian.PutUint32(dst[0:4], binary.LittleEndian.Uint32(src[0:4])^x0)
			binary.LittleEndian.PutUint32(dst[4:8], binary.LittleEndian.Uint32(src[4:8])^x1)
			binary.LittleEndian.PutUint32(dst[8:12], binary.LittleEndian.Uint32(src[8:12])^x2)
			binary.LittleEndian.PutUint32(dst[12:16], binary.LittleEndian.Uint32(src[12:16])^x3)
			binary.LittleEndian.PutUint32(dst[16:20], binary.LittleEndian.Uint32(src[16:20])^x4)
			binary.LittleEndian.PutUint32(dst[20:24], binary.LittleEndian.Uint32(src[20:24])^x5)
			binary.LittleEndian.PutUint32(dst[24:28], binary.LittleEndian.Uint32(src[24:28])^x6)
			binary.LittleEndian.PutUint32(dst[28:32], binary.LittleEndian.Uint32(src[28:32])^x7)
			binary.LittleEndian.PutUint32(dst[32:36], binary.LittleEndian.Uint32(src[32:36])^x8)
			binary.LittleEndian.PutUint32(dst[36:40], binary.LittleEndian.Uint32(src[36:40])^x9)
			binary.LittleEndian.PutUint32(dst[40:44], binary.LittleEndian.Uint32(src[40:44])^x10)
			binary.LittleEndian.PutUint32(dst[44:48], binary.LittleEndian.Uint32(src[44:48])^x11)
			binary.LittleEndian.PutUint32(dst[48:52], binary.LittleEndian.Uint32(src[48:52])^x12)
			binary.LittleEndian.PutUint32(dst[52:56], binary.LittleEndian.Uint32(src[52:56])^x13)
			binary.LittleEndian.PutUint32(dst[56:60], binary.LittleEndian.Uint32(src[56:60])^x14)
			binary.LittleEndian.PutUint32(dst[60:64], binary.LittleEndian.Uint32(src[60:64])^x15)
			src = src[api.BlockSize:]
		} else {
			binary.LittleEndian.PutUint32(dst[0:4], x0)
			binary.LittleEndian.PutUint32(dst[4:8], x1)
			binary.LittleEndian.PutUint32(dst[8:12], x2)
			binary.LittleEndian.PutUint32(dst[12:16], x3)
			binary.LittleEndian.PutUint32(dst[16:20], x4)
			binary.LittleEndian.PutUint32(dst[20:24], x5)
			binary.LittleEndian.PutUint32(dst[24:28], x6)
			binary.LittleEndian.PutUint32(dst[28:32], x7)
			binary.LittleEndian.PutUint32(dst[32:36], x8)
			binary.LittleEndian.PutUint32(dst[36:40], x9)
			binary.LittleEndian.PutUint32(dst[40:44], x10)
			binary.LittleEndian.PutUint32(dst[44:48], x11)
			binary.LittleEndian.PutUint32(dst[48:52], x12)
			binary.LittleEndian.PutUint32(dst[52:56], x13)
			binary.LittleEndian.PutUint32(dst[56:60], x14)
			binary.LittleEndian.PutUint32(dst[60:64], x15)
		}
		dst = dst[api.BlockSize:]

		// Advance the 64 bit block counter.
		ctr := uint64(x[9])<<32 | uint64(x[8])
		ctr++
		x[8] = uint32(ctr)
		x[9] = uint32(ctr >> 32)
	}
}

func (impl *implRef) HSalsa(key, nonce, dst []byte, rounds int) {
	// Force bounds check elimination.
	_ = key[31]
	_ = nonce[api.HNonceSize-1]

	x0 := api.Sigma0
	x1 := binary.LittleEndian.Uint32(key[0:4])
	x2 := binary.LittleEndian.Uint32(key[4:8])
	x3 := binary.LittleEndian.Uint32(key[8:12])
	x4 := binary.LittleEndian.Uint32(key[12:16])
	x5 := api.Sigma1
	x6 := binary.LittleEndian.Uint32(nonce[0:4])
	x7 := binary.LittleEndian.Uint32(nonce[4:8])
	x8 := binary.LittleEndian.Uint32(nonce[8:12])
	x9 := binary.LittleEndian.Uint32(nonce[12:16])
	x10 := api.Sigma2
	x11 := binary.LittleEndian.Uint32(key[16:20])
	x12 := binary.LittleEndian.Uint32(key[20:24])
	x13 := binary.LittleEndian.Uint32(key[24:28])
	x14 := binary.LittleEndian.Uint32(key[28:32])
	x15 := api.Sigma3

	for i := rounds; i > 0; i -= 2 {
		// Column round.
		u := x0 + x12
		x4 ^= bits.RotateLeft32(u, 7)
		u = x4 + x0
		x8 ^= bits.RotateLeft32(u, 9)
		u = x8 + x4
		x12 ^= bits.RotateLeft32(u, 13)
		u = x12 + x8
		x0 ^= bits.RotateLeft32(u, 18)

		u = x5 + x1
		x9 ^= bits.RotateLeft32(u, 7)
		u = x9 + x5
		x13 ^= bits.RotateLeft32(u, 9)
		u = x13 + x9
		x1 ^= bits.RotateLeft32(u, 13)
		u = x1 + x13
		x5 ^= bits.RotateLeft32(u, 18)

		u = x10 + x6
		x14 ^= bits.RotateLeft32(u, 7)
		u = x14 + x10
		x2 ^= bits.RotateLeft32(u, 9)
		u = x2 + x14
		x6 ^= bits.RotateLeft32(u, 13)
		u = x6 + x2
		x10 ^= bits.RotateLeft32(u, 18)

		u = x15 + x11
		x3 ^= bits.RotateLeft32(u, 7)
		u = x3 + x15
		x7 ^= bits.RotateLeft32(u, 9)
		u = x7 + x3
		x11 ^= bits.RotateLeft32(u, 13)
		u = x11 + x7
		x15 ^= bits.RotateLeft32(u, 18)

		// Row round.
		u = x0 + x3
		x1 ^= bits.RotateLeft32(u, 7)
		u = x1 + x0
		x2 ^= bits.RotateLeft32(u, 9)
		u = x2 + x1
		x3 ^= bits.RotateLeft32(u, 13)
		u = x3 + x2
		x0 ^= bits.RotateLeft32(u, 18)

		u = x5 + x4
		x6 ^= bits.RotateLeft32(u, 7)
		u = x6 + x5
		x7 ^= bits.RotateLeft32(u, 9)
		u = x7 + x6
		x4 ^= bits.RotateLeft32(u, 13)
		u = x4 + x7
		x5 ^= bits.RotateLeft32(u, 18)

		u = x10 + x9
		x11 ^= bits.RotateLeft32(u, 7)
		u = x11 + x10
		x8 ^= bits.RotateLeft32(u, 9)
		u = x8 + x11
		x9 ^= bits.RotateLeft32(u, 13)
		u = x9 + x8
		x10 ^= bits.RotateLeft32(u, 18)

		u = x15 + x14
		x12 ^= bits.RotateLeft32(u, 7)
		u = x12 + x15
		x13 ^= bits.RotateLeft32(u, 9)
		u = x13 + x12
		x14 ^= bits.RotateLeft32(u, 13)
		u = x14 + x13
		x15 ^= bits.RotateLeft32(u, 18)
	}

	// HSalsa skips the feed forward and extracts words 0, 5, 10, 15 and
	// 6..9, per the XSalsa paper.
	_ = dst[api.HashSize-1] // Force bounds check elimination.
	binary.LittleEndian.PutUint32(dst[0:4], x0)
	binary.LittleEndian.PutUint32(dst[4:8], x5)
	binary.LittleEndian.PutUint32(dst[8:12], x10)
	binary.LittleEndian.PutUint32(dst[12:16], x15)
	binary.LittleEndian.PutUint32(dst[16:20], x6)
	binary.LittleEndian.PutUint32(dst[20:24], x7)
	binary.LittleEndian.PutUint32(dst[24:28], x8)
	binary.LittleEndian.PutUint32(dst[28:32], x9)
}
