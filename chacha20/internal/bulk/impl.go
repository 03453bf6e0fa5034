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

// Package bulk provides multi-block ChaCha backends.  Both backends hoist
// work that the one-block-at-a-time portable backend repeats for every
// block, and exist so that the dispatcher has faster options on targets
// where they pay off.
package bulk

import (
	"encoding/binary"
	"math/bits"

	"github.com/RustCrypto/stream-ciphers-sub000/chacha20/internal/api"
	"github.com/RustCrypto/stream-ciphers-sub000/chacha20/internal/ref"
)

// Impl amortizes the counter-independent three quarter-rounds of the first
// column pass across all blocks of a call.
var Impl api.Implementation = &implBulk{}

// Wide computes two blocks per pass with the pipelines interleaved, which
// exposes twice the instruction level parallelism of the one-block loop.
var Wide api.Implementation = &implWide{}

// quarterRound shuffles the bits of 4 state words.  It is executed 4 times
// per round, operating on all 16 words of the state, in columnar or
// diagonal groups of 4 at a time.
func quarterRound(a, b, c, d uint32) (uint32, uint32, uint32, uint32) {
	a += b
	d ^= a
	d = bits.RotateLeft32(d, 16)
	c += d
	b ^= c
	b = bits.RotateLeft32(b, 12)
	a += b
	d ^= a
	d = bits.RotateLeft32(d, 8)
	c += d
	b ^= c
	b = bits.RotateLeft32(b, 7)
	return a, b, c, d
}

// storeBlock serializes one block of keystream, XORing it into src when src
// is not nil.  v holds the post-feed-forward words.
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

type implBulk struct{}

func (impl *implBulk) Name() string {
	return "bulk4"
}

func (impl *implBulk) ParallelBlocks() int {
	return 4
}

func (impl *implBulk) Blocks(x *[api.StateSize]uint32, dst, src []byte, nrBlocks, rounds int) {
	// Columns 1 through 3 of the first round do not involve the counter
	// low word, so their quarter-rounds are shared between blocks.  The
	// legacy variant carries into x[13] once every 2^32 blocks, which
	// invalidates column 1; detect that and recompute.
	var (
		p1, p5, p9, p13   uint32
		p2, p6, p10, p14  uint32
		p3, p7, p11, p15  uint32
		pre13             uint32
		havePrecomp       bool
	)

	for n := 0; n < nrBlocks; n++ {
		if !havePrecomp || x[13] != pre13 {
			p1, p5, p9, p13 = quarterRound(api.Sigma1, x[5], x[9], x[13])
			p2, p6, p10, p14 = quarterRound(api.Sigma2, x[6], x[10], x[14])
			p3, p7, p11, p15 = quarterRound(api.Sigma3, x[7], x[11], x[15])
			pre13 = x[13]
			havePrecomp = true
		}

		// The remainder of the first column pass.
		fcr0, fcr4, fcr8, fcr12 := quarterRound(api.Sigma0, x[4], x[8], x[12])

		// The first diagonal pass.
		v0, v5, v10, v15 := quarterRound(fcr0, p5, p10, p15)
		v1, v6, v11, v12 := quarterRound(p1, p6, p11, fcr12)
		v2, v7, v8, v13 := quarterRound(p2, p7, fcr8, p13)
		v3, v4, v9, v14 := quarterRound(p3, fcr4, p9, p14)

		// The remaining double-rounds.
		for i := rounds - 2; i > 0; i -= 2 {
			v0, v4, v8, v12 = quarterRound(v0, v4, v8, v12)
			v1, v5, v9, v13 = quarterRound(v1, v5, v9, v13)
			v2, v6, v10, v14 = quarterRound(v2, v6, v10, v14)
			v3, v7, v11, v15 = quarterRound(v3, v7, v11, v15)

			v0, v5, v10, v15 = quarterRound(v0, v5, v10, v15)
			v1, v6, v11, v12 = quarterRound(v1, v6, v11, v12)
			v2, v7, v8, v13 = quarterRound(v2, v7, v8, v13)
			v3, v4, v9, v14 = quarterRound(v3, v4, v9, v14)
		}

		out := [api.StateSize]uint32{
			v0 + api.Sigma0, v1 + api.Sigma1, v2 + api.Sigma2, v3 + api.Sigma3,
			v4 + x[4], v5 + x[5], v6 + x[6], v7 + x[7],
			v8 + x[8], v9 + x[9], v10 + x[10], v11 + x[11],
			v12 + x[12], v13 + x[13], v14 + x[14], v15 + x[15],
		}
		storeBlock(dst, src, &out)
		if src != nil {
			src = src[api.BlockSize:]
		}
		dst = dst[api.BlockSize:]

		ctr := uint64(x[13])<<32 | uint64(x[12])
		ctr++
		x[12] = uint32(ctr)
		x[13] = uint32(ctr >> 32)
	}
}

func (impl *implBulk) HChaCha(key, nonce, dst []byte, rounds int) {
	ref.Impl.HChaCha(key, nonce, dst, rounds)
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
		ctr := uint64(x[13])<<32 | uint64(x[12])
		bLo, bHi := uint32(ctr+1), uint32((ctr+1)>>32)

		a0, a1, a2, a3 := api.Sigma0, api.Sigma1, api.Sigma2, api.Sigma3
		a4, a5, a6, a7 := x[4], x[5], x[6], x[7]
		a8, a9, a10, a11 := x[8], x[9], x[10], x[11]
		a12, a13, a14, a15 := x[12], x[13], x[14], x[15]

		b0, b1, b2, b3 := api.Sigma0, api.Sigma1, api.Sigma2, api.Sigma3
		b4, b5, b6, b7 := x[4], x[5], x[6], x[7]
		b8, b9, b10, b11 := x[8], x[9], x[10], x[11]
		b12, b13, b14, b15 := bLo, bHi, x[14], x[15]

		for i := rounds; i > 0; i -= 2 {
			a0, a4, a8, a12 = quarterRound(a0, a4, a8, a12)
			b0, b4, b8, b12 = quarterRound(b0, b4, b8, b12)
			a1, a5, a9, a13 = quarterRound(a1, a5, a9, a13)
			b1, b5, b9, b13 = quarterRound(b1, b5, b9, b13)
			a2, a6, a10, a14 = quarterRound(a2, a6, a10, a14)
			b2, b6, b10, b14 = quarterRound(b2, b6, b10, b14)
			a3, a7, a11, a15 = quarterRound(a3, a7, a11, a15)
			b3, b7, b11, b15 = quarterRound(b3, b7, b11, b15)

			a0, a5, a10, a15 = quarterRound(a0, a5, a10, a15)
			b0, b5, b10, b15 = quarterRound(b0, b5, b10, b15)
			a1, a6, a11, a12 = quarterRound(a1, a6, a11, a12)
			b1, b6, b11, b12 = quarterRound(b1, b6, b11, b12)
			a2, a7, a8, a13 = quarterRound(a2, a7, a8, a13)
			b2, b7, b8, b13 = quarterRound(b2, b7, b8, b13)
			a3, a4, a9, a14 = quarterRound(a3, a4, a9, a14)
			b3, b4, b9, b14 = quarterRound(b3, b4, b9, b14)
		}

		outA := [api.StateSize]uint32{
			a0 + api.Sigma0, a1 + api.Sigma1, a2 + api.Sigma2, a3 + api.Sigma3,
			a4 + x[4], a5 + x[5], a6 + x[6], a7 + x[7],
			a8 + x[8], a9 + x[9], a10 + x[10], a11 + x[11],
			a12 + x[12], a13 + x[13], a14 + x[14], a15 + x[15],
		}
		outB := [api.StateSize]uint32{
			b0 + api.Sigma0, b1 + api.Sigma1, b2 + api.Sigma2, b3 + api.Sigma3,
			b4 + x[4], b5 + x[5], b6 + x[6], b7 + x[7],
			b8 + x[8], b9 + x[9], b10 + x[10], b11 + x[11],
			b12 + bLo, b13 + bHi, b14 + x[14], b15 + x[15],
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
		x[12] = uint32(ctr)
		x[13] = uint32(ctr >> 32)
	}

	if n < nrBlocks {
		ref.Impl.Blocks(x, dst, src, nrBlocks-n, rounds)
	}
}

func (impl *implWide) HChaCha(key, nonce, dst []byte, rounds int) {
	ref.Impl.HChaCha(key, nonce, dst, rounds)
}
