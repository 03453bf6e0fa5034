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

// Package api provides the abstract interface implemented by every
// ChaCha keystream backend.
package api

const (
	// BlockSize is the size of a ChaCha block in bytes.
	BlockSize = 64

	// StateSize is the size of the ChaCha state as 32 bit unsigned words.
	StateSize = 16

	// HashSize is the size of the HChaCha output in bytes.
	HashSize = 32

	// HNonceSize is the HChaCha nonce size in bytes.
	HNonceSize = 16

	// Sigma0 is the first word of the ChaCha constant.
	Sigma0 = uint32(0x61707865)

	// Sigma1 is the second word of the ChaCha constant.
	Sigma1 = uint32(0x3320646e)

	// Sigma2 is the third word of the ChaCha constant.
	Sigma2 = uint32(0x79622d32)

	// Sigma3 is the fourth word of the ChaCha constant.
	Sigma3 = uint32(0x6b206574)
)

// Implementation is a ChaCha keystream backend.  All backends must produce
// bit-identical output for identical (state, rounds) inputs; they are
// allowed to differ only in throughput.
type Implementation interface {
	// Name returns the name of the implementation.
	Name() string

	// ParallelBlocks returns the number of blocks the backend prefers to
	// process per Blocks call.
	ParallelBlocks() int

	// Blocks calculates nrBlocks ChaCha blocks with the given round count.
	// If src is not nil, dst will be set to the XOR of src with the key
	// stream, otherwise dst will be set to the key stream.  The block
	// counter words (state[12], state[13]) are treated as a single 64 bit
	// value and advanced by nrBlocks; callers enforce variant-specific
	// counter bounds before invoking Blocks.
	Blocks(x *[StateSize]uint32, dst, src []byte, nrBlocks, rounds int)

	// HChaCha calculates the HChaCha subkey derivation with the given
	// round count.  dst is guaranteed to be HashSize bytes.
	HChaCha(key, nonce, dst []byte, rounds int)
}
