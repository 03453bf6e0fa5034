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

// Package api provides the abstract interface implemented by every Salsa
// keystream backend.
package api

const (
	// BlockSize is the size of a Salsa block in bytes.
	BlockSize = 64

	// StateSize is the size of the Salsa state as 32 bit unsigned words.
	StateSize = 16

	// HashSize is the size of the HSalsa output in bytes.
	HashSize = 32

	// HNonceSize is the HSalsa nonce size in bytes.
	HNonceSize = 16

	// Sigma0 is the first word of the Salsa constant, placed at state
	// word 0.
	Sigma0 = uint32(0x61707865)

	// Sigma1 is the second word of the Salsa constant, placed at state
	// word 5.
	Sigma1 = uint32(0x3320646e)

	// Sigma2 is the third word of the Salsa constant, placed at state
	// word 10.
	Sigma2 = uint32(0x79622d32)

	// Sigma3 is the fourth word of the Salsa constant, placed at state
	// word 15.
	Sigma3 = uint32(0x6b206574)
)

// Implementation is a Salsa keystream backend.  All backends must produce
// bit-identical output for identical (state, rounds) inputs.
type Implementation interface {
	// Name returns the name of the implementation.
	Name() string

	// ParallelBlocks returns the number of blocks the backend prefers to
	// process per Blocks call.
	ParallelBlocks() int

	// Blocks calculates nrBlocks Salsa blocks with the given round count.
	// If src is not nil, dst will be set to the XOR of src with the key
	// stream, otherwise dst will be set to the key stream.  The 64 bit
	// block counter (state[8] low, state[9] high) is advanced by
	// nrBlocks; callers enforce counter bounds before invoking Blocks.
	Blocks(x *[StateSize]uint32, dst, src []byte, nrBlocks, rounds int)

	// HSalsa calculates the HSalsa subkey derivation with the given round
	// count.  dst is guaranteed to be HashSize bytes.
	HSalsa(key, nonce, dst []byte, rounds int)
}
