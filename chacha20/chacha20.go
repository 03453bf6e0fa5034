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

// Package chacha20 implements the ChaCha20 stream cipher, the XChaCha20
// and legacy (64 bit nonce) variants, the reduced round ChaCha8/ChaCha12
// parameterizations, and a ChaCha based CSPRNG.
package chacha20

import (
	"crypto/cipher"
	"encoding/binary"
	"errors"
	"math"

	"github.com/RustCrypto/stream-ciphers-sub000/chacha20/internal/api"
	"github.com/RustCrypto/stream-ciphers-sub000/chacha20/internal/hardware"
	"github.com/RustCrypto/stream-ciphers-sub000/chacha20/internal/ref"
)

const (
	// KeySize is the ChaCha key size in bytes.
	KeySize = 32

	// NonceSize is the legacy ChaCha nonce size in bytes.
	NonceSize = 8

	// INonceSize is the IETF ChaCha nonce size in bytes.
	INonceSize = 12

	// XNonceSize is the XChaCha nonce size in bytes.
	XNonceSize = 24

	// HNonceSize is the HChaCha nonce size in bytes.
	HNonceSize = 16

	// BlockSize is the size of a ChaCha block in bytes.
	BlockSize = api.BlockSize
)

var (
	// ErrInvalidKey is the error returned when the key length is invalid.
	ErrInvalidKey = errors.New("chacha20: key length must be KeySize bytes")

	// ErrInvalidNonce is the error returned when the nonce length is invalid.
	ErrInvalidNonce = errors.New("chacha20: nonce length must be NonceSize/INonceSize/XNonceSize bytes")

	// ErrInvalidRounds is the error returned when the round count is not
	// one of 8, 12 or 20.
	ErrInvalidRounds = errors.New("chacha20: round count must be 8, 12 or 20")

	// ErrInvalidCounter is the error returned when a seek lands outside
	// the counter range of the variant in use.
	ErrInvalidCounter = errors.New("chacha20: block counter is invalid (out of range)")

	// ErrCounterOverflow is the error returned when the keystream for the
	// current key/nonce pair is exhausted.
	ErrCounterOverflow = errors.New("chacha20: keystream counter would overflow")

	supportedImpls []api.Implementation
	activeImpl     api.Implementation

	_ cipher.Stream = (*Cipher)(nil)
)

// Cipher is an instance of ChaCha20 (or a reduced round variant thereof)
// keyed with a particular key and nonce.
type Cipher struct {
	state [api.StateSize]uint32
	buf   [api.BlockSize]byte

	impl   api.Implementation
	off    int
	rounds int
	ietf   bool
}

// Reset zeros the key data so that it will no longer appear in the
// process's memory.
func (c *Cipher) Reset() {
	for i := range c.state {
		c.state[i] = 0
	}
	for i := range c.buf {
		c.buf[i] = 0
	}
}

// Seek sets the keystream position to the provided byte offset.  Seeking
// into the middle of a block eagerly generates that block, so a subsequent
// XORKeyStream continues from exactly the requested byte.
func (c *Cipher) Seek(offset uint64) error {
	blockCounter := offset / api.BlockSize
	rem := int(offset % api.BlockSize)

	if c.ietf {
		if blockCounter > math.MaxUint32 {
			return ErrInvalidCounter
		}
		c.state[12] = uint32(blockCounter)
	} else {
		c.state[12] = uint32(blockCounter)
		c.state[13] = uint32(blockCounter >> 32)
	}
	c.off = api.BlockSize

	if rem != 0 {
		if err := c.doBlocks(c.buf[:], nil, 1); err != nil {
			return err
		}
		c.off = rem
	}
	return nil
}

// ReKey reinitializes the instance with the provided key and nonce.
func (c *Cipher) ReKey(key, nonce []byte) error {
	c.Reset()
	return c.doReKey(key, nonce)
}

func (c *Cipher) doReKey(key, nonce []byte) error {
	if len(key) != KeySize {
		return ErrInvalidKey
	}

	var subKey []byte
	switch len(nonce) {
	case NonceSize, INonceSize:
	case XNonceSize:
		subKey = c.buf[:KeySize]
		c.impl.HChaCha(key, nonce, subKey, c.rounds)
		key = subKey
		nonce = nonce[16:24]
	default:
		return ErrInvalidNonce
	}

	_ = key[31] // Force bounds check elimination.

	c.state[0] = api.Sigma0
	c.state[1] = api.Sigma1
	c.state[2] = api.Sigma2
	c.state[3] = api.Sigma3
	c.state[4] = binary.LittleEndian.Uint32(key[0:4])
	c.state[5] = binary.LittleEndian.Uint32(key[4:8])
	c.state[6] = binary.LittleEndian.Uint32(key[8:12])
	c.state[7] = binary.LittleEndian.Uint32(key[12:16])
	c.state[8] = binary.LittleEndian.Uint32(key[16:20])
	c.state[9] = binary.LittleEndian.Uint32(key[20:24])
	c.state[10] = binary.LittleEndian.Uint32(key[24:28])
	c.state[11] = binary.LittleEndian.Uint32(key[28:32])
	c.state[12] = 0
	if len(nonce) == INonceSize {
		_ = nonce[11] // Force bounds check elimination.
		c.state[13] = binary.LittleEndian.Uint32(nonce[0:4])
		c.state[14] = binary.LittleEndian.Uint32(nonce[4:8])
		c.state[15] = binary.LittleEndian.Uint32(nonce[8:12])
		c.ietf = true
	} else {
		_ = nonce[7] // Force bounds check elimination.
		c.state[13] = 0
		c.state[14] = binary.LittleEndian.Uint32(nonce[0:4])
		c.state[15] = binary.LittleEndian.Uint32(nonce[4:8])
		c.ietf = false
	}
	c.off = api.BlockSize

	if subKey != nil {
		for i := range subKey {
			subKey[i] = 0
		}
	}

	return nil
}

// New returns a new ChaCha20 instance.  The variant is inferred from the
// nonce length: 8 bytes selects the legacy construction with a 64 bit
// counter, 12 bytes the IETF construction with a 32 bit counter, and 24
// bytes XChaCha20.
func New(key, nonce []byte) (*Cipher, error) {
	return NewWithRounds(key, nonce, 20)
}

// NewWithRounds returns a new ChaCha instance with a reduced round count.
// Only the well studied 8, 12 and 20 round parameterizations are accepted.
func NewWithRounds(key, nonce []byte, rounds int) (*Cipher, error) {
	switch rounds {
	case 8, 12, 20:
	default:
		return nil, ErrInvalidRounds
	}

	c := Cipher{impl: activeImpl, rounds: rounds}
	if err := c.doReKey(key, nonce); err != nil {
		return nil, err
	}

	return &c, nil
}

// HChaCha20 is the HChaCha20 subkey derivation function used to build
// XChaCha20.
func HChaCha20(key, nonce []byte, dst *[32]byte) {
	activeImpl.HChaCha(key, nonce, dst[:], 20)
}

// XORKeyStream sets dst to the result of XORing src with the key stream.
// Dst and src may be the same slice but otherwise should not overlap.  It
// panics if the keystream for this key/nonce pair is exhausted; use
// TryXORKeyStream when the caller wants to handle exhaustion.
func (c *Cipher) XORKeyStream(dst, src []byte) {
	if err := c.TryXORKeyStream(dst, src); err != nil {
		panic(err)
	}
}

// TryXORKeyStream sets dst to the result of XORing src with the key
// stream, returning ErrCounterOverflow if the request would advance the
// block counter past the end of its range.  On error no output has been
// produced and the cipher state is unchanged.
func (c *Cipher) TryXORKeyStream(dst, src []byte) error {
	if len(dst) < len(src) {
		src = src[:len(dst)]
	}
	if err := c.checkRemaining(len(src)); err != nil {
		return err
	}

	for remaining := len(src); remaining > 0; {
		// Process multiple blocks at once.
		if c.off == api.BlockSize {
			nrBlocks := remaining / api.BlockSize
			directBytes := nrBlocks * api.BlockSize
			if nrBlocks > 0 {
				if err := c.doBlocks(dst, src, nrBlocks); err != nil {
					return err
				}
				remaining -= directBytes
				if remaining == 0 {
					return nil
				}
				dst = dst[directBytes:]
				src = src[directBytes:]
			}

			// If there's a partial block, generate 1 block of keystream
			// into the internal buffer.
			if err := c.doBlocks(c.buf[:], nil, 1); err != nil {
				return err
			}
			c.off = 0
		}

		// Process partial blocks from the buffered keystream.
		toXor := api.BlockSize - c.off
		if remaining < toXor {
			toXor = remaining
		}
		if toXor > 0 {
			c.xorBufBytes(dst, src, toXor)

			dst = dst[toXor:]
			src = src[toXor:]

			remaining -= toXor
		}
	}
	return nil
}

func (c *Cipher) xorBufBytes(dst, src []byte, n int) {
	// Force bounds check elimination.
	buf := c.buf[c.off:]
	_ = buf[n-1]
	_ = dst[n-1]
	_ = src[n-1]

	for i := 0; i < n; i++ {
		dst[i] = buf[i] ^ src[i]
	}
	c.off += n
}

// KeyStream sets dst to the raw keystream.  Like XORKeyStream it panics on
// counter exhaustion.
func (c *Cipher) KeyStream(dst []byte) {
	if err := c.TryKeyStream(dst); err != nil {
		panic(err)
	}
}

// TryKeyStream sets dst to the raw keystream, returning ErrCounterOverflow
// instead of panicking on counter exhaustion.
func (c *Cipher) TryKeyStream(dst []byte) error {
	if err := c.checkRemaining(len(dst)); err != nil {
		return err
	}

	for remaining := len(dst); remaining > 0; {
		// Process multiple blocks at once.
		if c.off == api.BlockSize {
			nrBlocks := remaining / api.BlockSize
			directBytes := nrBlocks * api.BlockSize
			if nrBlocks > 0 {
				if err := c.doBlocks(dst, nil, nrBlocks); err != nil {
					return err
				}
				remaining -= directBytes
				if remaining == 0 {
					return nil
				}
				dst = dst[directBytes:]
			}

			if err := c.doBlocks(c.buf[:], nil, 1); err != nil {
				return err
			}
			c.off = 0
		}

		// Process partial blocks from the buffered keystream.
		toCopy := api.BlockSize - c.off
		if remaining < toCopy {
			toCopy = remaining
		}
		if toCopy > 0 {
			copy(dst[:toCopy], c.buf[c.off:c.off+toCopy])
			dst = dst[toCopy:]
			remaining -= toCopy
			c.off += toCopy
		}
	}
	return nil
}

// checkRemaining rejects a request for n bytes up front, before any output
// has been written, so that the fallible entry points are all-or-nothing.
func (c *Cipher) checkRemaining(n int) error {
	buffered := 0
	if c.off != api.BlockSize {
		buffered = api.BlockSize - c.off
	}
	if n <= buffered {
		return nil
	}
	blocksNeeded := uint64((n - buffered + api.BlockSize - 1) / api.BlockSize)

	if c.ietf {
		ctr := uint64(c.state[12])
		if ctr+blocksNeeded > math.MaxUint32 {
			return ErrCounterOverflow
		}
	} else {
		ctr := uint64(c.state[13])<<32 | uint64(c.state[12])
		if ctr+blocksNeeded < ctr {
			return ErrCounterOverflow
		}
	}
	return nil
}

func (c *Cipher) doBlocks(dst, src []byte, nrBlocks int) error {
	if c.ietf {
		ctr := uint64(c.state[12])
		if ctr+uint64(nrBlocks) > math.MaxUint32 {
			return ErrCounterOverflow
		}
	} else {
		ctr := uint64(c.state[13])<<32 | uint64(c.state[12])
		if ctr+uint64(nrBlocks) < ctr {
			return ErrCounterOverflow
		}
	}

	c.impl.Blocks(&c.state, dst, src, nrBlocks, c.rounds)
	return nil
}

func init() {
	supportedImpls = hardware.Register(supportedImpls)
	supportedImpls = ref.Register(supportedImpls)
	activeImpl = supportedImpls[0]
}
