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

// Package salsa20 implements the Salsa20 stream cipher, the XSalsa20
// extended nonce variant, and the reduced round Salsa20/8 and Salsa20/12
// parameterizations.
package salsa20

import (
	"crypto/cipher"
	"encoding/binary"
	"errors"

	"github.com/RustCrypto/stream-ciphers-sub000/salsa20/internal/api"
	"github.com/RustCrypto/stream-ciphers-sub000/salsa20/internal/hardware"
	"github.com/RustCrypto/stream-ciphers-sub000/salsa20/internal/ref"
)

const (
	// KeySize is the Salsa20 key size in bytes.
	KeySize = 32

	// NonceSize is the Salsa20 nonce size in bytes.
	NonceSize = 8

	// XNonceSize is the XSalsa20 nonce size in bytes.
	XNonceSize = 24

	// HNonceSize is the HSalsa20 nonce size in bytes.
	HNonceSize = 16

	// BlockSize is the size of a Salsa block in bytes.
	BlockSize = api.BlockSize
)

var (
	// ErrInvalidKey is the error returned when the key length is invalid.
	ErrInvalidKey = errors.New("salsa20: key length must be KeySize bytes")

	// ErrInvalidNonce is the error returned when the nonce length is invalid.
	ErrInvalidNonce = errors.New("salsa20: nonce length must be NonceSize/XNonceSize bytes")

	// ErrInvalidRounds is the error returned when the round count is not
	// one of 8, 12 or 20.
	ErrInvalidRounds = errors.New("salsa20: round count must be 8, 12 or 20")

	// ErrCounterOverflow is the error returned when the keystream for the
	// current key/nonce pair is exhausted.
	ErrCounterOverflow = errors.New("salsa20: keystream counter would overflow")

	supportedImpls []api.Implementation
	activeImpl     api.Implementation

	_ cipher.Stream = (*Cipher)(nil)
)

// Cipher is an instance of Salsa20 (or a reduced round variant thereof)
// keyed with a particular key and nonce.
//
// The Salsa state places the four constant words on the diagonal (0, 5,
// 10, 15), the key in words 1..4 and 11..14, the nonce in words 6..7, and
// a 64 bit block counter in words 8..9.
type Cipher struct {
	state [api.StateSize]uint32
	buf   [api.BlockSize]byte

	impl   api.Implementation
	off    int
	rounds int
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

// Seek sets the keystream position to the provided byte offset.
func (c *Cipher) Seek(offset uint64) error {
	blockCounter := offset / api.BlockSize
	rem := int(offset % api.BlockSize)

	c.state[8] = uint32(blockCounter)
	c.state[9] = uint32(blockCounter >> 32)
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
	case NonceSize:
	case XNonceSize:
		subKey = c.buf[:KeySize]
		c.impl.HSalsa(key, nonce, subKey, c.rounds)
		key = subKey
		nonce = nonce[16:24]
	default:
		return ErrInvalidNonce
	}

	// Force bounds check elimination.
	_ = key[31]
	_ = nonce[7]

	c.state[0] = api.Sigma0
	c.state[1] = binary.LittleEndian.Uint32(key[0:4])
	c.state[2] = binary.LittleEndian.Uint32(key[4:8])
	c.state[3] = binary.LittleEndian.Uint32(key[8:12])
	c.state[4] = binary.LittleEndian.Uint32(key[12:16])
	c.state[5] = api.Sigma1
	c.state[6] = binary.LittleEndian.Uint32(nonce[0:4])
	c.state[7] = binary.LittleEndian.Uint32(nonce[4:8])
	c.state[8] = 0
	c.state[9] = 0
	c.state[10] = api.Sigma2
	c.state[11] = binary.LittleEndian.Uint32(key[16:20])
	c.state[12] = binary.LittleEndian.Uint32(key[20:24])
	c.state[13] = binary.LittleEndian.Uint32(key[24:28])
	c.state[14] = binary.LittleEndian.Uint32(key[28:32])
	c.state[15] = api.Sigma3
	c.off = api.BlockSize

	if subKey != nil {
		for i := range subKey {
			subKey[i] = 0
		}
	}

	return nil
}

// New returns a new Salsa20 instance.  An 8 byte nonce selects the
// standard construction, a 24 byte nonce XSalsa20.
func New(key, nonce []byte) (*Cipher, error) {
	return NewWithRounds(key, nonce, 20)
}

// NewWithRounds returns a new Salsa instance with a reduced round count.
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

// HSalsa20 is the HSalsa20 subkey derivation function used to build
// XSalsa20.
func HSalsa20(key, nonce []byte, dst *[32]byte) {
	activeImpl.HSalsa(key, nonce, dst[:], 20)
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

	ctr := uint64(c.state[9])<<32 | uint64(c.state[8])
	if ctr+blocksNeeded < ctr {
		return ErrCounterOverflow
	}
	return nil
}

func (c *Cipher) doBlocks(dst, src []byte, nrBlocks int) error {
	ctr := uint64(c.state[9])<<32 | uint64(c.state[8])
	if ctr+uint64(nrBlocks) < ctr {
		return ErrCounterOverflow
	}

	c.impl.Blocks(&c.state, dst, src, nrBlocks, c.rounds)
	return nil
}

func init() {
	supportedImpls = hardware.Register(supportedImpls)
	supportedImpls = ref.Register(supportedImpls)
	activeImpl = supportedImpls[0]
}
