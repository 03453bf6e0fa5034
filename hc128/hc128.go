// Package hc128 implements the HC-128 stream cipher.
package hc128

import (
	"crypto/cipher"
	"encoding/binary"
	"errors"
	"math/bits"
)

const (
	// KeySize is the HC-128 key size in bytes.
	KeySize = 16

	// IVSize is the HC-128 IV size in bytes.
	IVSize = 16

	tableSize = 512
	tableMask = tableSize - 1
	initSize  = 1280
)

var (
	// ErrInvalidKey is the error returned when the key length is invalid.
	ErrInvalidKey = errors.New("hc128: key length must be KeySize bytes")

	// ErrInvalidIV is the error returned when the IV length is invalid.
	ErrInvalidIV = errors.New("hc128: iv length must be IVSize bytes")

	_ cipher.Stream = (*Cipher)(nil)
)

// Cipher is an instance of HC-128 using a particular key and IV.
//
// HC-128 is the reduced memory profile of HC-256: two 512 word tables,
// with the feedback and output functions fixed so that each table entry
// update touches entries of the same table only.
type Cipher struct {
	p   [tableSize]uint32
	q   [tableSize]uint32
	idx uint32

	buf [4]byte
	off int
}

// New returns a new HC-128 instance.
func New(key, iv []byte) (*Cipher, error) {
	if len(key) != KeySize {
		return nil, ErrInvalidKey
	}
	if len(iv) != IVSize {
		return nil, ErrInvalidIV
	}

	var c Cipher
	c.init(key, iv)
	return &c, nil
}

func f1(x uint32) uint32 {
	return bits.RotateLeft32(x, -7) ^ bits.RotateLeft32(x, -18) ^ (x >> 3)
}

func f2(x uint32) uint32 {
	return bits.RotateLeft32(x, -17) ^ bits.RotateLeft32(x, -19) ^ (x >> 10)
}

func g1(x, y, z uint32) uint32 {
	return (bits.RotateLeft32(x, -10) ^ bits.RotateLeft32(z, -23)) + bits.RotateLeft32(y, -8)
}

func g2(x, y, z uint32) uint32 {
	return (bits.RotateLeft32(x, 10) ^ bits.RotateLeft32(z, 23)) + bits.RotateLeft32(y, 8)
}

func (c *Cipher) h1(x uint32) uint32 {
	return c.q[x&0xff] + c.q[256+(x>>16)&0xff]
}

func (c *Cipher) h2(x uint32) uint32 {
	return c.p[x&0xff] + c.p[256+(x>>16)&0xff]
}

func (c *Cipher) init(key, iv []byte) {
	var w [initSize]uint32
	for i := 0; i < 4; i++ {
		w[i] = binary.LittleEndian.Uint32(key[i*4:])
		w[i+4] = w[i]
		w[i+8] = binary.LittleEndian.Uint32(iv[i*4:])
		w[i+12] = w[i+8]
	}
	for i := 16; i < initSize; i++ {
		w[i] = f2(w[i-2]) + w[i-7] + f1(w[i-15]) + w[i-16] + uint32(i)
	}

	copy(c.p[:], w[256:256+tableSize])
	copy(c.q[:], w[768:768+tableSize])
	for i := range w {
		w[i] = 0
	}

	// Run the cipher for 1024 steps, replacing the table entries with
	// the output words.
	c.idx = 0
	for i := 0; i < tableSize; i++ {
		c.p[i] = c.genWord()
	}
	for i := 0; i < tableSize; i++ {
		c.q[i] = c.genWord()
	}
	c.off = 4
}

// genWord runs one step of the keystream generation, updating one table
// entry and returning the emitted word.
func (c *Cipher) genWord() uint32 {
	i := c.idx
	j := i & tableMask
	c.idx = (i + 1) & (2*tableSize - 1)

	if i < tableSize {
		c.p[j] += g1(c.p[(j-3)&tableMask], c.p[(j-10)&tableMask], c.p[(j-511)&tableMask])
		return c.h1(c.p[(j-12)&tableMask]) ^ c.p[j]
	}
	c.q[j] += g2(c.q[(j-3)&tableMask], c.q[(j-10)&tableMask], c.q[(j-511)&tableMask])
	return c.h2(c.q[(j-12)&tableMask]) ^ c.q[j]
}

// Reset zeros the key data so that it will no longer appear in the
// process's memory.
func (c *Cipher) Reset() {
	for i := range c.p {
		c.p[i], c.q[i] = 0, 0
	}
	c.idx = 0
	for i := range c.buf {
		c.buf[i] = 0
	}
	c.off = 4
}

// XORKeyStream sets dst to the result of XORing src with the key stream.
// Dst and src may be the same slice but otherwise should not overlap.
func (c *Cipher) XORKeyStream(dst, src []byte) {
	if len(dst) < len(src) {
		src = src[:len(dst)]
	}

	for remaining := len(src); remaining > 0; {
		if c.off == 4 {
			binary.LittleEndian.PutUint32(c.buf[:], c.genWord())
			c.off = 0
		}

		toXor := 4 - c.off
		if remaining < toXor {
			toXor = remaining
		}
		buf := c.buf[c.off:]
		for i := 0; i < toXor; i++ {
			dst[i] = src[i] ^ buf[i]
		}
		c.off += toXor
		dst = dst[toXor:]
		src = src[toXor:]
		remaining -= toXor
	}
}

// KeyStream sets dst to the raw keystream.
func (c *Cipher) KeyStream(dst []byte) {
	for remaining := len(dst); remaining > 0; {
		if c.off == 4 {
			binary.LittleEndian.PutUint32(c.buf[:], c.genWord())
			c.off = 0
		}

		toCopy := 4 - c.off
		if remaining < toCopy {
			toCopy = remaining
		}
		copy(dst[:toCopy], c.buf[c.off:c.off+toCopy])
		c.off += toCopy
		dst = dst[toCopy:]
		remaining -= toCopy
	}
}
