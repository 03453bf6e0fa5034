// Package rabbit implements the Rabbit stream cipher, as specified in
// RFC 4503.
package rabbit

import (
	"crypto/cipher"
	"encoding/binary"
	"errors"
	"math/bits"
)

const (
	// KeySize is the Rabbit key size in bytes.
	KeySize = 16

	// IVSize is the Rabbit IV size in bytes.
	IVSize = 8

	// BlockSize is the size of a Rabbit keystream block in bytes.
	BlockSize = 16
)

var (
	// ErrInvalidKey is the error returned when the key length is invalid.
	ErrInvalidKey = errors.New("rabbit: key length must be KeySize bytes")

	// ErrInvalidIV is the error returned when the IV length is invalid.
	ErrInvalidIV = errors.New("rabbit: iv length must be IVSize bytes")

	_ cipher.Stream = (*Cipher)(nil)
)

// counterA holds the per-word counter increments from RFC 4503 section 2.5.
var counterA = [8]uint32{
	0x4d34d34d, 0xd34d34d3, 0x34d34d34, 0x4d34d34d,
	0xd34d34d3, 0x34d34d34, 0x4d34d34d, 0xd34d34d3,
}

// Cipher is an instance of Rabbit using a particular key and optional IV.
type Cipher struct {
	x     [8]uint32
	c     [8]uint32
	carry uint32

	// Master state snapshot taken after key setup, so the IV setup can
	// be re-run for a new IV without re-deriving the key schedule.
	mx     [8]uint32
	mc     [8]uint32
	mcarry uint32

	buf [BlockSize]byte
	off int
}

// New returns a new Rabbit instance in the "without IV" configuration of
// RFC 4503 appendix A.1.
func New(key []byte) (*Cipher, error) {
	if len(key) != KeySize {
		return nil, ErrInvalidKey
	}

	var c Cipher
	c.setupKey(key)
	return &c, nil
}

// NewWithIV returns a new Rabbit instance with both key and IV setup
// applied.
func NewWithIV(key, iv []byte) (*Cipher, error) {
	c, err := New(key)
	if err != nil {
		return nil, err
	}
	if err = c.SetupIV(iv); err != nil {
		return nil, err
	}
	return c, nil
}

// setupKey implements RFC 4503 section 2.3.
func (c *Cipher) setupKey(key []byte) {
	var k [8]uint32 // 16 bit subkeys, zero extended
	for j := 0; j < 8; j++ {
		k[j] = uint32(binary.LittleEndian.Uint16(key[j*2:]))
	}

	for j := 0; j < 8; j++ {
		if j%2 == 0 {
			c.x[j] = k[(j+1)%8]<<16 | k[j]
			c.c[j] = k[(j+4)%8]<<16 | k[(j+5)%8]
		} else {
			c.x[j] = k[(j+5)%8]<<16 | k[(j+4)%8]
			c.c[j] = k[j]<<16 | k[(j+1)%8]
		}
	}
	c.carry = 0

	for i := 0; i < 4; i++ {
		c.nextState()
	}
	for j := 0; j < 8; j++ {
		c.c[j] ^= c.x[(j+4)%8]
	}

	c.mx = c.x
	c.mc = c.c
	c.mcarry = c.carry
	c.off = BlockSize
}

// SetupIV applies the IV setup scheme of RFC 4503 section 2.4 on top of
// the master (post key setup) state.  It may be called again to rekey the
// instance for a different IV.
func (c *Cipher) SetupIV(iv []byte) error {
	if len(iv) != IVSize {
		return ErrInvalidIV
	}

	i0 := binary.LittleEndian.Uint32(iv[0:4])
	i2 := binary.LittleEndian.Uint32(iv[4:8])
	i1 := i0>>16 | i2&0xffff0000
	i3 := i2<<16 | i0&0x0000ffff

	c.x = c.mx
	c.carry = c.mcarry
	c.c[0] = c.mc[0] ^ i0
	c.c[1] = c.mc[1] ^ i1
	c.c[2] = c.mc[2] ^ i2
	c.c[3] = c.mc[3] ^ i3
	c.c[4] = c.mc[4] ^ i0
	c.c[5] = c.mc[5] ^ i1
	c.c[6] = c.mc[6] ^ i2
	c.c[7] = c.mc[7] ^ i3

	for i := 0; i < 4; i++ {
		c.nextState()
	}
	c.off = BlockSize
	return nil
}

// Reset zeros the key data so that it will no longer appear in the
// process's memory.
func (c *Cipher) Reset() {
	for j := 0; j < 8; j++ {
		c.x[j], c.c[j], c.mx[j], c.mc[j] = 0, 0, 0, 0
	}
	c.carry, c.mcarry = 0, 0
	for i := range c.buf {
		c.buf[i] = 0
	}
	c.off = BlockSize
}

// g is the g-function of RFC 4503 section 2.6: square a 32 bit sum and
// fold the 64 bit product back to 32 bits.
func g(u uint32) uint32 {
	uv := uint64(u) * uint64(u)
	return uint32(uv) ^ uint32(uv>>32)
}

// nextState implements the counter update (2.5) and next-state (2.6)
// functions.
func (c *Cipher) nextState() {
	for j := 0; j < 8; j++ {
		t := uint64(c.c[j]) + uint64(counterA[j]) + uint64(c.carry)
		c.carry = uint32(t>>32) & 1
		c.c[j] = uint32(t)
	}

	var gv [8]uint32
	for j := 0; j < 8; j++ {
		gv[j] = g(c.x[j] + c.c[j])
	}

	c.x[0] = gv[0] + bits.RotateLeft32(gv[7], 16) + bits.RotateLeft32(gv[6], 16)
	c.x[1] = gv[1] + bits.RotateLeft32(gv[0], 8) + gv[7]
	c.x[2] = gv[2] + bits.RotateLeft32(gv[1], 16) + bits.RotateLeft32(gv[0], 16)
	c.x[3] = gv[3] + bits.RotateLeft32(gv[2], 8) + gv[1]
	c.x[4] = gv[4] + bits.RotateLeft32(gv[3], 16) + bits.RotateLeft32(gv[2], 16)
	c.x[5] = gv[5] + bits.RotateLeft32(gv[4], 8) + gv[3]
	c.x[6] = gv[6] + bits.RotateLeft32(gv[5], 16) + bits.RotateLeft32(gv[4], 16)
	c.x[7] = gv[7] + bits.RotateLeft32(gv[6], 8) + gv[5]
}

// extract implements the extraction scheme of RFC 4503 section 2.7,
// producing one 16 byte keystream block into the internal buffer.
func (c *Cipher) extract() {
	s0 := c.x[0] ^ (c.x[5]>>16 | c.x[3]<<16)
	s1 := c.x[2] ^ (c.x[7]>>16 | c.x[5]<<16)
	s2 := c.x[4] ^ (c.x[1]>>16 | c.x[7]<<16)
	s3 := c.x[6] ^ (c.x[3]>>16 | c.x[1]<<16)
	binary.LittleEndian.PutUint32(c.buf[0:4], s0)
	binary.LittleEndian.PutUint32(c.buf[4:8], s1)
	binary.LittleEndian.PutUint32(c.buf[8:12], s2)
	binary.LittleEndian.PutUint32(c.buf[12:16], s3)
}

// XORKeyStream sets dst to the result of XORing src with the key stream.
// Dst and src may be the same slice but otherwise should not overlap.
func (c *Cipher) XORKeyStream(dst, src []byte) {
	if len(dst) < len(src) {
		src = src[:len(dst)]
	}

	for remaining := len(src); remaining > 0; {
		if c.off == BlockSize {
			c.nextState()
			c.extract()
			c.off = 0
		}

		toXor := BlockSize - c.off
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
		if c.off == BlockSize {
			c.nextState()
			c.extract()
			c.off = 0
		}

		toCopy := BlockSize - c.off
		if remaining < toCopy {
			toCopy = remaining
		}
		copy(dst[:toCopy], c.buf[c.off:c.off+toCopy])
		c.off += toCopy
		dst = dst[toCopy:]
		remaining -= toCopy
	}
}
