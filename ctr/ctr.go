// Package ctr implements counter mode over a block cipher, with a
// selectable counter layout.
//
// The Flavor selects which part of the IV block is the counter and how it
// is incremented.  CTR128BE treats the whole block as one big endian
// counter (the NIST SP 800-38A behavior); the narrower flavors keep the
// rest of the IV fixed and wrap their counter field silently, matching
// the layouts used by constructions like GCM (32 bit big endian) and
// GCM-SIV (32 bit little endian).
package ctr

import (
	"crypto/cipher"
	"errors"
	"math"
)

// Flavor selects the counter field layout within the IV block.
type Flavor int

const (
	// CTR128BE uses the entire IV block as a big endian counter.
	CTR128BE Flavor = iota

	// CTR32BE uses a 32 bit big endian counter in the last 4 IV bytes.
	CTR32BE

	// CTR32LE uses a 32 bit little endian counter in the first 4 IV bytes.
	CTR32LE

	// CTR64BE uses a 64 bit big endian counter in the last 8 IV bytes.
	CTR64BE
)

var (
	// ErrInvalidIV is the error returned when the IV length does not
	// match the cipher's block size.
	ErrInvalidIV = errors.New("ctr: iv length must equal the cipher block size")

	// ErrInvalidFlavor is the error returned when the flavor is unknown
	// or the block size is too small for its counter field.
	ErrInvalidFlavor = errors.New("ctr: flavor is invalid for the cipher block size")

	// ErrInvalidSeek is the error returned when the seek position lies
	// beyond the counter field's range.
	ErrInvalidSeek = errors.New("ctr: seek position exceeds counter range")

	_ cipher.Stream = (*Cipher)(nil)
)

// Cipher is a counter mode stream over a block cipher.
type Cipher struct {
	block  cipher.Block
	flavor Flavor

	iv  []byte // initial counter block, kept for Seek
	ctr []byte // current counter block
	buf []byte // one block of keystream
	off int
}

// New returns a CTR128BE stream over the given block cipher.  The IV is
// the initial counter block and must be exactly one block long.
func New(block cipher.Block, iv []byte) (*Cipher, error) {
	return NewWithFlavor(block, iv, CTR128BE)
}

// NewWithFlavor returns a CTR stream using the given counter flavor.
func NewWithFlavor(block cipher.Block, iv []byte, flavor Flavor) (*Cipher, error) {
	bs := block.BlockSize()
	if len(iv) != bs {
		return nil, ErrInvalidIV
	}
	switch flavor {
	case CTR128BE:
	case CTR32BE, CTR32LE:
		if bs < 4 {
			return nil, ErrInvalidFlavor
		}
	case CTR64BE:
		if bs < 8 {
			return nil, ErrInvalidFlavor
		}
	default:
		return nil, ErrInvalidFlavor
	}

	c := &Cipher{
		block:  block,
		flavor: flavor,
		iv:     append([]byte(nil), iv...),
		ctr:    append([]byte(nil), iv...),
		buf:    make([]byte, bs),
		off:    bs,
	}
	return c, nil
}

// increment advances the counter block by one in the flavor's field.
func (c *Cipher) increment() {
	switch c.flavor {
	case CTR128BE:
		for i := len(c.ctr) - 1; i >= 0; i-- {
			c.ctr[i]++
			if c.ctr[i] != 0 {
				break
			}
		}
	case CTR32BE:
		incBE(c.ctr[len(c.ctr)-4:])
	case CTR64BE:
		incBE(c.ctr[len(c.ctr)-8:])
	case CTR32LE:
		incLE(c.ctr[:4])
	}
}

// incBE increments a big endian counter field, wrapping within the field.
func incBE(b []byte) {
	for i := len(b) - 1; i >= 0; i-- {
		b[i]++
		if b[i] != 0 {
			break
		}
	}
}

// incLE increments a little endian counter field, wrapping within the field.
func incLE(b []byte) {
	for i := range b {
		b[i]++
		if b[i] != 0 {
			break
		}
	}
}

// addBE adds n to a big endian counter field, wrapping within the field.
func addBE(b []byte, n uint64) {
	var carry uint64
	for i := len(b) - 1; i >= 0; i-- {
		sum := uint64(b[i]) + n&0xff + carry
		b[i] = byte(sum)
		carry = sum >> 8
		n >>= 8
	}
}

// Seek sets the keystream position to the provided byte offset from the
// initial counter block.
func (c *Cipher) Seek(offset uint64) error {
	bs := c.block.BlockSize()
	blockIdx := offset / uint64(bs)
	rem := int(offset % uint64(bs))

	copy(c.ctr, c.iv)
	switch c.flavor {
	case CTR128BE:
		addBE(c.ctr, blockIdx)
	case CTR32BE:
		if blockIdx > math.MaxUint32 {
			return ErrInvalidSeek
		}
		addBE(c.ctr[bs-4:], blockIdx)
	case CTR64BE:
		addBE(c.ctr[bs-8:], blockIdx)
	case CTR32LE:
		if blockIdx > math.MaxUint32 {
			return ErrInvalidSeek
		}
		for i := 0; i < 4; i++ {
			sum := uint64(c.ctr[i]) + blockIdx&0xff
			c.ctr[i] = byte(sum)
			blockIdx = blockIdx>>8 + sum>>8
		}
	}
	c.off = bs

	if rem != 0 {
		c.refill()
		c.off = rem
	}
	return nil
}

// refill produces the next keystream block into the internal buffer.
func (c *Cipher) refill() {
	c.block.Encrypt(c.buf, c.ctr)
	c.increment()
	c.off = 0
}

// XORKeyStream sets dst to the result of XORing src with the key stream.
// Dst and src may be the same slice but otherwise should not overlap.
func (c *Cipher) XORKeyStream(dst, src []byte) {
	if len(dst) < len(src) {
		src = src[:len(dst)]
	}

	bs := c.block.BlockSize()
	for remaining := len(src); remaining > 0; {
		if c.off == bs {
			c.refill()
		}

		toXor := bs - c.off
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
	bs := c.block.BlockSize()
	for remaining := len(dst); remaining > 0; {
		if c.off == bs {
			c.refill()
		}

		toCopy := bs - c.off
		if remaining < toCopy {
			toCopy = remaining
		}
		copy(dst[:toCopy], c.buf[c.off:c.off+toCopy])
		c.off += toCopy
		dst = dst[toCopy:]
		remaining -= toCopy
	}
}
