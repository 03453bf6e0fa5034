// Package ofb implements output feedback mode over a block cipher.
//
// OFB is a synchronous stream: the feedback register is the previous
// keystream block, independent of the data, so the same stream both
// encrypts and decrypts.
package ofb

import (
	"crypto/cipher"
	"errors"
)

// ErrInvalidIV is the error returned when the IV length does not match
// the cipher's block size.
var ErrInvalidIV = errors.New("ofb: iv length must equal the cipher block size")

var _ cipher.Stream = (*Cipher)(nil)

// Cipher is an OFB mode stream over a block cipher.
type Cipher struct {
	block cipher.Block

	// reg doubles as the keystream buffer: after each step the register
	// content is exactly the keystream block just produced.
	reg []byte
	off int
}

// New returns an OFB stream over the given block cipher.  The IV must be
// exactly one block long.
func New(block cipher.Block, iv []byte) (*Cipher, error) {
	bs := block.BlockSize()
	if len(iv) != bs {
		return nil, ErrInvalidIV
	}

	c := &Cipher{
		block: block,
		reg:   append([]byte(nil), iv...),
		off:   bs,
	}
	return c, nil
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
			c.block.Encrypt(c.reg, c.reg)
			c.off = 0
		}

		toXor := bs - c.off
		if remaining < toXor {
			toXor = remaining
		}
		buf := c.reg[c.off:]
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
			c.block.Encrypt(c.reg, c.reg)
			c.off = 0
		}

		toCopy := bs - c.off
		if remaining < toCopy {
			toCopy = remaining
		}
		copy(dst[:toCopy], c.reg[c.off:c.off+toCopy])
		c.off += toCopy
		dst = dst[toCopy:]
		remaining -= toCopy
	}
}
