// Package cfb8 implements byte granular (8 bit) cipher feedback mode
// over a block cipher.
//
// CFB8 shifts a single ciphertext byte into the feedback register per
// step, at the cost of one block-cipher call per byte.
package cfb8

import (
	"crypto/cipher"
	"errors"
)

// ErrInvalidIV is the error returned when the IV length does not match
// the cipher's block size.
var ErrInvalidIV = errors.New("cfb8: iv length must equal the cipher block size")

var (
	_ cipher.Stream = (*Encrypter)(nil)
	_ cipher.Stream = (*Decrypter)(nil)
)

// Encrypter is the CFB8 encryption stream.
type Encrypter struct {
	block cipher.Block
	reg   []byte
	out   []byte
}

// NewEncrypter returns a CFB8 encryption stream over the given block
// cipher.  The IV must be exactly one block long.
func NewEncrypter(block cipher.Block, iv []byte) (*Encrypter, error) {
	bs := block.BlockSize()
	if len(iv) != bs {
		return nil, ErrInvalidIV
	}

	e := &Encrypter{
		block: block,
		reg:   append([]byte(nil), iv...),
		out:   make([]byte, bs),
	}
	return e, nil
}

// XORKeyStream encrypts src into dst.  Dst and src may be the same slice
// but otherwise should not overlap.
func (e *Encrypter) XORKeyStream(dst, src []byte) {
	if len(dst) < len(src) {
		src = src[:len(dst)]
	}

	for i, v := range src {
		e.block.Encrypt(e.out, e.reg)
		c := v ^ e.out[0]
		dst[i] = c
		copy(e.reg, e.reg[1:])
		e.reg[len(e.reg)-1] = c
	}
}

// Decrypter is the CFB8 decryption stream.
type Decrypter struct {
	block cipher.Block
	reg   []byte
	out   []byte
}

// NewDecrypter returns a CFB8 decryption stream over the given block
// cipher.  The IV must be exactly one block long.
func NewDecrypter(block cipher.Block, iv []byte) (*Decrypter, error) {
	bs := block.BlockSize()
	if len(iv) != bs {
		return nil, ErrInvalidIV
	}

	d := &Decrypter{
		block: block,
		reg:   append([]byte(nil), iv...),
		out:   make([]byte, bs),
	}
	return d, nil
}

// XORKeyStream decrypts src into dst.  Dst and src may be the same slice
// but otherwise should not overlap.
func (d *Decrypter) XORKeyStream(dst, src []byte) {
	if len(dst) < len(src) {
		src = src[:len(dst)]
	}

	for i, c := range src {
		d.block.Encrypt(d.out, d.reg)
		copy(d.reg, d.reg[1:])
		d.reg[len(d.reg)-1] = c
		dst[i] = c ^ d.out[0]
	}
}
