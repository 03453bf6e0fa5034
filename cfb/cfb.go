// Package cfb implements full block cipher feedback mode over a block
// cipher.
//
// CFB is self synchronizing: the feedback register is the previous
// ciphertext block, so encryption and decryption are distinct streams and
// both are provided.  Each processes one block-cipher call per block of
// data, with the ciphertext window tracked by index rather than read
// ahead of the output.
package cfb

import (
	"crypto/cipher"
	"errors"
)

// ErrInvalidIV is the error returned when the IV length does not match
// the cipher's block size.
var ErrInvalidIV = errors.New("cfb: iv length must equal the cipher block size")

var (
	_ cipher.Stream = (*Encrypter)(nil)
	_ cipher.Stream = (*Decrypter)(nil)
)

// Encrypter is the CFB encryption stream.
type Encrypter struct {
	block cipher.Block
	out   []byte // encrypted feedback register, partially consumed
	next  []byte // feedback register for the following block
	off   int
}

// NewEncrypter returns a CFB encryption stream over the given block
// cipher.  The IV must be exactly one block long.
func NewEncrypter(block cipher.Block, iv []byte) (*Encrypter, error) {
	bs := block.BlockSize()
	if len(iv) != bs {
		return nil, ErrInvalidIV
	}

	e := &Encrypter{
		block: block,
		out:   make([]byte, bs),
		next:  append([]byte(nil), iv...),
		off:   bs,
	}
	return e, nil
}

// XORKeyStream encrypts src into dst.  Dst and src may be the same slice
// but otherwise should not overlap.
func (e *Encrypter) XORKeyStream(dst, src []byte) {
	if len(dst) < len(src) {
		src = src[:len(dst)]
	}

	bs := e.block.BlockSize()
	for len(src) > 0 {
		if e.off == bs {
			e.block.Encrypt(e.out, e.next)
			e.off = 0
		}

		n := bs - e.off
		if len(src) < n {
			n = len(src)
		}
		out := e.out[e.off:]
		for i := 0; i < n; i++ {
			dst[i] = src[i] ^ out[i]
		}
		// The ciphertext just produced becomes the next register.
		copy(e.next[e.off:], dst[:n])
		e.off += n
		dst = dst[n:]
		src = src[n:]
	}
}

// Decrypter is the CFB decryption stream.
type Decrypter struct {
	block cipher.Block
	out   []byte
	next  []byte
	off   int
}

// NewDecrypter returns a CFB decryption stream over the given block
// cipher.  The IV must be exactly one block long.
func NewDecrypter(block cipher.Block, iv []byte) (*Decrypter, error) {
	bs := block.BlockSize()
	if len(iv) != bs {
		return nil, ErrInvalidIV
	}

	d := &Decrypter{
		block: block,
		out:   make([]byte, bs),
		next:  append([]byte(nil), iv...),
		off:   bs,
	}
	return d, nil
}

// XORKeyStream decrypts src into dst.  Dst and src may be the same slice
// but otherwise should not overlap.
func (d *Decrypter) XORKeyStream(dst, src []byte) {
	if len(dst) < len(src) {
		src = src[:len(dst)]
	}

	bs := d.block.BlockSize()
	for len(src) > 0 {
		if d.off == bs {
			d.block.Encrypt(d.out, d.next)
			d.off = 0
		}

		n := bs - d.off
		if len(src) < n {
			n = len(src)
		}
		// The incoming ciphertext is the next register; it must be
		// captured before the XOR in case dst and src alias.
		copy(d.next[d.off:], src[:n])
		out := d.out[d.off:]
		for i := 0; i < n; i++ {
			dst[i] = src[i] ^ out[i]
		}
		d.off += n
		dst = dst[n:]
		src = src[n:]
	}
}
