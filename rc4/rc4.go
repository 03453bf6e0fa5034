// Package rc4 implements the RC4 stream cipher.
//
// RC4 is cryptographically broken and is provided for interoperability
// with legacy formats only.
package rc4

import (
	"crypto/cipher"
	"errors"
)

const (
	// MinKeySize is the smallest accepted key size in bytes.
	MinKeySize = 1

	// MaxKeySize is the largest accepted key size in bytes.
	MaxKeySize = 256
)

// ErrInvalidKey is the error returned when the key length is invalid.
var ErrInvalidKey = errors.New("rc4: key length must be between 1 and 256 bytes")

var _ cipher.Stream = (*Cipher)(nil)

// Cipher is an instance of RC4 using a particular key.
type Cipher struct {
	s    [256]byte
	i, j uint8
}

// New returns a new RC4 instance.  Unlike the counter based ciphers in
// this module RC4 has no nonce; reusing a key reuses its keystream.
func New(key []byte) (*Cipher, error) {
	k := len(key)
	if k < MinKeySize || k > MaxKeySize {
		return nil, ErrInvalidKey
	}

	var c Cipher
	for i := range c.s {
		c.s[i] = byte(i)
	}
	var j uint8
	for i := 0; i < 256; i++ {
		j += c.s[i] + key[i%k]
		c.s[i], c.s[j] = c.s[j], c.s[i]
	}
	return &c, nil
}

// Reset zeros the key data so that it will no longer appear in the
// process's memory.
func (c *Cipher) Reset() {
	for i := range c.s {
		c.s[i] = 0
	}
	c.i, c.j = 0, 0
}

// XORKeyStream sets dst to the result of XORing src with the key stream.
// Dst and src may be the same slice but otherwise should not overlap.
func (c *Cipher) XORKeyStream(dst, src []byte) {
	if len(src) == 0 {
		return
	}
	if len(dst) < len(src) {
		src = src[:len(dst)]
	}

	i, j := c.i, c.j
	_ = dst[len(src)-1] // Force bounds check elimination.
	dst = dst[:len(src)]
	for k, v := range src {
		i++
		x := c.s[i]
		j += x
		y := c.s[j]
		c.s[i], c.s[j] = y, x
		dst[k] = v ^ c.s[x+y]
	}
	c.i, c.j = i, j
}

// KeyStream sets dst to the raw keystream.
func (c *Cipher) KeyStream(dst []byte) {
	i, j := c.i, c.j
	for k := range dst {
		i++
		x := c.s[i]
		j += x
		y := c.s[j]
		c.s[i], c.s[j] = y, x
		dst[k] = c.s[x+y]
	}
	c.i, c.j = i, j
}
