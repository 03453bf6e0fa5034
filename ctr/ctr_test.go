package ctr

import (
	"crypto/aes"
	"crypto/cipher"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	require.NoError(t, err)
	return b
}

var nistKey = "2b7e151628aed2a6abf7158809cf4f3c"

var nistCounter = "f0f1f2f3f4f5f6f7f8f9fafbfcfdfeff"

var nistPlaintext = "6bc1bee22e409f96e93d7e117393172a" +
	"ae2d8a571e03ac9c9eb76fac45af8e51" +
	"30c81c46a35ce411e5fbc1191a0a52ef" +
	"f69f2445df4f9b17ad2b417be66c3710"

// NIST SP 800-38A F.5.1 (CTR-AES128 encrypt).
var nistCiphertext = "874d6191b620e3261bef6864990db6ce" +
	"9806f66b7970fdff8617187bb9fffdff" +
	"5ae4df3edbd5d35e5b4f09020db03eab" +
	"1e031dda2fbe03d1792170a0f3009cee"

func TestNISTVector(t *testing.T) {
	require := require.New(t)

	block, err := aes.NewCipher(mustHex(t, nistKey))
	require.NoError(err)

	c, err := New(block, mustHex(t, nistCounter))
	require.NoError(err)

	pt := mustHex(t, nistPlaintext)
	ct := make([]byte, len(pt))
	c.XORKeyStream(ct, pt)
	require.Equal(mustHex(t, nistCiphertext), ct)

	// Decryption is the same transform.
	c, err = New(block, mustHex(t, nistCounter))
	require.NoError(err)
	got := make([]byte, len(ct))
	c.XORKeyStream(got, ct)
	require.Equal(pt, got)
}

// CTR128BE is the standard library's CTR mode.
func TestMatchesStdlib(t *testing.T) {
	require := require.New(t)

	block, err := aes.NewCipher(mustHex(t, nistKey))
	require.NoError(err)
	iv := mustHex(t, nistCounter)

	src := make([]byte, 1021)
	for i := range src {
		src[i] = byte(i * 17)
	}

	c, err := New(block, iv)
	require.NoError(err)
	got := make([]byte, len(src))
	c.XORKeyStream(got, src)

	want := make([]byte, len(src))
	cipher.NewCTR(block, iv).XORKeyStream(want, src)

	require.Equal(want, got)
}

func TestSeek(t *testing.T) {
	require := require.New(t)

	block, err := aes.NewCipher(mustHex(t, nistKey))
	require.NoError(err)
	iv := mustHex(t, nistCounter)

	c, err := New(block, iv)
	require.NoError(err)
	expected := make([]byte, 512)
	c.KeyStream(expected)

	for _, off := range []int{0, 1, 15, 16, 17, 100, 256, 511} {
		require.NoError(c.Seek(uint64(off)))
		ks := make([]byte, len(expected)-off)
		c.KeyStream(ks)
		require.Equalf(expected[off:], ks, "seek offset %d", off)
	}
}

// The narrow flavors keep the rest of the IV fixed and wrap their
// counter field silently.
func TestFlavorWrap(t *testing.T) {
	require := require.New(t)

	block, err := aes.NewCipher(mustHex(t, nistKey))
	require.NoError(err)

	encrypt := func(ctrBlock []byte) []byte {
		out := make([]byte, block.BlockSize())
		block.Encrypt(out, ctrBlock)
		return out
	}

	cases := []struct {
		name   string
		flavor Flavor
		iv     string
		blocks []string // expected counter block per keystream block
	}{
		{
			name:   "ctr32be wraps low word",
			flavor: CTR32BE,
			iv:     "00112233445566778899aabbffffffff",
			blocks: []string{
				"00112233445566778899aabbffffffff",
				"00112233445566778899aabb00000000",
				"00112233445566778899aabb00000001",
			},
		},
		{
			name:   "ctr32le wraps first word",
			flavor: CTR32LE,
			iv:     "ffffffff445566778899aabbccddeeff",
			blocks: []string{
				"ffffffff445566778899aabbccddeeff",
				"00000000445566778899aabbccddeeff",
				"01000000445566778899aabbccddeeff",
			},
		},
		{
			name:   "ctr64be wraps low qword",
			flavor: CTR64BE,
			iv:     "0011223344556677ffffffffffffffff",
			blocks: []string{
				"0011223344556677ffffffffffffffff",
				"00112233445566770000000000000000",
				"00112233445566770000000000000001",
			},
		},
	}

	for _, tc := range cases {
		c, err := NewWithFlavor(block, mustHex(t, tc.iv), tc.flavor)
		require.NoErrorf(err, "%s", tc.name)

		for i, cb := range tc.blocks {
			ks := make([]byte, block.BlockSize())
			c.KeyStream(ks)
			require.Equalf(encrypt(mustHex(t, cb)), ks, "%s block %d", tc.name, i)
		}
	}
}

func TestFlavorSeek(t *testing.T) {
	require := require.New(t)

	block, err := aes.NewCipher(mustHex(t, nistKey))
	require.NoError(err)
	iv := mustHex(t, "00112233445566778899aabb00000000")

	c, err := NewWithFlavor(block, iv, CTR32BE)
	require.NoError(err)
	expected := make([]byte, 256)
	c.KeyStream(expected)

	for _, off := range []int{0, 1, 16, 33, 255} {
		require.NoError(c.Seek(uint64(off)))
		ks := make([]byte, len(expected)-off)
		c.KeyStream(ks)
		require.Equalf(expected[off:], ks, "seek offset %d", off)
	}

	// Past the 32 bit block range.
	require.Equal(ErrInvalidSeek, c.Seek((uint64(1)<<33)*16))
}

func TestErrors(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	block, err := aes.NewCipher(mustHex(t, nistKey))
	require.NoError(err)

	_, err = New(block, make([]byte, 8))
	assert.Equal(ErrInvalidIV, err)

	_, err = NewWithFlavor(block, make([]byte, 16), Flavor(99))
	assert.Equal(ErrInvalidFlavor, err)
}
