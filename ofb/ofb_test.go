package ofb

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

var nistIV = "000102030405060708090a0b0c0d0e0f"

var nistPlaintext = "6bc1bee22e409f96e93d7e117393172a" +
	"ae2d8a571e03ac9c9eb76fac45af8e51" +
	"30c81c46a35ce411e5fbc1191a0a52ef" +
	"f69f2445df4f9b17ad2b417be66c3710"

// NIST SP 800-38A F.4.1 (OFB-AES128 encrypt).
var nistCiphertext = "3b3fd92eb72dad20333449f8e83cfb4a" +
	"7789508d16918f03f53c52dac54ed825" +
	"9740051e9c5fecf64344f7a82260edcc" +
	"304c6528f659c77866a510d9c1d6ae5e"

func TestNISTVector(t *testing.T) {
	require := require.New(t)

	block, err := aes.NewCipher(mustHex(t, nistKey))
	require.NoError(err)

	c, err := New(block, mustHex(t, nistIV))
	require.NoError(err)

	pt := mustHex(t, nistPlaintext)
	ct := make([]byte, len(pt))
	c.XORKeyStream(ct, pt)
	require.Equal(mustHex(t, nistCiphertext), ct)

	c, err = New(block, mustHex(t, nistIV))
	require.NoError(err)
	got := make([]byte, len(ct))
	c.XORKeyStream(got, ct)
	require.Equal(pt, got)
}

func TestMatchesStdlib(t *testing.T) {
	require := require.New(t)

	block, err := aes.NewCipher(mustHex(t, nistKey))
	require.NoError(err)
	iv := mustHex(t, nistIV)

	src := make([]byte, 1021)
	for i := range src {
		src[i] = byte(i * 19)
	}

	c, err := New(block, iv)
	require.NoError(err)
	got := make([]byte, len(src))
	c.XORKeyStream(got, src)

	want := make([]byte, len(src))
	cipher.NewOFB(block, iv).XORKeyStream(want, src)

	require.Equal(want, got)
}

func TestChunking(t *testing.T) {
	require := require.New(t)

	block, err := aes.NewCipher(mustHex(t, nistKey))
	require.NoError(err)
	iv := mustHex(t, nistIV)

	whole, err := New(block, iv)
	require.NoError(err)
	expected := make([]byte, 256)
	whole.KeyStream(expected)

	for _, chunk := range []int{1, 3, 15, 16, 17, 100} {
		c, err := New(block, iv)
		require.NoError(err)

		ks := make([]byte, len(expected))
		for off := 0; off < len(ks); off += chunk {
			end := off + chunk
			if end > len(ks) {
				end = len(ks)
			}
			c.KeyStream(ks[off:end])
		}
		require.Equalf(expected, ks, "chunk size %d", chunk)
	}
}

func TestErrors(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	block, err := aes.NewCipher(mustHex(t, nistKey))
	require.NoError(err)

	_, err = New(block, make([]byte, 12))
	assert.Equal(ErrInvalidIV, err)
}
