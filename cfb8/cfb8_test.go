package cfb8

import (
	"crypto/aes"
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

var nistPlaintext = "6bc1bee22e409f96e93d7e117393172aae2d"

// NIST SP 800-38A F.3.7 (CFB8-AES128 encrypt).
var nistCiphertext = "3b79424c9c0dd436bace9e0ed4586a4f32b9"

func TestNISTVector(t *testing.T) {
	require := require.New(t)

	block, err := aes.NewCipher(mustHex(t, nistKey))
	require.NoError(err)

	enc, err := NewEncrypter(block, mustHex(t, nistIV))
	require.NoError(err)

	pt := mustHex(t, nistPlaintext)
	ct := make([]byte, len(pt))
	enc.XORKeyStream(ct, pt)
	require.Equal(mustHex(t, nistCiphertext), ct)

	dec, err := NewDecrypter(block, mustHex(t, nistIV))
	require.NoError(err)
	got := make([]byte, len(ct))
	dec.XORKeyStream(got, ct)
	require.Equal(pt, got)
}

func TestChunking(t *testing.T) {
	require := require.New(t)

	block, err := aes.NewCipher(mustHex(t, nistKey))
	require.NoError(err)
	iv := mustHex(t, nistIV)

	src := make([]byte, 64)
	for i := range src {
		src[i] = byte(i * 7)
	}

	whole, err := NewEncrypter(block, iv)
	require.NoError(err)
	expected := make([]byte, len(src))
	whole.XORKeyStream(expected, src)

	for _, chunk := range []int{1, 2, 5, 16, 33} {
		enc, err := NewEncrypter(block, iv)
		require.NoError(err)

		ct := make([]byte, len(src))
		for off := 0; off < len(src); off += chunk {
			end := off + chunk
			if end > len(src) {
				end = len(src)
			}
			enc.XORKeyStream(ct[off:end], src[off:end])
		}
		require.Equalf(expected, ct, "chunk size %d", chunk)
	}
}

func TestInPlace(t *testing.T) {
	require := require.New(t)

	block, err := aes.NewCipher(mustHex(t, nistKey))
	require.NoError(err)
	iv := mustHex(t, nistIV)

	pt := mustHex(t, nistPlaintext)
	buf := append([]byte(nil), pt...)

	enc, err := NewEncrypter(block, iv)
	require.NoError(err)
	enc.XORKeyStream(buf, buf)
	require.Equal(mustHex(t, nistCiphertext), buf)

	dec, err := NewDecrypter(block, iv)
	require.NoError(err)
	dec.XORKeyStream(buf, buf)
	require.Equal(pt, buf)
}

func TestErrors(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	block, err := aes.NewCipher(mustHex(t, nistKey))
	require.NoError(err)

	_, err = NewEncrypter(block, make([]byte, 15))
	assert.Equal(ErrInvalidIV, err)

	_, err = NewDecrypter(block, nil)
	assert.Equal(ErrInvalidIV, err)
}
