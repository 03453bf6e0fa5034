package hc128

import (
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

// First keystream words for the all-zero key and IV, serialized little
// endian as the cipher emits them.
func TestZeroVector(t *testing.T) {
	require := require.New(t)

	var key [KeySize]byte
	var iv [IVSize]byte

	c, err := New(key[:], iv[:])
	require.NoError(err)

	ks := make([]byte, 32)
	c.KeyStream(ks)
	require.Equal(mustHex(t, "82001573a003fd3b7fd72ffb0eaf63aac62f12deb629dca72785a66268ec758b"), ks)
}

func TestChunkingInvariance(t *testing.T) {
	require := require.New(t)

	key := mustHex(t, "000102030405060708090a0b0c0d0e0f")
	iv := mustHex(t, "101112131415161718191a1b1c1d1e1f")

	whole, err := New(key, iv)
	require.NoError(err)
	expected := make([]byte, 256)
	whole.KeyStream(expected)

	for _, chunk := range []int{1, 2, 3, 5, 7, 64, 100} {
		c, err := New(key, iv)
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

func TestDistinctIVs(t *testing.T) {
	require := require.New(t)

	var key [KeySize]byte
	var iv1, iv2 [IVSize]byte
	iv2[0] = 1

	c1, err := New(key[:], iv1[:])
	require.NoError(err)
	c2, err := New(key[:], iv2[:])
	require.NoError(err)

	ks1 := make([]byte, 64)
	ks2 := make([]byte, 64)
	c1.KeyStream(ks1)
	c2.KeyStream(ks2)
	require.NotEqual(ks1, ks2)
}

func TestRoundTrip(t *testing.T) {
	require := require.New(t)

	key := mustHex(t, "000102030405060708090a0b0c0d0e0f")
	iv := mustHex(t, "101112131415161718191a1b1c1d1e1f")

	msg := make([]byte, 501)
	for i := range msg {
		msg[i] = byte(i * 5)
	}

	enc, err := New(key, iv)
	require.NoError(err)
	ct := make([]byte, len(msg))
	enc.XORKeyStream(ct, msg)

	dec, err := New(key, iv)
	require.NoError(err)
	pt := make([]byte, len(ct))
	dec.XORKeyStream(pt, ct)
	require.Equal(msg, pt)
}

func TestErrors(t *testing.T) {
	assert := assert.New(t)

	var key [KeySize]byte
	var iv [IVSize]byte

	_, err := New(key[:8], iv[:])
	assert.Equal(ErrInvalidKey, err)

	_, err = New(key[:], iv[:8])
	assert.Equal(ErrInvalidIV, err)
}
