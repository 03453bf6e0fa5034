package rabbit

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

// RFC 4503 appendix A.1: testing without IV setup.
func TestRabbitKeyOnly(t *testing.T) {
	require := require.New(t)

	vectors := []struct {
		key      string
		expected string
	}{
		{
			key: "00000000000000000000000000000000",
			expected: "02f74a1c26456bf5ecd6a536f05457b1" +
				"a78ac689476c697b390c9cc515d8e888" +
				"96d6731688d168da51d40c70c3a116f4",
		},
		{
			key: "acc351dcf162fc3bfe363d2e29132891",
			expected: "9c51e28784c37fe9a127f63ec8f32d3d" +
				"19fc5485aa53bf96885b40f461cd76f5" +
				"5e4c4d20203be58a5043dbfb737454e5",
		},
		{
			key: "43009bc001abe9e933c7e08715749583",
			expected: "9b60d002fd5ceb32accd41a0cd0db10c" +
				"ad3eff4c1192707b5a01170fca9ffc95" +
				"2874943aad4741923f7ffc8bdee54996",
		},
	}

	for _, v := range vectors {
		expected := mustHex(t, v.expected)

		// Every chunking of the keystream must produce the same bytes.
		for n := 1; n <= len(expected); n++ {
			c, err := New(mustHex(t, v.key))
			require.NoError(err)

			d := append([]byte(nil), expected...)
			for off := 0; off < len(d); off += n {
				end := off + n
				if end > len(d) {
					end = len(d)
				}
				c.XORKeyStream(d[off:end], d[off:end])
			}
			for _, b := range d {
				require.Equalf(byte(0), b, "key %s chunk %d", v.key, n)
			}
		}
	}
}

// RFC 4503 appendix A.2: testing with IV setup.
func TestRabbitKeyIV(t *testing.T) {
	require := require.New(t)

	key := mustHex(t, "00000000000000000000000000000000")
	vectors := []struct {
		iv       string
		expected string
	}{
		{
			iv: "0000000000000000",
			expected: "edb70567375dcd7cd89554f85e27a7c6" +
				"8d4adc7032298f7bd4eff504aca6295f" +
				"668fbf478adb2be51e6cde292b82de2a",
		},
		{
			iv: "597e26c175f573c3",
			expected: "6d7d012292ccdce0e2120058b94ecd1f" +
				"2e6f93edff99247b012521d1104e5fa7" +
				"a79b0212d0bd56233938e793c312c1eb",
		},
		{
			iv: "2717f4d21a56eba6",
			expected: "4d1051a123afb670bf8d8505c8d85a44" +
				"035bc3acc667aeae5b2cf44779f2c896" +
				"cb5115f034f03d31171ca75f89fccb9f",
		},
	}

	for _, v := range vectors {
		c, err := NewWithIV(key, mustHex(t, v.iv))
		require.NoError(err)

		ks := make([]byte, 48)
		c.KeyStream(ks)
		require.Equalf(mustHex(t, v.expected), ks, "iv %s", v.iv)
	}
}

// SetupIV restarts from the master state, so the same instance can be
// re-keyed for successive IVs.
func TestRabbitIVReSetup(t *testing.T) {
	require := require.New(t)

	key := mustHex(t, "00000000000000000000000000000000")
	iv1 := mustHex(t, "597e26c175f573c3")
	iv2 := mustHex(t, "2717f4d21a56eba6")

	c, err := NewWithIV(key, iv1)
	require.NoError(err)
	var discard [100]byte
	c.KeyStream(discard[:])

	require.NoError(c.SetupIV(iv2))
	got := make([]byte, 48)
	c.KeyStream(got)

	fresh, err := NewWithIV(key, iv2)
	require.NoError(err)
	want := make([]byte, 48)
	fresh.KeyStream(want)
	require.Equal(want, got)
}

func TestRabbitErrors(t *testing.T) {
	assert := assert.New(t)

	var key [KeySize]byte
	var iv [IVSize]byte

	_, err := New(key[:8])
	assert.Equal(ErrInvalidKey, err)

	_, err = NewWithIV(key[:], iv[:4])
	assert.Equal(ErrInvalidIV, err)
}
