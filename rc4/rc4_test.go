package rc4

import (
	"encoding/binary"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RFC 6229 keystream samples: 16 byte windows at the listed offsets,
// prefixed with the 2 byte big endian offset, exactly as printed in the
// RFC's tables.
var rfc6229Vectors = []struct {
	key     string
	samples string
}{
	{
		key: "0102030405",
		samples: "0000b2396305f03dc027ccc3524a0a1118a8" +
			"00106982944f18fc82d589c403a47a0d0919" +
			"00f028cb1132c96ce286421dcaadb8b69eae" +
			"01001cfcf62b03eddb641d77dfcf7f8d8c93" +
			"01f042b7d0cdd918a8a33dd51781c81f4041" +
			"02006459844432a7da923cfb3eb4980661f6" +
			"02f0ec10327bde2beefd18f9277680457e22" +
			"0300eb62638d4f0ba1fe9fca20e05bf8ff2b" +
			"03f045129048e6a0ed0b56b490338f078da5" +
			"040030abbcc7c20b01609f23ee2d5f6bb7df" +
			"05f03294f744d8f9790507e70f62e5bbceea" +
			"0600d8729db41882259bee4f825325f5a130" +
			"07f01eb14a0c13b3bf47fa2a0ba93ad45b8b" +
			"0800cc582f8ba9f265e2b1be9112e975d2d7" +
			"0bf0f2e30f9bd102ecbf75aaade9bc35c43c" +
			"0c00ec0e11c479dc329dc8da7968fe965681" +
			"0ff0068326a2118416d21f9d04b2cd1ca050" +
			"1000ff25b58995996707e51fbdf08b34d875",
	},
	{
		key: "01020304050607",
		samples: "0000293f02d47f37c9b633f2af5285feb46b" +
			"0010e620f1390d19bd84e2e0fd752031afc1" +
			"00f0914f02531c9218810df60f67e338154c" +
			"0100d0fdb583073ce85ab83917740ec011d5" +
			"01f075f81411e871cffa70b90c74c592e454" +
			"02000bb87202938dad609e87a5a1b079e5e4" +
			"02f0c2911246b612e7e7b903dfeda1dad866" +
			"030032828f91502b6291368de8081de36fc2" +
			"03f0f3b9a7e3b297bf9ad804512f9063eff1" +
			"04008ecb67a9ba1f55a5a067e2b026a3676f" +
			"05f0d2aa902bd42d0d7cfd340cd45810529f" +
			"060078b272c96e42eab4c60bd914e39d06e3" +
			"07f0f4332fd31a079396ee3cee3f2a4ff049" +
			"080005459781d41fda7f30c1be7e1246c623" +
			"0bf0adfd3868b8e51485d5e610017e3dd609" +
			"0c00ad26581c0c5be45f4cea01db2f3805d5" +
			"0ff0f3172ceffc3b3d997c85ccd5af1a950c" +
			"1000e74b0b9731227fd37c0ec08a47ddd8b8",
	},
	{
		key: "0102030405060708",
		samples: "000097ab8a1bf0afb96132f2f67258da15a8" +
			"00108263efdb45c4a18684ef87e6b19e5b09" +
			"00f09636ebc9841926f4f7d1f362bddf6e18" +
			"0100d0a990ff2c05fef5b90373c9ff4b870a" +
			"01f073239f1db7f41d80b643c0c52518ec63" +
			"0200163b319923a6bdb4527c626126703c0f" +
			"02f049d6c8af0f97144a87df21d91472f966" +
			"030044173a103b6616c5d5ad1cee40c863d0" +
			"03f0273c9c4b27f322e4e716ef53a47de7a4" +
			"0400c6d0e7b226259fa9023490b26167ad1d" +
			"05f01fe8986713f07c3d9ae1c163ff8cf9d3" +
			"06008369e1a965610be887fbd0c79162aafb" +
			"07f00a0127abb44484b9fbef5abcae1b579f" +
			"0800c2cdadc6402e8ee866e1f37bdb47e42c" +
			"0bf026b51ea37df8e1d6f76fc3b66a7429b3" +
			"0c00bc7683205d4f443dc1f29dda3315c87b" +
			"0ff0d5fa5a3469d29aaaf83d23589db8c85b" +
			"10003fb46e2c8f0f068edce8cdcd7dfc5862",
	},
}

func TestRFC6229(t *testing.T) {
	require := require.New(t)

	for _, v := range rfc6229Vectors {
		key, err := hex.DecodeString(v.key)
		require.NoError(err)

		c, err := New(key)
		require.NoError(err)

		ks := make([]byte, 0x1010)
		c.KeyStream(ks)

		samples, err := hex.DecodeString(v.samples)
		require.NoError(err)
		require.Equal(0, len(samples)%18)
		for i := 0; i < len(samples); i += 18 {
			offset := int(binary.BigEndian.Uint16(samples[i : i+2]))
			require.Equalf(samples[i+2:i+18], ks[offset:offset+16],
				"key %s offset %#x", v.key, offset)
		}
	}
}

func TestXORKeyStreamMatchesKeyStream(t *testing.T) {
	require := require.New(t)

	key := []byte("not very secret")
	c1, err := New(key)
	require.NoError(err)
	c2, err := New(key)
	require.NoError(err)

	src := make([]byte, 333)
	for i := range src {
		src[i] = byte(i * 3)
	}

	ks := make([]byte, len(src))
	c1.KeyStream(ks)
	ct := make([]byte, len(src))
	c2.XORKeyStream(ct, src)

	for i := range src {
		require.Equal(ks[i]^src[i], ct[i])
	}
}

func TestKeySizes(t *testing.T) {
	assert := assert.New(t)

	_, err := New(nil)
	assert.Equal(ErrInvalidKey, err)

	_, err = New(make([]byte, 257))
	assert.Equal(ErrInvalidKey, err)

	_, err = New(make([]byte, 1))
	assert.NoError(err)

	_, err = New(make([]byte, 256))
	assert.NoError(err)
}
