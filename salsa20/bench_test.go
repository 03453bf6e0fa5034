package salsa20

import (
	"fmt"
	"testing"
)

func benchSizes(b *testing.B, run func(b *testing.B, buf []byte)) {
	for _, size := range []int{1024, 4 * 1024, 16 * 1024} {
		b.Run(fmt.Sprintf("%dKiB", size/1024), func(b *testing.B) {
			buf := make([]byte, size)
			b.SetBytes(int64(size))
			run(b, buf)
		})
	}
}

func BenchmarkSalsa20(b *testing.B) {
	var key [KeySize]byte
	var nonce [NonceSize]byte

	benchSizes(b, func(b *testing.B, buf []byte) {
		c, err := New(key[:], nonce[:])
		if err != nil {
			b.Fatal(err)
		}
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			c.XORKeyStream(buf, buf)
		}
	})
}

func BenchmarkXSalsa20(b *testing.B) {
	var key [KeySize]byte
	var nonce [XNonceSize]byte

	benchSizes(b, func(b *testing.B, buf []byte) {
		c, err := New(key[:], nonce[:])
		if err != nil {
			b.Fatal(err)
		}
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			c.XORKeyStream(buf, buf)
		}
	})
}
