package ctr

import (
	"crypto/aes"
	"fmt"
	"testing"
)

func BenchmarkAES128CTR(b *testing.B) {
	block, err := aes.NewCipher(make([]byte, 16))
	if err != nil {
		b.Fatal(err)
	}
	iv := make([]byte, 16)

	for _, size := range []int{1024, 4 * 1024, 16 * 1024} {
		b.Run(fmt.Sprintf("%dKiB", size/1024), func(b *testing.B) {
			c, err := New(block, iv)
			if err != nil {
				b.Fatal(err)
			}
			buf := make([]byte, size)
			b.SetBytes(int64(size))
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				c.XORKeyStream(buf, buf)
			}
		})
	}
}
