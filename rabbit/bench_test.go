package rabbit

import (
	"fmt"
	"testing"
)

func BenchmarkRabbit(b *testing.B) {
	key := make([]byte, KeySize)
	iv := make([]byte, IVSize)

	for _, size := range []int{1024, 4 * 1024, 16 * 1024} {
		b.Run(fmt.Sprintf("%dKiB", size/1024), func(b *testing.B) {
			c, err := NewWithIV(key, iv)
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
