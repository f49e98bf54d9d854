package prach

import "math"

// ifft computes the unnormalized inverse DFT of data in place via an
// iterative radix-2 Cooley-Tukey butterfly. len(data) must be a power of 2.
// No pack repo imports an FFT library (the original Rust source reaches for
// rustfft, which has no Go counterpart in the retrieved pack), so this is a
// small self-contained implementation sized only for the two transform
// lengths PRACH correlation needs (2048 and 256).
func ifft(data []complex128) {
	n := len(data)
	bitReverse(data)

	for size := 2; size <= n; size *= 2 {
		halfSize := size / 2
		angle := 2 * math.Pi / float64(size)
		wStep := complex(math.Cos(angle), math.Sin(angle))

		for start := 0; start < n; start += size {
			w := complex(1.0, 0.0)
			for i := 0; i < halfSize; i++ {
				even := data[start+i]
				odd := data[start+i+halfSize] * w
				data[start+i] = even + odd
				data[start+i+halfSize] = even - odd
				w *= wStep
			}
		}
	}
}

func bitReverse(data []complex128) {
	n := len(data)
	for i, j := 1, 0; i < n; i++ {
		bit := n >> 1
		for ; j&bit != 0; bit >>= 1 {
			j ^= bit
		}
		j ^= bit
		if i < j {
			data[i], data[j] = data[j], data[i]
		}
	}
}
