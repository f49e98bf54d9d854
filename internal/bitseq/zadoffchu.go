package bitseq

import "math"

// ZadoffChu generates the root-u Zadoff-Chu sequence of length zcLen, per
// 3GPP TS 38.211 §5.2.2: x_u(n) = exp(-j*pi*u*n*(n+1)/N). Unit magnitude for
// every n is a defining property of the family (P1).
func ZadoffChu(u uint32, zcLen int) []complex128 {
	out := make([]complex128, zcLen)
	n := float64(zcLen)
	for i := 0; i < zcLen; i++ {
		fi := float64(i)
		phase := -math.Pi * float64(u) * fi * (fi + 1) / n
		out[i] = complex(math.Cos(phase), math.Sin(phase))
	}
	return out
}

// CyclicShift rotates a root sequence left by a cyclic shift expressed in
// samples (out[i] = seq[(i+shift) mod n]). PSS generation and the PRACH
// detector do not call it: PSS shifts its m-sequence itself, and PRACH
// applies its N_cs windows in the time domain after the IDFT.
func CyclicShift(seq []complex128, shift int) []complex128 {
	n := len(seq)
	out := make([]complex128, n)
	shift = ((shift % n) + n) % n
	for i := 0; i < n; i++ {
		out[i] = seq[(i+shift)%n]
	}
	return out
}
