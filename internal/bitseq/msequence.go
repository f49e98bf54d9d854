package bitseq

// PSSMSequence generates the length-127 base m-sequence used by PSS, per
// 3GPP TS 38.211 §7.4.2.2.1: polynomial x^7+x^4+1, initial state
// [0,1,1,0,1,1,1] (LSB to MSB: x(0)=0, x(1)=1, ..., x(6)=1). The recurrence
// is x(i+7) = (x(i+4) + x(i)) mod 2.
func PSSMSequence() []byte {
	const length = 127
	x := make([]byte, length+7)
	init := []byte{0, 1, 1, 0, 1, 1, 1}
	copy(x, init)
	for i := 0; i < length-7; i++ {
		x[i+7] = (x[i+4] ^ x[i]) & 1
	}
	return x[:length]
}

// PSSSequence builds the BPSK-mapped PSS sequence for the given NID2 (0..2):
// a cyclic shift of the base m-sequence by M = (43*NID2) mod 127, mapped to
// +-1 on the real axis (3GPP TS 38.211 §7.4.2.2.1).
func PSSSequence(nid2 int) []complex128 {
	base := PSSMSequence()
	m := (43 * nid2) % 127
	out := make([]complex128, 127)
	for n := 0; n < 127; n++ {
		bit := base[(n+m)%127]
		out[n] = complex(1-2*float64(bit), 0)
	}
	return out
}

// sssX0MSequence generates SSS's x0 m-sequence: polynomial x^7+x^4+1, initial
// state [1,0,0,0,0,0,0].
func sssX0MSequence() []byte {
	const length = 127
	x := make([]byte, length+7)
	init := []byte{1, 0, 0, 0, 0, 0, 0}
	copy(x, init)
	for i := 0; i < length-7; i++ {
		x[i+7] = (x[i+4] ^ x[i]) & 1
	}
	return x[:length]
}

// sssX1MSequence generates SSS's x1 m-sequence: polynomial x^7+x+1, same
// initial state [1,0,0,0,0,0,0].
func sssX1MSequence() []byte {
	const length = 127
	x := make([]byte, length+7)
	init := []byte{1, 0, 0, 0, 0, 0, 0}
	copy(x, init)
	for i := 0; i < length-7; i++ {
		x[i+7] = (x[i+1] ^ x[i]) & 1
	}
	return x[:length]
}

// SSSSequence builds the BPSK-mapped SSS sequence for (NID1, NID2), per
// 3GPP TS 38.211 §7.4.2.3.1: m0 = 15*floor(NID1/112) + 5*NID2, m1 = NID1 mod
// 112; output(n) = x0[(n+m0) mod 127] * x1[(n+m1) mod 127].
func SSSSequence(nid1, nid2 int) []complex128 {
	x0 := sssX0MSequence()
	x1 := sssX1MSequence()
	m0 := 15*(nid1/112) + 5*nid2
	m1 := nid1 % 112

	out := make([]complex128, 127)
	for n := 0; n < 127; n++ {
		b0 := x0[(n+m0)%127]
		b1 := x1[(n+m1)%127]
		bit := b0 ^ b1
		out[n] = complex(1-2*float64(bit), 0)
	}
	return out
}
