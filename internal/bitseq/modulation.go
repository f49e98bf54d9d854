package bitseq

// ModOrder identifies a downlink modulation scheme.
type ModOrder int

const (
	ModQPSK ModOrder = iota
	Mod16QAM
	Mod64QAM
	Mod256QAM
)

// BitsPerSymbol returns the number of coded bits mapped to one modulation
// symbol.
func (m ModOrder) BitsPerSymbol() int {
	switch m {
	case ModQPSK:
		return 2
	case Mod16QAM:
		return 4
	case Mod64QAM:
		return 6
	case Mod256QAM:
		return 8
	default:
		return 2
	}
}

// Modulate maps bits (MSB-first groups of BitsPerSymbol()) to complex
// constellation points per 3GPP TS 38.211 §5.1, Gray-coded with I and Q
// mapped independently from the even/odd bit interleave of each group.
func Modulate(order ModOrder, bits []byte) []complex128 {
	switch order {
	case ModQPSK:
		return GoldQPSK(bits)
	case Mod16QAM:
		return modulateQAM(bits, 4, 1.0/3.1622776601683795) // 1/sqrt(10)
	case Mod64QAM:
		return modulateQAM(bits, 6, 1.0/6.48074069840786)   // 1/sqrt(42)
	case Mod256QAM:
		return modulateQAM(bits, 8, 1.0/13.038404810405298) // 1/sqrt(170)
	default:
		return GoldQPSK(bits)
	}
}

// modulateQAM implements the general 3GPP square-QAM Gray mapping: for each
// group of bitsPerSym bits, the even-indexed bits (b0, b2, ...) form the I
// index and the odd-indexed bits (b1, b3, ...) form the Q index, each via
// the recursive Gray rule
// level(b) = (1-2*b0) * (2^(k-1) - sum_{i=1}^{k-1} (1-2*b_i) * 2^(k-1-i)),
// which for 3GPP's tables collapses to the standard amplitude ladder
// {..,-3,-1,1,3,..} indexed by the Gray-coded bit group.
func modulateQAM(bits []byte, bitsPerSym int, scale float64) []complex128 {
	half := bitsPerSym / 2
	n := len(bits) / bitsPerSym
	iBits := make([]byte, half)
	qBits := make([]byte, half)
	out := make([]complex128, n)
	for s := 0; s < n; s++ {
		base := s * bitsPerSym
		for i := 0; i < half; i++ {
			iBits[i] = bits[base+2*i]
			qBits[i] = bits[base+2*i+1]
		}
		re := grayLevel(iBits) * scale
		im := grayLevel(qBits) * scale
		out[s] = complex(re, im)
	}
	return out
}

// grayLevel converts a Gray-coded bit group (MSB first) into the 3GPP
// amplitude level ladder value, per the recursive definition in TS 38.211
// Tables 5.1.3-1..3: level = (1-2*b0) * (2^(k-1) - sum_{i=1}^{k-1} (1-2*b_i) * 2^(k-1-i)).
func grayLevel(bits []byte) float64 {
	k := len(bits)
	sign := 1.0 - 2*float64(bits[0])
	acc := float64(int64(1) << uint(k-1))
	for i := 1; i < k; i++ {
		acc -= (1 - 2*float64(bits[i])) * float64(int64(1)<<uint(k-1-i))
	}
	return sign * acc
}
