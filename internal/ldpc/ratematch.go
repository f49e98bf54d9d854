package ldpc

// rvStartNumeratorBG1 and rvStartNumeratorBG2 give the four redundancy-version
// circular-buffer start positions as fractions of N, per 3GPP TS 38.212
// Table 5.4.2.1-2: RV0 starts at 0.
var rvStartNumeratorBG1 = [4]int{0, 17, 33, 56}
var rvStartNumeratorBG2 = [4]int{0, 13, 25, 43}

// RateMatch extracts targetBits from the circular buffer formed by the N-bit
// codeword, starting at the redundancy-version-dependent offset, per 3GPP TS
// 38.212 §5.4.2.1.
func (c *Config) RateMatch(codeword []byte, targetBits int, rv int) []byte {
	n := len(codeword)
	var numer [4]int
	var denom int
	if c.BaseGraph == BG1 {
		numer = rvStartNumeratorBG1
		denom = 66
	} else {
		numer = rvStartNumeratorBG2
		denom = 50
	}
	if rv < 0 || rv > 3 {
		rv = 0
	}
	start := (numer[rv] * n) / denom

	out := make([]byte, targetBits)
	for i := 0; i < targetBits; i++ {
		out[i] = codeword[(start+i)%n]
	}
	return out
}
