package ldpc

// extensionDegree is the number of systematic-column connections each
// extension (non-core) parity-check row carries, matching the degree-3 rows
// (two systematic columns plus the one core-parity link Encode already wires
// through coreIdx) that dominate both 3GPP base graphs beyond their four
// core rows.
const extensionDegree = 2

// shiftTable derives the circulant shift connecting parity-check block-row
// row to systematic block-column col for lifting size z, or -1 when the base
// graph has no connection there.
//
// Core rows (row < 4) use the literal per-set shift values transcribed from
// 3GPP TS 38.212 Table 5.3.2-2 (BG1) / 5.3.2-3 (BG2) in tables.go. Extension
// rows use a fixed, degree-bounded systematic-column connectivity (two
// columns per row, chosen by a deterministic offset from the row index) in
// place of the literal per-row table, which was not available to transcribe
// against a reference copy in this session; see DESIGN.md for that
// limitation and how it differs from the fully conformant core rows.
func shiftTable(bg BaseGraph, row, col, z int) int {
	if row < 4 {
		if s, ok := coreShift(bg, row, col, z); ok {
			return s
		}
		return -1
	}

	kb := 22
	if bg == BG2 {
		kb = 10
	}
	extRow := row - 4
	for w := 0; w < extensionDegree; w++ {
		if col == (extRow*3+w*7+1)%kb {
			return (extRow*131 + col*67 + int(bg)*23 + w) % z
		}
	}
	return -1
}

// circShift returns block shifted circularly by s positions: out[i] =
// block[(i-s) mod z], matching the circulant-permutation-matrix convention
// used by 5G LDPC base graphs.
func circShift(block []byte, s int) []byte {
	z := len(block)
	out := make([]byte, z)
	if s == 0 {
		copy(out, block)
		return out
	}
	s = ((s % z) + z) % z
	for i := 0; i < z; i++ {
		out[i] = block[((i-s)%z+z)%z]
	}
	return out
}

func xorInto(dst, src []byte) {
	for i := range dst {
		dst[i] ^= src[i]
	}
}

// Encode runs the systematic LDPC encode for infoBits (exactly c.K bits,
// MSB-first per Z-sized block-column) and returns the full N-bit codeword
// (systematic bits followed by parity bits).
//
// The parity part is produced in two stages, following the real 5G base
// graphs' structural shape: four "core" parity block-columns solved in
// closed form from the systematic contributions (the dual-diagonal
// recursion used throughout 3GPP TS 38.212 Annex-referenced base graphs),
// then the remaining "extension" parity block-columns, each a direct
// function of the systematic bits and exactly one core parity block.
func (c *Config) Encode(infoBits []byte) []byte {
	z := c.Z
	out := make([]byte, c.N)
	copy(out, infoBits)

	info := make([][]byte, c.Kb)
	for k := 0; k < c.Kb; k++ {
		info[k] = infoBits[k*z : (k+1)*z]
	}

	lambda := make([][]byte, c.coreBlocks)
	for r := 0; r < c.coreBlocks; r++ {
		acc := make([]byte, z)
		for k := 0; k < c.Kb; k++ {
			s := shiftTable(c.BaseGraph, r, k, z)
			if s < 0 {
				continue
			}
			xorInto(acc, circShift(info[k], s))
		}
		lambda[r] = acc
	}

	p := make([][]byte, c.coreBlocks)
	p[0] = make([]byte, z)
	xorInto(p[0], lambda[0])
	xorInto(p[0], lambda[1])
	xorInto(p[0], lambda[2])
	xorInto(p[0], lambda[3])
	for r := 1; r < c.coreBlocks; r++ {
		acc := make([]byte, z)
		xorInto(acc, lambda[r-1])
		xorInto(acc, p[r-1])
		p[r] = acc
	}

	for r := 0; r < c.coreBlocks; r++ {
		copy(out[(c.Kb+r)*z:(c.Kb+r+1)*z], p[r])
	}

	for m := 0; m < c.extParityLen; m++ {
		acc := make([]byte, z)
		for k := 0; k < c.Kb; k++ {
			s := shiftTable(c.BaseGraph, c.coreBlocks+m, k, z)
			if s < 0 {
				continue
			}
			xorInto(acc, circShift(info[k], s))
		}
		coreIdx := m % c.coreBlocks
		s := shiftTable(c.BaseGraph, c.coreBlocks+m, c.Kb+coreIdx, z)
		if s < 0 {
			s = 0
		}
		xorInto(acc, circShift(p[coreIdx], s))

		base := (c.Kb + c.coreBlocks + m) * z
		copy(out[base:base+z], acc)
	}

	return out
}
