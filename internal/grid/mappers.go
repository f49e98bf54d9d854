package grid

// MapContiguous maps a sequence of values onto consecutive logical
// subcarriers starting at startSC in symbol s. PSS/SSS (127 subcarriers
// starting 56 into the 240-subcarrier SSB block) and PBCH data symbols share
// this shape; DMRS interleave uses MapStrided instead.
func (g *Grid) MapContiguous(s, startSC int, seq []complex128) error {
	for i, v := range seq {
		if err := g.MapRE(startSC+i, s, v); err != nil {
			return err
		}
	}
	return nil
}

// MapStrided maps seq onto logical subcarriers startSC+offset, startSC+offset+stride,
// ... used for DMRS patterns (every fourth subcarrier for PBCH/PDCCH DMRS).
func (g *Grid) MapStrided(s, startSC, offset, stride int, seq []complex128) error {
	for i, v := range seq {
		sc := startSC + offset + i*stride
		if err := g.MapRE(sc, s, v); err != nil {
			return err
		}
	}
	return nil
}

// MapWithSkip maps seq onto consecutive logical subcarriers starting at
// startSC, but skips positions already reserved for DMRS (offset, stride),
// used by PBCH/PDCCH data mapping around their own DMRS.
func (g *Grid) MapWithSkip(s, startSC, count, dmrsOffset, dmrsStride int, seq []complex128) error {
	idx := 0
	for sc := startSC; sc < startSC+count && idx < len(seq); sc++ {
		if (sc-startSC-dmrsOffset)%dmrsStride == 0 && sc >= startSC+dmrsOffset {
			continue
		}
		if err := g.MapRE(sc, s, seq[idx]); err != nil {
			return err
		}
		idx++
	}
	return nil
}
